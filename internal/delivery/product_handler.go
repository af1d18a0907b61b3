package delivery

import (
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ProductHandler serves the public catalog surface.
type ProductHandler struct {
	useCase usecase.CatalogUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc usecase.CatalogUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter) {
	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/categories", h.ListCategories)
		products.GET("/:id", h.GetProductByID)
	}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := domain.ProductFilter{
		Search:   c.Query("search"),
		Category: domain.Category(c.Query("category")),
		InStock:  c.Query("inStock") == "true",
	}

	if minStr := c.Query("minPrice"); minStr != "" {
		minPrice, err := strconv.ParseFloat(minStr, 64)
		if err != nil {
			h.log.Warnf("Invalid minPrice parameter: %s", minStr)
			ErrorResponse(c, http.StatusBadRequest, "Invalid minPrice format")
			return
		}
		filter.MinPrice = &minPrice
	}
	if maxStr := c.Query("maxPrice"); maxStr != "" {
		maxPrice, err := strconv.ParseFloat(maxStr, 64)
		if err != nil {
			h.log.Warnf("Invalid maxPrice parameter: %s", maxStr)
			ErrorResponse(c, http.StatusBadRequest, "Invalid maxPrice format")
			return
		}
		filter.MaxPrice = &maxPrice
	}

	products, err := h.useCase.ListProducts(filter)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Errorf("Failed to list products: %v", err)
		ErrorResponse(c, statusCode, "Failed to retrieve products: "+err.Error())
		return
	}

	ListResponse(c, products, len(products))
}

func (h *ProductHandler) ListCategories(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "", h.useCase.ListCategories())
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.log.Warnf("Invalid product ID parameter: %s", idStr)
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	product, err := h.useCase.GetProductByID(id)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to get product by ID %d: %v", id, err)
		ErrorResponse(c, statusCode, "Failed to retrieve product: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", product)
}
