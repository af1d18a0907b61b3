package delivery

import (
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AdminHandler serves the admin panel: login, product CRUD and order
// management. Everything except login sits behind the admin auth middleware.
type AdminHandler struct {
	catalog usecase.CatalogUseCase
	orders  usecase.OrderUseCase
	auth    usecase.AdminAuthenticator
	log     *logrus.Logger
}

func NewAdminHandler(catalog usecase.CatalogUseCase, orders usecase.OrderUseCase, auth usecase.AdminAuthenticator, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		catalog: catalog,
		orders:  orders,
		auth:    auth,
		log:     logger,
	}
}

func (h *AdminHandler) RegisterRoutes(router gin.IRouter, authRequired gin.HandlerFunc) {
	admin := router.Group("/admin")
	{
		admin.POST("/login", h.Login)

		protected := admin.Group("", authRequired)
		{
			protected.POST("/products", h.CreateProduct)
			protected.PUT("/products/:id", h.UpdateProduct)
			protected.DELETE("/products/:id", h.DeleteProduct)

			protected.GET("/orders", h.ListOrders)
			protected.PUT("/orders/:id", h.UpdateOrderStatus)
			protected.DELETE("/orders/:id", h.DeleteOrder)
		}
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for admin login: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		ErrorResponse(c, statusCode, "Invalid credentials")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Login successful",
		Token:   token,
	})
}

type createProductRequest struct {
	Name          string   `json:"name"`
	Price         *float64 `json:"price"`
	Image         string   `json:"image"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	StockQuantity *int     `json:"stockQuantity"`
}

func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for create product: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Price == nil {
		ErrorResponse(c, http.StatusBadRequest, "Product price is required")
		return
	}

	product := &domain.Product{
		Name:        req.Name,
		Price:       *req.Price,
		Image:       req.Image,
		Description: req.Description,
		Category:    domain.Category(req.Category),
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}

	createdProduct, err := h.catalog.CreateProduct(product)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Errorf("Failed to create product '%s': %v", req.Name, err)
		ErrorResponse(c, statusCode, "Failed to create product: "+err.Error())
		return
	}

	h.log.Infof("Product created successfully: ID %d, Name %s", createdProduct.ID, createdProduct.Name)
	SuccessResponse(c, http.StatusCreated, "Product created successfully", createdProduct)
}

func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.log.Warnf("Invalid product ID parameter for update: %s", idStr)
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		h.log.Errorf("Failed to bind JSON for update product ID %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(updates) == 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: no fields provided for update")
		return
	}

	updatedProduct, err := h.catalog.UpdateProduct(id, updates)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Errorf("Failed to update product ID %d: %v", id, err)
		ErrorResponse(c, statusCode, "Failed to update product: "+err.Error())
		return
	}

	h.log.Infof("Product updated successfully: ID %d", updatedProduct.ID)
	SuccessResponse(c, http.StatusOK, "Product updated successfully", updatedProduct)
}

func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.log.Warnf("Invalid product ID parameter for delete: %s", idStr)
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	if err := h.catalog.DeleteProduct(id); err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to delete product ID %d: %v", id, err)
		ErrorResponse(c, statusCode, "Failed to delete product: "+err.Error())
		return
	}

	h.log.Infof("Product deleted successfully: ID %d", id)
	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders()
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Errorf("Failed to list orders: %v", err)
		ErrorResponse(c, statusCode, "Failed to retrieve orders: "+err.Error())
		return
	}

	ListResponse(c, orders, len(orders))
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.log.Warnf("Invalid order ID parameter for status update: %s", idStr)
		ErrorResponse(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for order status update ID %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updatedOrder, err := h.orders.UpdateOrderStatus(id, domain.OrderStatus(req.Status))
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to update status for order ID %d: %v", id, err)
		ErrorResponse(c, statusCode, "Failed to update order status: "+err.Error())
		return
	}

	h.log.Infof("Order status updated successfully: ID %d, status %s", updatedOrder.ID, updatedOrder.Status)
	SuccessResponse(c, http.StatusOK, "Order status updated", updatedOrder)
}

func (h *AdminHandler) DeleteOrder(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.log.Warnf("Invalid order ID parameter for delete: %s", idStr)
		ErrorResponse(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	if err := h.orders.DeleteOrder(id); err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to delete order ID %d: %v", id, err)
		ErrorResponse(c, statusCode, "Failed to delete order: "+err.Error())
		return
	}

	h.log.Infof("Order deleted successfully: ID %d", id)
	SuccessResponse(c, http.StatusOK, "Order deleted successfully", nil)
}
