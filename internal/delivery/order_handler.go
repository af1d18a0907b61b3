package delivery

import (
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// OrderHandler serves guest checkout and order lookup.
type OrderHandler struct {
	useCase usecase.OrderUseCase
	log     *logrus.Logger
}

func NewOrderHandler(uc usecase.OrderUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *OrderHandler) RegisterRoutes(router gin.IRouter) {
	orders := router.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("/:id", h.GetOrderByID)
	}
}

type createOrderRequest struct {
	Items        []usecase.OrderRequestItem `json:"items"`
	CustomerInfo domain.CustomerInfo        `json:"customerInfo"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for create order: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	createdOrder, err := h.useCase.CreateOrder(req.Items, req.CustomerInfo)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to create order for %s: %v", req.CustomerInfo.Email, err)
		ErrorResponse(c, statusCode, "Failed to create order: "+err.Error())
		return
	}

	h.log.Infof("Order created successfully: ID %d, total %.2f", createdOrder.ID, createdOrder.TotalAmount)
	SuccessResponse(c, http.StatusCreated, "Order placed successfully", createdOrder)
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.log.Warnf("Invalid order ID parameter: %s", idStr)
		ErrorResponse(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	order, err := h.useCase.GetOrderByID(id)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to get order by ID %d: %v", id, err)
		ErrorResponse(c, statusCode, "Failed to retrieve order: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", order)
}
