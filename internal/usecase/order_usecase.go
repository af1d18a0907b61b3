package usecase

import (
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

// OrderRequestItem is one (product, quantity) pair of a checkout payload.
type OrderRequestItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type OrderUseCase interface {
	CreateOrder(items []OrderRequestItem, customer domain.CustomerInfo) (*domain.Order, error)
	GetOrderByID(id int64) (*domain.Order, error)
	ListOrders() ([]domain.Order, error)
	UpdateOrderStatus(id int64, status domain.OrderStatus) (*domain.Order, error)
	DeleteOrder(id int64) error
}

type orderUseCase struct {
	orderRepo   domain.OrderRepository
	productRepo domain.ProductRepository
	// atomicReservation selects the reservation mode. When true the whole
	// multi-item stock decrement runs in one transaction and a failure on any
	// item leaves no stock decremented. When false the reference behavior is
	// preserved: decrements are persisted item by item as the loop proceeds
	// and a later failure does not compensate earlier ones.
	atomicReservation bool
	log               *logrus.Logger
}

func NewOrderUseCase(orderRepo domain.OrderRepository, productRepo domain.ProductRepository, atomicReservation bool, logger *logrus.Logger) OrderUseCase {
	return &orderUseCase{
		orderRepo:         orderRepo,
		productRepo:       productRepo,
		atomicReservation: atomicReservation,
		log:               logger,
	}
}

func validateCustomerInfo(customer *domain.CustomerInfo) error {
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Email = strings.ToLower(strings.TrimSpace(customer.Email))
	customer.Address = strings.TrimSpace(customer.Address)
	customer.City = strings.TrimSpace(customer.City)
	customer.PostalCode = strings.TrimSpace(customer.PostalCode)

	if customer.Name == "" || customer.Email == "" || customer.Address == "" ||
		customer.City == "" || customer.PostalCode == "" {
		return errors.New("complete customer information is required")
	}
	return nil
}

func (uc *orderUseCase) CreateOrder(items []OrderRequestItem, customer domain.CustomerInfo) (*domain.Order, error) {
	if len(items) == 0 {
		uc.log.Warn("Use Case: Attempted to create order with no items")
		return nil, errors.New("order must contain at least one item")
	}
	for i, item := range items {
		if item.ProductID <= 0 {
			return nil, fmt.Errorf("item %d: invalid product ID", i)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item %d (product %d): quantity must be positive", i, item.ProductID)
		}
	}
	if err := validateCustomerInfo(&customer); err != nil {
		uc.log.Warnf("Use Case: Order rejected, incomplete customer info for %s", customer.Email)
		return nil, err
	}

	uc.log.Infof("Use Case: Starting stock reservation for %d items (customer %s, atomic=%t)",
		len(items), customer.Email, uc.atomicReservation)

	var orderItems []domain.OrderItem
	var totalAmount float64
	var err error

	if uc.atomicReservation {
		orderItems, totalAmount, err = uc.reserveAtomic(items)
	} else {
		orderItems, totalAmount, err = uc.reserveItemByItem(items)
	}
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		Items:        orderItems,
		CustomerInfo: customer,
		TotalAmount:  totalAmount,
		Status:       domain.StatusPending,
	}

	createdOrder, err := uc.orderRepo.CreateOrder(order)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create order for %s after stock was decremented: %v",
			customer.Email, err)
		return nil, fmt.Errorf("failed to save order after reserving stock: %w", err)
	}

	uc.log.Infof("Use Case: Order created successfully with ID %d, total %.2f", createdOrder.ID, createdOrder.TotalAmount)
	return createdOrder, nil
}

// reserveAtomic delegates the whole check-and-decrement sequence to the
// repository transaction and snapshots line items from the locked reads.
func (uc *orderUseCase) reserveAtomic(items []OrderRequestItem) ([]domain.OrderItem, float64, error) {
	reservations := make([]domain.StockReservation, 0, len(items))
	for _, item := range items {
		reservations = append(reservations, domain.StockReservation{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	products, err := uc.productRepo.ReserveStock(reservations)
	if err != nil {
		uc.log.Warnf("Use Case: Atomic reservation failed: %v", err)
		return nil, 0, err
	}

	orderItems := make([]domain.OrderItem, 0, len(items))
	var totalAmount float64
	for i, item := range items {
		product := products[i]
		orderItems = append(orderItems, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
			Image:     product.Image,
		})
		totalAmount += product.Price * float64(item.Quantity)
	}
	return orderItems, totalAmount, nil
}

// reserveItemByItem checks and persists each decrement as it goes. A failure
// on a later item returns an error without restoring stock already taken by
// earlier items in the same request.
func (uc *orderUseCase) reserveItemByItem(items []OrderRequestItem) ([]domain.OrderItem, float64, error) {
	orderItems := make([]domain.OrderItem, 0, len(items))
	var totalAmount float64

	for _, item := range items {
		product, err := uc.productRepo.GetProductByID(item.ProductID)
		if err != nil {
			uc.log.Warnf("Use Case: Product lookup failed for ID %d: %v", item.ProductID, err)
			return nil, 0, err
		}

		if product.StockQuantity < item.Quantity {
			uc.log.Warnf("Use Case: Insufficient stock for product ID %d (requested: %d, available: %d)",
				item.ProductID, item.Quantity, product.StockQuantity)
			return nil, 0, &domain.InsufficientStockError{
				ProductName: product.Name,
				Available:   product.StockQuantity,
			}
		}

		if _, err := uc.productRepo.DecrementStock(item.ProductID, item.Quantity); err != nil {
			uc.log.Errorf("Use Case: Failed to decrement stock for product ID %d: %v", item.ProductID, err)
			return nil, 0, err
		}

		orderItems = append(orderItems, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
			Image:     product.Image,
		})
		totalAmount += product.Price * float64(item.Quantity)
	}

	return orderItems, totalAmount, nil
}

func (uc *orderUseCase) GetOrderByID(id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, errors.New("invalid order ID")
	}
	order, err := uc.orderRepo.GetOrderByID(id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get order ID %d: %v", id, err)
		return nil, err
	}
	return order, nil
}

func (uc *orderUseCase) ListOrders() ([]domain.Order, error) {
	orders, err := uc.orderRepo.ListOrders()
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list orders: %v", err)
		return nil, fmt.Errorf("could not retrieve orders: %w", err)
	}
	uc.log.Infof("Use Case: Retrieved %d orders", len(orders))
	return orders, nil
}

// UpdateOrderStatus moves an order to any status in the enumeration. There is
// no transition workflow: any status may follow any other.
func (uc *orderUseCase) UpdateOrderStatus(id int64, status domain.OrderStatus) (*domain.Order, error) {
	if id <= 0 {
		return nil, errors.New("invalid order ID for status update")
	}
	if !domain.IsValidStatus(status) {
		uc.log.Warnf("Use Case: Invalid target status '%s' for order ID %d", status, id)
		return nil, fmt.Errorf("invalid order status: %s", status)
	}

	updatedOrder, err := uc.orderRepo.UpdateOrderStatus(id, status)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update status for order ID %d: %v", id, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Order status updated successfully for ID %d to %s", updatedOrder.ID, updatedOrder.Status)
	return updatedOrder, nil
}

func (uc *orderUseCase) DeleteOrder(id int64) error {
	if id <= 0 {
		return errors.New("invalid order ID for delete")
	}
	if err := uc.orderRepo.DeleteOrder(id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete order ID %d: %v", id, err)
		return err
	}
	uc.log.Infof("Use Case: Order deleted successfully for ID %d", id)
	return nil
}
