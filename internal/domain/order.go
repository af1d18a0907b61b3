package domain

import "time"

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

func IsValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// OrderItem is a snapshot of one purchased product. Name, price and image are
// copied from the product at order time so later catalog edits cannot alter
// historical orders; ProductID stays as a weak reference for traceability.
type OrderItem struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
}

type CustomerInfo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

type Order struct {
	ID           int64        `json:"id"`
	Items        []OrderItem  `json:"items"`
	CustomerInfo CustomerInfo `json:"customerInfo"`
	TotalAmount  float64      `json:"totalAmount"`
	Status       OrderStatus  `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

type OrderRepository interface {
	CreateOrder(order *Order) (*Order, error)
	GetOrderByID(id int64) (*Order, error)
	ListOrders() ([]Order, error)
	UpdateOrderStatus(id int64, status OrderStatus) (*Order, error)
	DeleteOrder(id int64) error
}
