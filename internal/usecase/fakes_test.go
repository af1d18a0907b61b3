package usecase

import (
	"io"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// ---- fake repositories, function-field style ----

type fakeProductRepo struct {
	CreateProductFn  func(*domain.Product) (*domain.Product, error)
	GetProductByIDFn func(int64) (*domain.Product, error)
	UpdateProductFn  func(int64, map[string]interface{}) (*domain.Product, error)
	DeleteProductFn  func(int64) error
	ListProductsFn   func(domain.ProductFilter) ([]domain.Product, error)
	DecrementStockFn func(int64, int) (*domain.Product, error)
	ReserveStockFn   func([]domain.StockReservation) ([]domain.Product, error)
}

func (f *fakeProductRepo) CreateProduct(p *domain.Product) (*domain.Product, error) {
	return f.CreateProductFn(p)
}
func (f *fakeProductRepo) GetProductByID(id int64) (*domain.Product, error) {
	return f.GetProductByIDFn(id)
}
func (f *fakeProductRepo) UpdateProduct(id int64, updates map[string]interface{}) (*domain.Product, error) {
	return f.UpdateProductFn(id, updates)
}
func (f *fakeProductRepo) DeleteProduct(id int64) error { return f.DeleteProductFn(id) }
func (f *fakeProductRepo) ListProducts(filter domain.ProductFilter) ([]domain.Product, error) {
	return f.ListProductsFn(filter)
}
func (f *fakeProductRepo) DecrementStock(id int64, quantity int) (*domain.Product, error) {
	return f.DecrementStockFn(id, quantity)
}
func (f *fakeProductRepo) ReserveStock(items []domain.StockReservation) ([]domain.Product, error) {
	return f.ReserveStockFn(items)
}

type fakeOrderRepo struct {
	CreateOrderFn       func(*domain.Order) (*domain.Order, error)
	GetOrderByIDFn      func(int64) (*domain.Order, error)
	ListOrdersFn        func() ([]domain.Order, error)
	UpdateOrderStatusFn func(int64, domain.OrderStatus) (*domain.Order, error)
	DeleteOrderFn       func(int64) error
}

func (f *fakeOrderRepo) CreateOrder(o *domain.Order) (*domain.Order, error) {
	return f.CreateOrderFn(o)
}
func (f *fakeOrderRepo) GetOrderByID(id int64) (*domain.Order, error) { return f.GetOrderByIDFn(id) }
func (f *fakeOrderRepo) ListOrders() ([]domain.Order, error)         { return f.ListOrdersFn() }
func (f *fakeOrderRepo) UpdateOrderStatus(id int64, status domain.OrderStatus) (*domain.Order, error) {
	return f.UpdateOrderStatusFn(id, status)
}
func (f *fakeOrderRepo) DeleteOrder(id int64) error { return f.DeleteOrderFn(id) }
