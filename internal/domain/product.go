package domain

import (
	"fmt"
	"time"
)

type Category string

const (
	CategoryClothing    Category = "clothing"
	CategoryBooks       Category = "books"
	CategoryElectronics Category = "electronics"
	CategoryPets        Category = "pets"
)

// Categories returns the closed set of product categories. The list is static
// and does not depend on persisted data.
func Categories() []Category {
	return []Category{CategoryClothing, CategoryBooks, CategoryElectronics, CategoryPets}
}

func IsValidCategory(c Category) bool {
	switch c {
	case CategoryClothing, CategoryBooks, CategoryElectronics, CategoryPets:
		return true
	default:
		return false
	}
}

type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Image         string    `json:"image"`
	Description   string    `json:"description"`
	Category      Category  `json:"category"`
	StockQuantity int       `json:"stockQuantity"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ProductFilter narrows a catalog listing. Zero values mean "no filter";
// price bounds are pointers so that 0 remains a usable bound.
type ProductFilter struct {
	Search   string
	Category Category
	MinPrice *float64
	MaxPrice *float64
	InStock  bool
}

// StockReservation is one line of an all-or-nothing stock reservation.
type StockReservation struct {
	ProductID int64
	Quantity  int
}

type InsufficientStockError struct {
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (available: %d)", e.ProductName, e.Available)
}

type ProductRepository interface {
	CreateProduct(product *Product) (*Product, error)
	GetProductByID(id int64) (*Product, error)

	UpdateProduct(id int64, updates map[string]interface{}) (*Product, error)

	DeleteProduct(id int64) error
	ListProducts(filter ProductFilter) ([]Product, error)

	// DecrementStock applies and persists a single product's stock decrement.
	DecrementStock(id int64, quantity int) (*Product, error)
	// ReserveStock decrements stock for every item inside one transaction;
	// any failure leaves no decrement applied. Returns the products as they
	// were read under lock, before the decrement.
	ReserveStock(items []StockReservation) ([]Product, error)
}
