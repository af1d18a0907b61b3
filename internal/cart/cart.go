// Package cart holds the client-side shopping cart: a pure state structure
// whose mutations never touch storage, and a Store wrapper that writes the
// state through to a local file after every change.
package cart

import "storefront/internal/domain"

// Item mirrors a catalog product inside the cart. StockCeiling is the stock
// quantity known when the product was added; quantity never exceeds it.
type Item struct {
	ProductID    int64   `json:"productId"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Image        string  `json:"image"`
	Quantity     int     `json:"quantity"`
	StockCeiling int     `json:"stockQuantity"`
}

type Cart struct {
	Items       []Item  `json:"items"`
	TotalItems  int     `json:"totalItems"`
	TotalAmount float64 `json:"totalAmount"`
}

func New() *Cart {
	return &Cart{Items: []Item{}}
}

func (c *Cart) find(productID int64) *Item {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// Add inserts the product at quantity 1, or increments an existing entry by
// one. Increments past the entry's stock ceiling are ignored.
func (c *Cart) Add(product domain.Product) {
	if existing := c.find(product.ID); existing != nil {
		if existing.Quantity < existing.StockCeiling {
			existing.Quantity++
		}
	} else {
		c.Items = append(c.Items, Item{
			ProductID:    product.ID,
			Name:         product.Name,
			Price:        product.Price,
			Image:        product.Image,
			Quantity:     1,
			StockCeiling: product.StockQuantity,
		})
	}
	c.recalculate()
}

func (c *Cart) Remove(productID int64) {
	filtered := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			filtered = append(filtered, item)
		}
	}
	c.Items = filtered
	c.recalculate()
}

// SetQuantity sets an entry to an explicit quantity. A value of zero or less
// removes the entry; a value above the stock ceiling leaves the prior
// quantity unchanged. Unknown product ids are ignored.
func (c *Cart) SetQuantity(productID int64, quantity int) {
	item := c.find(productID)
	if item == nil {
		return
	}
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	if quantity <= item.StockCeiling {
		item.Quantity = quantity
	}
	c.recalculate()
}

func (c *Cart) Clear() {
	c.Items = []Item{}
	c.recalculate()
}

// recalculate rebuilds both derived totals from scratch. Full recomputation
// keeps every mutation trivially correct at cart sizes.
func (c *Cart) recalculate() {
	c.TotalItems = 0
	c.TotalAmount = 0
	for _, item := range c.Items {
		c.TotalItems += item.Quantity
		c.TotalAmount += item.Price * float64(item.Quantity)
	}
}
