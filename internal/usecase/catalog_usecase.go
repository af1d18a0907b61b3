package usecase

import (
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type CatalogUseCase interface {
	ListProducts(filter domain.ProductFilter) ([]domain.Product, error)
	GetProductByID(id int64) (*domain.Product, error)
	ListCategories() []domain.Category
	CreateProduct(product *domain.Product) (*domain.Product, error)
	UpdateProduct(id int64, updates map[string]interface{}) (*domain.Product, error)
	DeleteProduct(id int64) error
}

type catalogUseCase struct {
	productRepo domain.ProductRepository
	log         *logrus.Logger
}

func NewCatalogUseCase(repo domain.ProductRepository, logger *logrus.Logger) CatalogUseCase {
	return &catalogUseCase{
		productRepo: repo,
		log:         logger,
	}
}

func (uc *catalogUseCase) ListProducts(filter domain.ProductFilter) ([]domain.Product, error) {
	if filter.Category == "all" {
		filter.Category = ""
	}
	if filter.Category != "" && !domain.IsValidCategory(filter.Category) {
		uc.log.Warnf("Use Case: Listing requested with unknown category '%s'", filter.Category)
		return nil, fmt.Errorf("invalid category: %s", filter.Category)
	}

	products, err := uc.productRepo.ListProducts(filter)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products: %v", err)
		return nil, fmt.Errorf("could not retrieve products: %w", err)
	}
	uc.log.Infof("Use Case: Retrieved %d products", len(products))
	return products, nil
}

func (uc *catalogUseCase) GetProductByID(id int64) (*domain.Product, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted to get product with invalid ID: %d", id)
		return nil, errors.New("invalid product ID")
	}

	product, err := uc.productRepo.GetProductByID(id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get product ID %d: %v", id, err)
		return nil, err
	}
	return product, nil
}

func (uc *catalogUseCase) ListCategories() []domain.Category {
	return domain.Categories()
}

func (uc *catalogUseCase) CreateProduct(product *domain.Product) (*domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		uc.log.Warn("Use Case: Attempted to create product with empty name")
		return nil, errors.New("product name cannot be empty")
	}
	if product.Price < 0 {
		uc.log.Warnf("Use Case: Attempted to create product '%s' with negative price: %f", product.Name, product.Price)
		return nil, errors.New("product price cannot be negative")
	}
	if product.Image == "" {
		uc.log.Warnf("Use Case: Attempted to create product '%s' without image", product.Name)
		return nil, errors.New("product image cannot be empty")
	}
	if product.Description == "" {
		uc.log.Warnf("Use Case: Attempted to create product '%s' without description", product.Name)
		return nil, errors.New("product description cannot be empty")
	}
	if !domain.IsValidCategory(product.Category) {
		uc.log.Warnf("Use Case: Attempted to create product '%s' with invalid category '%s'", product.Name, product.Category)
		return nil, fmt.Errorf("invalid category: %s", product.Category)
	}
	if product.StockQuantity < 0 {
		uc.log.Warnf("Use Case: Attempted to create product '%s' with negative stock: %d", product.Name, product.StockQuantity)
		return nil, errors.New("product stock cannot be negative")
	}

	uc.log.Infof("Use Case: Attempting to create product '%s'", product.Name)
	createdProduct, err := uc.productRepo.CreateProduct(product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", product.Name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product '%s' created successfully with ID %d", createdProduct.Name, createdProduct.ID)
	return createdProduct, nil
}

// UpdateProduct applies a partial update. Omitted fields keep their prior
// value; price and stock are validated only when actually provided, since 0 is
// a legal value for both.
func (uc *catalogUseCase) UpdateProduct(id int64, updates map[string]interface{}) (*domain.Product, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted update with invalid product ID: %d", id)
		return nil, errors.New("invalid product ID for update")
	}
	if len(updates) == 0 {
		return uc.productRepo.GetProductByID(id)
	}

	if _, err := uc.productRepo.GetProductByID(id); err != nil {
		uc.log.Warnf("Use Case: Product ID %d not found for update: %v", id, err)
		return nil, err
	}

	validUpdates := make(map[string]interface{})
	for key, value := range updates {
		switch key {
		case "name":
			name, ok := value.(string)
			name = strings.TrimSpace(name)
			if !ok || name == "" {
				uc.log.Warnf("Use Case: Invalid or empty 'name' provided for update ID %d", id)
				return nil, errors.New("product name cannot be empty if provided for update")
			}
			validUpdates["name"] = name
		case "price":
			price, ok := value.(float64)
			if !ok || price < 0 {
				uc.log.Warnf("Use Case: Invalid or negative 'price' provided for update ID %d", id)
				return nil, errors.New("product price cannot be negative if provided for update")
			}
			validUpdates["price"] = price
		case "image":
			image, ok := value.(string)
			if !ok || image == "" {
				uc.log.Warnf("Use Case: Invalid or empty 'image' provided for update ID %d", id)
				return nil, errors.New("product image cannot be empty if provided for update")
			}
			validUpdates["image"] = image
		case "description":
			description, ok := value.(string)
			if !ok || description == "" {
				uc.log.Warnf("Use Case: Invalid or empty 'description' provided for update ID %d", id)
				return nil, errors.New("product description cannot be empty if provided for update")
			}
			validUpdates["description"] = description
		case "category":
			category, ok := value.(string)
			if !ok || !domain.IsValidCategory(domain.Category(category)) {
				uc.log.Warnf("Use Case: Invalid 'category' provided for update ID %d: %v", id, value)
				return nil, fmt.Errorf("invalid category: %v", value)
			}
			validUpdates["category"] = category
		case "stockQuantity":
			var stock int
			var ok bool
			if stockFloat, okFloat := value.(float64); okFloat {
				stock = int(stockFloat)
				if float64(stock) != stockFloat {
					uc.log.Warnf("Use Case: Non-integer stock '%v' provided for update ID %d", value, id)
					return nil, errors.New("invalid type or precision for stock")
				}
				ok = true
			} else if stockInt, okInt := value.(int); okInt {
				stock = stockInt
				ok = true
			}
			if !ok || stock < 0 {
				uc.log.Warnf("Use Case: Invalid or negative 'stockQuantity' provided for update ID %d", id)
				return nil, errors.New("product stock cannot be negative if provided for update")
			}
			validUpdates["stock_quantity"] = stock
		default:
			uc.log.Warnf("Use Case: Attempted to update unknown or unsupported field '%s' for product ID %d", key, id)
		}
	}

	if len(validUpdates) == 0 {
		uc.log.Infof("Use Case: No valid fields remaining after validation for update ID %d", id)
		return uc.productRepo.GetProductByID(id)
	}

	uc.log.Infof("Use Case: Attempting partial update for product ID %d with fields: %v", id, validUpdates)
	updatedProduct, err := uc.productRepo.UpdateProduct(id, validUpdates)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed partial update for product ID %d: %v", id, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product updated successfully for ID %d", updatedProduct.ID)
	return updatedProduct, nil
}

func (uc *catalogUseCase) DeleteProduct(id int64) error {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted delete with invalid product ID: %d", id)
		return errors.New("invalid product ID for delete")
	}
	uc.log.Infof("Use Case: Attempting to delete product ID %d", id)
	if err := uc.productRepo.DeleteProduct(id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete product ID %d: %v", id, err)
		return err
	}
	uc.log.Infof("Use Case: Product deleted successfully for ID %d", id)
	return nil
}
