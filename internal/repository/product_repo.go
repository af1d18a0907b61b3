package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresProductRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

const productColumns = "id, name, price, image, description, category, stock_quantity, created_at, updated_at"

func scanProduct(row interface{ Scan(...interface{}) error }, p *domain.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Image,
		&p.Description,
		&p.Category,
		&p.StockQuantity,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *postgresProductRepository) CreateProduct(product *domain.Product) (*domain.Product, error) {
	query := `
        INSERT INTO products (name, price, image, description, category, stock_quantity)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(query,
		product.Name,
		product.Price,
		product.Image,
		product.Description,
		product.Category,
		product.StockQuantity,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" {
			r.log.Warnf("Check constraint violation for product '%s': %s", product.Name, pqErr.Message)
			return nil, fmt.Errorf("product data constraint violation: %s", pqErr.Message)
		}
		r.log.Errorf("Failed to create product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}
	r.log.Infof("Product created successfully with ID: %d, Name: %s", product.ID, product.Name)
	return product, nil
}

func (r *postgresProductRepository) GetProductByID(id int64) (*domain.Product, error) {
	query := `
        SELECT ` + productColumns + `
        FROM products
        WHERE id = $1`
	product := &domain.Product{}

	err := scanProduct(r.db.QueryRow(query, id), product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Product with ID %d not found", id)
			return nil, fmt.Errorf("product with id %d not found", id)
		}
		r.log.Errorf("Failed to get product by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}

	return product, nil
}

func (r *postgresProductRepository) UpdateProduct(id int64, updates map[string]interface{}) (*domain.Product, error) {
	if len(updates) == 0 {
		return r.GetProductByID(id)
	}

	queryBase := "UPDATE products SET "
	args := []interface{}{}
	setClauses := []string{}
	argCounter := 1

	for key, value := range updates {
		switch key {
		case "name", "price", "image", "description", "category", "stock_quantity":
		default:
			r.log.Warnf("Repository: Skipping unknown field '%s' provided for product update ID %d", key, id)
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", key, argCounter))
		args = append(args, value)
		argCounter++
	}

	if len(setClauses) == 0 {
		r.log.Warnf("Repository: No valid known fields provided for product update ID %d. Returning current product.", id)
		return r.GetProductByID(id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	query := queryBase + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE id = $%d", argCounter)
	args = append(args, id)

	r.log.Debugf("Repository: Executing partial update query for ID %d: %s", id, query)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" {
			r.log.Warnf("Repository: Check constraint violation for product update ID %d: %s", id, pqErr.Message)
			return nil, fmt.Errorf("product data constraint violation: %s", pqErr.Message)
		}
		r.log.Errorf("Repository: Failed to execute partial update for product ID %d: %v", id, err)
		return nil, fmt.Errorf("could not partially update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Repository: Failed to get rows affected after partial update for ID %d: %v", id, err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Repository: Product with ID %d not found for update (0 rows affected)", id)
		return nil, fmt.Errorf("product with id %d not found for update", id)
	}

	r.log.Infof("Repository: Partial update successful for product ID %d. Fetching updated product.", id)
	return r.GetProductByID(id)
}

func (r *postgresProductRepository) DeleteProduct(id int64) error {
	query := `DELETE FROM products WHERE id = $1`
	result, err := r.db.Exec(query, id)
	if err != nil {
		r.log.Errorf("Failed to delete product ID %d: %v", id, err)
		return fmt.Errorf("could not delete product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to get rows affected after deleting product ID %d: %v", id, err)
		return fmt.Errorf("could not confirm product deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Attempted to delete non-existent product ID %d", id)
		return fmt.Errorf("product with id %d not found for deletion", id)
	}
	r.log.Infof("Product deleted successfully with ID: %d", id)
	return nil
}

func (r *postgresProductRepository) ListProducts(filter domain.ProductFilter) ([]domain.Product, error) {
	query := `
        SELECT ` + productColumns + `
        FROM products`
	args := []interface{}{}
	whereClauses := []string{}
	argCounter := 1

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		whereClauses = append(whereClauses,
			fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argCounter, argCounter))
		args = append(args, pattern)
		argCounter++
	}
	if filter.Category != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("category = $%d", argCounter))
		args = append(args, filter.Category)
		argCounter++
	}
	if filter.MinPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("price >= $%d", argCounter))
		args = append(args, *filter.MinPrice)
		argCounter++
	}
	if filter.MaxPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("price <= $%d", argCounter))
		args = append(args, *filter.MaxPrice)
		argCounter++
	}
	if filter.InStock {
		whereClauses = append(whereClauses, "stock_quantity > 0")
	}

	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.log.Errorf("Failed to list products with filter %+v: %v", filter, err)
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var product domain.Product
		if err := scanProduct(rows, &product); err != nil {
			r.log.Errorf("Failed to scan product row: %v", err)
			return nil, fmt.Errorf("error scanning product data: %w", err)
		}
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during products list iteration: %v", err)
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	r.log.Infof("Retrieved %d products", len(products))
	return products, nil
}

func (r *postgresProductRepository) DecrementStock(id int64, quantity int) (*domain.Product, error) {
	query := `
        UPDATE products
        SET stock_quantity = stock_quantity - $1, updated_at = NOW()
        WHERE id = $2 AND stock_quantity >= $1
        RETURNING ` + productColumns
	product := &domain.Product{}

	err := scanProduct(r.db.QueryRow(query, quantity, id), product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Distinguish a missing product from a stock shortfall.
			current, getErr := r.GetProductByID(id)
			if getErr != nil {
				return nil, getErr
			}
			r.log.Warnf("Insufficient stock for product ID %d (requested: %d, available: %d)",
				id, quantity, current.StockQuantity)
			return nil, &domain.InsufficientStockError{
				ProductName: current.Name,
				Available:   current.StockQuantity,
			}
		}
		r.log.Errorf("Failed to decrement stock for product ID %d: %v", id, err)
		return nil, fmt.Errorf("could not decrement stock: %w", err)
	}

	r.log.Infof("Stock decremented by %d for product ID %d (remaining: %d)", quantity, id, product.StockQuantity)
	return product, nil
}

// ReserveStock locks every requested product row, verifies stock and applies
// all decrements inside a single transaction. The returned products carry the
// values read under lock, before the decrement, so callers can snapshot
// name/price/image for order line items.
func (r *postgresProductRepository) ReserveStock(items []domain.StockReservation) (products []domain.Product, err error) {
	tx, txErr := r.db.Begin()
	if txErr != nil {
		r.log.Errorf("Failed to begin reservation transaction: %v", txErr)
		return nil, fmt.Errorf("could not start transaction: %w", txErr)
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Recovered from panic, rolling back reservation")
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			r.log.Warnf("Rolling back reservation due to error: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Failed to rollback reservation: %v", rbErr)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				r.log.Errorf("Failed to commit reservation: %v", cErr)
				err = fmt.Errorf("failed to commit reservation: %w", cErr)
			}
		}
	}()

	selectQuery := `
        SELECT ` + productColumns + `
        FROM products
        WHERE id = $1
        FOR UPDATE`
	updateQuery := `
        UPDATE products
        SET stock_quantity = stock_quantity - $1, updated_at = NOW()
        WHERE id = $2`

	products = make([]domain.Product, 0, len(items))
	for _, item := range items {
		var product domain.Product
		err = scanProduct(tx.QueryRow(selectQuery, item.ProductID), &product)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				r.log.Warnf("Product with ID %d not found during reservation", item.ProductID)
				err = fmt.Errorf("product with id %d not found", item.ProductID)
				return nil, err
			}
			r.log.Errorf("Failed to lock product ID %d for reservation: %v", item.ProductID, err)
			err = fmt.Errorf("could not lock product %d: %w", item.ProductID, err)
			return nil, err
		}

		if product.StockQuantity < item.Quantity {
			r.log.Warnf("Insufficient stock for product ID %d during reservation (requested: %d, available: %d)",
				item.ProductID, item.Quantity, product.StockQuantity)
			err = &domain.InsufficientStockError{
				ProductName: product.Name,
				Available:   product.StockQuantity,
			}
			return nil, err
		}

		if _, err = tx.Exec(updateQuery, item.Quantity, item.ProductID); err != nil {
			r.log.Errorf("Failed to decrement stock for product ID %d in reservation: %v", item.ProductID, err)
			err = fmt.Errorf("could not decrement stock for product %d: %w", item.ProductID, err)
			return nil, err
		}

		products = append(products, product)
	}

	r.log.Infof("Reserved stock for %d products", len(products))
	return products, err
}
