package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresOrderRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresOrderRepository(db *sql.DB, logger *logrus.Logger) domain.OrderRepository {
	return &postgresOrderRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresOrderRepository) CreateOrder(order *domain.Order) (created *domain.Order, err error) {
	tx, txErr := r.db.Begin()
	if txErr != nil {
		r.log.Errorf("Failed to begin transaction: %v", txErr)
		return nil, fmt.Errorf("could not start transaction: %w", txErr)
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Recovered from panic, rolling back transaction")
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			r.log.Warnf("Rolling back transaction due to error: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Failed to rollback transaction: %v", rbErr)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				r.log.Errorf("Failed to commit transaction: %v", cErr)
				created = nil
				err = fmt.Errorf("failed to commit transaction: %w", cErr)
			}
		}
	}()

	orderQuery := `
        INSERT INTO orders (customer_name, customer_email, customer_address, customer_city, customer_postal_code, total_amount, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, status, created_at, updated_at
    `
	err = tx.QueryRow(orderQuery,
		order.CustomerInfo.Name,
		order.CustomerInfo.Email,
		order.CustomerInfo.Address,
		order.CustomerInfo.City,
		order.CustomerInfo.PostalCode,
		order.TotalAmount,
		order.Status,
	).Scan(
		&order.ID,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		r.log.Errorf("Failed to insert order for customer %s: %v", order.CustomerInfo.Email, err)
		return nil, fmt.Errorf("could not create order entry: %w", err)
	}
	r.log.Infof("Order entry created with ID: %d for customer: %s", order.ID, order.CustomerInfo.Email)

	itemQuery := `
        INSERT INTO order_items (order_id, product_id, name, price, quantity, image)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	stmt, prepErr := tx.Prepare(itemQuery)
	if prepErr != nil {
		r.log.Errorf("Failed to prepare order item statement: %v", prepErr)
		err = fmt.Errorf("could not prepare item statement: %w", prepErr)
		return nil, err
	}
	defer stmt.Close()

	for i := range order.Items {
		item := &order.Items[i]
		_, err = stmt.Exec(order.ID, item.ProductID, item.Name, item.Price, item.Quantity, item.Image)
		if err != nil {
			r.log.Errorf("Failed to insert order item (product_id: %d, quantity: %d) for order %d: %v",
				item.ProductID, item.Quantity, order.ID, err)
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" {
				err = fmt.Errorf("invalid item data (product_id: %d): %s", item.ProductID, pqErr.Message)
				return nil, err
			}
			err = fmt.Errorf("could not create order item (product_id: %d): %w", item.ProductID, err)
			return nil, err
		}
	}

	r.log.Infof("Order %d created successfully with %d items.", order.ID, len(order.Items))
	return order, nil
}

const orderColumns = "id, customer_name, customer_email, customer_address, customer_city, customer_postal_code, total_amount, status, created_at, updated_at"

func scanOrder(row interface{ Scan(...interface{}) error }, o *domain.Order) error {
	return row.Scan(
		&o.ID,
		&o.CustomerInfo.Name,
		&o.CustomerInfo.Email,
		&o.CustomerInfo.Address,
		&o.CustomerInfo.City,
		&o.CustomerInfo.PostalCode,
		&o.TotalAmount,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

func (r *postgresOrderRepository) GetOrderByID(id int64) (*domain.Order, error) {
	order := &domain.Order{}
	orderQuery := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE id = $1
    `
	err := scanOrder(r.db.QueryRow(orderQuery, id), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %d not found", id)
			return nil, fmt.Errorf("order with id %d not found", id)
		}
		r.log.Errorf("Failed to get order by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}

	items, err := r.getOrderItems(id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	r.log.Infof("Order %d retrieved successfully with %d items.", order.ID, len(order.Items))
	return order, nil
}

func (r *postgresOrderRepository) getOrderItems(orderID int64) ([]domain.OrderItem, error) {
	itemsQuery := `
        SELECT product_id, name, price, quantity, image
        FROM order_items
        WHERE order_id = $1
        ORDER BY id ASC
    `
	rows, err := r.db.Query(itemsQuery, orderID)
	if err != nil {
		r.log.Errorf("Failed to query order items for order ID %d: %v", orderID, err)
		return nil, fmt.Errorf("could not retrieve order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Price, &item.Quantity, &item.Image); err != nil {
			r.log.Errorf("Failed to scan order item row for order ID %d: %v", orderID, err)
			return nil, fmt.Errorf("error scanning order item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during order items iteration for order ID %d: %v", orderID, err)
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func (r *postgresOrderRepository) ListOrders() ([]domain.Order, error) {
	ordersQuery := `
        SELECT ` + orderColumns + `
        FROM orders
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ordersQuery)
	if err != nil {
		r.log.Errorf("Failed to list orders: %v", err)
		return nil, fmt.Errorf("could not retrieve orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	orderIDs := []int64{}

	for rows.Next() {
		var order domain.Order
		if err := scanOrder(rows, &order); err != nil {
			r.log.Errorf("Failed to scan order row: %v", err)
			return nil, fmt.Errorf("error scanning order data: %w", err)
		}
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.ID)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during orders iteration: %v", err)
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(orders) == 0 {
		return []domain.Order{}, nil
	}

	itemsQuery := `
        SELECT order_id, product_id, name, price, quantity, image
        FROM order_items
        WHERE order_id = ANY($1::bigint[])
        ORDER BY order_id, id
    `
	itemRows, err := r.db.Query(itemsQuery, pq.Array(orderIDs))
	if err != nil {
		r.log.Errorf("Failed to query items for multiple orders (%v): %v", orderIDs, err)
		return nil, fmt.Errorf("could not retrieve order items for list: %w", err)
	}
	defer itemRows.Close()

	itemsMap := make(map[int64][]domain.OrderItem)
	for itemRows.Next() {
		var item domain.OrderItem
		var orderID int64
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Name, &item.Price, &item.Quantity, &item.Image); err != nil {
			r.log.Errorf("Failed to scan order item row during multi-order fetch: %v", err)
			return nil, fmt.Errorf("error scanning order item data for list: %w", err)
		}
		itemsMap[orderID] = append(itemsMap[orderID], item)
	}
	if err = itemRows.Err(); err != nil {
		r.log.Errorf("Error during multi-order items iteration: %v", err)
		return nil, fmt.Errorf("error iterating order items for list: %w", err)
	}

	for i := range orders {
		if items, ok := itemsMap[orders[i].ID]; ok {
			orders[i].Items = items
		} else {
			orders[i].Items = []domain.OrderItem{}
		}
	}

	r.log.Infof("Retrieved %d orders", len(orders))
	return orders, nil
}

func (r *postgresOrderRepository) UpdateOrderStatus(id int64, status domain.OrderStatus) (*domain.Order, error) {
	query := `
        UPDATE orders
        SET status = $1, updated_at = NOW()
        WHERE id = $2
        RETURNING ` + orderColumns + `
    `
	updatedOrder := &domain.Order{}

	err := scanOrder(r.db.QueryRow(query, status, id), updatedOrder)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %d not found for status update", id)
			return nil, fmt.Errorf("order with id %d not found for update", id)
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" {
			r.log.Warnf("Invalid status value '%s' for order ID %d: %v", status, id, err)
			return nil, fmt.Errorf("invalid order status provided: %s", status)
		}
		r.log.Errorf("Failed to update status for order ID %d: %v", id, err)
		return nil, fmt.Errorf("could not update order status: %w", err)
	}

	items, err := r.getOrderItems(id)
	if err != nil {
		return nil, fmt.Errorf("order status updated, but failed to retrieve items: %w", err)
	}
	updatedOrder.Items = items

	r.log.Infof("Status updated successfully for order %d to '%s'.", updatedOrder.ID, updatedOrder.Status)
	return updatedOrder, nil
}

func (r *postgresOrderRepository) DeleteOrder(id int64) error {
	// order_items rows go away via ON DELETE CASCADE
	query := `DELETE FROM orders WHERE id = $1`
	result, err := r.db.Exec(query, id)
	if err != nil {
		r.log.Errorf("Failed to delete order ID %d: %v", id, err)
		return fmt.Errorf("could not delete order: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to get rows affected after deleting order ID %d: %v", id, err)
		return fmt.Errorf("could not confirm order deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Attempted to delete non-existent order ID %d", id)
		return fmt.Errorf("order with id %d not found for deletion", id)
	}
	r.log.Infof("Order deleted successfully with ID: %d", id)
	return nil
}
