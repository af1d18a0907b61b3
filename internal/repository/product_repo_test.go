package repository

import (
	"io"
	"regexp"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var productCols = []string{"id", "name", "price", "image", "description", "category", "stock_quantity", "created_at", "updated_at"}

func productRow(mock sqlmock.Sqlmock, p domain.Product) *sqlmock.Rows {
	return mock.NewRows(productCols).AddRow(
		p.ID, p.Name, p.Price, p.Image, p.Description, p.Category, p.StockQuantity, p.CreatedAt, p.UpdatedAt,
	)
}

func sampleProduct() domain.Product {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	return domain.Product{
		ID:            1,
		Name:          "Gopher Plush",
		Price:         19.99,
		Image:         "/images/gopher.jpg",
		Description:   "A plush gopher",
		Category:      domain.CategoryPets,
		StockQuantity: 5,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestCreateProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresProductRepository(db, testLogger())

	p := sampleProduct()
	p.ID = 0
	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO products (name, price, image, description, category, stock_quantity) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at")).
		WithArgs(p.Name, p.Price, p.Image, p.Description, p.Category, p.StockQuantity).
		WillReturnRows(mock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), p.CreatedAt, p.UpdatedAt))

	created, err := repo.CreateProduct(&p)
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresProductRepository(db, testLogger())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price, image, description, category, stock_quantity, created_at, updated_at FROM products WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(mock.NewRows(productCols))

	_, err = repo.GetProductByID(42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product with id 42 not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProductsBuildsFilterClauses(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresProductRepository(db, testLogger())

	minPrice := 5.0
	maxPrice := 50.0
	p := sampleProduct()

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, name, price, image, description, category, stock_quantity, created_at, updated_at FROM products"+
			" WHERE (name ILIKE $1 OR description ILIKE $1) AND category = $2 AND price >= $3 AND price <= $4 AND stock_quantity > 0"+
			" ORDER BY created_at DESC")).
		WithArgs("%gopher%", domain.CategoryPets, minPrice, maxPrice).
		WillReturnRows(productRow(mock, p))

	products, err := repo.ListProducts(domain.ProductFilter{
		Search:   "gopher",
		Category: domain.CategoryPets,
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		InStock:  true,
	})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, p.Name, products[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProductsNoFilterHasNoWhere(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresProductRepository(db, testLogger())

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, name, price, image, description, category, stock_quantity, created_at, updated_at FROM products ORDER BY created_at DESC")).
		WillReturnRows(mock.NewRows(productCols))

	products, err := repo.ListProducts(domain.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NotNil(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductSingleField(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresProductRepository(db, testLogger())

	p := sampleProduct()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET price = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(12.5, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price, image, description, category, stock_quantity, created_at, updated_at FROM products WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(productRow(mock, p))

	updated, err := repo.UpdateProduct(1, map[string]interface{}{"price": 12.5})
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresProductRepository(db, testLogger())

	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET price = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(12.5, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = repo.UpdateProduct(9, map[string]interface{}{"price": 12.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found for update")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProductNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresProductRepository(db, testLogger())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.DeleteProduct(3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found for deletion")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStockHappyPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresProductRepository(db, testLogger())

	p := sampleProduct()
	p.StockQuantity = 3
	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW() WHERE id = $2 AND stock_quantity >= $1 RETURNING id, name, price, image, description, category, stock_quantity, created_at, updated_at")).
		WithArgs(2, int64(1)).
		WillReturnRows(productRow(mock, p))

	updated, err := repo.DecrementStock(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.StockQuantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStockInsufficientReportsAvailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresProductRepository(db, testLogger())

	// Guarded update matches no row, then the follow-up read shows why.
	p := sampleProduct()
	p.StockQuantity = 1
	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW() WHERE id = $2 AND stock_quantity >= $1")).
		WithArgs(4, int64(1)).
		WillReturnRows(mock.NewRows(productCols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price, image, description, category, stock_quantity, created_at, updated_at FROM products WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(productRow(mock, p))

	_, err = repo.DecrementStock(1, 4)
	require.Error(t, err)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Gopher Plush", stockErr.ProductName)
	assert.Equal(t, 1, stockErr.Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStockMissingProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresProductRepository(db, testLogger())

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW() WHERE id = $2 AND stock_quantity >= $1")).
		WithArgs(1, int64(77)).
		WillReturnRows(mock.NewRows(productCols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price, image, description, category, stock_quantity, created_at, updated_at FROM products WHERE id = $1")).
		WithArgs(int64(77)).
		WillReturnRows(mock.NewRows(productCols))

	_, err = repo.DecrementStock(77, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product with id 77 not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveStockCommitsAllDecrements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresProductRepository(db, testLogger())

	a := sampleProduct()
	b := sampleProduct()
	b.ID = 2
	b.Name = "Go Mug"
	b.StockQuantity = 8

	selectForUpdate := regexp.QuoteMeta(
		"SELECT id, name, price, image, description, category, stock_quantity, created_at, updated_at FROM products WHERE id = $1 FOR UPDATE")
	decrement := regexp.QuoteMeta(
		"UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW() WHERE id = $2")

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).WithArgs(int64(1)).WillReturnRows(productRow(mock, a))
	mock.ExpectExec(decrement).WithArgs(3, int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectForUpdate).WithArgs(int64(2)).WillReturnRows(productRow(mock, b))
	mock.ExpectExec(decrement).WithArgs(2, int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	products, err := repo.ReserveStock([]domain.StockReservation{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, products, 2)

	// Returned snapshots carry the pre-decrement values read under lock.
	assert.Equal(t, 5, products[0].StockQuantity)
	assert.Equal(t, "Go Mug", products[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveStockRollsBackOnInsufficientStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresProductRepository(db, testLogger())

	a := sampleProduct()
	short := sampleProduct()
	short.ID = 2
	short.Name = "Go Mug"
	short.StockQuantity = 1

	selectForUpdate := regexp.QuoteMeta(
		"SELECT id, name, price, image, description, category, stock_quantity, created_at, updated_at FROM products WHERE id = $1 FOR UPDATE")
	decrement := regexp.QuoteMeta(
		"UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW() WHERE id = $2")

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).WithArgs(int64(1)).WillReturnRows(productRow(mock, a))
	mock.ExpectExec(decrement).WithArgs(2, int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectForUpdate).WithArgs(int64(2)).WillReturnRows(productRow(mock, short))
	mock.ExpectRollback()

	_, err = repo.ReserveStock([]domain.StockReservation{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 5},
	})
	require.Error(t, err)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Go Mug", stockErr.ProductName)
	assert.Equal(t, 1, stockErr.Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveStockRollsBackOnMissingProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresProductRepository(db, testLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, name, price, image, description, category, stock_quantity, created_at, updated_at FROM products WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(404)).
		WillReturnRows(mock.NewRows(productCols))
	mock.ExpectRollback()

	_, err = repo.ReserveStock([]domain.StockReservation{{ProductID: 404, Quantity: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product with id 404 not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
