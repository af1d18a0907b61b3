package delivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// memProductRepo is an in-memory stand-in for the Postgres repository with the
// same filtering and stock semantics.
type memProductRepo struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	nextID   int64
	clock    time.Time
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{
		products: make(map[int64]domain.Product),
		nextID:   1,
		clock:    time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func (r *memProductRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Minute)
	return r.clock
}

func (r *memProductRepo) seed(p domain.Product) domain.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
	} else if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.tick()
		p.UpdatedAt = p.CreatedAt
	}
	r.products[p.ID] = p
	return p
}

func (r *memProductRepo) CreateProduct(p *domain.Product) (*domain.Product, error) {
	created := r.seed(*p)
	return &created, nil
}

func (r *memProductRepo) GetProductByID(id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with id %d not found", id)
	}
	return &p, nil
}

func (r *memProductRepo) UpdateProduct(id int64, updates map[string]interface{}) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with id %d not found for update", id)
	}
	for key, value := range updates {
		switch key {
		case "name":
			p.Name = value.(string)
		case "price":
			p.Price = value.(float64)
		case "image":
			p.Image = value.(string)
		case "description":
			p.Description = value.(string)
		case "category":
			p.Category = domain.Category(value.(string))
		case "stock_quantity":
			p.StockQuantity = value.(int)
		}
	}
	p.UpdatedAt = r.tick()
	r.products[id] = p
	return &p, nil
}

func (r *memProductRepo) DeleteProduct(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with id %d not found for deletion", id)
	}
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) ListProducts(filter domain.ProductFilter) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []domain.Product{}
	for _, p := range r.products {
		if filter.Search != "" && !containsFold(p.Name, filter.Search) && !containsFold(p.Description, filter.Search) {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.MinPrice != nil && p.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
			continue
		}
		if filter.InStock && p.StockQuantity <= 0 {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (r *memProductRepo) DecrementStock(id int64, quantity int) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with id %d not found", id)
	}
	if p.StockQuantity < quantity {
		return nil, &domain.InsufficientStockError{ProductName: p.Name, Available: p.StockQuantity}
	}
	p.StockQuantity -= quantity
	r.products[id] = p
	return &p, nil
}

func (r *memProductRepo) ReserveStock(items []domain.StockReservation) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		p, ok := r.products[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("product with id %d not found", item.ProductID)
		}
		if p.StockQuantity < item.Quantity {
			return nil, &domain.InsufficientStockError{ProductName: p.Name, Available: p.StockQuantity}
		}
	}

	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		p := r.products[item.ProductID]
		products = append(products, p)
		p.StockQuantity -= item.Quantity
		r.products[item.ProductID] = p
	}
	return products, nil
}

func containsFold(haystack, needle string) bool {
	return len(needle) == 0 ||
		bytes.Contains(bytes.ToLower([]byte(haystack)), bytes.ToLower([]byte(needle)))
}

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[int64]domain.Order
	nextID int64
	clock  time.Time
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders: make(map[int64]domain.Order),
		nextID: 1,
		clock:  time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func (r *memOrderRepo) CreateOrder(o *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.nextID
	r.nextID++
	r.clock = r.clock.Add(time.Minute)
	o.CreatedAt = r.clock
	o.UpdatedAt = r.clock
	r.orders[o.ID] = *o
	return o, nil
}

func (r *memOrderRepo) GetOrderByID(id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with id %d not found", id)
	}
	return &o, nil
}

func (r *memOrderRepo) ListOrders() ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	orders := []domain.Order{}
	for _, o := range r.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *memOrderRepo) UpdateOrderStatus(id int64, status domain.OrderStatus) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with id %d not found for update", id)
	}
	o.Status = status
	r.orders[id] = o
	return &o, nil
}

func (r *memOrderRepo) DeleteOrder(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return fmt.Errorf("order with id %d not found for deletion", id)
	}
	delete(r.orders, id)
	return nil
}

// testServer wires the full HTTP surface over in-memory repositories.
type testServer struct {
	router      *gin.Engine
	productRepo *memProductRepo
	orderRepo   *memOrderRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := testLogger()

	productRepo := newMemProductRepo()
	orderRepo := newMemOrderRepo()

	catalogUC := usecase.NewCatalogUseCase(productRepo, logger)
	orderUC := usecase.NewOrderUseCase(orderRepo, productRepo, true, logger)
	auth, err := usecase.NewAdminAuthenticator("admin", "admin123", time.Hour, logger)
	require.NoError(t, err)

	router := gin.New()
	api := router.Group("/api")
	NewProductHandler(catalogUC, logger).RegisterRoutes(api)
	NewOrderHandler(orderUC, logger).RegisterRoutes(api)
	NewAdminHandler(catalogUC, orderUC, auth, logger).RegisterRoutes(api, AdminAuthMiddleware(auth, logger))

	return &testServer{
		router:      router,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Token   string          `json:"token"`
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "response body: %s", rec.Body.String())
	return rec.Code, env
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/admin/login", gin.H{"username": "admin", "password": "admin123"}, "")
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, env.Token)
	return env.Token
}

func bookProduct(name string, price float64, stock int) domain.Product {
	return domain.Product{
		Name:          name,
		Price:         price,
		Image:         "/images/" + name + ".jpg",
		Description:   name + " description",
		Category:      domain.CategoryBooks,
		StockQuantity: stock,
	}
}
