// Package client is a typed HTTP client for the storefront REST surface,
// used by the cart CLI to browse the catalog and submit checkouts.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"storefront/internal/domain"
	"storefront/internal/usecase"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   int             `json:"count"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		return fmt.Errorf("server rejected %s %s (%d): %s", method, path, resp.StatusCode, msg)
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode data from %s: %w", path, err)
		}
	}
	return nil
}

// ProductQuery mirrors the catalog listing filters.
type ProductQuery struct {
	Search   string
	Category string
	MinPrice string
	MaxPrice string
	InStock  bool
}

func (c *Client) ListProducts(ctx context.Context, query ProductQuery) ([]domain.Product, error) {
	params := url.Values{}
	if query.Search != "" {
		params.Set("search", query.Search)
	}
	if query.Category != "" {
		params.Set("category", query.Category)
	}
	if query.MinPrice != "" {
		params.Set("minPrice", query.MinPrice)
	}
	if query.MaxPrice != "" {
		params.Set("maxPrice", query.MaxPrice)
	}
	if query.InStock {
		params.Set("inStock", "true")
	}

	path := "/api/products"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+strconv.FormatInt(id, 10), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.do(ctx, http.MethodGet, "/api/products/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

type createOrderRequest struct {
	Items        []usecase.OrderRequestItem `json:"items"`
	CustomerInfo domain.CustomerInfo        `json:"customerInfo"`
}

func (c *Client) CreateOrder(ctx context.Context, items []usecase.OrderRequestItem, customer domain.CustomerInfo) (*domain.Order, error) {
	var order domain.Order
	req := createOrderRequest{Items: items, CustomerInfo: customer}
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+strconv.FormatInt(id, 10), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
