// Package gateway is the typed client for the remote system of record. The
// sync core only ever talks to the remote through this package; failures come
// back as apperror.RemoteError so the engine can tell auth problems from
// transient network ones.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"washpos/internal/apperror"
	"washpos/internal/dto"
	"washpos/internal/model"
)

// Gateway is the remote API surface the core consumes. All mutating calls are
// idempotent by client-generated id: retrying a create with the same id must
// not duplicate the record.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*dto.LoginResponse, error)
	Refresh(ctx context.Context) (string, error)
	Me(ctx context.Context) (*model.User, error)

	GetCustomers(ctx context.Context) ([]model.Customer, error)
	CreateCustomer(ctx context.Context, c *model.Customer) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, id string, c *model.Customer) (*model.Customer, error)

	GetSales(ctx context.Context) ([]model.Sale, error)
	CreateSale(ctx context.Context, s *model.Sale) (*model.Sale, error)

	DashboardStats(ctx context.Context) (*dto.DashboardStats, error)
}

// Client implements Gateway over HTTP/JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenStore) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

var _ Gateway = (*Client)(nil)

// do runs one JSON round-trip. A 401 clears the persisted token so the next
// attempt starts unauthenticated instead of replaying a dead credential.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("gateway: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperror.RemoteError{Kind: apperror.RemoteNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		_ = c.tokens.ClearToken(ctx)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apperror.RemoteError{
			Kind:   apperror.ClassifyStatus(resp.StatusCode),
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s %s returned %d", method, path, resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gateway: decode response: %w", err)
	}
	return nil
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func (c *Client) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	var resp dto.LoginResponse
	body := dto.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if err := c.tokens.SetToken(ctx, resp.Token); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Refresh(ctx context.Context) (string, error) {
	var resp dto.RefreshResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, &resp); err != nil {
		return "", err
	}
	if err := c.tokens.SetToken(ctx, resp.Token); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ── Customers ─────────────────────────────────────────────────────────────────

func (c *Client) GetCustomers(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	if err := c.do(ctx, http.MethodGet, "/customers", nil, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (c *Client) CreateCustomer(ctx context.Context, customer *model.Customer) (*model.Customer, error) {
	var created model.Customer
	if err := c.do(ctx, http.MethodPost, "/customers", customer, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, customer *model.Customer) (*model.Customer, error) {
	var updated model.Customer
	if err := c.do(ctx, http.MethodPut, "/customers/"+id, customer, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ── Sales ─────────────────────────────────────────────────────────────────────

func (c *Client) GetSales(ctx context.Context) ([]model.Sale, error) {
	var sales []model.Sale
	if err := c.do(ctx, http.MethodGet, "/sales", nil, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (c *Client) CreateSale(ctx context.Context, sale *model.Sale) (*model.Sale, error) {
	var created model.Sale
	if err := c.do(ctx, http.MethodPost, "/sales", sale, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ── Dashboard ─────────────────────────────────────────────────────────────────

func (c *Client) DashboardStats(ctx context.Context) (*dto.DashboardStats, error) {
	var stats dto.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
