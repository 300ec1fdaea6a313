// Package catalogclient talks to the catalog HTTP API.
package catalogclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ProductCatalog/internal/catalog"
)

const headerAPIKey = "X-API-Key"

var (
	ErrNotFound    = errors.New("catalog product not found")
	ErrConflict    = errors.New("catalog product already exists")
	ErrInvalid     = errors.New("catalog rejected request")
	ErrBusy        = errors.New("catalog busy")
	ErrUnavailable = errors.New("catalog unavailable")
	ErrBadStatus   = errors.New("catalog bad status")
)

type Client struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func New(baseURL, apiKey string) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Add(ctx context.Context, in catalog.NewProduct) (catalog.Product, error) {
	var p catalog.Product
	err := c.do(ctx, http.MethodPost, "/products", in, &p, http.StatusCreated)
	return p, err
}

func (c *Client) Get(ctx context.Context, sku string) (catalog.Product, error) {
	var p catalog.Product
	err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(sku), nil, &p, http.StatusOK)
	return p, err
}

func (c *Client) List(ctx context.Context) ([]catalog.Product, error) {
	var ps []catalog.Product
	err := c.do(ctx, http.MethodGet, "/products", nil, &ps, http.StatusOK)
	return ps, err
}

func (c *Client) Edit(ctx context.Context, sku string, patch catalog.ProductPatch) (catalog.Product, error) {
	var p catalog.Product
	err := c.do(ctx, http.MethodPatch, "/products/"+url.PathEscape(sku), patch, &p, http.StatusOK)
	return p, err
}

func (c *Client) Remove(ctx context.Context, sku string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(sku), nil, nil, http.StatusNoContent)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, want int) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set(headerAPIKey, c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		_, _ = io.Copy(io.Discard, resp.Body)
		return statusError(resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func statusError(code int) error {
	switch code {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusBadRequest:
		return ErrInvalid
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		return fmt.Errorf("%w: status=%d", ErrBusy, code)
	default:
		return fmt.Errorf("%w: status=%d", ErrBadStatus, code)
	}
}
