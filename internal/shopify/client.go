// Package shopify is a minimal read client for the Shopify admin REST API.
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"

	"github.com/Porky3112/shopify-webhook/internal/domain/order"
)

// Config identifies one store on the admin API.
type Config struct {
	// Domain is the shop domain, e.g. "cshop.co" or "cshop.myshopify.com".
	Domain string
	// AccessToken is the static per-store admin token.
	AccessToken string
	// APIVersion selects the versioned endpoint path, e.g. "2023-10".
	APIVersion string
	// BaseURL overrides "https://<Domain>" when set. Used in tests.
	BaseURL string
}

// RequestError reports a failed order fetch: either a non-2xx admin API
// response (Status set) or a transport/decoding failure (wrapped in Err).
type RequestError struct {
	Status int
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("shopify: order request failed with status %d", e.Status)
	}
	return fmt.Sprintf("shopify: order request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Client fetches orders from a single store. Safe to reuse across requests.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a Client. A nil httpClient gets a 30 second timeout
// default; pass an instrumented client to trace outbound calls.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient}
}

// FetchOrder reads one order by id. A single attempt, no retries: any
// failure surfaces immediately as a *RequestError.
func (c *Client) FetchOrder(ctx context.Context, id string) (*order.Order, error) {
	base := c.cfg.BaseURL
	if base == "" {
		base = "https://" + c.cfg.Domain
	}
	endpoint := fmt.Sprintf("%s/admin/api/%s/orders/%s.json", base, c.cfg.APIVersion, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &RequestError{Err: errors.Wrap(err, "build request")}
	}
	req.Header.Set("X-Shopify-Access-Token", c.cfg.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{Status: resp.StatusCode}
	}

	var payload struct {
		Order *order.Order `json:"order"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &RequestError{Err: errors.Wrap(err, "decode body")}
	}
	if payload.Order == nil {
		return nil, &RequestError{Err: errors.New("response has no order object")}
	}
	return payload.Order, nil
}
