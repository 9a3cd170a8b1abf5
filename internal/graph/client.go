// Package graph uploads invoice documents to OneDrive via the Microsoft
// Graph API using the OAuth2 client-credentials flow.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/go-faster/errors"

	"github.com/Porky3112/shopify-webhook/internal/invoice"
)

const (
	defaultLoginBaseURL = "https://login.microsoftonline.com"
	defaultGraphBaseURL = "https://graph.microsoft.com/v1.0"

	graphScope = "https://graph.microsoft.com/.default"
)

// Credentials is the application registration used for the token exchange.
type Credentials struct {
	ClientID     string
	ClientSecret string
	TenantID     string
}

// Complete reports whether every credential field is set. Uploads are
// skipped, not failed, when credentials are partial.
func (c Credentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.TenantID != ""
}

// AuthError reports a failed token exchange.
type AuthError struct {
	Status int
	Err    error
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("graph: token exchange failed with status %d", e.Status)
	}
	return fmt.Sprintf("graph: token exchange failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// UploadError reports a failed drive upload.
type UploadError struct {
	Status int
	Err    error
}

func (e *UploadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("graph: upload failed with status %d", e.Status)
	}
	return fmt.Sprintf("graph: upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// Client exchanges credentials for a bearer token and uploads files to the
// drive root. The token is cached on the instance with no expiry check; a
// stale token is detected on the next upload and refreshed once.
type Client struct {
	creds Credentials
	http  *http.Client

	loginBaseURL string
	graphBaseURL string

	token string
}

// Option customizes a Client. Base URL options exist for tests.
type Option func(*Client)

// WithLoginBaseURL overrides the OAuth token endpoint base.
func WithLoginBaseURL(u string) Option { return func(c *Client) { c.loginBaseURL = u } }

// WithGraphBaseURL overrides the Graph API base.
func WithGraphBaseURL(u string) Option { return func(c *Client) { c.graphBaseURL = u } }

// NewClient creates a Client. A nil httpClient gets a 60 second timeout
// default, sized for full-document uploads.
func NewClient(creds Credentials, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	c := &Client{
		creds:        creds,
		http:         httpClient,
		loginBaseURL: defaultLoginBaseURL,
		graphBaseURL: defaultGraphBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the client holds a complete credential set.
func (c *Client) Configured() bool { return c.creds.Complete() }

// AccessToken performs the client-credentials exchange and caches the token
// for later uploads within the same process.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.loginBaseURL, url.PathEscape(c.creds.TenantID))

	form := url.Values{
		"client_id":     {c.creds.ClientID},
		"client_secret": {c.creds.ClientSecret},
		"scope":         {graphScope},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", &AuthError{Err: errors.Wrap(err, "build request")}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &AuthError{Status: resp.StatusCode}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", &AuthError{Err: errors.Wrap(err, "decode token response")}
	}
	if payload.AccessToken == "" {
		return "", &AuthError{Err: errors.New("response has no access token")}
	}

	c.token = payload.AccessToken
	return c.token, nil
}

// Upload reads filePath and stores it under the drive root as
// "<filename>.pdf". A token is acquired lazily when none is cached; a 401
// drops the cached token and retries once with a fresh one.
func (c *Client) Upload(ctx context.Context, filePath, filename string) (*invoice.UploadResult, error) {
	if c.token == "" {
		if _, err := c.AccessToken(ctx); err != nil {
			return nil, err
		}
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &UploadError{Err: errors.Wrap(err, "read document")}
	}

	result, status, err := c.put(ctx, filename, content)
	if status == http.StatusUnauthorized {
		c.token = ""
		if _, err := c.AccessToken(ctx); err != nil {
			return nil, err
		}
		result, status, err = c.put(ctx, filename, content)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// put performs a single upload attempt.
func (c *Client) put(ctx context.Context, filename string, content []byte) (*invoice.UploadResult, int, error) {
	endpoint := fmt.Sprintf("%s/me/drive/root:/%s.pdf:/content", c.graphBaseURL, url.PathEscape(filename))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(content))
	if err != nil {
		return nil, 0, &UploadError{Err: errors.Wrap(err, "build request")}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &UploadError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused on the retry path.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil, resp.StatusCode, &UploadError{Status: resp.StatusCode}
	}

	var payload struct {
		ID          string `json:"id"`
		WebURL      string `json:"webUrl"`
		DownloadURL string `json:"@microsoft.graph.downloadUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, resp.StatusCode, &UploadError{Err: errors.Wrap(err, "decode body")}
	}

	return &invoice.UploadResult{
		DocumentID:  payload.ID,
		WebURL:      payload.WebURL,
		DownloadURL: payload.DownloadURL,
	}, resp.StatusCode, nil
}
