package pixel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"proofpop/internal/api"
)

const DefaultBaseURL = "https://api.proofpop.io"

// Client talks to the backend endpoints the pixel depends on.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// FetchBatch loads every active widget of the site with its notifications.
func (c *Client) FetchBatch(ctx context.Context, siteID string, limit int) (*api.BatchResponse, error) {
	q := url.Values{}
	q.Set("site_id", siteID)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/widgets/batch?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var result api.BatchResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("batch endpoint reported failure for site %s", siteID)
	}
	return &result, nil
}

func (c *Client) Track(ctx context.Context, body api.TrackRequest) error {
	req, err := c.post(ctx, "/api/track", body)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) Verify(ctx context.Context, body api.VerifyRequest) (*api.VerifyResponse, error) {
	req, err := c.post(ctx, "/api/verify-pixel", body)
	if err != nil {
		return nil, err
	}

	var result api.VerifyResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, dst any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s returned status: %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}
