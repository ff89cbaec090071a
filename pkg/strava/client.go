// Package strava is a minimal API client for the Strava v3 activity
// endpoints used by the webhook handler.
package strava

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oyvindhk/strava-retitler/pkg/infrastructure/httputil"
)

const defaultBaseURL = "https://www.strava.com/api/v3"

// callTimeout bounds every outbound activity call. A timeout surfaces as a
// transport failure, handled the same way as any other request failure.
const callTimeout = 15 * time.Second

// Client is an API client for Strava activities. Authentication is the
// transport's job (see oauth.Transport).
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Strava client using the given authenticating
// transport.
func NewClient(rt http.RoundTripper) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		client: &http.Client{
			Transport: rt,
			Timeout:   callTimeout,
		},
	}
}

// SetBaseURL overrides the API endpoint; used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// doRequest performs an HTTP request with an optional JSON body. Non-success
// statuses are returned as *httputil.HTTPError so callers can propagate the
// upstream status code.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}

	if err := httputil.ParseErrorResponse(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return resp, nil
}

// GetActivity retrieves a single activity by ID.
func (c *Client) GetActivity(ctx context.Context, activityID int64) (*Activity, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/activities/%d", activityID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var activity Activity
	if err := json.NewDecoder(resp.Body).Decode(&activity); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &activity, nil
}

// UpdateActivity rewrites an activity's name and description.
func (c *Client) UpdateActivity(ctx context.Context, activityID int64, update *ActivityUpdate) (*Activity, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/activities/%d", activityID), update)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var updated Activity
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &updated, nil
}
