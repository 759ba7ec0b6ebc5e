package flightapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Domenick1991/skyresults/internal/domain"
)

// Client queries an aviationstack-style /flights endpoint.
type Client struct {
	BaseURL   string
	AccessKey string
	HTTP      *http.Client
	Timeout   time.Duration
	Retries   int
	Backoff   time.Duration
}

type flightsResponse struct {
	Data  []domain.FlightRecord `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Query(ctx context.Context, origin, destination string) ([]domain.FlightRecord, error) {
	endpoint := buildFlightsURL(c.baseURL(), c.AccessKey, origin, destination)

	var payload flightsResponse
	if err := c.fetchWithRetry(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	if payload.Error != nil {
		return nil, classifyAPIError(payload.Error.Code, payload.Error.Message)
	}
	return payload.Data, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, endpoint string, out *flightsResponse) error {
	attempts := c.resolvedRetries() + 1
	for attempt := 0; attempt < attempts; attempt++ {
		err := c.fetchOnce(ctx, endpoint, out)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isRetryable(err) || attempt == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay(attempt)):
		}
	}
	return fmt.Errorf("%w: exhausted retries", ErrTransient)
}

func (c *Client) fetchOnce(ctx context.Context, endpoint string, out *flightsResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client().Do(req)
	if err != nil {
		if isNetworkTransient(err) {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return fmt.Errorf("flight api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		msg := strings.TrimSpace(string(body))
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: %s: %s", ErrAuthRequired, resp.Status, msg)
		case resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s: %s", ErrRateLimited, resp.Status, msg)
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: %s: %s", ErrTransient, resp.Status, msg)
		default:
			return fmt.Errorf("flight api request failed: %s: %s", resp.Status, msg)
		}
	}

	*out = flightsResponse{}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode flight api response: %w", err)
	}
	return nil
}

func classifyAPIError(code, message string) error {
	switch code {
	case "invalid_access_key", "missing_access_key", "inactive_user":
		return fmt.Errorf("%w: %s", ErrAuthRequired, message)
	case "usage_limit_reached", "rate_limit_reached":
		return fmt.Errorf("%w: %s", ErrRateLimited, message)
	default:
		return fmt.Errorf("flight api error %s: %s", code, message)
	}
}

func isRetryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrRateLimited)
}

func isNetworkTransient(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (c *Client) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: c.resolvedTimeout()}
}

func (c *Client) resolvedTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 10 * time.Second
}

func (c *Client) resolvedRetries() int {
	if c.Retries < 0 {
		return 0
	}
	return c.Retries
}

func (c *Client) retryDelay(attempt int) time.Duration {
	base := c.Backoff
	if base <= 0 {
		base = 300 * time.Millisecond
	}
	if attempt > 5 {
		attempt = 5
	}
	return base * time.Duration(1<<attempt)
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return "https://api.aviationstack.com/v1"
}

func buildFlightsURL(baseURL, accessKey, origin, destination string) string {
	v := url.Values{}
	if accessKey != "" {
		v.Set("access_key", accessKey)
	}
	v.Set("dep_iata", origin)
	v.Set("arr_iata", destination)
	return strings.TrimRight(baseURL, "/") + "/flights?" + v.Encode()
}
