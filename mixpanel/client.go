package mixpanel

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://mixpanel.com"

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client performs export API report requests.
type Client struct {
	rest *resty.Client
}

func NewClient(config *ClientConfig) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	rest := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(config.Timeout)

	return &Client{rest}
}

// Get requests the endpoint with an already signed and encoded query string
// and returns the raw response body.
// Errors never contain the request url, as it carries the signature.
func (c *Client) Get(ctx context.Context, endpoint Endpoint, queryString string) ([]byte, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		Get(endpoint.Path() + "?" + queryString)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}

		return nil, fmt.Errorf("%w: %s request failed: %s", ErrTransport, endpoint, err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s responded %s", ErrTransport, endpoint, resp.Status())
	}

	return resp.Body(), nil
}
