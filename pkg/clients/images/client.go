package images

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client exposes product image retrieval from supplier websites.
type Client interface {
	FetchBase64(ctx context.Context, url string) (string, error)
}

// HTTPClient is a resty-backed implementation of Client.
type HTTPClient struct {
	httpClient *resty.Client
}

// NewClient builds an image client with the given request timeout.
func NewClient(timeout time.Duration) *HTTPClient {
	restyClient := resty.New()
	restyClient.SetTimeout(timeout)

	return &HTTPClient{httpClient: restyClient}
}

// FetchBase64 downloads the image at url and returns its body base64-encoded,
// ready for the Odoo image field.
func (c *HTTPClient) FetchBase64(ctx context.Context, url string) (string, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch image %s: %w", url, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return "", fmt.Errorf("fetch image %s: status=%d", url, resp.StatusCode())
	}

	return base64.StdEncoding.EncodeToString(resp.Body()), nil
}
