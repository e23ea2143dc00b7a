package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Transport performs an authenticated GET and returns the raw response.
type Transport interface {
	Get(ctx context.Context, url string) (body []byte, statusCode int, err error)
}

// BasicAuthTransport sends the provider's key pair as HTTP Basic credentials.
type BasicAuthTransport struct {
	publicKey  string
	secretKey  string
	httpClient *http.Client
}

// NewBasicAuthTransport creates a BasicAuthTransport with the given timeout.
func NewBasicAuthTransport(publicKey, secretKey string, timeout time.Duration) *BasicAuthTransport {
	return &BasicAuthTransport{
		publicKey: publicKey,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get implements Transport.
func (t *BasicAuthTransport) Get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(t.publicKey, t.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
