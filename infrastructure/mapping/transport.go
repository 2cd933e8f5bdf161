package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Transport handles low-level HTTP and the API key
type Transport struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewTransport creates a transport with base URL and key
func NewTransport(baseURL, apiKey string, timeout time.Duration) *Transport {
	return &Transport{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// helper: build full URL with query params
func (t *Transport) buildURL(path string, query map[string]string) (string, error) {
	u, err := url.Parse(t.BaseURL + path)
	if err != nil {
		return "", fmt.Errorf("invalid url %s%s: %w", t.BaseURL, path, err)
	}
	q := u.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	if t.APIKey != "" {
		q.Set("key", t.APIKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// GetJSON sends a GET request and decodes the JSON body into out
func (t *Transport) GetJSON(ctx context.Context, path string, query map[string]string, out any) error {
	fullURL, err := t.buildURL(path, query)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("GET %s failed with status code %d: %s", path, resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s returned malformed JSON: %w", path, err)
	}
	return nil
}
