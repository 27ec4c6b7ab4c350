package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	defaultBaseURL = "http://localhost:3030"
	apiPrefix      = "/api"
)

// Client is the one configured HTTP client shared by every API call in a process.
//
// It holds no per-request state: credentials are resolved from the call's context.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials CredentialResolver
	logger      *log.Logger
}

// NewClient creates a client rooted at baseURL + "/api".
//
// An empty baseURL uses the local default, a nil httpClient uses [http.DefaultClient] and a nil resolver uses [AmbientCredentials].
func NewClient(baseURL string, httpClient *http.Client, credentials CredentialResolver) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if credentials == nil {
		credentials = AmbientCredentials{}
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/") + apiPrefix,
		httpClient:  httpClient,
		credentials: credentials,
	}
}

// NewHTTPClient builds the underlying [http.Client]. A non-nil jar makes every request carry its cookies.
func NewHTTPClient(timeout time.Duration, jar http.CookieJar) *http.Client {
	return &http.Client{Timeout: timeout, Jar: jar}
}

// SetLogger enables debug logging of each request.
func (c *Client) SetLogger(l *log.Logger) {
	c.logger = l
}

// BaseURL returns the API root including the "/api" prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Cookies returns the jar's cookies for the API root, or nil when the client has no jar.
func (c *Client) Cookies() []*http.Cookie {
	if c.httpClient.Jar == nil {
		return nil
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil
	}
	return c.httpClient.Jar.Cookies(u)
}

// do issues one request and decodes a 2xx JSON body into out.
//
// Non-2xx responses become a [*StatusError]. Set-Cookie values are offered to the context's [CookieSink].
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range c.credentials.Resolve(ctx) {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if sink := CookieSinkFrom(ctx); sink != nil {
		sink.Add(resp.Cookies()...)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp.StatusCode, data)
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
