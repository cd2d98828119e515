package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/domain/interfaces"
	"github.com/oncall-lab/argus/pkg/domain/model/auth"
	"github.com/oncall-lab/argus/pkg/utils/safe"
)

// ErrNotFound is returned when the remote service reports 404
var ErrNotFound = goerr.New("record not found")

// Client is a backend that forwards all operations to a remote console API
// over HTTP. The bearer token is taken from the request context when present.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string

	incidents *incidentClient
	apiKeys   *apiKeyClient
}

var _ interfaces.Backend = &Client{}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sets a static bearer token used when the context carries none
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return nil, goerr.New("invalid base URL", goerr.V("url", baseURL))
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.incidents = &incidentClient{client: c}
	c.apiKeys = &apiKeyClient{client: c}

	return c, nil
}

func (c *Client) Incident() interfaces.IncidentBackend {
	return c.incidents
}

func (c *Client) APIKey() interfaces.APIKeyBackend {
	return c.apiKeys
}

func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// do sends a JSON request and decodes the JSON response into out (when out
// is non-nil). Remote 404s map to ErrNotFound so callers can treat all
// backends uniformly.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return goerr.Wrap(err, "failed to encode request body", goerr.V("path", path))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return goerr.Wrap(err, "failed to build request", goerr.V("path", path))
	}
	req.Header.Set("Content-Type", "application/json")

	if token, ok := auth.TokenFromContext(ctx); ok && token.Raw != "" {
		req.Header.Set("Authorization", "Bearer "+token.Raw)
	} else if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "request failed", goerr.V("method", method), goerr.V("path", path))
	}
	defer safe.Close(ctx, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return goerr.Wrap(ErrNotFound, "remote record not found", goerr.V("path", path))
	case resp.StatusCode >= http.StatusBadRequest:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return goerr.New("remote request failed",
			goerr.V("method", method),
			goerr.V("path", path),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(msg)),
		)
	}

	if out == nil {
		safe.Copy(ctx, io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerr.Wrap(err, "failed to decode response", goerr.V("path", path))
	}

	return nil
}
