// Package mau is a client for the Mau card game REST API.
//
// A Client issues one HTTP request per method call and validates the JSON
// response into the package's value types. Session wraps a Client for a
// single user and injects the bearer token obtained at login.
package mau

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultServer is the public Mau API endpoint.
const DefaultServer = "https://mau.miroq.ru/api/"

// Client talks to one Mau server. It is safe for concurrent use.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

type Option func(*Client) error

// WithServer sets the API base URL. Endpoint paths are resolved below it.
func WithServer(server string) Option {
	return func(c *Client) error {
		u, err := url.Parse(server)
		if err != nil {
			return fmt.Errorf("parsing server url: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("server url %q must be absolute", server)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		c.base = u
		return nil
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("nil http client")
		}
		c.http = hc
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return errors.New("nil logger")
		}
		c.logger = logger
		return nil
	}
}

func New(opts ...Option) (*Client, error) {
	c := &Client{
		http:   &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		logger: slog.New(slog.DiscardHandler),
	}
	opts = append([]Option{WithServer(DefaultServer)}, opts...)
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Server returns the API base URL.
func (c *Client) Server() string { return c.base.String() }

// Close releases idle pooled connections. The Client must not be used
// afterwards.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// endpoint resolves an already escaped path below the base URL, keeping
// the base path prefix (for example /api/).
func (c *Client) endpoint(path string) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parsing path %q: %w", path, err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

// request sends one call and returns the raw JSON body of a 200 response.
// An empty token means an anonymous request; a nil body sends no payload.
func (c *Client) request(ctx context.Context, method, path, token string, body any) (json.RawMessage, error) {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	target, err := c.endpoint(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "mau request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{StatusCode: resp.StatusCode, Text: string(data)}
	}

	if err := checkJSONContentType(resp.Header.Get("Content-Type")); err != nil {
		return nil, &ProtocolError{Err: err}
	}
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ProtocolError{Err: err}
	}
	return raw, nil
}

func checkJSONContentType(header string) error {
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return fmt.Errorf("unexpected content type %q", header)
	}
	if mt != "application/json" && !strings.HasSuffix(mt, "+json") {
		return fmt.Errorf("unexpected content type %q", mt)
	}
	return nil
}

// validator is implemented by every entity decoded from a response.
type validator interface {
	Validate() error
}

func decodeInto[T any](raw json.RawMessage, v *T) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return &ValidationError{Type: typeName[T](), Err: err}
	}
	if vv, ok := any(*v).(validator); ok {
		if err := vv.Validate(); err != nil {
			return &ValidationError{Type: typeName[T](), Err: err}
		}
	}
	return nil
}

func typeName[T any]() string {
	var zero T
	name := fmt.Sprintf("%T", zero)
	return strings.TrimPrefix(name, "mau.")
}

// call performs a request and validates the response as a single T.
func call[T any](ctx context.Context, c *Client, method, path, token string, body any) (T, error) {
	var out T
	raw, err := c.request(ctx, method, path, token, body)
	if err != nil {
		return out, err
	}
	if err := decodeInto(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

// callList performs a request whose response is a JSON array and validates
// every element on its own.
func callList[T any](ctx context.Context, c *Client, method, path, token string) ([]T, error) {
	raw, err := c.request(ctx, method, path, token, nil)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ValidationError{Type: "[]" + typeName[T](), Err: err}
	}
	out := make([]T, len(items))
	for i, item := range items {
		if err := decodeInto(item, &out[i]); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Type = fmt.Sprintf("%s[%d]", typeName[T](), i)
			}
			return nil, err
		}
	}
	return out, nil
}
