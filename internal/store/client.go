// Package store is the HTTP client for the remote contact collection.
//
// The collection lives at a base URL: GET lists it, POST creates a record,
// and PUT/DELETE on base URL + id replace or remove one record.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smileynet/contacts/internal/contacts"
)

// ErrDecode is returned when a list response is not a JSON array of contacts.
var ErrDecode = errors.New("store: malformed response")

// ErrUnaddressable is returned for ids that cannot name a single record in a
// URL path, such as "." and "..".
var ErrUnaddressable = errors.New("store: id cannot be addressed")

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("store: %s %s: %s", e.Method, e.URL, e.Status)
}

// DefaultTimeout bounds a single request when no other timeout is configured.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response is kept for logging.
const maxErrorBody = 512

// Client talks to the contact collection over HTTP.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	log     *zap.SugaredLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the http.Client requests are sent with. The Client
// keeps its own copy, so hc is never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout. It applies whatever the order of
// options and overrides the timeout of a client given to WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Client for the collection at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("store: parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("store: base URL %q must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("store: base URL %q has no host", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		base: u,
		log:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := http.Client{Timeout: DefaultTimeout}
	if c.http != nil {
		hc = *c.http
	}
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.http = &hc
	return c, nil
}

// BaseURL returns the collection URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// itemURL appends the escaped id to the collection path as one segment.
// The path is not cleaned, so the id always names a child of the collection.
func (c *Client) itemURL(id contacts.ID) (string, error) {
	raw := id.String()
	switch raw {
	case "":
		return "", errors.New("empty id")
	case ".", "..":
		return "", fmt.Errorf("%w: %q", ErrUnaddressable, raw)
	}
	u := *c.base
	u.Path = c.base.Path + raw
	u.RawPath = c.base.EscapedPath() + url.PathEscape(raw)
	return u.String(), nil
}

// List fetches the whole collection in server order.
func (c *Client) List(ctx context.Context) ([]contacts.Contact, error) {
	resp, err := c.do(ctx, http.MethodGet, c.base.String(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var list []contacts.Contact
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	c.log.Debugw("listed contacts", "count", len(list))
	return list, nil
}

// Create posts a new contact. The store assigns the id.
func (c *Client) Create(ctx context.Context, contact contacts.Contact) error {
	contact.ID = contacts.ID{}
	return c.send(ctx, http.MethodPost, c.base.String(), contact)
}

// Update replaces the stored record for contact.ID.
func (c *Client) Update(ctx context.Context, contact contacts.Contact) error {
	target, err := c.itemURL(contact.ID)
	if err != nil {
		return fmt.Errorf("store: update: %w", err)
	}
	return c.send(ctx, http.MethodPut, target, contact)
}

// Delete removes the record with the given id.
func (c *Client) Delete(ctx context.Context, id contacts.ID) error {
	target, err := c.itemURL(id)
	if err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	resp, err := c.do(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// send encodes body as JSON and discards the response body.
func (c *Client) send(ctx context.Context, method, target string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("store: encoding %s body: %w", method, err)
	}
	resp, err := c.do(ctx, method, target, payload)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// do issues one request and converts non-2xx responses into *StatusError.
// The caller owns the body of a successful response.
func (c *Client) do(ctx context.Context, method, target string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("store: building %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("store: %s %s: %w", method, target, err)
	}
	c.log.Debugw("request", "method", method, "url", target, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		c.log.Warnw("request failed", "method", method, "url", target, "status", resp.Status, "body", string(snippet))
		return nil, &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
