// Package client wraps the address book HTTP API and normalizes its
// outcomes into the error types of this package.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oaiiae/addressbook/addressbook"
)

const addressesPath = "/api/addresses"

// Client performs list, create, update and delete against the API.
// It never holds records itself.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// New returns a [Client] for the API served at baseURL.
func New(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: http.DefaultClient,
		Logger:     logger,
	}
}

// List fetches the whole record set.
func (c *Client) List(ctx context.Context) (addressbook.RecordSet, error) {
	var set addressbook.RecordSet
	if err := c.do(ctx, "list", http.MethodGet, addressesPath, nil, &set); err != nil {
		return nil, err
	}
	if set == nil {
		set = addressbook.RecordSet{}
	}
	return set, nil
}

// Get fetches the record stored under key.
func (c *Client) Get(ctx context.Context, key string) (addressbook.Record, error) {
	var r addressbook.Record
	if err := c.do(ctx, "get", http.MethodGet, addressPath(key), nil, &r); err != nil {
		return addressbook.Record{}, err
	}
	return r, nil
}

// createdBody is the body of a successful create. Key is empty when the
// server does not report it.
type createdBody struct {
	Message string `json:"message"`
	Key     string `json:"key"`
}

// Create stores a new record and returns the key the server assigned to it,
// or an empty key if the server did not report one.
func (c *Client) Create(ctx context.Context, r addressbook.Record) (string, error) {
	r = r.Normalize()
	if err := r.Validate(); err != nil {
		return "", err
	}
	var body createdBody
	err := c.do(ctx, "create", http.MethodPost, addressesPath, &r, &body)
	if err != nil {
		return "", err
	}
	return body.Key, nil
}

// Update replaces the record stored under key.
func (c *Client) Update(ctx context.Context, key string, r addressbook.Record) error {
	r = r.Normalize()
	if err := r.Validate(); err != nil {
		return err
	}
	return c.do(ctx, "update", http.MethodPut, addressPath(key), &r, nil)
}

// Delete removes the record stored under key.
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.do(ctx, "delete", http.MethodDelete, addressPath(key), nil, nil)
}

func addressPath(key string) string { return addressesPath + "/" + url.PathEscape(key) }

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.Must(uuid.NewV7()).String())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.DebugContext(ctx, "request failed", "op", op, "err", err)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.Logger.DebugContext(ctx, method+" "+req.URL.EscapedPath(),
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
		slog.Duration("dur", time.Since(start)),
		slog.String("x-request-id", req.Header.Get("X-Request-Id")),
	)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusConflict && method == http.MethodPost:
		return ErrConflict
	case resp.StatusCode/100 != 2: //nolint: mnd // 2XX HTTP Status Codes
		return &APIError{Op: op, Status: resp.StatusCode}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if out == nil {
		out = new(json.RawMessage)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ProtocolError{Op: op, Status: resp.StatusCode, Err: err}
	}
	return nil
}
