// Package remote is the HTTP client for the remote contact collection.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/internal/logger"
	"github.com/huangsam/contacts/schema"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// collectionPath is the contact collection resource under the base URL.
const collectionPath = "/contact"

// maxErrorBody caps how much of a failed response body is kept for diagnostics.
const maxErrorBody = 512

// DefaultUserAgent is sent when no other agent is configured.
const DefaultUserAgent = "contacts-cli"

// Client talks to the remote contact service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

var _ contract.ContactService = &Client{} // Compile-time check

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its transport is used as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) { c.userAgent = agent }
}

// New creates a client rooted at baseURL. A trailing slash is ignored.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		userAgent:  DefaultUserAgent,
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError reports a non-2xx response other than 404.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// errNullData means the response envelope carried "data": null.
var errNullData = errors.New("response data is null")

// errMissingID means a decoded contact has no server-assigned id.
var errMissingID = errors.New("contact has no id")

// List returns the full collection in server order.
func (c *Client) List(ctx context.Context) ([]schema.Contact, error) {
	body, err := c.do(ctx, http.MethodGet, collectionPath, nil)
	if err != nil {
		return nil, err
	}
	var contacts []schema.Contact
	if err := decodePayload(body, &contacts); err != nil && !errors.Is(err, errNullData) {
		return nil, fmt.Errorf("decode contact list: %w", err)
	}
	if contacts == nil {
		contacts = []schema.Contact{}
	}
	return contacts, nil
}

// Get returns one contact by id, or contract.ErrNotFound.
func (c *Client) Get(ctx context.Context, id string) (schema.Contact, error) {
	body, err := c.do(ctx, http.MethodGet, itemPath(id), nil)
	if err != nil {
		return schema.Contact{}, err
	}
	contact, err := decodeContact(body)
	if errors.Is(err, errNullData) {
		return schema.Contact{}, fmt.Errorf("%w: %s", contract.ErrNotFound, id)
	}
	if err != nil {
		return schema.Contact{}, err
	}
	if contact.ID == "" {
		return schema.Contact{}, fmt.Errorf("decode contact: %w", errMissingID)
	}
	return contact, nil
}

// Create posts a draft and returns the contact the server stored.
func (c *Client) Create(ctx context.Context, draft schema.ContactDraft) (schema.Contact, error) {
	body, err := c.do(ctx, http.MethodPost, collectionPath, draft)
	if err != nil {
		return schema.Contact{}, err
	}
	contact, err := decodeContact(body)
	if err != nil {
		return schema.Contact{}, err
	}
	if contact.ID == "" {
		return schema.Contact{}, fmt.Errorf("decode contact: %w", errMissingID)
	}
	return contact, nil
}

// Update replaces the contact with the given id.
func (c *Client) Update(ctx context.Context, id string, draft schema.ContactDraft) (schema.Contact, error) {
	body, err := c.do(ctx, http.MethodPut, itemPath(id), draft)
	if err != nil {
		return schema.Contact{}, err
	}
	contact, err := decodeContact(body)
	if err != nil {
		return schema.Contact{}, err
	}
	if contact.ID == "" {
		contact.ID = id
	}
	return contact, nil
}

// Delete removes the contact with the given id. Any 2xx is success.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, itemPath(id), nil)
	return err
}

func itemPath(id string) string {
	return collectionPath + "/" + url.PathEscape(id)
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	target := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "remote request failed",
			"method", method, "url", target, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, target, err)
	}

	c.logger.DebugContext(ctx, "remote request",
		"method", method, "url", target, "status", resp.StatusCode,
		"request_id", requestID, "duration", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", method, target, contract.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       truncateBody(body),
		}
	}
	return body, nil
}

// decodePayload unwraps an optional {data: ...} envelope into out.
// An envelope whose data is null yields errNullData.
func decodePayload(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return errors.New("empty response body")
	}
	if trimmed[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err == nil {
			if data, ok := fields["data"]; ok {
				data = bytes.TrimSpace(data)
				if len(data) == 0 || string(data) == "null" {
					return errNullData
				}
				return json.Unmarshal(data, out)
			}
		}
	}
	return json.Unmarshal(trimmed, out)
}

func decodeContact(body []byte) (schema.Contact, error) {
	var contact schema.Contact
	if err := decodePayload(body, &contact); err != nil {
		return schema.Contact{}, fmt.Errorf("decode contact: %w", err)
	}
	return contact, nil
}

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}
