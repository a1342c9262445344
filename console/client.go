package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sahilchouksey/mentor-hub-api/utils/listing"
	"github.com/sahilchouksey/mentor-hub-api/utils/response"
	"github.com/sahilchouksey/mentor-hub-api/utils/validation"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	Fields  []validation.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s %s", e.Message, e.Fields[0].Field, e.Fields[0].Message)
	}
	return e.Message
}

// FieldErrors returns the validation errors keyed by field path.
func (e *APIError) FieldErrors() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}

type envelope struct {
	Success    bool                     `json:"success"`
	Message    string                   `json:"message"`
	Data       json.RawMessage          `json:"data"`
	Errors     []validation.FieldError  `json:"errors"`
	Error      *response.ErrorDetail    `json:"error"`
	Pagination *response.PaginationMeta `json:"pagination"`
}

// ListResult is one page of an admin table.
type ListResult struct {
	Rows       []listing.Row
	Pagination response.PaginationMeta
}

// Client talks to the admin API with a bearer token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewClient creates a client for baseURL (e.g. http://localhost:5000).
func NewClient(baseURL string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: client}
}

// Token is the current session token, empty before Login.
func (c *Client) Token() string { return c.token }

// SetToken reuses an existing session token.
func (c *Client) SetToken(token string) { c.token = token }

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (listing.Row, error) {
	var out struct {
		Token string      `json:"token"`
		User  listing.Row `json:"user"`
	}
	env, err := c.do(ctx, http.MethodPost, "/api/admin/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode login: %w", err)
	}
	c.token = out.Token
	return out.User, nil
}

// Logout revokes the token.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/admin/logout", nil)
	c.token = ""
	return err
}

// List fetches one page of resource for q.
func (c *Client) List(ctx context.Context, resource string, q listing.Query) (*ListResult, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	for k, v := range q.Filters {
		params.Set(k, v)
	}
	if q.Sort.Column != "" {
		params.Set("sort", q.Sort.Column)
		params.Set("order", string(q.Sort.Direction))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		params.Set("limit", strconv.Itoa(q.Size))
	}

	path := "/api/admin/" + resource
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	result := &ListResult{}
	if err := json.Unmarshal(env.Data, &result.Rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", resource, err)
	}
	if env.Pagination != nil {
		result.Pagination = *env.Pagination
	}
	return result, nil
}

// Save creates the record when id is empty and updates it otherwise. It returns the
// server's message.
func (c *Client) Save(ctx context.Context, resource, id string, body map[string]any) (string, error) {
	method, path := http.MethodPost, "/api/admin/"+resource
	if id != "" {
		method, path = http.MethodPut, path+"/"+url.PathEscape(id)
	}
	env, err := c.do(ctx, method, path, body)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, resource, id string) (string, error) {
	return c.message(ctx, http.MethodDelete, "/api/admin/"+resource+"/"+url.PathEscape(id), nil)
}

// Toggle flips is_active.
func (c *Client) Toggle(ctx context.Context, resource, id string) (string, error) {
	return c.message(ctx, http.MethodPatch, "/api/admin/"+resource+"/"+url.PathEscape(id)+"/toggle", nil)
}

// Feature marks a quote as featured.
func (c *Client) Feature(ctx context.Context, id string) (string, error) {
	return c.message(ctx, http.MethodPatch, "/api/admin/quotes/"+url.PathEscape(id)+"/feature", nil)
}

// SetBookingStatus moves a booking to status.
func (c *Client) SetBookingStatus(ctx context.Context, id, status string) (string, error) {
	return c.message(ctx, http.MethodPatch, "/api/admin/bookings/"+url.PathEscape(id)+"/status",
		map[string]string{"status": status})
}

// Send broadcasts a notification template.
func (c *Client) Send(ctx context.Context, id string, recipients []map[string]string) (string, error) {
	return c.message(ctx, http.MethodPost, "/api/admin/notification-templates/"+url.PathEscape(id)+"/send",
		map[string]any{"recipients": recipients})
}

func (c *Client) message(ctx context.Context, method, path string, body any) (string, error) {
	env, err := c.do(ctx, method, path, body)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if resp.StatusCode >= 300 || !env.Success {
		msg := env.Message
		if msg == "" && env.Error != nil {
			msg = env.Error.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg, Fields: env.Errors}
	}
	return &env, nil
}
