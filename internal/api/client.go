// Package api is the HTTP client for the remote todos collection. It is
// stateless between calls: every call builds its own request, bounds it by
// the configured timeout and turns the outcome into a value or an *Error.
package api

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

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/idilsaglam/todoclient/internal/model"
)

// Operation names, used in errors and logs.
const (
	OpList     = "list"
	OpUpcoming = "upcoming"
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
)

// DefaultTimeout bounds a call when Options.Timeout is zero.
const DefaultTimeout = 5 * time.Second

var codec = sonic.ConfigStd

// Options configure a Client.
type Options struct {
	// BaseURL is the server root; the collection lives at BaseURL/todos.
	BaseURL    string
	Timeout    time.Duration
	Token      string
	Logger     *log.Logger
	HTTPClient *http.Client
}

// Client talks to the todos collection.
type Client struct {
	collection *url.URL
	timeout    time.Duration
	token      string
	http       *http.Client
	log        *log.Logger
}

// New validates opts and returns a ready Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" || base.Host == "" {
		return nil, fmt.Errorf("base url %q: want an absolute http(s) url", opts.BaseURL)
	}
	c := &Client{
		collection: base.JoinPath("todos"),
		timeout:    opts.Timeout,
		token:      opts.Token,
		http:       opts.HTTPClient,
		log:        opts.Logger,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.log == nil {
		c.log = log.New(io.Discard)
	}
	return c, nil
}

// DeleteResult is the backend's confirmation of a delete.
type DeleteResult struct {
	Message string `json:"message"`
}

type createRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      model.Status   `json:"status"`
	Priority    model.Priority `json:"priority"`
	DueDate     *model.Date    `json:"dueDate,omitempty"`
}

// ListTodos fetches the collection. Only filters with a value are sent. A
// 404 means the collection is empty; a body that is not a list of todos is
// read as empty too.
func (c *Client) ListTodos(ctx context.Context, f model.ListFilters) ([]model.Todo, error) {
	return c.list(ctx, OpList, c.collection, listQuery(f))
}

// ListUpcomingTodos fetches the upcoming sub-resource with the same rules as
// ListTodos.
func (c *Client) ListUpcomingTodos(ctx context.Context) ([]model.Todo, error) {
	return c.list(ctx, OpUpcoming, c.collection.JoinPath("upcoming"), nil)
}

// CreateTodo posts a new todo. The status is always pending and a missing
// priority becomes medium. Title validation is the caller's job.
func (c *Client) CreateTodo(ctx context.Context, d model.Draft) (model.Todo, error) {
	body := createRequest{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Status:      model.StatusPending,
		Priority:    d.Priority,
	}
	if body.Priority == "" {
		body.Priority = model.PriorityMedium
	}
	if !d.DueDate.IsZero() {
		due := d.DueDate
		body.DueDate = &due
	}
	return c.mutate(ctx, OpCreate, http.MethodPost, c.collection, body)
}

// UpdateTodo patches the todo with the given id and returns the backend's
// representation of it.
// An empty patch is refused without a request.
func (c *Client) UpdateTodo(ctx context.Context, id string, p model.Patch) (model.Todo, error) {
	u, err := c.itemURL(OpUpdate, id)
	if err != nil {
		return model.Todo{}, err
	}
	if p.Empty() {
		return model.Todo{}, c.refuse(invalidError(OpUpdate, "nothing to update"))
	}
	return c.mutate(ctx, OpUpdate, http.MethodPatch, u, p)
}

// DeleteTodo removes the todo with the given id.
func (c *Client) DeleteTodo(ctx context.Context, id string) (DeleteResult, error) {
	u, err := c.itemURL(OpDelete, id)
	if err != nil {
		return DeleteResult{}, err
	}
	resp, err := c.do(ctx, OpDelete, http.MethodDelete, u, nil)
	if err != nil {
		return DeleteResult{}, err
	}
	if !resp.ok() {
		return DeleteResult{}, c.fail(resp.request, statusError(OpDelete, resp.status, resp.body, resp.requestID))
	}
	var out DeleteResult
	if len(bytes.TrimSpace(resp.body)) == 0 {
		return out, nil
	}
	if err := codec.Unmarshal(resp.body, &out); err != nil {
		return DeleteResult{}, c.fail(resp.request, decodeError(OpDelete, resp, err))
	}
	return out, nil
}

func (c *Client) list(ctx context.Context, op string, u *url.URL, q url.Values) ([]model.Todo, error) {
	if len(q) > 0 {
		withQuery := *u
		withQuery.RawQuery = q.Encode()
		u = &withQuery
	}
	resp, err := c.do(ctx, op, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusNotFound {
		return []model.Todo{}, nil
	}
	if !resp.ok() {
		return nil, c.fail(resp.request, statusError(op, resp.status, resp.body, resp.requestID))
	}
	var items []json.RawMessage
	if err := codec.Unmarshal(resp.body, &items); err != nil {
		c.log.Warn("list body is not a todo array", "op", op, "request_id", resp.requestID, "err", err)
		return []model.Todo{}, nil
	}
	todos := make([]model.Todo, 0, len(items))
	for i, item := range items {
		var td model.Todo
		if err := codec.Unmarshal(item, &td); err != nil {
			c.log.Warn("skipping undecodable todo", "op", op, "request_id", resp.requestID, "index", i, "err", err)
			continue
		}
		if td.ID == "" {
			c.log.Warn("skipping todo without id", "op", op, "request_id", resp.requestID, "index", i)
			continue
		}
		todos = append(todos, td)
	}
	return todos, nil
}

// itemURL is the collection URL plus id as one escaped path segment. Ids
// that would address the collection or its parent are refused.
func (c *Client) itemURL(op, id string) (*url.URL, error) {
	switch strings.TrimSpace(id) {
	case "", ".", "..":
		return nil, c.refuse(invalidError(op, fmt.Sprintf("invalid todo id %q", id)))
	}
	u := *c.collection
	u.Path = c.collection.Path + "/" + id
	u.RawPath = c.collection.EscapedPath() + "/" + url.PathEscape(id)
	return &u, nil
}

func (c *Client) mutate(ctx context.Context, op, method string, u *url.URL, body any) (model.Todo, error) {
	resp, err := c.do(ctx, op, method, u, body)
	if err != nil {
		return model.Todo{}, err
	}
	if !resp.ok() {
		return model.Todo{}, c.fail(resp.request, statusError(op, resp.status, resp.body, resp.requestID))
	}
	var td model.Todo
	if err := codec.Unmarshal(resp.body, &td); err != nil {
		return model.Todo{}, c.fail(resp.request, decodeError(op, resp, err))
	}
	if td.ID == "" {
		return model.Todo{}, c.fail(resp.request, decodeError(op, resp, errors.New("todo has no id")))
	}
	return td, nil
}

type response struct {
	request   *http.Request
	status    int
	body      []byte
	requestID string
}

func (r *response) ok() bool { return r.status >= 200 && r.status < 300 }

// do performs one bounded round trip. Any failure before the full body is
// read is a transport error, whether the cause was the deadline or the
// network.
func (c *Client) do(ctx context.Context, op, method string, u *url.URL, body any) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		b, err := codec.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal body: %w", op, err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.log.Debug("request", "op", op, "method", method, "url", req.URL.String(), "request_id", requestID)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(req, c.transportError(ctx, op, requestID, err))
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(req, c.transportError(ctx, op, requestID, err))
	}
	c.log.Debug("response", "op", op, "status", resp.StatusCode, "request_id", requestID, "elapsed", time.Since(start))
	return &response{request: req, status: resp.StatusCode, body: data, requestID: requestID}, nil
}

func (c *Client) transportError(ctx context.Context, op, requestID string, cause error) *Error {
	e := &Error{Op: op, Kind: KindTransport, RequestID: requestID, Err: cause}
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		e.Message = fmt.Sprintf("request timed out after %s", c.timeout)
	case errors.Is(ctx.Err(), context.Canceled):
		e.Message = "request canceled"
	default:
		e.Message = "network error: " + unwrapURLError(cause).Error()
	}
	return e
}

func decodeError(op string, resp *response, cause error) *Error {
	return &Error{
		Op:        op,
		Kind:      KindDecode,
		Status:    resp.status,
		Message:   genericMessage(op) + ": invalid response body",
		RequestID: resp.requestID,
		Err:       cause,
	}
}

// refuse logs a call rejected before sending and returns e.
func (c *Client) refuse(e *Error) *Error {
	c.log.Error(e.Message, "op", e.Op, "kind", e.Kind)
	return e
}

// fail logs e and returns it.
func (c *Client) fail(req *http.Request, e *Error) *Error {
	c.log.Error(e.Message,
		"op", e.Op,
		"kind", e.Kind,
		"method", req.Method,
		"url", req.URL.String(),
		"status", e.Status,
		"request_id", e.RequestID,
	)
	return e
}

func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

// listQuery maps each filter to its parameter. A filter is present when it
// holds a value; FilterAll is the same as no status filter.
func listQuery(f model.ListFilters) url.Values {
	params := []struct {
		name    string
		value   string
		present bool
	}{
		{"status", string(f.Status), f.Status != "" && f.Status != model.FilterAll},
		{"priority", string(f.Priority), f.Priority != ""},
		{"search", f.Search, f.Search != ""},
		{"sortBy", string(f.SortBy), f.SortBy != ""},
	}
	q := url.Values{}
	for _, p := range params {
		if p.present {
			q.Set(p.name, p.value)
		}
	}
	return q
}
