package odoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/MILA-Wien/odoo-product-updater-bot/internal/config"
)

// Default query parameters of the Odoo external API as used by this bot.
const (
	DefaultLimit = 3500
	DefaultOrder = "id ASC"
)

// Domain is an Odoo search domain: a list of [field, operator, value] triples.
type Domain [][]any

// Eq builds a single equality condition for a search domain.
func Eq(field string, value any) []any {
	return []any{field, "=", value}
}

// Record is one row returned by the object service.
type Record = map[string]any

// SearchOptions narrows a search_read call. Zero values fall back to the
// package defaults (no field restriction, limit 3500, order "id ASC").
type SearchOptions struct {
	Fields []string
	Limit  int
	Offset int
	Order  string
}

// API exposes the Odoo object-service operations used by the application.
type API interface {
	SearchRead(ctx context.Context, model string, domain Domain, opts SearchOptions) ([]Record, error)
	Get(ctx context.Context, model string, domain Domain, fields []string) (Record, error)
	SearchCount(ctx context.Context, model string, domain Domain) (int, error)
	Create(ctx context.Context, model string, fields map[string]any) (int64, error)
	Write(ctx context.Context, model string, ids []int64, fields map[string]any) error
	Unlink(ctx context.Context, model string, ids []int64) error
}

// Client is a resty-backed implementation of API speaking JSON-RPC against
// the /jsonrpc endpoint. Construct it once and pass it into every component
// that talks to the ERP.
type Client struct {
	httpClient *resty.Client
	database   string
	username   string
	password   string
	uid        int64
}

// NewClient builds an Odoo API client using the provided configuration values.
// Authenticate must be called before any object-service operation.
func NewClient(cfg config.OdooConfig) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &Client{
		httpClient: restyClient,
		database:   cfg.Database,
		username:   cfg.Username,
		password:   cfg.Password,
	}
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int       `json:"id"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"data"`
}

func (e *rpcError) Error() string {
	if e.Data.Message != "" {
		return fmt.Sprintf("odoo rpc error: code=%d, message=%s", e.Code, e.Data.Message)
	}
	return fmt.Sprintf("odoo rpc error: code=%d, message=%s", e.Code, e.Message)
}

func (c *Client) call(ctx context.Context, service, method string, args []any, result any) error {
	payload := rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      1,
	}

	rpcResp := new(rpcResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(rpcResp).
		Post("/jsonrpc")
	if err != nil {
		return fmt.Errorf("call odoo %s.%s: %w", service, method, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("odoo http error: status=%d", resp.StatusCode())
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("decode odoo %s.%s result: %w", service, method, err)
		}
	}

	return nil
}

// executeKw invokes a method on a named entity collection through the object
// service. Argument order is fixed by the API:
// [db, uid, password, model, method, args, kwargs].
func (c *Client) executeKw(ctx context.Context, model, method string, args []any, kwargs map[string]any, result any) error {
	callArgs := []any{c.database, c.uid, c.password, model, method, args}
	if kwargs != nil {
		callArgs = append(callArgs, kwargs)
	}
	return c.call(ctx, "object", "execute_kw", callArgs, result)
}

// Authenticate resolves the session uid for the configured credentials.
func (c *Client) Authenticate(ctx context.Context) error {
	var result any
	args := []any{c.database, c.username, c.password, map[string]any{}}
	if err := c.call(ctx, "common", "authenticate", args, &result); err != nil {
		return err
	}

	// A failed login yields false instead of a numeric uid.
	uid, ok := result.(float64)
	if !ok || uid <= 0 {
		return fmt.Errorf("odoo authentication failed for user %s", c.username)
	}

	c.uid = int64(uid)
	return nil
}

// SearchRead queries records matching the domain, restricted to the given
// fields, paginated and ordered.
func (c *Client) SearchRead(ctx context.Context, model string, domain Domain, opts SearchOptions) ([]Record, error) {
	if domain == nil {
		domain = Domain{}
	}
	if opts.Limit == 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Order == "" {
		opts.Order = DefaultOrder
	}
	fields := opts.Fields
	if fields == nil {
		fields = []string{}
	}

	kwargs := map[string]any{
		"fields": fields,
		"limit":  opts.Limit,
		"offset": opts.Offset,
		"order":  opts.Order,
	}

	var records []Record
	if err := c.executeKw(ctx, model, "search_read", []any{domain}, kwargs, &records); err != nil {
		return nil, fmt.Errorf("search_read %s: %w", model, err)
	}
	return records, nil
}

// Get returns the first record matching the domain, or nil when none matches.
func (c *Client) Get(ctx context.Context, model string, domain Domain, fields []string) (Record, error) {
	records, err := c.SearchRead(ctx, model, domain, SearchOptions{Fields: fields})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// SearchCount counts records matching the domain.
func (c *Client) SearchCount(ctx context.Context, model string, domain Domain) (int, error) {
	if domain == nil {
		domain = Domain{}
	}

	var count int
	if err := c.executeKw(ctx, model, "search_count", []any{domain}, nil, &count); err != nil {
		return 0, fmt.Errorf("search_count %s: %w", model, err)
	}
	return count, nil
}

// Create inserts a new record and returns its id.
func (c *Client) Create(ctx context.Context, model string, fields map[string]any) (int64, error) {
	var id int64
	if err := c.executeKw(ctx, model, "create", []any{fields}, nil, &id); err != nil {
		return 0, fmt.Errorf("create %s: %w", model, err)
	}
	return id, nil
}

// Write patches the given fields on every record in the id list.
func (c *Client) Write(ctx context.Context, model string, ids []int64, fields map[string]any) error {
	if err := c.executeKw(ctx, model, "write", []any{ids, fields}, nil, nil); err != nil {
		return fmt.Errorf("write %s: %w", model, err)
	}
	return nil
}

// Unlink deletes every record in the id list. An empty list is a no-op.
func (c *Client) Unlink(ctx context.Context, model string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.executeKw(ctx, model, "unlink", []any{ids}, nil, nil); err != nil {
		return fmt.Errorf("unlink %s: %w", model, err)
	}
	return nil
}
