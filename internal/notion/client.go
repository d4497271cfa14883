// Package notion is a typed client for the Notion REST API, pinned to API
// version 2025-09-03 (the first version with data sources and file uploads).
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Version is the Notion-Version header sent on every request.
const Version = "2025-09-03"

const defaultBaseURL = "https://api.notion.com/v1"

// APIError is a non-2xx response from the Notion API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("notion: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("notion: request failed with status %d", e.Status)
}

// Client calls the Notion API on behalf of one access token.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Tests point this at a stub server.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client bound to the given access token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the access token the client was built with. Image uploads
// need it to authenticate against the one-time upload URL.
func (c *Client) Token() string {
	return c.token
}

// do performs one API call. A nil body sends no payload; out, when non-nil,
// receives the decoded response. The raw body is returned for passthrough.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", Version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(raw, apiErr)
		apiErr.Status = resp.StatusCode
		return nil, apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("decode notion response: %w", err)
		}
	}
	return raw, nil
}

// Search queries the workspace. An empty query matches everything the
// integration can see.
func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	var out SearchResponse
	if _, err := c.do(ctx, http.MethodPost, "/search", map[string]string{"query": query}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RetrievePage fetches one page by id.
func (c *Client) RetrievePage(ctx context.Context, pageID string) (*Page, error) {
	var out Page
	if _, err := c.do(ctx, http.MethodGet, "/pages/"+pageID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RetrieveDatabase fetches one database by id, including its data sources.
func (c *Client) RetrieveDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var out Database
	if _, err := c.do(ctx, http.MethodGet, "/databases/"+databaseID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RetrieveDataSource fetches a data source schema verbatim; callers forward
// it untouched.
func (c *Client) RetrieveDataSource(ctx context.Context, dataSourceID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/data_sources/"+dataSourceID, nil, nil)
}

// ListBlockChildren lists the direct children of a block or page.
func (c *Client) ListBlockChildren(ctx context.Context, blockID string) (*BlockChildrenList, error) {
	var out BlockChildrenList
	if _, err := c.do(ctx, http.MethodGet, "/blocks/"+blockID+"/children", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AppendBlockChildren appends blocks to a block or page (a page id is a
// valid block id) and returns the created block refs plus the raw response.
func (c *Client) AppendBlockChildren(ctx context.Context, blockID string, blocks []Block) (*AppendResponse, error) {
	var out AppendResponse
	raw, err := c.do(ctx, http.MethodPatch, "/blocks/"+blockID+"/children",
		map[string]any{"children": blocks}, &out)
	if err != nil {
		return nil, err
	}
	out.Raw = raw
	return &out, nil
}

// CreatePage creates a page under the given parent. Parent is one of
// {"page_id": ...}, {"database_id": ...} or {"data_source_id": ...}.
func (c *Client) CreatePage(ctx context.Context, parent map[string]any, properties map[string]any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/pages", map[string]any{
		"parent":     parent,
		"properties": properties,
	}, nil)
}

// CreateComment creates a comment parented to the given block.
func (c *Client) CreateComment(ctx context.Context, blockID, text string) (*Comment, error) {
	var out Comment
	raw, err := c.do(ctx, http.MethodPost, "/comments", map[string]any{
		"parent": map[string]any{
			"type":     "block_id",
			"block_id": blockID,
		},
		"rich_text": NewRichText(text),
	}, &out)
	if err != nil {
		return nil, err
	}
	out.Raw = raw
	return &out, nil
}
