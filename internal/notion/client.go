// Implements the Notion API client with rate limiting.

package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Notion API base URL.
	BaseURL = "https://api.notion.com/v1"
	// APIVersion is the pinned Notion API version.
	APIVersion = "2022-06-28"
	// MinInterval is the minimum time between requests (3 req/sec).
	MinInterval = 334 * time.Millisecond
	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 30 * time.Second
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Transport http.RoundTripper
}

// Client is a rate-limited Notion API client bound to one integration token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Notion API client with default options.
func NewClient(token string) *Client {
	return NewClientWithOptions(token, Options{})
}

// NewClientWithOptions creates a new Notion API client.
//
// The token is sent as a bearer credential on every request.
func NewClientWithOptions(token string, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &Client{
		baseURL: opts.BaseURL,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
				Base:   base,
			},
		},
		limiter: rate.NewLimiter(rate.Every(MinInterval), 1),
	}
}

// get performs a GET request with rate limiting and returns the raw body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Notion-Version", APIVersion)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr Error
		if err := json.Unmarshal(respBody, &apiErr); err != nil || apiErr.Message == "" {
			return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
		}
		if apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode
		}
		return nil, &apiErr
	}

	return respBody, nil
}

// ListBlockChildren retrieves the first page of children of a block.
//
// It issues exactly one request; has_more is not followed.
func (c *Client) ListBlockChildren(ctx context.Context, blockID string) ([]Block, error) {
	data, err := c.get(ctx, "/blocks/"+url.PathEscape(blockID)+"/children?page_size=100")
	if err != nil {
		return nil, err
	}

	var resp BlocksResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse blocks response: %w", err)
	}
	blocks := make([]Block, len(resp.Results))
	for i, raw := range resp.Results {
		blocks[i] = decodeBlock(ctx, raw)
	}
	return blocks, nil
}

// decodeBlock decodes a single block. When the payload does not have the
// expected shape, the block keeps its ID and type with no payload so that it
// renders as an empty section instead of failing the whole page.
func decodeBlock(ctx context.Context, raw json.RawMessage) Block {
	var b Block
	err := json.Unmarshal(raw, &b)
	if err == nil {
		return b
	}
	var head struct {
		Object      string `json:"object"`
		ID          string `json:"id"`
		Type        string `json:"type"`
		HasChildren bool   `json:"has_children"`
	}
	if err2 := json.Unmarshal(raw, &head); err2 != nil {
		slog.WarnContext(ctx, "Dropping undecodable block", "err", err2)
		return Block{}
	}
	slog.WarnContext(ctx, "Block payload malformed", "id", head.ID, "type", head.Type, "err", err)
	return Block{Object: head.Object, ID: head.ID, Type: head.Type, HasChildren: head.HasChildren}
}

// GetBlockChildrenRecursive retrieves children of a block and of every nested
// block that has children, down to maxDepth levels (0 = unlimited, 1 = only
// the direct children). Children are stored in each block's Children field.
func (c *Client) GetBlockChildrenRecursive(ctx context.Context, blockID string, maxDepth int) ([]Block, error) {
	return c.getBlockChildrenRecursiveImpl(ctx, blockID, maxDepth, 0)
}

func (c *Client) getBlockChildrenRecursiveImpl(ctx context.Context, blockID string, maxDepth, depth int) ([]Block, error) {
	if maxDepth > 0 && depth >= maxDepth {
		return nil, nil
	}

	blocks, err := c.ListBlockChildren(ctx, blockID)
	if err != nil {
		return nil, err
	}

	for i := range blocks {
		if blocks[i].HasChildren {
			children, err := c.getBlockChildrenRecursiveImpl(ctx, blocks[i].ID, maxDepth, depth+1)
			if err != nil {
				return nil, err
			}
			blocks[i].Children = children
		}
	}

	return blocks, nil
}
