// Handles conversion of a Notion page to Markdown.

package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/maruel/notion2md/internal/mdhtml"
	"github.com/maruel/notion2md/internal/notion"
	"github.com/maruel/notion2md/internal/server/dto"
)

// BlockFetcher lists the blocks of a page.
type BlockFetcher interface {
	GetBlockChildrenRecursive(ctx context.Context, blockID string, maxDepth int) ([]notion.Block, error)
}

// FetcherFactory creates a BlockFetcher authenticated with the caller's token.
type FetcherFactory func(token string) BlockFetcher

// UpstreamConfig configures calls to the Notion API.
type UpstreamConfig struct {
	BaseURL  string
	Timeout  time.Duration
	MaxDepth int
}

// ConvertHandler converts Notion pages to Markdown.
type ConvertHandler struct {
	newFetcher FetcherFactory
	maxDepth   int
}

// NewConvertHandler creates a handler calling the Notion API as configured.
func NewConvertHandler(cfg UpstreamConfig) *ConvertHandler {
	opts := notion.Options{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout}
	return NewConvertHandlerWithFetcher(cfg.MaxDepth, func(token string) BlockFetcher {
		return notion.NewClientWithOptions(token, opts)
	})
}

// NewConvertHandlerWithFetcher creates a handler using newFetcher for upstream
// calls. maxDepth <= 0 is treated as 1: only the page's direct children.
func NewConvertHandlerWithFetcher(maxDepth int, newFetcher FetcherFactory) *ConvertHandler {
	return &ConvertHandler{newFetcher: newFetcher, maxDepth: max(maxDepth, 1)}
}

// Convert fetches the page referenced by req.NotionURL and returns it as Markdown.
func (h *ConvertHandler) Convert(ctx context.Context, req *dto.ConvertRequest) (*dto.ConvertResponse, error) {
	rawID, err := notion.ExtractPageID(req.NotionURL)
	if err != nil {
		return nil, dto.InvalidField("notionUrl", dto.MsgInvalidURL)
	}
	pageID, err := notion.CanonicalID(rawID)
	if err != nil {
		return nil, dto.InvalidField("notionUrl", dto.MsgInvalidURL)
	}

	blocks, err := h.newFetcher(req.NotionAPIKey).GetBlockChildrenRecursive(ctx, pageID, h.maxDepth)
	if err != nil {
		slog.ErrorContext(ctx, "Notion fetch failed", "page", pageID, "err", err)
		return nil, dto.Upstream(dto.MsgUpstreamFailed, err)
	}

	resp := &dto.ConvertResponse{Markdown: notion.BlocksToMarkdown(blocks)}
	if req.RenderHTML {
		if resp.HTML, err = mdhtml.Render(resp.Markdown); err != nil {
			return nil, dto.InternalWithError("Failed to render HTML", err)
		}
	}
	slog.DebugContext(ctx, "Converted page", "page", pageID, "blocks", len(blocks), "bytes", len(resp.Markdown))
	return resp, nil
}
