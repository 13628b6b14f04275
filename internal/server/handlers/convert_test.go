package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/maruel/notion2md/internal/notion"
	"github.com/maruel/notion2md/internal/server/dto"
)

const pageURL = "https://www.notion.so/acme/My-Page-0123456789ABCDEF0123456789abcdef"

type fakeFetcher struct {
	blocks []notion.Block
	err    error

	token    string
	blockID  string
	maxDepth int
	calls    int
}

func (f *fakeFetcher) GetBlockChildrenRecursive(ctx context.Context, blockID string, maxDepth int) ([]notion.Block, error) {
	f.calls++
	f.blockID = blockID
	f.maxDepth = maxDepth
	return f.blocks, f.err
}

func newTestHandler(f *fakeFetcher, maxDepth int) *ConvertHandler {
	return NewConvertHandlerWithFetcher(maxDepth, func(token string) BlockFetcher {
		f.token = token
		return f
	})
}

func paragraph(s string) notion.Block {
	return notion.Block{Type: "paragraph", Paragraph: &notion.TextBlock{RichText: []notion.RichText{{PlainText: s}}}}
}

func TestConvertHandler_Convert(t *testing.T) {
	f := &fakeFetcher{blocks: []notion.Block{
		{Type: "heading_1", Heading1: &notion.HeadingBlock{RichText: []notion.RichText{{PlainText: "Title"}}}},
		paragraph("Hello"),
		{Type: "unsupported"},
	}}
	h := newTestHandler(f, 0)
	resp, err := h.Convert(context.Background(), &dto.ConvertRequest{NotionURL: pageURL, NotionAPIKey: "secret_abc"})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if want := "# Title\n\nHello\n\n"; resp.Markdown != want {
		t.Errorf("Markdown = %q, want %q", resp.Markdown, want)
	}
	if resp.HTML != "" {
		t.Errorf("HTML = %q, want empty when not requested", resp.HTML)
	}
	if f.calls != 1 {
		t.Errorf("calls = %d, want 1", f.calls)
	}
	if f.token != "secret_abc" {
		t.Errorf("token = %q", f.token)
	}
	if want := "01234567-89ab-cdef-0123-456789abcdef"; f.blockID != want {
		t.Errorf("blockID = %q, want %q", f.blockID, want)
	}
	if f.maxDepth != 1 {
		t.Errorf("maxDepth = %d, want 1", f.maxDepth)
	}
}

func TestConvertHandler_MaxDepth(t *testing.T) {
	f := &fakeFetcher{}
	h := newTestHandler(f, 3)
	if _, err := h.Convert(context.Background(), &dto.ConvertRequest{NotionURL: pageURL, NotionAPIKey: "k"}); err != nil {
		t.Fatal(err)
	}
	if f.maxDepth != 3 {
		t.Errorf("maxDepth = %d, want 3", f.maxDepth)
	}
}

func TestConvertHandler_EmptyPage(t *testing.T) {
	h := newTestHandler(&fakeFetcher{}, 1)
	resp, err := h.Convert(context.Background(), &dto.ConvertRequest{NotionURL: pageURL, NotionAPIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Markdown != "" {
		t.Errorf("Markdown = %q, want empty", resp.Markdown)
	}
}

func TestConvertHandler_RenderHTML(t *testing.T) {
	f := &fakeFetcher{blocks: []notion.Block{paragraph("Hello")}}
	h := newTestHandler(f, 1)
	resp, err := h.Convert(context.Background(), &dto.ConvertRequest{NotionURL: pageURL, NotionAPIKey: "k", RenderHTML: true})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Markdown != "Hello\n\n" {
		t.Errorf("Markdown = %q", resp.Markdown)
	}
	if !strings.Contains(resp.HTML, "<p>Hello</p>") {
		t.Errorf("HTML = %q", resp.HTML)
	}
}

func TestConvertHandler_Errors(t *testing.T) {
	upstreamErr := &notion.Error{Status: 401, Code: "unauthorized", Message: "API token is invalid."}
	tests := []struct {
		name    string
		url     string
		fetch   error
		status  int
		code    dto.ErrorCode
		message string
		calls   int
	}{
		{"no id", "https://www.notion.so/acme/My-Page", nil, 400, dto.ErrorCodeInvalidFormat, dto.MsgInvalidURL, 0},
		{"short id", "https://www.notion.so/0123456789abcdef0123456789abcde", nil, 400, dto.ErrorCodeInvalidFormat, dto.MsgInvalidURL, 0},
		{"non hex", "https://www.notion.so/0123456789abcdef0123456789abcdeg", nil, 400, dto.ErrorCodeInvalidFormat, dto.MsgInvalidURL, 0},
		{"upstream api error", pageURL, upstreamErr, 500, dto.ErrorCodeUpstream, dto.MsgUpstreamFailed, 1},
		{"upstream transport error", pageURL, errors.New("dial tcp: connection refused"), 500, dto.ErrorCodeUpstream, dto.MsgUpstreamFailed, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{err: tt.fetch}
			h := newTestHandler(f, 1)
			resp, err := h.Convert(context.Background(), &dto.ConvertRequest{NotionURL: tt.url, NotionAPIKey: "k"})
			if resp != nil {
				t.Errorf("resp = %+v, want nil", resp)
			}
			var apiErr *dto.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *dto.APIError", err)
			}
			if apiErr.StatusCode() != tt.status {
				t.Errorf("StatusCode() = %d, want %d", apiErr.StatusCode(), tt.status)
			}
			if apiErr.Code() != tt.code {
				t.Errorf("Code() = %s, want %s", apiErr.Code(), tt.code)
			}
			if apiErr.Message() != tt.message {
				t.Errorf("Message() = %q, want %q", apiErr.Message(), tt.message)
			}
			if f.calls != tt.calls {
				t.Errorf("calls = %d, want %d", f.calls, tt.calls)
			}
			if tt.fetch != nil && !errors.Is(err, tt.fetch) {
				t.Error("upstream cause should be wrapped")
			}
		})
	}
}
