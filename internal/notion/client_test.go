package notion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeNotion serves canned block children keyed by block ID.
type fakeNotion struct {
	mu       sync.Mutex
	children map[string]string
	requests []*http.Request
}

func (f *fakeNotion) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()

	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/blocks/"), "/children")
	body, ok := f.children[id]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"object":"error","status":404,"code":"object_not_found","message":"Could not find block"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClientWithOptions("secret_token", Options{BaseURL: srv.URL})
}

func TestClient_ListBlockChildren(t *testing.T) {
	fake := &fakeNotion{children: map[string]string{
		"page": `{"object":"list","results":[
			{"object":"block","id":"b1","type":"paragraph","paragraph":{"rich_text":[{"type":"text","plain_text":"Hi","annotations":{"bold":true}}]}},
			{"object":"block","id":"b2","type":"to_do","to_do":{"rich_text":[{"plain_text":"Task"}],"checked":true}}
		],"next_cursor":"abc","has_more":true}`,
	}}
	c := newTestClient(t, fake)

	blocks, err := c.ListBlockChildren(context.Background(), "page")
	if err != nil {
		t.Fatalf("ListBlockChildren() error = %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[0].Paragraph == nil || !blocks[0].Paragraph.RichText[0].Annotations.Bold {
		t.Errorf("paragraph not decoded: %+v", blocks[0])
	}
	if blocks[1].ToDo == nil || !blocks[1].ToDo.Checked {
		t.Errorf("to_do not decoded: %+v", blocks[1])
	}

	if len(fake.requests) != 1 {
		t.Fatalf("got %d requests, want exactly 1 (has_more must not be followed)", len(fake.requests))
	}
	r := fake.requests[0]
	if got := r.Header.Get("Authorization"); got != "Bearer secret_token" {
		t.Errorf("Authorization = %q", got)
	}
	if got := r.Header.Get("Notion-Version"); got != APIVersion {
		t.Errorf("Notion-Version = %q, want %q", got, APIVersion)
	}
	if got := r.URL.Query().Get("page_size"); got != "100" {
		t.Errorf("page_size = %q, want 100", got)
	}
}

func TestClient_APIError(t *testing.T) {
	c := newTestClient(t, &fakeNotion{})

	_, err := c.ListBlockChildren(context.Background(), "missing")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Code != "object_not_found" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestClient_NonJSONError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))

	_, err := c.ListBlockChildren(context.Background(), "page")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		t.Errorf("unexpected *Error for non-JSON body: %v", apiErr)
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error %q should mention the status", err)
	}
}

func TestClient_MalformedBody(t *testing.T) {
	c := newTestClient(t, &fakeNotion{children: map[string]string{"page": `{"results": [`}})

	if _, err := c.ListBlockChildren(context.Background(), "page"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestClient_MalformedBlockPayload(t *testing.T) {
	c := newTestClient(t, &fakeNotion{children: map[string]string{"page": `{"object":"list","results":[
		{"object":"block","id":"b1","type":"paragraph","paragraph":{"rich_text":[{"plain_text":"ok"}]}},
		{"object":"block","id":"b2","type":"paragraph","has_children":true,"paragraph":{"rich_text":{"bogus":true}}},
		{"object":"block","id":7,"type":"paragraph"},
		{"object":"block","id":"b4","type":"paragraph","paragraph":{"rich_text":[{"plain_text":"tail"}]}}
	]}`}})

	blocks, err := c.ListBlockChildren(context.Background(), "page")
	if err != nil {
		t.Fatalf("ListBlockChildren() error = %v", err)
	}
	if len(blocks) != 4 {
		t.Fatalf("got %d blocks, want 4", len(blocks))
	}
	if b := blocks[1]; b.ID != "b2" || b.Type != "paragraph" || !b.HasChildren || b.Paragraph != nil {
		t.Errorf("malformed block = %+v, want identity kept with no payload", b)
	}
	if b := blocks[2]; b.Type != "" {
		t.Errorf("undecodable block = %+v, want zero block", b)
	}
	if got, want := BlocksToMarkdown(blocks), "ok\n\n\n\ntail\n\n"; got != want {
		t.Errorf("BlocksToMarkdown() = %q, want %q", got, want)
	}
}

func TestClient_CanceledContext(t *testing.T) {
	c := newTestClient(t, &fakeNotion{children: map[string]string{"page": `{"results":[]}`}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.ListBlockChildren(ctx, "page"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestClient_GetBlockChildrenRecursive(t *testing.T) {
	fake := &fakeNotion{children: map[string]string{
		"page": `{"results":[
			{"id":"t1","type":"toggle","has_children":true,"toggle":{"rich_text":[{"plain_text":"More"}]}},
			{"id":"p1","type":"paragraph","paragraph":{"rich_text":[{"plain_text":"After"}]}}
		]}`,
		"t1": `{"results":[
			{"id":"n1","type":"toggle","has_children":true,"toggle":{"rich_text":[{"plain_text":"Nested"}]}}
		]}`,
		"n1": `{"results":[
			{"id":"p2","type":"paragraph","paragraph":{"rich_text":[{"plain_text":"Deep"}]}}
		]}`,
	}}
	c := newTestClient(t, fake)

	t.Run("depth 1 is a single call", func(t *testing.T) {
		blocks, err := c.GetBlockChildrenRecursive(context.Background(), "page", 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(blocks) != 2 || blocks[0].Children != nil {
			t.Errorf("unexpected children at depth 1: %+v", blocks)
		}
	})

	t.Run("depth 2", func(t *testing.T) {
		blocks, err := c.GetBlockChildrenRecursive(context.Background(), "page", 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(blocks[0].Children) != 1 {
			t.Fatalf("toggle children = %d, want 1", len(blocks[0].Children))
		}
		if blocks[0].Children[0].Children != nil {
			t.Error("depth 2 should not fetch grandchildren")
		}
	})

	t.Run("unlimited", func(t *testing.T) {
		blocks, err := c.GetBlockChildrenRecursive(context.Background(), "page", 0)
		if err != nil {
			t.Fatal(err)
		}
		got := BlocksToMarkdown(blocks)
		want := "<details><summary>More</summary>\n\n<details><summary>Nested</summary>\n\nDeep\n\n</details>\n\n</details>\n\nAfter\n\n"
		if got != want {
			t.Errorf("markdown =\n%q\nwant\n%q", got, want)
		}
	})
}
