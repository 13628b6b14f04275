package handlers

import (
	"context"
	"encoding/json"
	"slices"
	"testing"

	"github.com/maruel/notion2md/internal/server/dto"
)

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"release", "v1.2.3"},
		{"dev version", "dev"},
		{"empty version", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := NewHealthHandler(tt.version).Health(context.Background(), &dto.HealthRequest{})
			if err != nil {
				t.Fatalf("Health() error = %v", err)
			}
			if resp.Status != "ok" {
				t.Errorf("Status = %q, want ok", resp.Status)
			}
			if resp.Version != tt.version {
				t.Errorf("Version = %q, want %q", resp.Version, tt.version)
			}
		})
	}
}

func TestSchemaHandler_Schema(t *testing.T) {
	h := NewSchemaHandler()
	resp, err := h.Schema(context.Background(), &dto.SchemaRequest{})
	if err != nil {
		t.Fatal(err)
	}
	again, _ := h.Schema(context.Background(), &dto.SchemaRequest{})
	if again != resp {
		t.Error("schemas should be computed once")
	}

	if !slices.Equal(resp.Request.Required, []string{"notionUrl", "notionApiKey"}) {
		t.Errorf("request required = %v", resp.Request.Required)
	}
	for _, name := range []string{"notionUrl", "notionApiKey", "renderHtml"} {
		if _, ok := resp.Request.Properties.Get(name); !ok {
			t.Errorf("request schema lacks %q", name)
		}
	}
	if _, ok := resp.Response.Properties.Get("markdown"); !ok {
		t.Error("response schema lacks markdown")
	}
	if _, ok := resp.Error.Properties.Get("message"); !ok {
		t.Error("error schema lacks message")
	}

	// Must serialize cleanly since it is served as JSON.
	if _, err := json.Marshal(resp); err != nil {
		t.Fatal(err)
	}
}
