package dto

import "github.com/invopop/jsonschema"

// ConvertResponse is the Markdown conversion of a Notion page.
type ConvertResponse struct {
	Markdown string `json:"markdown" jsonschema:"description=Markdown conversion of the page blocks"`
	HTML     string `json:"html,omitempty" jsonschema:"description=HTML rendering of the Markdown when requested"`
}

// HealthResponse is a response from the health check endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// SchemaResponse holds JSON schemas of the convert endpoint bodies.
type SchemaResponse struct {
	Request  *jsonschema.Schema `json:"request"`
	Response *jsonschema.Schema `json:"response"`
	Error    *jsonschema.Schema `json:"error"`
}
