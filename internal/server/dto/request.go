package dto

// Client-facing messages of the convert endpoint.
const (
	MsgFieldsRequired = "Notion URL and API Key are required"
	MsgInvalidURL     = "Invalid Notion URL"
	MsgUpstreamFailed = "Error fetching data from Notion"
	MsgInvalidBody    = "Invalid request body"
)

// --- Convert ---

// ConvertRequest is a request to convert a Notion page to Markdown.
type ConvertRequest struct {
	NotionURL    string `json:"notionUrl" jsonschema:"description=URL of the Notion page; must contain the 32 hex digit page id"`
	NotionAPIKey string `json:"notionApiKey" jsonschema:"description=Notion integration token sent as a bearer credential"`
	RenderHTML   bool   `json:"renderHtml,omitempty" jsonschema:"description=Also return the Markdown rendered as HTML"`
}

// Validate validates the convert request fields.
func (r *ConvertRequest) Validate() error {
	var missing []string
	if r.NotionURL == "" {
		missing = append(missing, "notionUrl")
	}
	if r.NotionAPIKey == "" {
		missing = append(missing, "notionApiKey")
	}
	if len(missing) > 0 {
		return MissingField(MsgFieldsRequired, missing...)
	}
	return nil
}

// --- Health ---

// HealthRequest is a request to check server health.
type HealthRequest struct{}

// Validate is a no-op for HealthRequest.
func (r *HealthRequest) Validate() error {
	return nil
}

// --- Schema ---

// SchemaRequest is a request for the API JSON schemas.
type SchemaRequest struct{}

// Validate is a no-op for SchemaRequest.
func (r *SchemaRequest) Validate() error {
	return nil
}
