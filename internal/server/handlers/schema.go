// Serves JSON schemas of the conversion endpoint bodies.

package handlers

import (
	"context"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/maruel/notion2md/internal/server/dto"
)

// SchemaHandler returns JSON schemas reflected from the DTO types.
type SchemaHandler struct {
	once sync.Once
	resp *dto.SchemaResponse
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler() *SchemaHandler {
	return &SchemaHandler{}
}

// Schema returns the request, response and error schemas.
func (h *SchemaHandler) Schema(ctx context.Context, req *dto.SchemaRequest) (*dto.SchemaResponse, error) {
	h.once.Do(func() {
		r := &jsonschema.Reflector{DoNotReference: true}
		h.resp = &dto.SchemaResponse{
			Request:  r.Reflect(&dto.ConvertRequest{}),
			Response: r.Reflect(&dto.ConvertResponse{}),
			Error:    r.Reflect(&dto.ErrorResponse{}),
		}
	})
	return h.resp, nil
}
