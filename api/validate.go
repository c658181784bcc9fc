package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/qri-io/jsonschema"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// Request body schemas, keyed by file name without extension.
const (
	schemaPostingCreate   = "posting_create"
	schemaPostingUpdate   = "posting_update"
	schemaApplicantCreate = "applicant_create"
	schemaApplicantUpdate = "applicant_update"
)

var schemas = mustLoadSchemas()

func mustLoadSchemas() map[string]*jsonschema.Schema {
	entries, err := schemaFiles.ReadDir("schemas")
	if err != nil {
		panic(fmt.Sprintf("read embedded schemas: %v", err))
	}

	out := make(map[string]*jsonschema.Schema, len(entries))
	for _, e := range entries {
		b, err := schemaFiles.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			panic(fmt.Sprintf("read schema %s: %v", e.Name(), err))
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(b, rs); err != nil {
			panic(fmt.Sprintf("compile schema %s: %v", e.Name(), err))
		}
		out[strings.TrimSuffix(e.Name(), ".json")] = rs
	}

	return out
}

// FieldError describes one schema violation in a request body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// validateBody checks body against the named schema. It returns the
// violations, or an error when the body could not be validated at all.
func validateBody(ctx context.Context, name string, body []byte) ([]FieldError, error) {
	rs, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	kerrs, err := rs.ValidateBytes(ctx, body)
	if err != nil {
		return nil, err
	}
	if len(kerrs) == 0 {
		return nil, nil
	}

	out := make([]FieldError, 0, len(kerrs))
	for _, ke := range kerrs {
		field := strings.TrimPrefix(ke.PropertyPath, "/")
		out = append(out, FieldError{Field: field, Message: ke.Message})
	}

	return out, nil
}
