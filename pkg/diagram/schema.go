package diagram

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	errs "github.com/matzehuels/umlsvg/pkg/errors"
)

const schemaURL = "https://umlsvg.dev/schema/diagram.json"

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Schema returns the embedded JSON schema document.
func Schema() []byte { return schemaJSON }

// ValidateSchema checks a decoded document (as produced by encoding/json or
// yaml.v3 into an any) against the diagram schema.
func ValidateSchema(doc any) error {
	s, err := compiledSchema()
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "compile diagram schema")
	}

	// Round-trip through JSON so YAML integers and maps take the shapes the
	// validator expects.
	b, err := json.Marshal(doc)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidDiagram, err, "encode document")
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidDiagram, err, "decode document")
	}

	if err := s.Validate(v); err != nil {
		return errs.Wrap(errs.ErrCodeSchemaViolation, err, "document does not match the diagram schema")
	}
	return nil
}
