package diagram

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/umlsvg/pkg/errors"
)

// Syntax is the serialization of a diagram document.
type Syntax string

const (
	SyntaxJSON Syntax = "json"
	SyntaxYAML Syntax = "yaml"
)

// SyntaxFor picks the syntax from a file extension. Anything that is not
// .yaml or .yml is read as JSON.
func SyntaxFor(path string) Syntax {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return SyntaxYAML
	default:
		return SyntaxJSON
	}
}

// DecodeOptions controls [Decode].
type DecodeOptions struct {
	// SkipSchema disables validation against the embedded schema.
	SkipSchema bool
}

// Decode parses a diagram document. Unless opts.SkipSchema is set the
// document is first checked against the embedded schema, so structural
// problems surface as SCHEMA_VIOLATION with a path to the offending field.
func Decode(data []byte, syntax Syntax, opts DecodeOptions) (*Diagram, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidDiagram, "empty document")
	}

	if !opts.SkipSchema {
		var raw any
		if err := unmarshal(data, syntax, &raw); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidDiagram, err, "parse %s", syntax)
		}
		if err := ValidateSchema(raw); err != nil {
			return nil, err
		}
	}

	var d Diagram
	if err := unmarshal(data, syntax, &d); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidDiagram, err, "parse %s", syntax)
	}
	return &d, nil
}

func unmarshal(data []byte, syntax Syntax, v any) error {
	if syntax == SyntaxYAML {
		return yaml.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

// Read decodes a diagram from r.
func Read(r io.Reader, syntax Syntax, opts DecodeOptions) (*Diagram, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read diagram")
	}
	return Decode(data, syntax, opts)
}

// Load reads a diagram file, choosing the syntax from its extension.
// The path "-" reads JSON from standard input.
func Load(path string, opts DecodeOptions) (*Diagram, error) {
	if path == "-" {
		return Read(os.Stdin, SyntaxJSON, opts)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "diagram %s", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read %s", path)
	}
	return Decode(data, SyntaxFor(path), opts)
}

// Encode writes d in the given syntax. JSON output is indented.
func Encode(w io.Writer, d *Diagram, syntax Syntax) error {
	if syntax == SyntaxYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
