// Package document loads YAML, JSON and CUE files as object graphs the
// engine can tokenize, and encodes them back in their own format.
//
// A loaded document is a map[string]any tree: mappings are records whose
// keys are fields, sequences are []any, and everything else is a scalar.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/format"
	"gopkg.in/yaml.v3"
)

// Format is a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	}
	return "", &LoadError{Code: ErrCodeFormat, Path: path, Message: fmt.Sprintf("unsupported extension %q", filepath.Ext(path))}
}

// Document is a decoded file.
type Document struct {
	Path   string
	Format Format
	Root   map[string]any
}

// Load reads and decodes the file at path.
func Load(path string) (*Document, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Path: path, Message: err.Error()}
	}
	root, err := Decode(data, f)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDecode, Path: path, Message: err.Error()}
	}
	return &Document{Path: path, Format: f, Root: root}, nil
}

// Decode parses data as a document of format f. The top level must be a
// mapping.
func Decode(data []byte, f Format) (map[string]any, error) {
	var root any
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&root); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatCUE:
		v := cuecontext.New().CompileBytes(data)
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("compile cue: %w", err)
		}
		if err := v.Validate(cue.Concrete(true)); err != nil {
			return nil, fmt.Errorf("validate cue: %w", err)
		}
		if err := v.Decode(&root); err != nil {
			return nil, fmt.Errorf("decode cue: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}

	if root == nil {
		return map[string]any{}, nil
	}
	m, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document root must be a mapping, got %T", root)
	}
	return m, nil
}

// Encode renders root in format f.
func Encode(root map[string]any, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(root); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(root); err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return buf.Bytes(), nil
	case FormatCUE:
		v := cuecontext.New().Encode(root)
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("encode cue: %w", err)
		}
		out, err := format.Node(v.Syntax(cue.Final(), cue.Concrete(true)))
		if err != nil {
			return nil, fmt.Errorf("format cue: %w", err)
		}
		return append(out, '\n'), nil
	}
	return nil, fmt.Errorf("unknown format %q", f)
}

// Encode renders the document in its own format.
func (d *Document) Encode() ([]byte, error) {
	return Encode(d.Root, d.Format)
}

// Write encodes the document to path, in the format implied by path.
func (d *Document) Write(path string) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(d.Root, f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
