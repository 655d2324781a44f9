package spec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseJSON decodes a specification document from JSON. Missing
// optional sections default to empty; only the id is required.
func ParseJSON(data []byte) (*Specification, error) {
	var s Specification
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse specification: %w", err)
	}
	normalize(&s)
	if s.ID == "" {
		return nil, fmt.Errorf("specification has no id")
	}
	return &s, nil
}

// ParseYAML decodes a specification document from YAML.
func ParseYAML(data []byte) (*Specification, error) {
	var s Specification
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse specification: %w", err)
	}
	normalize(&s)
	if s.ID == "" {
		return nil, fmt.Errorf("specification has no id")
	}
	return &s, nil
}

// LoadFile reads a specification document, choosing the decoder by
// file extension. JSON documents are additionally checked against the
// embedded schema; schema violations are returned, not fatal to the
// caller's wider loading loop.
func LoadFile(path string) (*Specification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json":
		if err := ValidateDocument(data); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported specification format: %s", filepath.Ext(path))
	}
}

// normalize fills defaulted fields so downstream code never branches
// on nil slices or an empty layout kind.
func normalize(s *Specification) {
	if s.Layout.Kind == "" {
		s.Layout.Kind = LayoutFlow
	}
	if s.Nodes == nil {
		s.Nodes = []Node{}
	}
	if s.Edges == nil {
		s.Edges = []Edge{}
	}
	if s.Title == "" {
		s.Title = s.ID
	}
}
