package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/tally/pkg/core"
)

// Serializer defines how a whole document is stored in a specific file format.
type Serializer interface {
	// Decode parses stored bytes into a Document.
	Decode(data []byte) (core.Document, error)
	// Encode converts the Document to bytes.
	Encode(doc core.Document) ([]byte, error)
}

// DefaultSerializers returns the standard set of serializers keyed by extension.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		".json": NewJSONSerializer(),
		".yaml": NewYAMLSerializer(),
		".yml":  NewYAMLSerializer(),
	}
}

// SerializerFor picks the serializer matching the extension of path,
// falling back to JSON.
func SerializerFor(path string) Serializer {
	ext := strings.ToLower(filepath.Ext(path))
	if s, ok := DefaultSerializers()[ext]; ok {
		return s
	}
	return NewJSONSerializer()
}

// legacyDocument accepts files written before the collection key was renamed
// from "projects" to "records".
type legacyDocument struct {
	Version  int           `json:"version" yaml:"version"`
	Meta     core.Meta     `json:"meta" yaml:"meta"`
	Records  []core.Record `json:"records" yaml:"records"`
	Projects []core.Record `json:"projects" yaml:"projects"`
}

func (l legacyDocument) document() core.Document {
	doc := core.Document{Version: l.Version, Meta: l.Meta, Records: l.Records}
	if doc.Records == nil && l.Projects != nil {
		doc.Records = l.Projects
	}
	doc.Sanitize()
	return doc
}

// --- JSON Serializer ---

// JSONSerializer stores documents as indented JSON. Text is written verbatim:
// no HTML escaping, newlines kept as JSON escapes.
type JSONSerializer struct{}

func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

func (s *JSONSerializer) Decode(data []byte) (core.Document, error) {
	var payload legacyDocument
	if err := json.Unmarshal(data, &payload); err != nil {
		return core.Document{}, fmt.Errorf("invalid json: %w", err)
	}
	return payload.document(), nil
}

func (s *JSONSerializer) Encode(doc core.Document) ([]byte, error) {
	if doc.Records == nil {
		doc.Records = []core.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --- YAML Serializer ---

type YAMLSerializer struct{}

func NewYAMLSerializer() *YAMLSerializer {
	return &YAMLSerializer{}
}

func (s *YAMLSerializer) Decode(data []byte) (core.Document, error) {
	var payload legacyDocument
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return core.Document{}, fmt.Errorf("invalid yaml: %w", err)
	}
	return payload.document(), nil
}

func (s *YAMLSerializer) Encode(doc core.Document) ([]byte, error) {
	if doc.Records == nil {
		doc.Records = []core.Record{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
