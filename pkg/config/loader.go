package config

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yaml
var embeddedDefaults embed.FS

// DefaultDocumentName is the embedded defaults file.
const DefaultDocumentName = "defaults.yaml"

var (
	// ErrEmptyDocument reports a blank configuration document.
	ErrEmptyDocument = errors.New("config: document is empty")
	// ErrUnknownField reports a field or token without a configured path.
	ErrUnknownField = errors.New("config: field has no path")
)

// Document is the on-disk configuration.
type Document struct {
	FieldsConfiguration `yaml:",inline"`
	Site                StaticSite `json:"site" yaml:"site"`
	ScoreRules          ScoreRules `json:"score_rules" yaml:"score_rules"`
}

// EmbeddedFS returns the bundled defaults.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedDefaults, "defaults")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}

// LoadDefaults parses the embedded defaults document.
func LoadDefaults() (Document, error) {
	return LoadFS(EmbeddedFS(), DefaultDocumentName)
}

// LoadFS reads and parses name from fsys.
func LoadFS(fsys fs.FS, name string) (Document, error) {
	if fsys == nil {
		return Document{}, errors.New("config: filesystem is required")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Document{}, fmt.Errorf("config: read %s: %w", name, err)
	}
	return Load(data, name)
}

// Load parses a JSON or YAML document. Sections left out fall back to the
// built-in defaults; every listed field and every token target must have a
// path.
func Load(data []byte, source string) (Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Document{}, fmt.Errorf("%w: %s", ErrEmptyDocument, source)
	}

	doc, err := parseDocument(data, source)
	if err != nil {
		return Document{}, err
	}

	defaults := Default()
	if len(doc.Paths) == 0 {
		doc.Paths = defaults.Paths
	}
	if len(doc.Fields) == 0 {
		doc.Fields = defaults.Fields
	}
	if doc.Tokens == nil {
		doc.Tokens = defaults.Tokens
	}
	if len(doc.ScoreRules) == 0 {
		doc.ScoreRules = DefaultScoreRules()
	}
	if doc.Site == nil {
		doc.Site = StaticSite{}
	}

	if err := doc.FieldsConfiguration.Validate(); err != nil {
		return Document{}, fmt.Errorf("config: %s: %w", source, err)
	}
	return doc, nil
}

// Validate checks that fields and token targets resolve to paths.
func (c FieldsConfiguration) Validate() error {
	for _, field := range c.Fields {
		if strings.TrimSpace(c.Paths[field]) == "" {
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
	}
	for token, field := range c.Tokens {
		if strings.TrimSpace(c.Paths[field]) == "" {
			return fmt.Errorf("%w: token %s targets %q", ErrUnknownField, token, field)
		}
	}
	return nil
}

func parseDocument(data []byte, source string) (Document, error) {
	var doc Document
	jsonErr := json.Unmarshal(data, &doc)
	if jsonErr == nil {
		return doc, nil
	}

	doc = Document{}
	yamlErr := yaml.Unmarshal(data, &doc)
	if yamlErr == nil {
		return doc, nil
	}

	return Document{}, fmt.Errorf("config: parse %s: invalid JSON (%v) or YAML: %w", source, jsonErr, yamlErr)
}
