package config

import "sort"

// FieldsConfiguration is the immutable base configuration shared by every
// projection. Per-request additions go through an Overlay.
type FieldsConfiguration struct {
	// Paths maps a field name to its dotted path in the form tree.
	Paths map[string]string `json:"paths" yaml:"paths"`
	// Fields lists the field names surfaced to the client, in order.
	Fields []string `json:"fields" yaml:"fields"`
	// Tokens maps a placeholder token to the field name it resolves to.
	Tokens map[string]string `json:"tokens" yaml:"tokens"`
}

// Default returns the built-in configuration.
func Default() FieldsConfiguration {
	return FieldsConfiguration{
		Paths: map[string]string{
			"title":         "title.widget.0.value",
			"summary":       "summary.widget.0.value",
			"focus_keyword": "field_yoast_seo.widget.0.yoast_seo.focus_keyword",
			"seo_status":    "field_yoast_seo.widget.0.yoast_seo.status",
			"path":          "path.widget.0.alias",
		},
		Fields: []string{"title", "summary", "focus_keyword", "seo_status", "path"},
		Tokens: map[string]string{
			"[current-page:title]":   "title",
			"[node:title]":           "title",
			"[current-page:summary]": "summary",
			"[node:summary]":         "summary",
		},
	}
}

// Clone returns a deep copy.
func (c FieldsConfiguration) Clone() FieldsConfiguration {
	return FieldsConfiguration{
		Paths:  copyStrings(c.Paths),
		Fields: append([]string(nil), c.Fields...),
		Tokens: copyStrings(c.Tokens),
	}
}

// Derive starts a per-request overlay on top of c. The overlay never writes
// into c.
func (c FieldsConfiguration) Derive() *Overlay {
	return &Overlay{
		base:   c,
		paths:  make(map[string]string),
		tokens: make(map[string]string),
	}
}

// Overlay extends a base configuration for a single projection.
type Overlay struct {
	base   FieldsConfiguration
	paths  map[string]string
	fields []string
	tokens map[string]string
}

// SetPath records or overrides the path of a field.
func (o *Overlay) SetPath(field, path string) {
	o.paths[field] = path
}

// Path resolves the path of a field, overlay first.
func (o *Overlay) Path(field string) (string, bool) {
	if path, ok := o.paths[field]; ok {
		return path, true
	}
	path, ok := o.base.Paths[field]
	return path, ok
}

// AppendField adds a field to the ordered list unless already present.
func (o *Overlay) AppendField(field string) {
	for _, existing := range o.Fields() {
		if existing == field {
			return
		}
	}
	o.fields = append(o.fields, field)
}

// Fields returns the base fields followed by the overlay additions.
func (o *Overlay) Fields() []string {
	out := make([]string, 0, len(o.base.Fields)+len(o.fields))
	out = append(out, o.base.Fields...)
	return append(out, o.fields...)
}

// AddToken maps token to field.
func (o *Overlay) AddToken(token, field string) {
	o.tokens[token] = field
}

// Tokens returns the merged token map.
func (o *Overlay) Tokens() map[string]string {
	out := copyStrings(o.base.Tokens)
	if out == nil {
		out = make(map[string]string, len(o.tokens))
	}
	for token, field := range o.tokens {
		out[token] = field
	}
	return out
}

// TokenNames returns the merged tokens sorted.
func (o *Overlay) TokenNames() []string {
	tokens := o.Tokens()
	out := make([]string, 0, len(tokens))
	for token := range tokens {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

func copyStrings(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
