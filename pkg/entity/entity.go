// Package entity describes the content entity being edited, as seen by the
// projector and the text processor.
package entity

import (
	"encoding/json"
	"fmt"
)

// ReferenceKey is the item key holding a referenced entity.
const ReferenceKey = "entity"

// Item is one value of a multi-value field, e.g. {"value": "...", "format": "basic_html"}.
type Item map[string]any

// Entity is a content entity with named multi-value fields.
type Entity interface {
	EntityTypeID() string
	Bundle() string
	ID() string
	FieldItems(name string) ([]Item, bool)
}

// Reference returns the entity referenced by an item, if any.
func (i Item) Reference() (Entity, bool) {
	ref, ok := i[ReferenceKey].(Entity)
	return ref, ok && ref != nil
}

// String returns the item value under key rendered as a string.
func (i Item) String(key string) (string, bool) {
	value, ok := i[key]
	if !ok || value == nil {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// Memory is a plain in-memory entity. Items referencing other entities are
// decoded from nested objects under "entity".
type Memory struct {
	Type     string            `json:"entity_type"`
	BundleID string            `json:"bundle"`
	EntityID string            `json:"id"`
	Fields   map[string][]Item `json:"fields"`
}

var _ Entity = (*Memory)(nil)

func (m *Memory) EntityTypeID() string { return m.Type }
func (m *Memory) Bundle() string       { return m.BundleID }
func (m *Memory) ID() string           { return m.EntityID }

func (m *Memory) FieldItems(name string) ([]Item, bool) {
	if m == nil {
		return nil, false
	}
	items, ok := m.Fields[name]
	return items, ok
}

// UnmarshalJSON decodes nested "entity" objects into *Memory references.
func (m *Memory) UnmarshalJSON(data []byte) error {
	type rawItem map[string]json.RawMessage
	var raw struct {
		Type     string               `json:"entity_type"`
		BundleID string               `json:"bundle"`
		EntityID string               `json:"id"`
		Fields   map[string][]rawItem `json:"fields"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("entity: decode: %w", err)
	}

	m.Type = raw.Type
	m.BundleID = raw.BundleID
	m.EntityID = raw.EntityID
	m.Fields = make(map[string][]Item, len(raw.Fields))
	for name, items := range raw.Fields {
		decoded := make([]Item, 0, len(items))
		for _, item := range items {
			out := make(Item, len(item))
			for key, value := range item {
				if key == ReferenceKey {
					ref := &Memory{}
					if err := ref.UnmarshalJSON(value); err != nil {
						return fmt.Errorf("entity: field %s reference: %w", name, err)
					}
					out[key] = ref
					continue
				}
				var v any
				if err := json.Unmarshal(value, &v); err != nil {
					return fmt.Errorf("entity: field %s: %w", name, err)
				}
				out[key] = v
			}
			decoded = append(decoded, out)
		}
		m.Fields[name] = decoded
	}
	return nil
}
