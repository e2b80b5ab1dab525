// Package discovery finds the text-bearing fields the analysis script reads,
// including fields that live on nested paragraph entities, and extracts their
// text from an entity.
package discovery

import (
	"context"
	"fmt"
	"sort"
)

// Field types inspected by discovery.
const (
	FieldTypeTextWithSummary          = "text_with_summary"
	FieldTypeTextLong                 = "text_long"
	FieldTypeStringLong               = "string_long"
	FieldTypeEntityReferenceRevisions = "entity_reference_revisions"

	// ParagraphEntityType is the composite sub-entity type embedded in content.
	ParagraphEntityType = "paragraph"
)

// TextFieldTypes lists the long-text field types in discovery order.
var TextFieldTypes = []string{
	FieldTypeTextWithSummary,
	FieldTypeTextLong,
	FieldTypeStringLong,
}

// FieldUsage maps a field name to the bundles using it.
type FieldUsage map[string][]string

// FieldMap maps an entity type to its field usages for one field type.
type FieldMap map[string]FieldUsage

// FieldMapReader answers which entity types and bundles use a field type.
type FieldMapReader interface {
	FieldMapByFieldType(ctx context.Context, fieldType string) (FieldMap, error)
}

// FilterTextFields returns the names of long-text fields attached to
// paragraph entities, sorted.
func FilterTextFields(ctx context.Context, reader FieldMapReader) ([]string, error) {
	names := make(map[string]struct{})
	for _, fieldType := range TextFieldTypes {
		fieldMap, err := reader.FieldMapByFieldType(ctx, fieldType)
		if err != nil {
			return nil, fmt.Errorf("discovery: field map for %s: %w", fieldType, err)
		}
		for name := range fieldMap[ParagraphEntityType] {
			names[name] = struct{}{}
		}
	}
	return sortedKeys(names), nil
}

// EntityReferenceRevisionsFieldNames returns every reference-revision field
// name across all entity types, sorted.
func EntityReferenceRevisionsFieldNames(ctx context.Context, reader FieldMapReader) ([]string, error) {
	fieldMap, err := reader.FieldMapByFieldType(ctx, FieldTypeEntityReferenceRevisions)
	if err != nil {
		return nil, fmt.Errorf("discovery: field map for %s: %w", FieldTypeEntityReferenceRevisions, err)
	}
	names := make(map[string]struct{})
	for _, usage := range fieldMap {
		for name := range usage {
			names[name] = struct{}{}
		}
	}
	return sortedKeys(names), nil
}

// AllFieldNames unions FilterTextFields (tagged true) and
// EntityReferenceRevisionsFieldNames (tagged false).
func AllFieldNames(ctx context.Context, reader FieldMapReader) (map[string]bool, error) {
	textFields, err := FilterTextFields(ctx, reader)
	if err != nil {
		return nil, err
	}
	references, err := EntityReferenceRevisionsFieldNames(ctx, reader)
	if err != nil {
		return nil, err
	}
	return MergeFieldNames(textFields, references), nil
}

// MergeFieldNames tags text fields true and reference fields false. A name in
// both lists keeps the text tag.
func MergeFieldNames(textFields, references []string) map[string]bool {
	out := make(map[string]bool, len(textFields)+len(references))
	for _, name := range references {
		out[name] = false
	}
	for _, name := range textFields {
		out[name] = true
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
