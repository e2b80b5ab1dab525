package discovery

import (
	"context"
	"html"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-seoform/pkg/entity"
)

// TextProcessor extracts analysable text from an entity. names tags each
// field: true for text fields, false for reference-revision fields whose
// referenced entities are searched for text fields.
type TextProcessor interface {
	Process(ctx context.Context, e entity.Entity, names map[string]bool) (map[string]string, error)
}

// maxReferenceDepth bounds descent through nested paragraphs.
const maxReferenceDepth = 8

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// HTMLTextProcessor reads "value" (and "summary") of text fields and strips
// markup. Reference fields contribute the text of their referenced entities.
type HTMLTextProcessor struct{}

// NewHTMLTextProcessor returns the default processor.
func NewHTMLTextProcessor() *HTMLTextProcessor {
	return &HTMLTextProcessor{}
}

var _ TextProcessor = (*HTMLTextProcessor)(nil)

// Process returns field name to extracted text for every name present on e.
func (p *HTMLTextProcessor) Process(ctx context.Context, e entity.Entity, names map[string]bool) (map[string]string, error) {
	out := make(map[string]string)
	if e == nil || len(names) == 0 {
		return out, nil
	}
	for _, name := range sortedNames(names) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items, ok := e.FieldItems(name)
		if !ok {
			continue
		}
		var text string
		if names[name] {
			text = itemsText(items)
		} else {
			text = p.referencedText(items, names, 1)
		}
		out[name] = text
	}
	return out, nil
}

func (p *HTMLTextProcessor) referencedText(items []entity.Item, names map[string]bool, depth int) string {
	if depth > maxReferenceDepth {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		ref, ok := item.Reference()
		if !ok {
			continue
		}
		for _, name := range sortedNames(names) {
			refItems, ok := ref.FieldItems(name)
			if !ok {
				continue
			}
			var text string
			if names[name] {
				text = itemsText(refItems)
			} else {
				text = p.referencedText(refItems, names, depth+1)
			}
			if text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, " ")
}

func itemsText(items []entity.Item) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		for _, key := range []string{"summary", "value"} {
			raw, ok := item.String(key)
			if !ok {
				continue
			}
			if text := StripMarkup(raw); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, " ")
}

// StripMarkup removes every tag from raw, decodes entities and collapses
// whitespace.
func StripMarkup(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	// Tag boundaries become spaces so adjacent blocks do not merge words.
	spaced := strings.ReplaceAll(raw, "<", " <")
	cleaned := html.UnescapeString(textPolicy.Sanitize(spaced))
	return strings.Join(strings.Fields(cleaned), " ")
}

func sortedNames(names map[string]bool) []string {
	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
