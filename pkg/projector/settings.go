package projector

import "github.com/goliatone/go-seoform/pkg/markup"

// Settings is the dictionary delivered to the client script. Key names are
// the wire contract.
type Settings struct {
	Fields              map[string]any    `json:"fields"`
	Tokens              map[string]string `json:"tokens"`
	Targets             markup.Targets    `json:"targets"`
	DefaultText         DefaultText       `json:"default_text"`
	PlaceholderText     PlaceholderText   `json:"placeholder_text"`
	SEOTitleOverwritten bool              `json:"seo_title_overwritten"`
	TextFormat          string            `json:"text_format"`
	FormID              string            `json:"form_id"`
}

// DefaultText carries the author-provided values, or "" when empty.
type DefaultText struct {
	MetaTitle       string `json:"meta_title"`
	Keyword         string `json:"keyword"`
	MetaDescription string `json:"meta_description"`
	Body            string `json:"body"`
	Path            string `json:"path"`
}

// PlaceholderText holds the prompts shown in an empty snippet preview.
type PlaceholderText struct {
	SnippetTitle string `json:"snippetTitle"`
	SnippetMeta  string `json:"snippetMeta"`
	SnippetCite  string `json:"snippetCite"`
}

// Placeholder prompts, also used as translation keys.
const (
	PlaceholderSnippetTitle = "Please click here to edit the snippet title"
	PlaceholderSnippetMeta  = "Please click here and edit the snippet meta description"
	PlaceholderSnippetCite  = "Please click here to edit the snippet url"
)

// Translator localises prompt strings.
type Translator interface {
	Translate(locale, key string) (string, error)
}
