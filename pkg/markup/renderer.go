// Package markup renders the two HTML snippets the analysis widget mounts
// into: the snippet editor and the overall score badge.
package markup

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-seoform/pkg/config"
	"github.com/goliatone/go-seoform/pkg/render/template"
	"github.com/goliatone/go-seoform/pkg/render/template/gotemplate"
)

// Template names, also used as go-theme template keys.
const (
	SnippetTemplate      = "snippet"
	OverallScoreTemplate = "overall_score"

	ThemeSnippetKey      = "seo.snippet"
	ThemeOverallScoreKey = "seo.overall_score"
)

// Targets are the DOM ids the client script renders into.
type Targets struct {
	WrapperTargetID string `json:"wrapper_target_id"`
	SnippetTargetID string `json:"snippet_target_id"`
	OutputTargetID  string `json:"output_target_id"`
}

// Renderer produces the widget markup.
type Renderer interface {
	SnippetEditorMarkup(ctx context.Context, targets Targets) (string, error)
	OverallScoreMarkup(ctx context.Context, score float64) (string, error)
}

// Option customises a TemplateRenderer.
type Option func(*TemplateRenderer)

// WithEngine replaces the embedded pongo2 engine.
func WithEngine(engine template.TemplateRenderer) Option {
	return func(r *TemplateRenderer) {
		r.engine = engine
	}
}

// WithScoreRules overrides the score to status mapping.
func WithScoreRules(rules config.ScoreRules) Option {
	return func(r *TemplateRenderer) {
		if len(rules) > 0 {
			r.rules = rules
		}
	}
}

// WithStatusLabels overrides the human label per status.
func WithStatusLabels(labels map[string]string) Option {
	return func(r *TemplateRenderer) {
		for status, label := range labels {
			r.labels[status] = label
		}
	}
}

// WithScoreTitle overrides the badge title.
func WithScoreTitle(title string) Option {
	return func(r *TemplateRenderer) {
		if strings.TrimSpace(title) != "" {
			r.scoreTitle = title
		}
	}
}

// WithThemeSelector resolves template overrides from a go-theme selection.
// Variant templates win over base manifest templates.
func WithThemeSelector(selector theme.ThemeSelector, themeName, variant string) Option {
	return func(r *TemplateRenderer) {
		r.selector = selector
		r.themeName = themeName
		r.variant = variant
	}
}

// TemplateRenderer renders markup through a template engine and sanitises
// the result.
type TemplateRenderer struct {
	engine     template.TemplateRenderer
	rules      config.ScoreRules
	labels     map[string]string
	scoreTitle string

	selector  theme.ThemeSelector
	themeName string
	variant   string
}

var _ Renderer = (*TemplateRenderer)(nil)

// New builds a TemplateRenderer over the embedded templates unless an engine
// is supplied.
func New(options ...Option) (*TemplateRenderer, error) {
	r := &TemplateRenderer{
		rules:      config.DefaultScoreRules(),
		scoreTitle: "SEO",
		labels: map[string]string{
			config.StatusNotAvailable: "Not available",
			config.StatusBad:          "Bad",
			config.StatusOK:           "Okay",
			config.StatusGood:         "Good",
		},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.engine == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(TemplatesFS()))
		if err != nil {
			return nil, fmt.Errorf("markup: create engine: %w", err)
		}
		r.engine = engine
	}
	return r, nil
}

// SnippetEditorMarkup renders the snippet preview container.
func (r *TemplateRenderer) SnippetEditorMarkup(ctx context.Context, targets Targets) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if targets.WrapperTargetID == "" || targets.SnippetTargetID == "" || targets.OutputTargetID == "" {
		return "", errors.New("markup: snippet targets are required")
	}
	name, err := r.templateFor(ThemeSnippetKey, SnippetTemplate)
	if err != nil {
		return "", err
	}
	out, err := r.engine.RenderTemplate(name, targets)
	if err != nil {
		return "", fmt.Errorf("markup: render snippet: %w", err)
	}
	return Sanitize(out), nil
}

// OverallScoreMarkup renders the score badge for a stored status.
func (r *TemplateRenderer) OverallScoreMarkup(ctx context.Context, score float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := r.templateFor(ThemeOverallScoreKey, OverallScoreTemplate)
	if err != nil {
		return "", err
	}
	status := r.rules.Status(score)
	label := r.labels[status]
	if label == "" {
		label = status
	}
	out, err := r.engine.RenderTemplate(name, map[string]any{
		"score":  strconv.FormatFloat(score, 'f', -1, 64),
		"status": status,
		"label":  label,
		"title":  r.scoreTitle,
	})
	if err != nil {
		return "", fmt.Errorf("markup: render overall score: %w", err)
	}
	return Sanitize(out), nil
}

func (r *TemplateRenderer) templateFor(key, fallback string) (string, error) {
	if r.selector == nil {
		return fallback, nil
	}
	selection, err := r.selector.Select(r.themeName, r.variant)
	if err != nil {
		return "", fmt.Errorf("markup: select theme %q: %w", r.themeName, err)
	}
	if selection == nil || selection.Manifest == nil {
		return fallback, nil
	}
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		if name := strings.TrimSpace(variant.Templates[key]); name != "" {
			return name, nil
		}
	}
	if name := strings.TrimSpace(selection.Manifest.Templates[key]); name != "" {
		return name, nil
	}
	return fallback, nil
}

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

// Sanitize keeps the structural elements and the id/class/data attributes
// the widget needs, dropping everything else.
func Sanitize(raw string) string {
	markupPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements("div", "span", "strong", "em", "p", "label", "output")
		policy.AllowAttrs("id", "class").Globally()
		policy.AllowDataAttributes()
		markupPolicy = policy
	})
	return strings.TrimSpace(markupPolicy.Sanitize(raw))
}
