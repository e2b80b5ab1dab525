// Package seoform attaches the real-time SEO field to content bundles and
// projects the analysis widget's client settings into entity edit forms.
package seoform

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-seoform/pkg/config"
	"github.com/goliatone/go-seoform/pkg/discovery"
	"github.com/goliatone/go-seoform/pkg/fields"
	"github.com/goliatone/go-seoform/pkg/formtree"
	"github.com/goliatone/go-seoform/pkg/markup"
	"github.com/goliatone/go-seoform/pkg/projector"
)

// FieldSpec aliases fields.Spec for callers attaching the SEO field.
type FieldSpec = fields.Spec

// FieldsConfiguration aliases the tracked field paths, order and tokens.
type FieldsConfiguration = config.FieldsConfiguration

// Settings is the dictionary published to the client script.
type Settings = projector.Settings

// Targets are the DOM ids the widget mounts into.
type Targets = markup.Targets

// FormState exposes the entity being edited.
type FormState = projector.FormState

// State is the minimal FormState implementation.
type State = projector.State

// NewFieldManager exposes the field attachment manager from the top-level module.
func NewFieldManager(store fields.Store, options ...fields.Option) *fields.Manager {
	return fields.NewManager(store, options...)
}

// NewProjector builds a projector rendering markup through the embedded
// templates. Pass projector.Option values to customise configuration,
// logging and metrics.
func NewProjector(reader discovery.FieldMapReader, site config.SiteConfig, options ...projector.Option) (*projector.Projector, error) {
	renderer, err := markup.New()
	if err != nil {
		return nil, fmt.Errorf("seoform: markup renderer: %w", err)
	}
	return projector.New(reader, discovery.NewHTMLTextProcessor(), renderer, site, options...), nil
}

// ProjectForm runs the settings projection followed by both markup hooks,
// which is what a host does for a full edit form build.
func ProjectForm(ctx context.Context, p *projector.Projector, tree *formtree.Node, state FormState) (*formtree.Node, error) {
	out, err := p.Project(ctx, tree, state)
	if err != nil {
		return nil, err
	}
	if out, err = p.AddSnippetEditorMarkup(ctx, out); err != nil {
		return nil, err
	}
	return p.AddOverallScoreMarkup(ctx, out, state)
}

// LoadConfigFile reads a JSON or YAML configuration document from disk. An
// empty path returns the embedded defaults.
func LoadConfigFile(path string) (config.Document, error) {
	if path == "" {
		return config.LoadDefaults()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config.Document{}, fmt.Errorf("seoform: read config: %w", err)
	}
	return config.Load(data, path)
}
