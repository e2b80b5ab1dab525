package projector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-seoform/pkg/config"
	"github.com/goliatone/go-seoform/pkg/discovery"
	"github.com/goliatone/go-seoform/pkg/entity"
	"github.com/goliatone/go-seoform/pkg/fields"
	"github.com/goliatone/go-seoform/pkg/formtree"
	"github.com/goliatone/go-seoform/pkg/markup"
	"github.com/goliatone/go-seoform/pkg/metrics"
)

// Form tree locations read or written by the projector.
const (
	SettingsPath = "#attached.drupalSettings.yoast_seo"
	BodyHintPath = "#yoast_settings.body"
	FormIDKey    = "#id"

	MetaTitlePath       = "field_meta_tags.widget.0.basic.title"
	MetaDescriptionPath = "field_meta_tags.widget.0.basic.description"

	// BodyFieldKey replaces the body field's own name in the fields section.
	BodyFieldKey = "body"
)

// Tracked field names with a role in the settings.
const (
	FieldFocusKeyword = "focus_keyword"
	FieldPath         = "path"
	FieldSummary      = "summary"
)

// Option customises a Projector.
type Option func(*Projector)

// WithConfiguration replaces the default fields configuration.
func WithConfiguration(cfg config.FieldsConfiguration) Option {
	return func(p *Projector) {
		p.base = cfg.Clone()
	}
}

// WithLogger sets the logger. Defaults to zap.NewNop.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Projector) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records projection outcomes.
func WithMetrics(collector *metrics.Collector) Option {
	return func(p *Projector) {
		p.metrics = collector
	}
}

// WithTranslator localises the placeholder prompts.
func WithTranslator(translator Translator) Option {
	return func(p *Projector) {
		p.translator = translator
	}
}

// WithLocale selects the locale handed to the translator.
func WithLocale(locale string) Option {
	return func(p *Projector) {
		p.locale = strings.TrimSpace(locale)
	}
}

// WithIDOptions configures the generator used for per-build target ids.
func WithIDOptions(options ...IDOption) Option {
	return func(p *Projector) {
		p.idOptions = append(p.idOptions, options...)
	}
}

// WithSEOField names the attached SEO field. Defaults to fields.DefaultFieldName.
// Configured paths rooted at the default field, such as focus_keyword and
// seo_status, are moved under the named field.
func WithSEOField(name string) Option {
	return func(p *Projector) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			p.seoField = trimmed
		}
	}
}

// Projector writes client settings and widget markup into form trees. It is
// safe for concurrent use; every call works on its own overlay.
type Projector struct {
	fieldMap  discovery.FieldMapReader
	processor discovery.TextProcessor
	renderer  markup.Renderer
	site      config.SiteConfig

	base       config.FieldsConfiguration
	logger     *zap.Logger
	metrics    *metrics.Collector
	translator Translator
	locale     string
	idOptions  []IDOption
	seoField   string
}

// New builds a Projector. A nil processor defaults to the HTML text
// processor and a nil site to an empty StaticSite.
func New(fieldMap discovery.FieldMapReader, processor discovery.TextProcessor, renderer markup.Renderer, site config.SiteConfig, options ...Option) *Projector {
	p := &Projector{
		fieldMap:  fieldMap,
		processor: processor,
		renderer:  renderer,
		site:      site,
		base:      config.Default(),
		logger:    zap.NewNop(),
		seoField:  fields.DefaultFieldName,
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	if p.seoField != fields.DefaultFieldName {
		p.base = rebasePaths(p.base, fields.DefaultFieldName, p.seoField)
	}
	if p.processor == nil {
		p.processor = discovery.NewHTMLTextProcessor()
	}
	if p.site == nil {
		p.site = config.StaticSite{}
	}
	return p
}

// Configuration returns a copy of the base fields configuration.
func (p *Projector) Configuration() config.FieldsConfiguration {
	return p.base.Clone()
}

// Project writes the settings dictionary into tree and returns it. Forms
// without a body hint, or whose hinted body field is absent, are returned
// unchanged.
func (p *Projector) Project(ctx context.Context, tree *formtree.Node, state FormState) (*formtree.Node, error) {
	if ctx == nil {
		return nil, errors.New("projector: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, errors.New("projector: form tree is required")
	}

	bodyField, ok := tree.StringAt(formtree.ParsePath(BodyHintPath))
	if !ok || bodyField == "" || !tree.Has(formtree.Path{bodyField}) {
		p.metrics.Projection(metrics.ResultSkipped)
		p.logger.Debug("form has no analysable body", zap.String("body_field", bodyField))
		return tree, nil
	}

	settings, err := p.settings(ctx, tree, bodyField, entityFrom(state))
	if err != nil {
		p.metrics.Projection(metrics.ResultError)
		return nil, err
	}
	if err := writeSettings(tree, settings); err != nil {
		p.metrics.Projection(metrics.ResultError)
		return nil, err
	}

	p.metrics.Projection(metrics.ResultApplied)
	p.logger.Debug("projected seo settings",
		zap.String("form_id", settings.FormID),
		zap.String("body_field", bodyField),
		zap.Int("fields", len(settings.Fields)),
	)
	return tree, nil
}

func (p *Projector) settings(ctx context.Context, tree *formtree.Node, bodyField string, edited entity.Entity) (Settings, error) {
	bodyWidget := formtree.Path{bodyField, "widget", "0"}

	overlay := p.base.Derive()
	summaryKey := "value"
	if tree.Has(bodyWidget.Append("summary")) {
		summaryKey = "summary"
	}
	overlay.SetPath(FieldSummary, bodyWidget.Append(summaryKey).String())
	overlay.SetPath(bodyField, bodyWidget.Append("value").String())
	overlay.AppendField(bodyField)
	overlay.AddToken("[node:"+bodyField+"]", bodyField)
	overlay.AddToken("[current-page:"+bodyField+"]", bodyField)

	settings := Settings{
		Fields:  make(map[string]any),
		Tokens:  overlay.Tokens(),
		Targets: p.targets(tree),
	}

	for _, name := range overlay.Fields() {
		key := name
		if name == bodyField {
			key = BodyFieldKey
		}
		settings.Fields[key] = elementID(tree, overlay, name)
	}

	siteName, _ := p.site.Get(config.SiteName)
	siteSlogan, _ := p.site.Get(config.SiteSlogan)
	settings.Tokens["[site:name]"] = siteName
	settings.Tokens["[site:slogan]"] = siteSlogan

	metaTitle := formtree.ParsePath(MetaTitlePath)
	metaDescription := formtree.ParsePath(MetaDescriptionPath)
	settings.DefaultText = DefaultText{
		MetaTitle:       defaultText(tree, metaTitle.Append("#default_value")),
		Keyword:         defaultText(tree, fieldPath(overlay, FieldFocusKeyword).Append("#default_value")),
		MetaDescription: defaultText(tree, metaDescription.Append("#default_value")),
		Body:            bodyDefault(tree, bodyWidget),
		Path:            defaultText(tree, fieldPath(overlay, FieldPath).Append("#default_value")),
	}
	settings.Fields["meta_title"] = idAt(tree, metaTitle)
	settings.Fields["meta_description"] = idAt(tree, metaDescription)

	settings.PlaceholderText = PlaceholderText{
		SnippetTitle: p.translate(PlaceholderSnippetTitle),
		SnippetMeta:  p.translate(PlaceholderSnippetMeta),
		SnippetCite:  p.translate(PlaceholderSnippetCite),
	}
	settings.SEOTitleOverwritten = !tree.IsEmptyAt(metaTitle.Append("#default_value"))
	settings.TextFormat, _ = tree.StringAt(bodyWidget.Append("#format"))
	settings.FormID, _ = tree.StringAt(formtree.Path{FormIDKey})

	textFields, paragraphFields, err := p.discoverText(ctx, edited)
	if err != nil {
		return Settings{}, err
	}
	settings.Fields["text_fields"] = textFields
	settings.Fields["paragraph_text_fields"] = paragraphFields
	return settings, nil
}

func (p *Projector) discoverText(ctx context.Context, edited entity.Entity) (map[string]string, []string, error) {
	paragraphFields := []string{}
	var references []string
	if p.fieldMap != nil {
		var err error
		if paragraphFields, err = discovery.FilterTextFields(ctx, p.fieldMap); err != nil {
			return nil, nil, fmt.Errorf("projector: discover text fields: %w", err)
		}
		if references, err = discovery.EntityReferenceRevisionsFieldNames(ctx, p.fieldMap); err != nil {
			return nil, nil, fmt.Errorf("projector: discover reference fields: %w", err)
		}
	}

	textFields, err := p.processor.Process(ctx, edited, discovery.MergeFieldNames(paragraphFields, references))
	if err != nil {
		return nil, nil, fmt.Errorf("projector: process text fields: %w", err)
	}
	if textFields == nil {
		textFields = map[string]string{}
	}
	if paragraphFields == nil {
		paragraphFields = []string{}
	}
	return textFields, paragraphFields, nil
}

func (p *Projector) translate(text string) string {
	if p.translator == nil {
		return text
	}
	translated, err := p.translator.Translate(p.locale, text)
	if err != nil {
		p.logger.Warn("placeholder translation failed", zap.String("locale", p.locale), zap.Error(err))
		return text
	}
	if translated == "" {
		return text
	}
	return translated
}

// targets reuses ids already published in tree so that settings and markup
// agree regardless of which runs first.
func (p *Projector) targets(tree *formtree.Node) markup.Targets {
	settingsPath := formtree.ParsePath(SettingsPath)
	existing := markup.Targets{}
	existing.WrapperTargetID, _ = tree.StringAt(settingsPath.Append("targets", "wrapper_target_id"))
	existing.SnippetTargetID, _ = tree.StringAt(settingsPath.Append("targets", "snippet_target_id"))
	existing.OutputTargetID, _ = tree.StringAt(settingsPath.Append("targets", "output_target_id"))
	if existing.WrapperTargetID != "" && existing.SnippetTargetID != "" && existing.OutputTargetID != "" {
		return existing
	}

	ids := NewIDGenerator(p.idOptions...)
	return markup.Targets{
		WrapperTargetID: ids.Unique("yoast-wrapper"),
		SnippetTargetID: ids.Unique("yoast-snippet"),
		OutputTargetID:  ids.Unique("yoast-output"),
	}
}

// writeSettings merges each settings section into the tree, leaving sibling
// keys under the settings path untouched.
func writeSettings(tree *formtree.Node, value any) error {
	encoded, err := formtree.Encode(value)
	if err != nil {
		return fmt.Errorf("projector: encode settings: %w", err)
	}
	path := formtree.ParsePath(SettingsPath)
	target, ok := tree.Lookup(path)
	if !ok || target.IsLeaf() {
		tree.SetPath(path, encoded)
		return nil
	}
	for _, key := range encoded.Keys() {
		child, _ := encoded.Child(key)
		target.Set(key, child)
	}
	return nil
}

// rebasePaths moves every path rooted at the from field under the to field.
func rebasePaths(cfg config.FieldsConfiguration, from, to string) config.FieldsConfiguration {
	out := cfg.Clone()
	prefix := from + "."
	for name, path := range out.Paths {
		if strings.HasPrefix(path, prefix) {
			out.Paths[name] = to + "." + strings.TrimPrefix(path, prefix)
		}
	}
	return out
}

func fieldPath(overlay *config.Overlay, name string) formtree.Path {
	path, ok := overlay.Path(name)
	if !ok || path == "" {
		return formtree.Path{name}
	}
	return formtree.ParsePath(path)
}

func elementID(tree *formtree.Node, overlay *config.Overlay, name string) string {
	return idAt(tree, fieldPath(overlay, name))
}

func idAt(tree *formtree.Node, path formtree.Path) string {
	id, _ := tree.StringAt(path.Append("#id"))
	return id
}

func defaultText(tree *formtree.Node, path formtree.Path) string {
	if tree.IsEmptyAt(path) {
		return ""
	}
	value, _ := tree.StringAt(path)
	return value
}

func bodyDefault(tree *formtree.Node, bodyWidget formtree.Path) string {
	if value := defaultText(tree, bodyWidget.Append("#default_value")); value != "" {
		return value
	}
	return defaultText(tree, bodyWidget.Append("value", "#default_value"))
}
