package projector_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-seoform/internal/store/memory"
	"github.com/goliatone/go-seoform/pkg/config"
	"github.com/goliatone/go-seoform/pkg/discovery"
	"github.com/goliatone/go-seoform/pkg/entity"
	"github.com/goliatone/go-seoform/pkg/fields"
	"github.com/goliatone/go-seoform/pkg/formtree"
	"github.com/goliatone/go-seoform/pkg/markup"
	"github.com/goliatone/go-seoform/pkg/metrics"
	"github.com/goliatone/go-seoform/pkg/projector"
	"github.com/goliatone/go-seoform/pkg/testsupport"
)

var site = config.StaticSite{config.SiteName: "Acme", config.SiteSlogan: "Ship it"}

func seededFieldMap(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	for _, field := range []fields.Descriptor{
		{EntityType: "node", Bundle: "article", FieldName: "body", StorageType: "text_with_summary"},
		{EntityType: "paragraph", Bundle: "text", FieldName: "field_text", StorageType: "text_long"},
		{EntityType: "node", Bundle: "article", FieldName: "field_sections", StorageType: "entity_reference_revisions"},
	} {
		if err := store.CreateField(ctx, field); err != nil {
			t.Fatalf("seed field %s: %v", field.ID(), err)
		}
	}
	return store
}

func newProjector(t *testing.T, options ...projector.Option) *projector.Projector {
	t.Helper()
	renderer, err := markup.New()
	if err != nil {
		t.Fatalf("markup renderer: %v", err)
	}
	return projector.New(seededFieldMap(t), nil, renderer, site, options...)
}

func settingsOf(t *testing.T, tree *formtree.Node) map[string]any {
	t.Helper()
	node, ok := tree.Lookup(formtree.ParsePath(projector.SettingsPath))
	if !ok {
		t.Fatalf("settings not found at %s", projector.SettingsPath)
	}
	out, ok := node.Interface().(map[string]any)
	if !ok {
		t.Fatalf("settings is not a dictionary: %T", node.Interface())
	}
	return out
}

func TestProject_ArticleGolden(t *testing.T) {
	p := newProjector(t)
	tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "article_form.json"))
	article := testsupport.MustLoadEntity(t, filepath.Join("testdata", "article_entity.json"))

	out, err := p.Project(testsupport.Context(), tree, projector.State{Edited: article})
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if out != tree {
		t.Fatalf("expected the same tree to be returned")
	}

	got := settingsOf(t, out)
	goldenPath := filepath.Join("testdata", "article_settings.golden.json")
	testsupport.WriteGolden(t, goldenPath, got)
	want := testsupport.MustLoadGoldenJSON(t, goldenPath)
	if diff := testsupport.CompareGolden(want, any(got)); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}

	if current, ok := out.StringAt(formtree.ParsePath("#attached.drupalSettings.path.currentPath")); !ok || current != "node/1/edit" {
		t.Fatalf("sibling settings were lost: %q", current)
	}
}

func TestProject_WithoutBodyHintIsNoop(t *testing.T) {
	p := newProjector(t)
	tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "plain_form.json"))
	before, err := tree.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	out, err := p.Project(context.Background(), tree, nil)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	after, err := out.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("tree changed:\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestProject_HintedBodyMissingIsNoop(t *testing.T) {
	p := newProjector(t)
	tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "article_form.json"))
	tree.SetPath(formtree.ParsePath(projector.BodyHintPath), formtree.NewLeaf("field_missing"))

	out, err := p.Project(context.Background(), tree, nil)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if out.Has(formtree.ParsePath(projector.SettingsPath)) {
		t.Fatalf("expected no settings for a missing body field")
	}
}

func TestProject_BodyWithoutSummary(t *testing.T) {
	p := newProjector(t)
	tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "page_form.json"))

	out, err := p.Project(context.Background(), tree, nil)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	got := settingsOf(t, out)
	fieldIDs := got["fields"].(map[string]any)

	if fieldIDs["summary"] != "edit-field-content-0-value" {
		t.Fatalf("summary should fall back to the body value element, got %v", fieldIDs["summary"])
	}
	if fieldIDs["body"] != "edit-field-content-0-value" {
		t.Fatalf("body id mismatch: %v", fieldIDs["body"])
	}
	if _, ok := fieldIDs["field_content"]; ok {
		t.Fatalf("body field must be published under the body key")
	}
	for _, missing := range []string{"seo_status", "path", "meta_title", "meta_description"} {
		if fieldIDs[missing] != "" {
			t.Fatalf("expected empty id for missing %s, got %v", missing, fieldIDs[missing])
		}
	}

	tokens := got["tokens"].(map[string]any)
	if tokens["[node:field_content]"] != "field_content" || tokens["[current-page:field_content]"] != "field_content" {
		t.Fatalf("body tokens missing: %v", tokens)
	}

	defaults := got["default_text"].(map[string]any)
	wantDefaults := map[string]any{
		"meta_title":       "",
		"keyword":          "",
		"meta_description": "",
		"body":             "<h2>Intro</h2>",
		"path":             "",
	}
	if diff := cmp.Diff(wantDefaults, defaults); diff != "" {
		t.Fatalf("default text mismatch (-want +got):\n%s", diff)
	}
	if got["seo_title_overwritten"] != false {
		t.Fatalf("title should not be overwritten")
	}
	if got["text_format"] != "full_html" || got["form_id"] != "node-page-form" {
		t.Fatalf("unexpected format or form id: %v %v", got["text_format"], got["form_id"])
	}
	if diff := cmp.Diff(map[string]any{}, fieldIDs["text_fields"]); diff != "" {
		t.Fatalf("expected no text without an entity (-want +got):\n%s", diff)
	}
}

func TestProject_DoesNotLeakOverlayIntoBase(t *testing.T) {
	p := newProjector(t)
	for i := 0; i < 2; i++ {
		tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "page_form.json"))
		if _, err := p.Project(context.Background(), tree, nil); err != nil {
			t.Fatalf("project %d: %v", i, err)
		}
	}
	if diff := cmp.Diff(config.Default(), p.Configuration()); diff != "" {
		t.Fatalf("base configuration mutated (-want +got):\n%s", diff)
	}
}

type stubTranslator struct{ err error }

func (s stubTranslator) Translate(locale, key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "[" + locale + "] " + key, nil
}

func TestProject_TranslatesPlaceholders(t *testing.T) {
	p := newProjector(t, projector.WithTranslator(stubTranslator{}), projector.WithLocale("nl"))
	tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "page_form.json"))

	out, err := p.Project(context.Background(), tree, nil)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	placeholders := settingsOf(t, out)["placeholder_text"].(map[string]any)
	if placeholders["snippetTitle"] != "[nl] "+projector.PlaceholderSnippetTitle {
		t.Fatalf("unexpected title placeholder %v", placeholders["snippetTitle"])
	}
}

func TestProject_TranslatorFailureFallsBackAndLogs(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := newProjector(t,
		projector.WithTranslator(stubTranslator{err: errors.New("catalog missing")}),
		projector.WithLogger(zap.New(core)),
	)
	tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "page_form.json"))

	out, err := p.Project(context.Background(), tree, nil)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	placeholders := settingsOf(t, out)["placeholder_text"].(map[string]any)
	if placeholders["snippetMeta"] != projector.PlaceholderSnippetMeta {
		t.Fatalf("expected untranslated fallback, got %v", placeholders["snippetMeta"])
	}
	if logs.FilterMessage("placeholder translation failed").Len() != 3 {
		t.Fatalf("expected one warning per placeholder, got %d", logs.Len())
	}
}

type failingReader struct{ err error }

func (f failingReader) FieldMapByFieldType(context.Context, string) (discovery.FieldMap, error) {
	return nil, f.err
}

type failingProcessor struct{ err error }

func (f failingProcessor) Process(context.Context, entity.Entity, map[string]bool) (map[string]string, error) {
	return nil, f.err
}

func TestProject_ProcessorErrorPropagatesAndCounts(t *testing.T) {
	boom := errors.New("entity storage offline")
	reg := prometheus.NewRegistry()
	collector, err := metrics.New(reg)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	p := projector.New(seededFieldMap(t), failingProcessor{err: boom}, nil, site, projector.WithMetrics(collector))
	tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "article_form.json"))

	if _, err := p.Project(context.Background(), tree, nil); !errors.Is(err, boom) {
		t.Fatalf("expected processor error, got %v", err)
	}
	if _, err := p.Project(context.Background(), testsupport.MustLoadFormTree(t, filepath.Join("testdata", "plain_form.json")), nil); err != nil {
		t.Fatalf("project plain form: %v", err)
	}

	expected := `
# HELP seoform_projections_total Form settings projections by outcome.
# TYPE seoform_projections_total counter
seoform_projections_total{result="error"} 1
seoform_projections_total{result="skipped"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "seoform_projections_total"); err != nil {
		t.Fatalf("projection metrics: %v", err)
	}
}

func TestProject_FieldMapErrorPropagates(t *testing.T) {
	boom := errors.New("field map unavailable")
	p := projector.New(failingReader{err: boom}, nil, nil, site)
	tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "article_form.json"))

	if _, err := p.Project(context.Background(), tree, nil); !errors.Is(err, boom) {
		t.Fatalf("expected field map error, got %v", err)
	}
	if tree.Has(formtree.ParsePath(projector.SettingsPath + ".fields")) {
		t.Fatalf("settings must not be written on failure")
	}
}

func TestProject_RequiresTree(t *testing.T) {
	p := newProjector(t)
	if _, err := p.Project(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil tree")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "article_form.json"))
	if _, err := p.Project(ctx, tree, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestAddSnippetEditorMarkup_PlacesAfterBody(t *testing.T) {
	p := newProjector(t)
	tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "article_form.json"))

	out, err := p.AddSnippetEditorMarkup(context.Background(), tree)
	if err != nil {
		t.Fatalf("snippet markup: %v", err)
	}
	element := formtree.ParsePath("field_yoast_seo.widget.0.yoast_seo.snippet_analysis")
	html, ok := out.StringAt(element.Append("#markup"))
	if !ok || !strings.Contains(html, `id="yoast-snippet"`) {
		t.Fatalf("snippet markup missing: %q", html)
	}
	if weight, _ := out.StringAt(element.Append("#weight")); weight != "2" {
		t.Fatalf("expected weight 2 after body weight 1, got %q", weight)
	}

	if _, err := p.Project(context.Background(), out, nil); err != nil {
		t.Fatalf("project: %v", err)
	}
	targets := settingsOf(t, out)["targets"].(map[string]any)
	if targets["snippet_target_id"] != "yoast-snippet" || targets["wrapper_target_id"] != "yoast-wrapper" {
		t.Fatalf("settings targets disagree with markup: %v", targets)
	}
}

func TestAddSnippetEditorMarkup_ReusesPublishedTargets(t *testing.T) {
	p := newProjector(t, projector.WithIDOptions(projector.WithRandomSuffix()))
	tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "article_form.json"))

	if _, err := p.Project(context.Background(), tree, nil); err != nil {
		t.Fatalf("project: %v", err)
	}
	wrapper, _ := tree.StringAt(formtree.ParsePath(projector.SettingsPath + ".targets.wrapper_target_id"))
	if !strings.HasPrefix(wrapper, "yoast-wrapper--") {
		t.Fatalf("expected random suffix, got %q", wrapper)
	}

	if _, err := p.AddSnippetEditorMarkup(context.Background(), tree); err != nil {
		t.Fatalf("snippet markup: %v", err)
	}
	html, _ := tree.StringAt(formtree.ParsePath("field_yoast_seo.widget.0.yoast_seo.snippet_analysis.#markup"))
	if !strings.Contains(html, `id="`+wrapper+`"`) {
		t.Fatalf("markup does not use published wrapper %q:\n%s", wrapper, html)
	}
}

func TestAddSnippetEditorMarkup_SkipsFormsWithoutSEOField(t *testing.T) {
	p := newProjector(t)
	tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "plain_form.json"))
	out, err := p.AddSnippetEditorMarkup(context.Background(), tree)
	if err != nil {
		t.Fatalf("snippet markup: %v", err)
	}
	if out.Has(formtree.Path{"#attached"}) {
		t.Fatalf("unexpected settings on a form without the SEO field")
	}
}

func TestAddOverallScoreMarkup(t *testing.T) {
	p := newProjector(t)
	suffix := formtree.ParsePath("field_yoast_seo.widget.0.yoast_seo.focus_keyword.#field_suffix")

	t.Run("stored status", func(t *testing.T) {
		tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "article_form.json"))
		article := testsupport.MustLoadEntity(t, filepath.Join("testdata", "article_entity.json"))
		out, err := p.AddOverallScoreMarkup(context.Background(), tree, projector.State{Edited: article})
		if err != nil {
			t.Fatalf("score markup: %v", err)
		}
		html, _ := out.StringAt(suffix)
		if !strings.Contains(html, "yoast-seo-overall-score "+config.StatusOK) {
			t.Fatalf("expected ok badge for status 7:\n%s", html)
		}
	})

	t.Run("defaults to zero and appends", func(t *testing.T) {
		tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "article_form.json"))
		tree.SetPath(suffix, formtree.NewLeaf("<em>hint</em>"))
		out, err := p.AddOverallScoreMarkup(context.Background(), tree, projector.State{Edited: &entity.Memory{Type: "node"}})
		if err != nil {
			t.Fatalf("score markup: %v", err)
		}
		html, _ := out.StringAt(suffix)
		if !strings.HasPrefix(html, "<em>hint</em>") || !strings.Contains(html, config.StatusNotAvailable) {
			t.Fatalf("expected appended na badge:\n%s", html)
		}
	})

	t.Run("missing focus keyword", func(t *testing.T) {
		tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "plain_form.json"))
		out, err := p.AddOverallScoreMarkup(context.Background(), tree, nil)
		if err != nil {
			t.Fatalf("score markup: %v", err)
		}
		if out.Has(formtree.Path{"field_yoast_seo"}) {
			t.Fatalf("tree should be unchanged")
		}
	})
}

func TestHooks_RequireRenderer(t *testing.T) {
	p := projector.New(seededFieldMap(t), nil, nil, site)
	tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "article_form.json"))
	if _, err := p.AddSnippetEditorMarkup(context.Background(), tree); err == nil {
		t.Fatalf("expected renderer error")
	}
	if _, err := p.AddOverallScoreMarkup(context.Background(), tree, nil); err == nil {
		t.Fatalf("expected renderer error")
	}
}

func TestProject_CustomSEOFieldMovesTrackedPaths(t *testing.T) {
	p := newProjector(t, projector.WithSEOField("field_seo"))
	tree := testsupport.MustLoadFormTree(t, filepath.Join("testdata", "article_form.json"))
	seo, ok := tree.Child("field_yoast_seo")
	if !ok {
		t.Fatalf("fixture lacks the SEO field")
	}
	tree.Set("field_seo", seo)
	tree.Delete("field_yoast_seo")
	tree.SetPath(formtree.ParsePath("field_seo.widget.0.yoast_seo.focus_keyword.#default_value"), formtree.NewLeaf("kw"))

	state := projector.State{Edited: &entity.Memory{
		Type:   "node",
		Fields: map[string][]entity.Item{"field_seo": {{"status": "8"}}},
	}}
	ctx := context.Background()
	out, err := p.Project(ctx, tree, state)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if out, err = p.AddSnippetEditorMarkup(ctx, out); err != nil {
		t.Fatalf("snippet markup: %v", err)
	}
	if out, err = p.AddOverallScoreMarkup(ctx, out, state); err != nil {
		t.Fatalf("score markup: %v", err)
	}

	got := settingsOf(t, out)
	fieldIDs := got["fields"].(map[string]any)
	if fieldIDs["focus_keyword"] != "edit-field-yoast-seo-0-yoast-seo-focus-keyword" {
		t.Fatalf("focus keyword id not resolved under the custom field: %v", fieldIDs["focus_keyword"])
	}
	if fieldIDs["seo_status"] != "edit-field-yoast-seo-0-yoast-seo-status" {
		t.Fatalf("seo status id not resolved under the custom field: %v", fieldIDs["seo_status"])
	}
	if keyword := got["default_text"].(map[string]any)["keyword"]; keyword != "kw" {
		t.Fatalf("keyword default mismatch: %v", keyword)
	}
	if !out.Has(formtree.ParsePath("field_seo.widget.0.yoast_seo.snippet_analysis.#markup")) {
		t.Fatalf("snippet markup missing under the custom field")
	}
	badge, _ := out.StringAt(formtree.ParsePath("field_seo.widget.0.yoast_seo.focus_keyword.#field_suffix"))
	if !strings.Contains(badge, "yoast-seo-overall-score "+config.StatusGood) {
		t.Fatalf("expected good badge for status 8:\n%s", badge)
	}
	if path := p.Configuration().Paths["seo_status"]; path != "field_seo.widget.0.yoast_seo.status" {
		t.Fatalf("seo_status path not moved: %q", path)
	}
}
