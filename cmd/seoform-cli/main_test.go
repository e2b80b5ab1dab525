package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-seoform/internal/store/sqlite"
	"github.com/goliatone/go-seoform/pkg/fields"
)

type stubPrompter struct {
	label   string
	confirm bool
	asked   []string
}

func (s *stubPrompter) Input(_ context.Context, message, def string) (string, error) {
	s.asked = append(s.asked, message)
	if s.label == "" {
		return def, nil
	}
	return s.label, nil
}

func (s *stubPrompter) Confirm(_ context.Context, message string, _ bool) (bool, error) {
	s.asked = append(s.asked, message)
	return s.confirm, nil
}

func run(t *testing.T, prompter Prompter, args ...string) string {
	t.Helper()
	a := newApp()
	a.prompter = prompter
	return runApp(t, a, args...)
}

func runApp(t *testing.T, a *app, args ...string) string {
	t.Helper()
	cmd := NewRootCommand(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestAttachStatusDetach(t *testing.T) {
	db := filepath.Join(t.TempDir(), "fields.db")

	out := run(t, &stubPrompter{}, "--db", db, "status", "node", "article")
	require.Contains(t, out, "node.article.field_yoast_seo: detached")

	out = run(t, &stubPrompter{}, "--db", db, "attach", "node", "article")
	require.Contains(t, out, "attached field_yoast_seo to node.article")

	out = run(t, &stubPrompter{}, "--db", db, "status", "node", "article")
	require.Contains(t, out, "node.article.field_yoast_seo: attached")

	out = run(t, &stubPrompter{confirm: false}, "--db", db, "detach", "node", "article")
	require.Contains(t, out, "detach cancelled")

	out = run(t, &stubPrompter{}, "--db", db, "detach", "--force", "node", "article")
	require.Contains(t, out, "detached field_yoast_seo from node.article")

	out = run(t, &stubPrompter{}, "--db", db, "status", "node", "article")
	require.Contains(t, out, "detached")
}

func TestAttachInteractivePromptsForLabel(t *testing.T) {
	db := filepath.Join(t.TempDir(), "fields.db")
	prompter := &stubPrompter{label: "Search appearance", confirm: false}

	run(t, prompter, "--db", db, "attach", "--interactive", "node", "page")
	require.Len(t, prompter.asked, 2)

	store, err := sqlite.Open(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	field, found, err := store.LoadField(context.Background(), "node", "page", fields.DefaultFieldName)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Search appearance", field.Label)
	require.False(t, field.Translatable)
}

func TestProjectSettingsOnly(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "fields.db")
	fixtures := filepath.Join("..", "..", "pkg", "projector", "testdata")

	out := run(t, &stubPrompter{}, "--db", db, "project",
		"--form", filepath.Join(fixtures, "article_form.json"),
		"--entity", filepath.Join(fixtures, "article_entity.json"),
		"--site-name", "Acme",
		"--settings-only",
	)

	var settings map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &settings))
	require.Equal(t, "node-article-edit-form", settings["form_id"])
	tokens := settings["tokens"].(map[string]any)
	require.Equal(t, "Acme", tokens["[site:name]"])
	fieldIDs := settings["fields"].(map[string]any)
	require.Equal(t, "edit-body-0-value", fieldIDs["body"])
}

func TestProjectWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "projected.json")
	fixtures := filepath.Join("..", "..", "pkg", "projector", "testdata")

	out := run(t, &stubPrompter{}, "--db", filepath.Join(dir, "fields.db"), "project",
		"--form", filepath.Join(fixtures, "article_form.json"),
		"--output", output,
	)
	require.Contains(t, out, "projected form written to")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "snippet_analysis"))
	require.True(t, strings.Contains(string(data), "yoast-seo-overall-score"))
}

func TestProjectRequiresForm(t *testing.T) {
	a := newApp()
	a.prompter = &stubPrompter{}
	cmd := NewRootCommand(a)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "fields.db"), "project"})
	require.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestCommandsRecordOperationCounts(t *testing.T) {
	db := filepath.Join(t.TempDir(), "fields.db")
	a := newApp()
	a.prompter = &stubPrompter{}

	runApp(t, a, "--db", db, "attach", "node", "article")
	count, err := testutil.GatherAndCount(a.registry, "seoform_field_operations_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	fixtures := filepath.Join("..", "..", "pkg", "projector", "testdata")
	runApp(t, a, "--db", db, "project", "--form", filepath.Join(fixtures, "plain_form.json"))
	count, err = testutil.GatherAndCount(a.registry, "seoform_projections_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
