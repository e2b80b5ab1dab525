package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-seoform/pkg/entity"
	"github.com/goliatone/go-seoform/pkg/formtree"
)

// MustLoadFormTree reads a JSON form tree fixture.
func MustLoadFormTree(t *testing.T, path string) *formtree.Node {
	t.Helper()

	tree, err := LoadFormTree(path)
	if err != nil {
		t.Fatalf("load form tree: %v", err)
	}
	return tree
}

// LoadFormTree reads a JSON form tree without requiring testing.T, for setup
// helpers that run outside a test.
func LoadFormTree(path string) (*formtree.Node, error) {
	if path == "" {
		return nil, errors.New("testsupport: form tree path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read form tree: %w", err)
	}
	tree, err := formtree.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("testsupport: decode form tree: %w", err)
	}
	return tree, nil
}

// MustLoadEntity reads a JSON entity fixture.
func MustLoadEntity(t *testing.T, path string) *entity.Memory {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read entity: %v", err)
	}
	var out entity.Memory
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode entity: %v", err)
	}
	return &out
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// MustLoadGoldenJSON decodes a JSON golden file into plain Go values.
func MustLoadGoldenJSON(t *testing.T, path string) any {
	t.Helper()

	var out any
	if err := json.Unmarshal(MustReadGolden(t, path), &out); err != nil {
		t.Fatalf("decode golden: %v", err)
	}
	return out
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
