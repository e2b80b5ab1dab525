package projector

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	invalidIDChars = regexp.MustCompile(`[^A-Za-z0-9\-_]`)
	repeatedDashes = regexp.MustCompile(`-+`)
	idReplacer     = strings.NewReplacer(" ", "-", "_", "-", "[", "-", "]", "")
)

// CleanID normalises a string into a valid HTML id.
func CleanID(raw string) string {
	id := idReplacer.Replace(strings.ToLower(strings.TrimSpace(raw)))
	id = invalidIDChars.ReplaceAllString(id, "")
	return repeatedDashes.ReplaceAllString(id, "-")
}

// IDOption configures an IDGenerator.
type IDOption func(*IDGenerator)

// WithRandomSuffix appends a random suffix to every id, for partial rebuilds
// where previously issued ids are unknown.
func WithRandomSuffix() IDOption {
	return func(g *IDGenerator) {
		g.random = true
	}
}

// IDGenerator issues ids unique within one page build: "base", "base--2",
// "base--3" and so on.
type IDGenerator struct {
	mu     sync.Mutex
	seen   map[string]int
	random bool
}

// NewIDGenerator returns a generator with no ids issued.
func NewIDGenerator(options ...IDOption) *IDGenerator {
	g := &IDGenerator{seen: make(map[string]int)}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Unique returns a cleaned id for base that has not been issued before.
func (g *IDGenerator) Unique(base string) string {
	id := CleanID(base)
	if g.random {
		return id + "--" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	count, ok := g.seen[id]
	if !ok {
		g.seen[id] = 1
		return id
	}
	count++
	g.seen[id] = count
	return fmt.Sprintf("%s--%d", id, count)
}
