package seoform

import (
	"github.com/goliatone/go-seoform/internal/store/memory"
	"github.com/goliatone/go-seoform/internal/store/sqlite"
)

// NewMemoryStore returns a process-local field store. It also answers field
// map queries for the projector.
func NewMemoryStore() *memory.Store {
	return memory.New()
}

// OpenSQLiteStore opens (or creates) a SQLite-backed field store. Use
// sqlite.MemoryPath for a throwaway database.
func OpenSQLiteStore(path string) (*sqlite.Store, error) {
	return sqlite.Open(path)
}
