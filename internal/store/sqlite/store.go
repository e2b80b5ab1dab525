// Package sqlite persists field configuration in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-seoform/pkg/discovery"
	"github.com/goliatone/go-seoform/pkg/fields"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store manages field configuration rows.
type Store struct {
	db     *sql.DB
	dbPath string
}

var (
	_ fields.Store             = (*Store)(nil)
	_ discovery.FieldMapReader = (*Store)(nil)
)

// Open creates or opens the database at path and initialises the schema.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite: database path is required")
	}

	dsn := MemoryPath
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create directory: %w", err)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	// One connection keeps :memory: databases shared and writes serialised.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, dbPath: path}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: initialise schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS field_storage (
		entity_type TEXT NOT NULL,
		field_name TEXT NOT NULL,
		type TEXT NOT NULL,
		translatable INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (entity_type, field_name)
	);

	CREATE TABLE IF NOT EXISTS field_config (
		entity_type TEXT NOT NULL,
		bundle TEXT NOT NULL,
		field_name TEXT NOT NULL,
		storage_type TEXT NOT NULL,
		translatable INTEGER NOT NULL DEFAULT 0,
		label TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (entity_type, bundle, field_name)
	);

	CREATE TABLE IF NOT EXISTS display_component (
		entity_type TEXT NOT NULL,
		bundle TEXT NOT NULL,
		mode TEXT NOT NULL,
		context TEXT NOT NULL,
		field_name TEXT NOT NULL,
		options_json TEXT NOT NULL DEFAULT '{}',
		PRIMARY KEY (entity_type, bundle, mode, context, field_name)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) LoadStorage(ctx context.Context, entityType, fieldName string) (fields.StorageDescriptor, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT type, translatable FROM field_storage WHERE entity_type = ? AND field_name = ?`,
		entityType, fieldName)

	out := fields.StorageDescriptor{EntityType: entityType, FieldName: fieldName}
	if err := row.Scan(&out.Type, &out.Translatable); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fields.StorageDescriptor{}, false, nil
		}
		return fields.StorageDescriptor{}, false, err
	}
	return out, true, nil
}

func (s *Store) CreateStorage(ctx context.Context, storage fields.StorageDescriptor) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO field_storage (entity_type, field_name, type, translatable) VALUES (?, ?, ?, ?)`,
		storage.EntityType, storage.FieldName, storage.Type, storage.Translatable)
	return err
}

func (s *Store) LoadField(ctx context.Context, entityType, bundle, fieldName string) (fields.Descriptor, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT storage_type, translatable, label FROM field_config WHERE entity_type = ? AND bundle = ? AND field_name = ?`,
		entityType, bundle, fieldName)

	out := fields.Descriptor{EntityType: entityType, Bundle: bundle, FieldName: fieldName}
	if err := row.Scan(&out.StorageType, &out.Translatable, &out.Label); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fields.Descriptor{}, false, nil
		}
		return fields.Descriptor{}, false, err
	}
	return out, true, nil
}

func (s *Store) CreateField(ctx context.Context, field fields.Descriptor) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO field_config (entity_type, bundle, field_name, storage_type, translatable, label) VALUES (?, ?, ?, ?, ?, ?)`,
		field.EntityType, field.Bundle, field.FieldName, field.StorageType, field.Translatable, field.Label)
	return err
}

// DeleteField removes the bundle field and its display components in one
// transaction.
func (s *Store) DeleteField(ctx context.Context, entityType, bundle, fieldName string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM field_config WHERE entity_type = ? AND bundle = ? AND field_name = ?`,
		entityType, bundle, fieldName); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM display_component WHERE entity_type = ? AND bundle = ? AND field_name = ?`,
		entityType, bundle, fieldName); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) SetDisplayComponent(ctx context.Context, key fields.DisplayKey, fieldName string, options map[string]any) error {
	if options == nil {
		options = map[string]any{}
	}
	payload, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("sqlite: encode display options: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO display_component (entity_type, bundle, mode, context, field_name, options_json) VALUES (?, ?, ?, ?, ?, ?)`,
		key.EntityType, key.Bundle, key.Mode, key.Context, fieldName, string(payload))
	return err
}

// DisplayComponent returns the options registered for fieldName in a display.
func (s *Store) DisplayComponent(ctx context.Context, key fields.DisplayKey, fieldName string) (map[string]any, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT options_json FROM display_component WHERE entity_type = ? AND bundle = ? AND mode = ? AND context = ? AND field_name = ?`,
		key.EntityType, key.Bundle, key.Mode, key.Context, fieldName)

	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	options := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil, false, fmt.Errorf("sqlite: decode display options: %w", err)
	}
	return options, true, nil
}

// FieldMapByFieldType derives the field map from bundle-level rows, preferring
// the storage type recorded at storage level.
func (s *Store) FieldMapByFieldType(ctx context.Context, fieldType string) (discovery.FieldMap, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.entity_type, f.field_name, f.bundle
		FROM field_config f
		LEFT JOIN field_storage st ON st.entity_type = f.entity_type AND st.field_name = f.field_name
		WHERE COALESCE(st.type, f.storage_type) = ?
		ORDER BY f.entity_type, f.field_name, f.bundle`, fieldType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(discovery.FieldMap)
	for rows.Next() {
		var entityType, fieldName, bundle string
		if err := rows.Scan(&entityType, &fieldName, &bundle); err != nil {
			return nil, err
		}
		usage, ok := out[entityType]
		if !ok {
			usage = make(discovery.FieldUsage)
			out[entityType] = usage
		}
		usage[fieldName] = append(usage[fieldName], bundle)
	}
	return out, rows.Err()
}
