package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-seoform/pkg/discovery"
	"github.com/goliatone/go-seoform/pkg/fields"
)

type fieldKey struct {
	entityType string
	bundle     string
	fieldName  string
}

type storageKey struct {
	entityType string
	fieldName  string
}

// Store keeps field configuration in process memory.
type Store struct {
	mu       sync.RWMutex
	storages map[storageKey]fields.StorageDescriptor
	fields   map[fieldKey]fields.Descriptor
	displays map[fields.DisplayKey]map[string]map[string]any
}

var (
	_ fields.Store             = (*Store)(nil)
	_ discovery.FieldMapReader = (*Store)(nil)
)

// New returns an empty store.
func New() *Store {
	return &Store{
		storages: make(map[storageKey]fields.StorageDescriptor),
		fields:   make(map[fieldKey]fields.Descriptor),
		displays: make(map[fields.DisplayKey]map[string]map[string]any),
	}
}

func (s *Store) LoadStorage(_ context.Context, entityType, fieldName string) (fields.StorageDescriptor, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	storage, ok := s.storages[storageKey{entityType, fieldName}]
	return storage, ok, nil
}

func (s *Store) CreateStorage(_ context.Context, storage fields.StorageDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storages[storageKey{storage.EntityType, storage.FieldName}] = storage
	return nil
}

func (s *Store) LoadField(_ context.Context, entityType, bundle, fieldName string) (fields.Descriptor, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	field, ok := s.fields[fieldKey{entityType, bundle, fieldName}]
	return field, ok, nil
}

func (s *Store) CreateField(_ context.Context, field fields.Descriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields[fieldKey{field.EntityType, field.Bundle, field.FieldName}] = field
	return nil
}

// DeleteField removes the bundle field and its display components.
func (s *Store) DeleteField(_ context.Context, entityType, bundle, fieldName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fields, fieldKey{entityType, bundle, fieldName})
	for key, components := range s.displays {
		if key.EntityType == entityType && key.Bundle == bundle {
			delete(components, fieldName)
		}
	}
	return nil
}

func (s *Store) SetDisplayComponent(_ context.Context, key fields.DisplayKey, fieldName string, options map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	components, ok := s.displays[key]
	if !ok {
		components = make(map[string]map[string]any)
		s.displays[key] = components
	}
	copied := make(map[string]any, len(options))
	for k, v := range options {
		copied[k] = v
	}
	components[fieldName] = copied
	return nil
}

// DisplayComponent returns a copy of the options registered for fieldName in a display.
func (s *Store) DisplayComponent(_ context.Context, key fields.DisplayKey, fieldName string) (map[string]any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	options, ok := s.displays[key][fieldName]
	if !ok {
		return nil, false, nil
	}
	copied := make(map[string]any, len(options))
	for k, v := range options {
		copied[k] = v
	}
	return copied, true, nil
}

// FieldMapByFieldType derives the field map from bundle-level descriptors.
func (s *Store) FieldMapByFieldType(_ context.Context, fieldType string) (discovery.FieldMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(discovery.FieldMap)
	for key, field := range s.fields {
		storageType := field.StorageType
		if storage, ok := s.storages[storageKey{key.entityType, key.fieldName}]; ok {
			storageType = storage.Type
		}
		if storageType != fieldType {
			continue
		}
		usage, ok := out[key.entityType]
		if !ok {
			usage = make(discovery.FieldUsage)
			out[key.entityType] = usage
		}
		usage[key.fieldName] = append(usage[key.fieldName], key.bundle)
	}
	for _, usage := range out {
		for name := range usage {
			sort.Strings(usage[name])
		}
	}
	return out, nil
}
