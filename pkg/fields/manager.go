package fields

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-seoform/pkg/metrics"
)

// Option customises the Manager.
type Option func(*Manager)

// WithLogger sets the logger used for attachment events.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics records attach/detach outcomes.
func WithMetrics(collector *metrics.Collector) Option {
	return func(m *Manager) {
		m.metrics = collector
	}
}

// Manager ensures a field exists (storage and bundle level) on a content
// type, removes it, and reports whether it is attached.
type Manager struct {
	store   Store
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewManager constructs a Manager writing to store.
func NewManager(store Store, options ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(m)
	}
	return m
}

// Attach creates the storage descriptor for (entityType, spec.FieldName) when
// missing, then the bundle-level descriptor when missing. A newly created
// bundle field is registered with empty options in the default form display
// and the default view display. Repeated calls are no-ops.
func (m *Manager) Attach(ctx context.Context, entityType, bundle string, spec Spec) error {
	if err := m.ready(ctx); err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return err
	}

	created, err := m.attach(ctx, entityType, bundle, spec)
	if err != nil {
		m.metrics.FieldOperation("attach", metrics.ResultError)
		return err
	}
	if created {
		m.metrics.FieldOperation("attach", metrics.ResultApplied)
	} else {
		m.metrics.FieldOperation("attach", metrics.ResultNoop)
	}
	return nil
}

func (m *Manager) attach(ctx context.Context, entityType, bundle string, spec Spec) (bool, error) {
	log := m.logger.With(
		zap.String("entity_type", entityType),
		zap.String("bundle", bundle),
		zap.String("field", spec.FieldName),
	)

	_, found, err := m.store.LoadStorage(ctx, entityType, spec.FieldName)
	if err != nil {
		return false, fmt.Errorf("fields: load storage %s.%s: %w", entityType, spec.FieldName, err)
	}
	if !found {
		storage := StorageDescriptor{
			EntityType:   entityType,
			FieldName:    spec.FieldName,
			Type:         spec.StorageType,
			Translatable: spec.Translatable,
		}
		if err := m.store.CreateStorage(ctx, storage); err != nil {
			return false, fmt.Errorf("fields: create storage %s: %w", storage.ID(), err)
		}
		log.Debug("field storage created", zap.String("storage_type", spec.StorageType))
	}

	_, found, err = m.store.LoadField(ctx, entityType, bundle, spec.FieldName)
	if err != nil {
		return false, fmt.Errorf("fields: load field %s.%s.%s: %w", entityType, bundle, spec.FieldName, err)
	}
	if found {
		return false, nil
	}

	field := Descriptor{
		FieldName:    spec.FieldName,
		EntityType:   entityType,
		Bundle:       bundle,
		StorageType:  spec.StorageType,
		Translatable: spec.Translatable,
		Label:        spec.Label,
	}
	if err := m.store.CreateField(ctx, field); err != nil {
		return false, fmt.Errorf("fields: create field %s: %w", field.ID(), err)
	}

	for _, display := range []string{DisplayForm, DisplayView} {
		key := DisplayKey{EntityType: entityType, Bundle: bundle, Mode: DefaultDisplay, Context: display}
		if err := m.store.SetDisplayComponent(ctx, key, spec.FieldName, map[string]any{}); err != nil {
			return false, fmt.Errorf("fields: register %s in %s display: %w", field.ID(), display, err)
		}
	}

	log.Info("field attached", zap.String("label", spec.Label))
	return true, nil
}

// Detach deletes the bundle-level descriptor when present. The storage
// descriptor is left in place for other bundles.
func (m *Manager) Detach(ctx context.Context, entityType, bundle, fieldName string) error {
	if err := m.ready(ctx); err != nil {
		return err
	}

	_, found, err := m.store.LoadField(ctx, entityType, bundle, fieldName)
	if err != nil {
		m.metrics.FieldOperation("detach", metrics.ResultError)
		return fmt.Errorf("fields: load field %s.%s.%s: %w", entityType, bundle, fieldName, err)
	}
	if !found {
		m.metrics.FieldOperation("detach", metrics.ResultNoop)
		return nil
	}

	if err := m.store.DeleteField(ctx, entityType, bundle, fieldName); err != nil {
		m.metrics.FieldOperation("detach", metrics.ResultError)
		return fmt.Errorf("fields: delete field %s.%s.%s: %w", entityType, bundle, fieldName, err)
	}
	m.metrics.FieldOperation("detach", metrics.ResultApplied)
	m.logger.Info("field detached",
		zap.String("entity_type", entityType),
		zap.String("bundle", bundle),
		zap.String("field", fieldName),
	)
	return nil
}

// IsAttached reports whether a bundle-level descriptor exists. Storage-level
// presence is not considered.
func (m *Manager) IsAttached(ctx context.Context, entityType, bundle, fieldName string) (bool, error) {
	if err := m.ready(ctx); err != nil {
		return false, err
	}
	_, found, err := m.store.LoadField(ctx, entityType, bundle, fieldName)
	if err != nil {
		return false, fmt.Errorf("fields: load field %s.%s.%s: %w", entityType, bundle, fieldName, err)
	}
	return found, nil
}

func (m *Manager) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("fields: context is required")
	}
	if m == nil || m.store == nil {
		return errors.New("fields: store is required")
	}
	return ctx.Err()
}
