package fields

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Default values for the SEO field attached to content types.
const (
	DefaultFieldName   = "field_yoast_seo"
	DefaultFieldLabel  = "Real-time SEO"
	DefaultStorageType = "yoast_seo"
)

// Display identifiers used when registering a field with a bundle.
const (
	DisplayForm    = "form"
	DisplayView    = "view"
	DefaultDisplay = "default"
)

// ErrInvalidSpec reports a Spec missing required values.
var ErrInvalidSpec = errors.New("fields: invalid field spec")

// Spec describes the field a caller wants attached.
type Spec struct {
	FieldName    string `json:"field_name" yaml:"field_name"`
	Label        string `json:"field_label" yaml:"field_label"`
	StorageType  string `json:"storage_type" yaml:"storage_type"`
	Translatable bool   `json:"translatable" yaml:"translatable"`
}

// DefaultSpec returns the SEO field definition.
func DefaultSpec() Spec {
	return Spec{
		FieldName:    DefaultFieldName,
		Label:        DefaultFieldLabel,
		StorageType:  DefaultStorageType,
		Translatable: true,
	}
}

// Validate reports ErrInvalidSpec unless a field name and storage type are set.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.FieldName) == "" {
		return fmt.Errorf("%w: field name is required", ErrInvalidSpec)
	}
	if strings.TrimSpace(s.StorageType) == "" {
		return fmt.Errorf("%w: storage type is required for %q", ErrInvalidSpec, s.FieldName)
	}
	return nil
}

// StorageDescriptor is the entity-type-wide definition of a field.
type StorageDescriptor struct {
	EntityType   string `json:"entity_type"`
	FieldName    string `json:"field_name"`
	Type         string `json:"type"`
	Translatable bool   `json:"translatable"`
}

// ID mirrors the "<entity_type>.<field_name>" identifier used by hosts.
func (d StorageDescriptor) ID() string {
	return d.EntityType + "." + d.FieldName
}

// Descriptor is the bundle-level definition of a field.
type Descriptor struct {
	FieldName    string `json:"field_name"`
	EntityType   string `json:"entity_type"`
	Bundle       string `json:"bundle"`
	StorageType  string `json:"storage_type"`
	Translatable bool   `json:"translatable"`
	Label        string `json:"label"`
}

// ID mirrors the "<entity_type>.<bundle>.<field_name>" identifier.
func (d Descriptor) ID() string {
	return d.EntityType + "." + d.Bundle + "." + d.FieldName
}

// DisplayKey addresses one display of a bundle (form or view, by mode).
type DisplayKey struct {
	EntityType string
	Bundle     string
	Mode       string
	Context    string
}

func (k DisplayKey) String() string {
	return k.EntityType + "." + k.Bundle + "." + k.Mode + "." + k.Context
}

// Store is the configuration store the Manager writes to. Load methods report
// absence through the boolean, never through an error.
type Store interface {
	LoadStorage(ctx context.Context, entityType, fieldName string) (StorageDescriptor, bool, error)
	CreateStorage(ctx context.Context, storage StorageDescriptor) error
	LoadField(ctx context.Context, entityType, bundle, fieldName string) (Descriptor, bool, error)
	CreateField(ctx context.Context, field Descriptor) error
	DeleteField(ctx context.Context, entityType, bundle, fieldName string) error
	SetDisplayComponent(ctx context.Context, key DisplayKey, fieldName string, options map[string]any) error
}
