// Package fields attaches, detaches and inspects the structured SEO field on
// content types. Field definitions live at two levels: a storage descriptor
// shared by every bundle of an entity type, and a per-bundle field descriptor
// carrying the label. The Manager only issues create/load/delete requests
// against a Store; persistence and locking belong to the Store.
package fields
