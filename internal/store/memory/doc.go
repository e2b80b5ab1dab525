// Package memory provides an in-process field configuration store.
package memory
