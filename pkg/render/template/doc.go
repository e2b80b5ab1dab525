// Package template defines the template engine seam used by the markup
// renderer, so engines can be swapped without touching callers.
package template
