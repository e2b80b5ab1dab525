// Package config holds the fields configuration driving the settings
// projection: where each tracked field lives in the form tree (paths), which
// fields are published (fields), and which placeholder tokens resolve to them
// (tokens). It also carries the site details and score rules the projector
// and markup renderer read. Documents are JSON or YAML; defaults are embedded.
package config
