// Package formtree models the nested form description a host framework builds
// for one render pass. A Node is either a composite (ordered keyed children)
// or a leaf (scalar value). Keys prefixed with "#" carry render metadata such
// as "#id", "#default_value" or "#weight"; every other key names a child
// element. Path resolution is an explicit sequence of key lookups that reports
// absence instead of failing, because the shape of a form varies with the
// content type and the installed extensions.
package formtree
