package formtree

import "strings"

// Path is a sequence of keys addressing a node, e.g. the dotted form
// "title.widget.0.value.#id".
type Path []string

// ParsePath splits a dotted path. Empty input yields an empty path.
func ParsePath(dotted string) Path {
	dotted = strings.TrimSpace(dotted)
	if dotted == "" {
		return nil
	}
	return Path(strings.Split(dotted, "."))
}

// Append returns a new path with segments added; p is left untouched.
func (p Path) Append(segments ...string) Path {
	out := make(Path, 0, len(p)+len(segments))
	out = append(out, p...)
	return append(out, segments...)
}

func (p Path) String() string {
	return strings.Join(p, ".")
}
