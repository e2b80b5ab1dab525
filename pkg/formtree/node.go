package formtree

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Node.
type Kind uint8

const (
	// KindComposite nodes hold ordered keyed children.
	KindComposite Kind = iota
	// KindLeaf nodes hold a single scalar value.
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindComposite:
		return "composite"
	case KindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Node is one element of a form tree.
type Node struct {
	kind     Kind
	value    any
	keys     []string
	children map[string]*Node
	// list marks composites decoded from (or encoding to) JSON arrays.
	list bool
}

// NewComposite returns an empty composite node.
func NewComposite() *Node {
	return &Node{kind: KindComposite, children: make(map[string]*Node)}
}

// NewList returns an empty composite that encodes as a JSON array while its
// keys stay the contiguous indexes "0".."n-1".
func NewList() *Node {
	node := NewComposite()
	node.list = true
	return node
}

// NewLeaf wraps a scalar value.
func NewLeaf(value any) *Node {
	return &Node{kind: KindLeaf, value: value}
}

// IsProperty reports whether key names render metadata rather than a child
// element.
func IsProperty(key string) bool {
	return strings.HasPrefix(key, "#")
}

// Kind returns the node variant. A nil node reports KindLeaf.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindLeaf
	}
	return n.kind
}

// IsLeaf reports whether the node holds a scalar value.
func (n *Node) IsLeaf() bool {
	return n == nil || n.kind == KindLeaf
}

// Value returns the scalar held by a leaf. Composites return nil.
func (n *Node) Value() any {
	if n == nil || n.kind != KindLeaf {
		return nil
	}
	return n.value
}

// Len returns the number of children of a composite.
func (n *Node) Len() int {
	if n == nil || n.kind != KindComposite {
		return 0
	}
	return len(n.keys)
}

// Keys returns the child keys in insertion order.
func (n *Node) Keys() []string {
	if n == nil || n.kind != KindComposite {
		return nil
	}
	return append([]string(nil), n.keys...)
}

// Elements returns the child keys that are not render metadata.
func (n *Node) Elements() []string {
	if n == nil || n.kind != KindComposite {
		return nil
	}
	out := make([]string, 0, len(n.keys))
	for _, key := range n.keys {
		if !IsProperty(key) {
			out = append(out, key)
		}
	}
	return out
}

// Child returns the direct child stored under key.
func (n *Node) Child(key string) (*Node, bool) {
	if n == nil || n.kind != KindComposite {
		return nil, false
	}
	child, ok := n.children[key]
	return child, ok
}

// Set stores child under key, keeping the original position when the key
// already exists. Setting a key on a leaf turns it into a composite.
func (n *Node) Set(key string, child *Node) {
	if n == nil {
		return
	}
	if n.kind != KindComposite {
		n.kind = KindComposite
		n.value = nil
		n.keys = nil
		n.children = make(map[string]*Node)
	}
	if child == nil {
		child = NewLeaf(nil)
	}
	if _, exists := n.children[key]; !exists {
		if n.list && key != strconv.Itoa(len(n.keys)) {
			n.list = false
		}
		n.keys = append(n.keys, key)
	}
	n.children[key] = child
}

// Append adds child under the next numeric key.
func (n *Node) Append(child *Node) {
	if n == nil {
		return
	}
	n.Set(strconv.Itoa(n.Len()), child)
}

// Delete removes key from a composite.
func (n *Node) Delete(key string) {
	if n == nil || n.kind != KindComposite {
		return
	}
	if _, ok := n.children[key]; !ok {
		return
	}
	delete(n.children, key)
	for idx, existing := range n.keys {
		if existing == key {
			n.keys = append(n.keys[:idx], n.keys[idx+1:]...)
			break
		}
	}
	n.list = false
}

// Lookup walks path one key at a time. It reports false as soon as a segment
// is missing or a leaf is reached before the path is exhausted.
func (n *Node) Lookup(path Path) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	cur := n
	for _, segment := range path {
		next, ok := cur.Child(segment)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Has reports whether path resolves to a node.
func (n *Node) Has(path Path) bool {
	_, ok := n.Lookup(path)
	return ok
}

// StringAt returns the leaf at path rendered as a string.
func (n *Node) StringAt(path Path) (string, bool) {
	node, ok := n.Lookup(path)
	if !ok || !node.IsLeaf() {
		return "", false
	}
	return scalarString(node.Value()), true
}

// IsEmptyAt reports whether path is missing or holds an empty value: nil, "",
// "0", false, zero numbers and composites without children.
func (n *Node) IsEmptyAt(path Path) bool {
	node, ok := n.Lookup(path)
	if !ok {
		return true
	}
	return node.IsEmpty()
}

// IsEmpty applies the IsEmptyAt rules to the node itself.
func (n *Node) IsEmpty() bool {
	if n == nil {
		return true
	}
	if n.kind == KindComposite {
		return len(n.keys) == 0
	}
	return isEmptyScalar(n.value)
}

// SetPath stores child at path, creating composites for missing segments and
// replacing leaves met along the way.
func (n *Node) SetPath(path Path, child *Node) {
	if n == nil || len(path) == 0 {
		return
	}
	cur := n
	for _, segment := range path[:len(path)-1] {
		next, ok := cur.Child(segment)
		if !ok || next.kind != KindComposite {
			next = NewComposite()
			cur.Set(segment, next)
		}
		cur = next
	}
	cur.Set(path[len(path)-1], child)
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	if n.kind == KindLeaf {
		return NewLeaf(n.value)
	}
	out := &Node{
		kind:     KindComposite,
		keys:     append([]string(nil), n.keys...),
		children: make(map[string]*Node, len(n.children)),
		list:     n.list,
	}
	for key, child := range n.children {
		out.children[key] = child.Clone()
	}
	return out
}

// Interface converts the node into plain Go values: map[string]any for
// composites, []any for lists and the raw scalar for leaves.
func (n *Node) Interface() any {
	if n == nil {
		return nil
	}
	if n.kind == KindLeaf {
		return n.value
	}
	if n.list {
		out := make([]any, 0, len(n.keys))
		for _, key := range n.keys {
			out = append(out, n.children[key].Interface())
		}
		return out
	}
	out := make(map[string]any, len(n.keys))
	for _, key := range n.keys {
		out[key] = n.children[key].Interface()
	}
	return out
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "1"
		}
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

func isEmptyScalar(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == "" || v == "0"
	case bool:
		return !v
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 0
	case float64:
		return v == 0
	case float32:
		return v == 0
	case int:
		return v == 0
	case int64:
		return v == 0
	default:
		return false
	}
}
