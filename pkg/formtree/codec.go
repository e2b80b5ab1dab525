package formtree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Decode parses a JSON document into a tree. Objects and arrays become
// composites (arrays keyed "0".."n-1"); numbers are kept as json.Number.
func Decode(data []byte) (*Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("formtree: empty document")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	node, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("formtree: decode: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("formtree: decode: trailing data after document")
	}
	return node, nil
}

// Encode converts any JSON-marshallable value into a tree.
func Encode(value any) (*Node, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("formtree: encode: %w", err)
	}
	return Decode(data)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(data []byte) error {
	node, err := Decode(data)
	if err != nil {
		return err
	}
	*n = *node
	return nil
}

// MarshalJSON implements json.Marshaler, keeping child order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	if n.kind == KindLeaf {
		data, err := json.Marshal(n.value)
		if err != nil {
			return fmt.Errorf("formtree: encode leaf: %w", err)
		}
		buf.Write(data)
		return nil
	}

	if n.list {
		buf.WriteByte('[')
		for idx, key := range n.keys {
			if idx > 0 {
				buf.WriteByte(',')
			}
			if err := n.children[key].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	}

	buf.WriteByte('{')
	for idx, key := range n.keys {
		if idx > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		if err := n.children[key].writeJSON(buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return NewLeaf(tok), nil
	}

	switch delim {
	case '{':
		node := NewComposite()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			child, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			node.Set(key, child)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return node, nil
	case '[':
		node := NewList()
		idx := 0
		for dec.More() {
			child, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			node.Set(strconv.Itoa(idx), child)
			idx++
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return node, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}
