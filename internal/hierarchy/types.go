package hierarchy

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mvp-joe/classmap/internal/signature"
)

// Node is one class in the hierarchy.
type Node struct {
	Extends    signature.Signature                         `json:"extends,omitempty"`   // Immediate parent ("" when the record had no view)
	ExtendedBy []signature.Signature                       `json:"extended_by"`         // Direct children in oracle order
	Overrides  map[signature.Signature]signature.Signature `json:"overrides,omitempty"` // Ancestor method -> overriding function
}

// HasOverrides reports whether any catalogued method is overridden.
func (n *Node) HasOverrides() bool {
	return len(n.Overrides) > 0
}

// Override returns the function overriding ancestor, if any.
func (n *Node) Override(ancestor signature.Signature) (signature.Signature, bool) {
	o, ok := n.Overrides[ancestor]
	return o, ok
}

func (n *Node) addOverride(ancestor, overrider signature.Signature) bool {
	if n.Overrides == nil {
		n.Overrides = make(map[signature.Signature]signature.Signature)
	}
	_, existed := n.Overrides[ancestor]
	n.Overrides[ancestor] = overrider
	return !existed
}

// Hierarchy maps class signatures to nodes, iterating in insertion order.
// The builder inserts in depth-first pre-order, so the first key is the root.
type Hierarchy struct {
	nodes *orderedmap.OrderedMap[string, *Node]
}

// New creates an empty hierarchy.
func New() *Hierarchy {
	return &Hierarchy{nodes: orderedmap.New[string, *Node]()}
}

// Put inserts or replaces the node for sig. Replacing keeps the original position.
func (h *Hierarchy) Put(sig signature.Signature, node *Node) {
	if node.ExtendedBy == nil {
		node.ExtendedBy = []signature.Signature{}
	}
	h.nodes.Set(string(sig), node)
}

// Get returns the node for sig.
func (h *Hierarchy) Get(sig signature.Signature) (*Node, bool) {
	return h.nodes.Get(string(sig))
}

// Has reports whether sig is in the hierarchy.
func (h *Hierarchy) Has(sig signature.Signature) bool {
	_, ok := h.nodes.Get(string(sig))
	return ok
}

// Len returns the number of classes.
func (h *Hierarchy) Len() int {
	return h.nodes.Len()
}

// Root returns the first inserted signature, or "" when empty.
func (h *Hierarchy) Root() signature.Signature {
	if pair := h.nodes.Oldest(); pair != nil {
		return signature.Signature(pair.Key)
	}
	return ""
}

// Signatures returns all keys in insertion order.
func (h *Hierarchy) Signatures() []signature.Signature {
	out := make([]signature.Signature, 0, h.nodes.Len())
	for pair := h.nodes.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, signature.Signature(pair.Key))
	}
	return out
}

// Each calls fn for every class in insertion order.
func (h *Hierarchy) Each(fn func(sig signature.Signature, node *Node)) {
	for pair := h.nodes.Oldest(); pair != nil; pair = pair.Next() {
		fn(signature.Signature(pair.Key), pair.Value)
	}
}

// EdgeCount returns the total number of extended_by entries.
func (h *Hierarchy) EdgeCount() int {
	count := 0
	h.Each(func(_ signature.Signature, node *Node) {
		count += len(node.ExtendedBy)
	})
	return count
}

// OverridingCount returns how many classes override at least one method.
func (h *Hierarchy) OverridingCount() int {
	count := 0
	h.Each(func(_ signature.Signature, node *Node) {
		if node.HasOverrides() {
			count++
		}
	})
	return count
}

// MarshalJSON encodes the hierarchy as a JSON object in insertion order.
func (h *Hierarchy) MarshalJSON() ([]byte, error) {
	return h.nodes.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object, keeping key order.
func (h *Hierarchy) UnmarshalJSON(data []byte) error {
	nodes := orderedmap.New[string, *Node]()

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to decode hierarchy: %w", err)
	}
	if tok == nil {
		h.nodes = nodes
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("failed to decode hierarchy: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to decode hierarchy key: %w", err)
		}
		key, _ := tok.(string)

		node := &Node{}
		if err := dec.Decode(node); err != nil {
			return fmt.Errorf("failed to decode node %s: %w", key, err)
		}
		if node.ExtendedBy == nil {
			node.ExtendedBy = []signature.Signature{}
		}
		nodes.Set(key, node)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to decode hierarchy: %w", err)
	}

	h.nodes = nodes
	return nil
}
