package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mvp-joe/classmap/internal/hierarchy"
)

// Dump writes h as indented JSON, keyed by class signature in insertion order.
func Dump(w io.Writer, h *hierarchy.Hierarchy) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(h); err != nil {
		return fmt.Errorf("failed to encode hierarchy: %w", err)
	}
	return nil
}

// LoadDump reads a hierarchy previously written by Dump.
func LoadDump(r io.Reader) (*hierarchy.Hierarchy, error) {
	h := hierarchy.New()
	if err := json.NewDecoder(r).Decode(h); err != nil {
		return nil, fmt.Errorf("failed to decode hierarchy dump: %w", err)
	}
	return h, nil
}
