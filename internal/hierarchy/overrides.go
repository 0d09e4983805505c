package hierarchy

import (
	"context"
	"fmt"
	"time"

	"github.com/mvp-joe/classmap/internal/oracle"
	"github.com/mvp-joe/classmap/internal/signature"
)

// MapOverrides asks o for every function overriding ancestor and records,
// on each class of h that declares one, ancestor -> overriding function.
// The oracle answers codebase-wide; classes outside h are ignored.
// Returns the number of classes annotated.
func MapOverrides(ctx context.Context, o oracle.Oracle, h *Hierarchy, ancestor signature.Signature) (int, error) {
	rec, err := o.CrossReferences(ctx, ancestor)
	if err != nil {
		return 0, fmt.Errorf("failed to get overrides of %s: %w", ancestor, err)
	}

	matched := 0
	for _, overrider := range rec.Overriders() {
		node, ok := h.Get(overrider.EnclosingClass())
		if !ok {
			continue
		}
		if node.addOverride(ancestor, overrider) {
			matched++
		}
	}
	return matched, nil
}

// Mapper annotates a hierarchy with every method of a catalogue.
type Mapper struct {
	oracle   oracle.Oracle
	progress MapProgress
}

// MapperOption configures a Mapper.
type MapperOption func(*Mapper)

// WithMapProgress configures progress reporting.
func WithMapProgress(progress MapProgress) MapperOption {
	return func(m *Mapper) {
		m.progress = progress
	}
}

// NewMapper creates a Mapper querying o.
func NewMapper(o oracle.Oracle, opts ...MapperOption) *Mapper {
	m := &Mapper{oracle: o}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MapCatalogue runs MapOverrides once per catalogue entry, in order.
func (m *Mapper) MapCatalogue(ctx context.Context, h *Hierarchy, cat Catalogue) error {
	startTime := time.Now()
	if m.progress != nil {
		m.progress.OnMappingStart(cat.Len())
	}

	for _, method := range cat.entries {
		matched, err := MapOverrides(ctx, m.oracle, h, method)
		if err != nil {
			return err
		}
		if m.progress != nil {
			m.progress.OnMethodMapped(method, matched)
		}
	}

	if m.progress != nil {
		m.progress.OnMappingComplete(h.OverridingCount(), time.Since(startTime))
	}
	return nil
}
