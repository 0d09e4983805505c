// Package hierarchy reconstructs the subclass hierarchy below a class and
// annotates it with the catalogued virtual methods each class overrides.
package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/gobwas/glob"

	"github.com/mvp-joe/classmap/internal/oracle"
	"github.com/mvp-joe/classmap/internal/signature"
)

// Builder walks the oracle from a root class and records every descendant.
type Builder struct {
	oracle   oracle.Oracle
	exclude  []glob.Glob
	progress BuildProgress
	verbose  bool
	stats    BuildStats
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithExclude drops children whose file path matches any pattern.
func WithExclude(patterns ...glob.Glob) BuilderOption {
	return func(b *Builder) {
		b.exclude = append(b.exclude, patterns...)
	}
}

// WithBuildProgress configures progress reporting.
func WithBuildProgress(progress BuildProgress) BuilderOption {
	return func(b *Builder) {
		b.progress = progress
	}
}

// WithVerboseLogging logs truncated branches and skipped cycles.
func WithVerboseLogging(verbose bool) BuilderOption {
	return func(b *Builder) {
		b.verbose = verbose
	}
}

// CompileExcludes compiles glob patterns matched against signature file paths.
func CompileExcludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// NewBuilder creates a hierarchy builder querying o.
func NewBuilder(o oracle.Oracle, opts ...BuilderOption) *Builder {
	b := &Builder{oracle: o}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Stats returns statistics for the most recent Build.
func (b *Builder) Stats() BuildStats {
	return b.stats
}

type frame struct {
	sig   signature.Signature
	depth int
}

// Build returns the hierarchy rooted at root.
//
// Classes are inserted in depth-first pre-order, children in oracle order.
// A class already present is never visited again, and an edge that would
// close a cycle is kept in extended_by but not followed. A record with
// neither a declaration nor a definition truncates its branch.
// Oracle failures abort the build.
func (b *Builder) Build(ctx context.Context, root signature.Signature) (*Hierarchy, error) {
	startTime := time.Now()
	b.stats = BuildStats{}

	if b.progress != nil {
		b.progress.OnBuildStart(root)
	}

	h := New()
	edges := graph.New(func(s signature.Signature) signature.Signature { return s },
		graph.Directed(), graph.PreventCycles())
	if err := edges.AddVertex(root); err != nil {
		return nil, fmt.Errorf("failed to add root vertex: %w", err)
	}

	stack := []frame{{sig: root}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if h.Has(current.sig) {
			continue
		}

		node, expand, err := b.visit(ctx, current.sig)
		if err != nil {
			return nil, err
		}
		h.Put(current.sig, node)

		b.stats.Visited++
		if current.depth > b.stats.MaxDepth {
			b.stats.MaxDepth = current.depth
		}
		if b.progress != nil {
			b.progress.OnClassVisited(current.sig, b.stats.Visited)
		}
		if !expand {
			continue
		}

		// Push in reverse so children pop in oracle order.
		for i := len(node.ExtendedBy) - 1; i >= 0; i-- {
			child := node.ExtendedBy[i]
			follow, err := b.link(edges, current.sig, child)
			if err != nil {
				return nil, err
			}
			if follow {
				stack = append(stack, frame{sig: child, depth: current.depth + 1})
			}
		}
	}

	if b.progress != nil {
		b.progress.OnBuildComplete(b.stats, time.Since(startTime))
	}
	return h, nil
}

// visit queries one class. expand is false when the record carries
// neither a declaration nor a definition.
func (b *Builder) visit(ctx context.Context, sig signature.Signature) (*Node, bool, error) {
	rec, err := b.oracle.CrossReferences(ctx, sig)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cross references for %s: %w", sig, err)
	}

	if rec.View() == nil {
		b.stats.Missing++
		if b.verbose {
			log.Printf("No declaration or definition for %s, not descending", sig.ClassName())
		}
		return &Node{ExtendedBy: []signature.Signature{}}, false, nil
	}

	node := &Node{
		Extends:    rec.Parent(),
		ExtendedBy: []signature.Signature{},
	}
	for _, child := range rec.Children() {
		if b.excluded(child) {
			b.stats.Excluded++
			if b.verbose {
				log.Printf("Excluding %s (%s)", child.ClassName(), child.FilePath())
			}
			continue
		}
		node.ExtendedBy = append(node.ExtendedBy, child)
	}
	return node, true, nil
}

// link records parent -> child and reports whether child should be scheduled.
func (b *Builder) link(edges graph.Graph[signature.Signature, signature.Signature], parent, child signature.Signature) (bool, error) {
	if err := edges.AddVertex(child); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return false, fmt.Errorf("failed to add vertex %s: %w", child, err)
	}

	err := edges.AddEdge(parent, child)
	switch {
	case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
		return true, nil
	case errors.Is(err, graph.ErrEdgeCreatesCycle):
		b.stats.CyclesSkipped++
		if b.verbose {
			log.Printf("Warning: %s is reported as a subclass of its own descendant %s, not descending",
				child.ClassName(), parent.ClassName())
		}
		return false, nil
	default:
		return false, fmt.Errorf("failed to add edge %s -> %s: %w", parent, child, err)
	}
}

func (b *Builder) excluded(sig signature.Signature) bool {
	if len(b.exclude) == 0 {
		return false
	}
	path := sig.FilePath()
	for _, g := range b.exclude {
		if g.Match(path) {
			return true
		}
	}
	return false
}
