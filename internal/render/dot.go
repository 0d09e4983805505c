// Package render projects a finished hierarchy into its output formats.
// Renderers are read-only and iterate the hierarchy in insertion order,
// so output is deterministic for a given hierarchy.
package render

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/classmap/internal/hierarchy"
	"github.com/mvp-joe/classmap/internal/signature"
)

// Default node colours.
const (
	DefaultOverrideColor = "palegreen"
	DefaultPlainColor    = "tomato"
)

// DOTOptions configures the Graphviz output.
type DOTOptions struct {
	Linker        signature.Linker
	OverrideColor string // Fill for classes overriding at least one catalogued method
	PlainColor    string // Fill for all other classes
}

func (o DOTOptions) withDefaults() DOTOptions {
	if o.Linker.Base == "" {
		o.Linker = signature.NewLinker("")
	}
	if o.OverrideColor == "" {
		o.OverrideColor = DefaultOverrideColor
	}
	if o.PlainColor == "" {
		o.PlainColor = DefaultPlainColor
	}
	return o
}

// DOT returns a Graphviz digraph of h. Edges are emitted first, one per
// extended_by entry, then one node statement per class. Nodes are named
// by ClassName and link to their source.
func DOT(h *hierarchy.Hierarchy, opts DOTOptions) string {
	opts = opts.withDefaults()

	var edges, nodes strings.Builder
	h.Each(func(sig signature.Signature, node *hierarchy.Node) {
		parent := sig.ClassName()
		for _, child := range node.ExtendedBy {
			fmt.Fprintf(&edges, "%s -> %s\n", quote(parent), quote(child.ClassName()))
		}

		color := opts.PlainColor
		if node.HasOverrides() {
			color = opts.OverrideColor
		}
		fmt.Fprintf(&nodes, "%s [color=%s shape=rect style=\"rounded,filled\" URL=%s]\n",
			quote(parent), color, quote(opts.Linker.SourceURL(sig)))
	})

	var out strings.Builder
	out.WriteString("digraph {\n")
	out.WriteString(edges.String())
	out.WriteString(nodes.String())
	out.WriteString("}")
	return out.String()
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
