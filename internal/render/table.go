package render

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/classmap/internal/hierarchy"
	"github.com/mvp-joe/classmap/internal/signature"
)

// Default override markers.
const (
	DefaultYesMarker = "Y"
	DefaultNoMarker  = "N"
)

// TableOptions configures the spreadsheet output.
type TableOptions struct {
	Linker    signature.Linker
	YesMarker string // Link text for an overridden method
	NoMarker  string // Plain text for a method that is not overridden
	Header    bool   // Emit a header row before the data rows
}

func (o TableOptions) withDefaults() TableOptions {
	if o.Linker.Base == "" {
		o.Linker = signature.NewLinker("")
	}
	if o.YesMarker == "" {
		o.YesMarker = DefaultYesMarker
	}
	if o.NoMarker == "" {
		o.NoMarker = DefaultNoMarker
	}
	return o
}

// Table returns tab-separated rows, one per class, for spreadsheet import.
//
// Columns: class link, raw signature, parent link, then one cell per
// catalogue entry in catalogue order holding a link to the override or
// the no-marker. Cells are HYPERLINK formulas.
func Table(h *hierarchy.Hierarchy, cat hierarchy.Catalogue, opts TableOptions) string {
	opts = opts.withDefaults()
	methods := cat.Entries()

	var out strings.Builder
	if opts.Header {
		out.WriteString(TableHeader(cat))
		out.WriteString("\n")
	}

	h.Each(func(sig signature.Signature, node *hierarchy.Node) {
		cells := make([]string, 0, 3+len(methods))
		cells = append(cells,
			hyperlink(opts.Linker.SourceURL(sig), sig.ClassName()),
			string(sig),
			parentCell(opts.Linker, node.Extends),
		)
		for _, m := range methods {
			if o, ok := node.Override(m); ok {
				cells = append(cells, hyperlink(opts.Linker.SourceURL(o), opts.YesMarker))
			} else {
				cells = append(cells, opts.NoMarker)
			}
		}
		out.WriteString(strings.Join(cells, "\t"))
		out.WriteString("\n")
	})
	return out.String()
}

// TableHeader returns the column titles matching Table's columns.
func TableHeader(cat hierarchy.Catalogue) string {
	titles := []string{"Class", "Signature", "Parent"}
	for _, m := range cat.Entries() {
		titles = append(titles, hierarchy.MethodName(m))
	}
	return strings.Join(titles, "\t")
}

func parentCell(linker signature.Linker, parent signature.Signature) string {
	if parent == "" {
		return ""
	}
	return hyperlink(linker.SourceURL(parent), parent.ClassName())
}

func hyperlink(url, text string) string {
	return fmt.Sprintf(`=HYPERLINK("%s", "%s")`, formulaEscape(url), formulaEscape(text))
}

// Spreadsheet formulas escape a quote by doubling it.
func formulaEscape(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}
