// Package report runs a complete classmap generation: build the hierarchy,
// map the catalogue onto it, render every artifact in memory, then write
// the artifacts to the output directory. Nothing is written when any step
// before the write fails.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"

	"github.com/mvp-joe/classmap/internal/hierarchy"
	"github.com/mvp-joe/classmap/internal/oracle"
	"github.com/mvp-joe/classmap/internal/render"
	"github.com/mvp-joe/classmap/internal/signature"
)

// Artifact file suffixes, appended to the root class name.
const (
	HierarchySuffix = "_hierarchy.json"
	GraphSuffix     = "_graph.dot"
	TableSuffix     = "_data.txt"
)

// ErrNoRoot indicates a dump with no classes in it.
var ErrNoRoot = errors.New("dump has no root class")

// Colors holds the DOT node fills.
type Colors struct {
	Override string
	Plain    string
}

// Markers holds the table cell markers.
type Markers struct {
	Yes string
	No  string
}

// Progress receives both traversal and mapping events.
type Progress interface {
	hierarchy.BuildProgress
	hierarchy.MapProgress
}

// Generator produces the three artifacts for a root class.
type Generator struct {
	Oracle    oracle.Oracle
	Catalogue hierarchy.Catalogue
	Fs        afero.Fs
	OutputDir string
	Linker    signature.Linker
	Colors    Colors
	Markers   Markers
	Header    bool
	Exclude   []glob.Glob
	Progress  Progress // Optional
	Verbose   bool
}

// Result describes a finished run.
type Result struct {
	Root       signature.Signature
	Hierarchy  *hierarchy.Hierarchy
	Stats      hierarchy.BuildStats
	Overriding int      // Classes overriding at least one catalogued method
	Files      []string // Paths written, in write order
	Duration   time.Duration
}

type artifact struct {
	path string
	data []byte
}

// Generate builds, maps and renders the hierarchy below root and writes
// <ClassName>_hierarchy.json, <ClassName>_graph.dot and <ClassName>_data.txt.
func (g *Generator) Generate(ctx context.Context, root signature.Signature) (*Result, error) {
	startTime := time.Now()

	if err := root.Validate(); err != nil {
		return nil, err
	}

	opts := []hierarchy.BuilderOption{
		hierarchy.WithExclude(g.Exclude...),
		hierarchy.WithVerboseLogging(g.Verbose),
	}
	var mapOpts []hierarchy.MapperOption
	if g.Progress != nil {
		opts = append(opts, hierarchy.WithBuildProgress(g.Progress))
		mapOpts = append(mapOpts, hierarchy.WithMapProgress(g.Progress))
	}

	builder := hierarchy.NewBuilder(g.Oracle, opts...)
	h, err := builder.Build(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to build hierarchy: %w", err)
	}

	if err := hierarchy.NewMapper(g.Oracle, mapOpts...).MapCatalogue(ctx, h, g.Catalogue); err != nil {
		return nil, fmt.Errorf("failed to map overrides: %w", err)
	}

	var dump bytes.Buffer
	if err := render.Dump(&dump, h); err != nil {
		return nil, err
	}

	prefix := g.prefix(root)
	artifacts := []artifact{
		{path: prefix + HierarchySuffix, data: dump.Bytes()},
		{path: prefix + GraphSuffix, data: []byte(render.DOT(h, g.dotOptions()))},
		{path: prefix + TableSuffix, data: []byte(render.Table(h, g.Catalogue, g.tableOptions()))},
	}

	files, err := g.write(artifacts)
	if err != nil {
		return nil, err
	}

	return &Result{
		Root:       root,
		Hierarchy:  h,
		Stats:      builder.Stats(),
		Overriding: h.OverridingCount(),
		Files:      files,
		Duration:   time.Since(startTime),
	}, nil
}

// RenderDump re-renders the graph and table from a hierarchy dump without
// querying the oracle. The root is the dump's first entry.
func (g *Generator) RenderDump(ctx context.Context, dumpPath string) (*Result, error) {
	startTime := time.Now()

	data, err := afero.ReadFile(g.fs(), dumpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump: %w", err)
	}
	h, err := render.LoadDump(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := h.Root()
	if root == "" {
		return nil, fmt.Errorf("%s: %w", dumpPath, ErrNoRoot)
	}

	prefix := g.prefix(root)
	files, err := g.write([]artifact{
		{path: prefix + GraphSuffix, data: []byte(render.DOT(h, g.dotOptions()))},
		{path: prefix + TableSuffix, data: []byte(render.Table(h, g.Catalogue, g.tableOptions()))},
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Root:       root,
		Hierarchy:  h,
		Stats:      hierarchy.BuildStats{Visited: h.Len()},
		Overriding: h.OverridingCount(),
		Files:      files,
		Duration:   time.Since(startTime),
	}, nil
}

func (g *Generator) write(artifacts []artifact) ([]string, error) {
	fs := g.fs()
	dir := g.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	files := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		path := filepath.Join(dir, a.path)
		if err := afero.WriteFile(fs, path, a.data, 0644); err != nil {
			return files, fmt.Errorf("failed to write %s: %w", path, err)
		}
		if g.Verbose {
			log.Printf("Wrote %s (%d bytes)", path, len(a.data))
		}
		files = append(files, path)
	}
	return files, nil
}

func (g *Generator) fs() afero.Fs {
	if g.Fs == nil {
		return afero.NewOsFs()
	}
	return g.Fs
}

// prefix names artifacts after the class, keeping them inside the output directory.
func (g *Generator) prefix(root signature.Signature) string {
	return strings.ReplaceAll(root.ClassName(), "/", "_")
}

func (g *Generator) dotOptions() render.DOTOptions {
	return render.DOTOptions{
		Linker:        g.Linker,
		OverrideColor: g.Colors.Override,
		PlainColor:    g.Colors.Plain,
	}
}

func (g *Generator) tableOptions() render.TableOptions {
	return render.TableOptions{
		Linker:    g.Linker,
		YesMarker: g.Markers.Yes,
		NoMarker:  g.Markers.No,
		Header:    g.Header,
	}
}
