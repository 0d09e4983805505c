package cli

// Test Plan for classmap commands:
// - parseRootQuery accepts -s alone or -p with -w, rejects every other combination as usage
// - parseRootQuery rejects a malformed -s as usage
// - ExitCode maps usage errors to 2, unresolved signatures to 3, anything else to 1
// - generate resolves (path, word) through a fixture, writes all three artifacts and summarises the edges
// - generate with an unresolvable (path, word) exits 3 and writes nothing
// - generate honours output settings from config
// - generate runs offline against the shipped fixture and catalogue with exclusions
// - renderDump re-renders a previous run from its dump
// - printCatalogue lists the built-in catalogue, a catalogue file, or method names
// - validateConfig runs after flag overrides, so a fixture excuses a bad endpoint
// - validateConfig reports an emptied output dir as usage
// - the root command reports usage errors for bad invocations, including invalid overrides
// - version prints the build information

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/classmap/internal/config"
	"github.com/mvp-joe/classmap/internal/hierarchy"
	"github.com/mvp-joe/classmap/internal/oracle"
	"github.com/mvp-joe/classmap/internal/signature"
)

const (
	viewSig   = signature.Signature("cpp:views::class-View@chromium/../../ui/views/view.h|def")
	buttonSig = signature.Signature("cpp:views::class-Button@chromium/../../ui/views/controls/button/button.h|def")
	labelSig  = signature.Signature("cpp:views::class-Label@chromium/../../ui/views/controls/label.h|def")
	paintSig  = signature.Signature("cpp:views::class-View::OnPaint(gfx::Canvas *)@chromium/../../ui/views/view.h|decl")
	labelOver = signature.Signature("cpp:views::class-Label::OnPaint(gfx::Canvas *)@chromium/../../ui/views/controls/label.h|decl")
)

// writeFixture records a small views hierarchy as an offline oracle fixture.
func writeFixture(t *testing.T) string {
	t.Helper()

	s := oracle.NewStatic()
	s.AddClass(viewSig, "", buttonSig, labelSig)
	s.AddClass(buttonSig, viewSig)
	s.AddClass(labelSig, viewSig)
	s.AddOverrides(paintSig, labelOver)
	s.Resolutions[oracle.ResolutionKey("ui/views/view.h", "View")] = viewSig

	data, err := json.Marshal(s)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "fixture.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func writeCatalogue(t *testing.T, entries ...signature.Signature) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("signatures:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "  - %q\n", e)
	}
	path := filepath.Join(t.TempDir(), "catalogue.yml")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Oracle.Fixture = writeFixture(t)
	cfg.Catalogue.File = writeCatalogue(t, paintSig)
	cfg.Output.Dir = "out"
	return cfg
}

func TestParseRootQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		sig       string
		path      string
		word      string
		want      rootQuery
		wantUsage bool
	}{
		{name: "signature", sig: string(viewSig), want: rootQuery{Signature: viewSig}},
		{name: "path and word", path: "ui/views/view.h", word: "View", want: rootQuery{Path: "ui/views/view.h", Word: "View"}},
		{name: "nothing", wantUsage: true},
		{name: "path only", path: "ui/views/view.h", wantUsage: true},
		{name: "word only", word: "View", wantUsage: true},
		{name: "signature and path", sig: string(viewSig), path: "ui/views/view.h", wantUsage: true},
		{name: "malformed signature", sig: "View", wantUsage: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseRootQuery(tt.sig, tt.path, tt.word)
			if tt.wantUsage {
				require.Error(t, err)
				assert.Equal(t, ExitUsage, ExitCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRootQuery_MalformedKeepsCause(t *testing.T) {
	t.Parallel()

	_, err := parseRootQuery("View", "", "")
	assert.ErrorIs(t, err, signature.ErrMalformed)
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, ExitUsage, ExitCode(usageErrorf("bad flag")))
	assert.Equal(t, ExitUsage, ExitCode(fmt.Errorf("wrapped: %w", usageErrorf("bad flag"))))
	assert.Equal(t, ExitUnresolved, ExitCode(fmt.Errorf("failed to resolve: %w", oracle.ErrSignatureNotFound)))
	assert.Equal(t, ExitFailure, ExitCode(fmt.Errorf("xrefs: %w", oracle.ErrUnavailable)))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
}

func TestGenerate_ResolvesAndWrites(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	fs := afero.NewMemMapFs()
	var out bytes.Buffer

	err := generate(context.Background(), cfg, rootQuery{Path: "ui/views/view.h", Word: "View"}, fs, &out, nil)
	require.NoError(t, err)

	for _, suffix := range []string{"_hierarchy.json", "_graph.dot", "_data.txt"} {
		path := filepath.Join("out", "views::View"+suffix)
		exists, err := afero.Exists(fs, path)
		require.NoError(t, err)
		assert.True(t, exists, path)
		assert.Contains(t, out.String(), path)
	}
	assert.Contains(t, out.String(), "views::View: 3 classes, 1 overriding (2 edges")

	dot, err := afero.ReadFile(fs, filepath.Join("out", "views::View_graph.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(dot), `"views::Label" [color=palegreen`)
	assert.Contains(t, string(dot), `"views::Button" [color=tomato`)
}

func TestGenerate_FromSignature(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	fs := afero.NewMemMapFs()

	err := generate(context.Background(), cfg, rootQuery{Signature: buttonSig}, fs, &bytes.Buffer{}, nil)
	require.NoError(t, err)

	table, err := afero.ReadFile(fs, filepath.Join("out", "views::Button_data.txt"))
	require.NoError(t, err)
	rows := strings.Split(strings.TrimSuffix(string(table), "\n"), "\n")
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0], `"views::View")`)
}

func TestGenerate_UnresolvedExitsThree(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	fs := afero.NewMemMapFs()

	err := generate(context.Background(), cfg, rootQuery{Path: "ui/views/view.h", Word: "Nope"}, fs, &bytes.Buffer{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, oracle.ErrSignatureNotFound)
	assert.Equal(t, ExitUnresolved, ExitCode(err))

	exists, err := afero.DirExists(fs, "out")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGenerate_OutputSettings(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Output.YesMarker = "yes"
	cfg.Output.NoMarker = "-"
	cfg.Output.Header = true
	cfg.Source.URLBase = "https://source.example.test/"
	fs := afero.NewMemMapFs()

	err := generate(context.Background(), cfg, rootQuery{Signature: viewSig}, fs, &bytes.Buffer{}, nil)
	require.NoError(t, err)

	table, err := afero.ReadFile(fs, filepath.Join("out", "views::View_data.txt"))
	require.NoError(t, err)
	rows := strings.Split(strings.TrimSuffix(string(table), "\n"), "\n")
	require.Len(t, rows, 4)
	assert.Equal(t, "Class\tSignature\tParent\tviews::View::OnPaint", rows[0])
	assert.True(t, strings.HasSuffix(rows[1], "\t-"))
	assert.Contains(t, rows[3], `=HYPERLINK("https://source.example.test/`)
	assert.Contains(t, rows[3], `, "yes")`)
}

func TestGenerate_ShippedFixture(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Oracle.Fixture = filepath.Join("..", "..", "testdata", "views.json")
	cfg.Catalogue.File = filepath.Join("..", "..", "testdata", "catalogue.yml")
	cfg.Traversal.Exclude = []string{"**/test/**"}
	cfg.Output.Dir = "out"
	fs := afero.NewMemMapFs()

	var out bytes.Buffer
	err := generate(context.Background(), cfg, rootQuery{Path: "ui/views/view.h", Word: "View"}, fs, &out, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "views::View: 5 classes, 4 overriding (4 edges")

	dump, err := afero.ReadFile(fs, filepath.Join("out", "views::View_hierarchy.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(dump), "TestView")

	dot, err := afero.ReadFile(fs, filepath.Join("out", "views::View_graph.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(dot), `"views::LabelButton" -> "views::MdTextButton"`)
}

func TestGenerate_MissingFixture(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Oracle.Fixture = filepath.Join(t.TempDir(), "absent.json")

	err := generate(context.Background(), cfg, rootQuery{Signature: viewSig}, afero.NewMemMapFs(), &bytes.Buffer{}, nil)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
}

func TestRenderDump_ReRendersPreviousRun(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, generate(context.Background(), cfg, rootQuery{Signature: viewSig}, fs, &bytes.Buffer{}, nil))

	cfg.Output.Dir = "restyled"
	cfg.Output.OverrideColor = "gold"
	var out bytes.Buffer
	require.NoError(t, renderDump(context.Background(), cfg, filepath.Join("out", "views::View_hierarchy.json"), fs, &out))

	dot, err := afero.ReadFile(fs, filepath.Join("restyled", "views::View_graph.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(dot), `"views::Label" [color=gold`)
	assert.Contains(t, out.String(), filepath.Join("restyled", "views::View_data.txt"))

	exists, err := afero.Exists(fs, filepath.Join("restyled", "views::View_hierarchy.json"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPrintCatalogue(t *testing.T) {
	t.Parallel()

	t.Run("built-in", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		require.NoError(t, printCatalogue(config.Default(), &out, false))
		lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
		assert.Len(t, lines, hierarchy.DefaultCatalogue().Len())
	})

	t.Run("file with names", func(t *testing.T) {
		t.Parallel()

		cfg := config.Default()
		cfg.Catalogue.File = writeCatalogue(t, paintSig)

		var out bytes.Buffer
		require.NoError(t, printCatalogue(cfg, &out, true))
		assert.Equal(t, "views::View::OnPaint\n", out.String())
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		cfg := config.Default()
		cfg.Catalogue.File = filepath.Join(t.TempDir(), "absent.yml")
		assert.Error(t, printCatalogue(cfg, &bytes.Buffer{}, false))
	})
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantErr error
	}{
		{
			name:   "defaults",
			modify: func(*config.Config) {},
		},
		{
			name:    "empty output dir",
			modify:  func(c *config.Config) { c.Output.Dir = "" },
			wantErr: config.ErrEmptyOutputDir,
		},
		{
			name:    "bad endpoint",
			modify:  func(c *config.Config) { c.Oracle.Endpoint = "not a url" },
			wantErr: config.ErrInvalidEndpoint,
		},
		{
			name: "bad endpoint with fixture",
			modify: func(c *config.Config) {
				c.Oracle.Endpoint = "not a url"
				c.Oracle.Fixture = "views.json"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			tt.modify(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, ExitUsage, ExitCode(err))
		})
	}
}

// The root command tests share cobra's package-level state and run serially.

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		signatureFlag, pathFlag, wordFlag, outFlag, renderOutFlag = "", "", "", "", ""
		generateCmd.Flags().Lookup("out").Changed = false
		renderCmd.Flags().Lookup("out").Changed = false
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no root", args: []string{"generate"}},
		{name: "path without word", args: []string{"generate", "-p", "ui/views/view.h"}},
		{name: "unknown flag", args: []string{"generate", "--bogus"}},
		{name: "render without dump", args: []string{"render"}},
		{name: "empty generate output dir", args: []string{"generate", "-s", string(viewSig), "--out", ""}},
		{name: "empty render output dir", args: []string{"render", "--out", "", "absent_hierarchy.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeRoot(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitUsage, ExitCode(err))
		})
	}
}

func TestRootCommand_Version(t *testing.T) {
	out, err := executeRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "classmap dev")
	assert.Contains(t, out, "Git commit: none")
}
