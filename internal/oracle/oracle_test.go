package oracle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/classmap/internal/signature"
)

// Test Plan for records and the static oracle:
// - View prefers declaration over definition and is nil-safe
// - Parent/Children read the view first, then the record
// - Overriders lists override signatures in order
// - Static answers recorded classes and empty records for unknown ones
// - Static surfaces injected errors and resolution misses
// - LoadStatic reads a JSON fixture and rejects malformed files

const (
	rootSig  = signature.Signature("cpp:views::class-View@chromium/../../ui/views/view.h|def")
	childSig = signature.Signature("cpp:views::class-Button@chromium/../../ui/views/button.h|def")
)

func TestXrefRecord_View(t *testing.T) {
	t.Parallel()

	var nilRec *XrefRecord
	assert.Nil(t, nilRec.View())
	assert.Equal(t, signature.Signature(""), nilRec.Parent())
	assert.Empty(t, nilRec.Children())

	decl := &XrefView{File: "a.h"}
	def := &XrefView{File: "a.cc"}
	assert.Same(t, decl, (&XrefRecord{Declaration: decl, Definition: def}).View())
	assert.Same(t, def, (&XrefRecord{Definition: def}).View())
	assert.Nil(t, (&XrefRecord{}).View())
}

func TestXrefRecord_ParentAndChildren(t *testing.T) {
	t.Parallel()

	// Edges on the record itself.
	rec := &XrefRecord{
		Definition: &XrefView{},
		Extends:    &Ref{Signature: rootSig},
		ExtendedBy: []Ref{{Signature: childSig}, {Signature: rootSig}},
	}
	assert.Equal(t, rootSig, rec.Parent())
	assert.Equal(t, []signature.Signature{childSig, rootSig}, rec.Children())

	// Edges on the view take precedence.
	rec = &XrefRecord{
		Declaration: &XrefView{
			Extends:    &Ref{Signature: childSig},
			ExtendedBy: []Ref{{Signature: rootSig}},
		},
		Extends:    &Ref{Signature: rootSig},
		ExtendedBy: []Ref{{Signature: childSig}},
	}
	assert.Equal(t, childSig, rec.Parent())
	assert.Equal(t, []signature.Signature{rootSig}, rec.Children())
}

func TestXrefRecord_Overriders(t *testing.T) {
	t.Parallel()

	rec := &XrefRecord{Overrides: []Ref{{Signature: "a"}, {Signature: "b"}}}
	assert.Equal(t, []signature.Signature{"a", "b"}, rec.Overriders())
	assert.Empty(t, (&XrefRecord{}).Overriders())
}

func TestStatic_CrossReferences(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStatic()
	s.AddClass(rootSig, "cpp:views::class-Base@chromium/../../ui/views/base.h|def", childSig)

	rec, err := s.CrossReferences(ctx, rootSig)
	require.NoError(t, err)
	assert.Equal(t, []signature.Signature{childSig}, rec.Children())

	rec, err = s.CrossReferences(ctx, childSig)
	require.NoError(t, err)
	assert.Nil(t, rec.View())

	boom := errors.New("boom")
	s.Errors[childSig] = boom
	_, err = s.CrossReferences(ctx, childSig)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, []signature.Signature{rootSig, childSig, childSig}, s.Queries)
}

func TestStatic_ResolveSignature(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStatic()
	s.Resolutions[ResolutionKey("ui/views/view.h", "View")] = rootSig

	sig, err := s.ResolveSignature(ctx, "ui/views/view.h", "View")
	require.NoError(t, err)
	assert.Equal(t, rootSig, sig)

	_, err = s.ResolveSignature(ctx, "ui/views/view.h", "Missing")
	assert.ErrorIs(t, err, ErrSignatureNotFound)
}

func TestStatic_RespectsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStatic().CrossReferences(ctx, rootSig)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadStatic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.json")
	fixture := `{
  "records": {
    "cpp:views::class-View@chromium/../../ui/views/view.h|def": {
      "definition": {"file": "ui/views/view.h"},
      "extends": {"signature": "cpp:ui::class-EventHandler@chromium/../../ui/events/event_handler.h|def"},
      "extended_by": [{"signature": "cpp:views::class-Button@chromium/../../ui/views/button.h|def"}]
    }
  },
  "resolutions": {"ui/views/view.h#View": "cpp:views::class-View@chromium/../../ui/views/view.h|def"}
}`
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0644))

	s, err := LoadStatic(path)
	require.NoError(t, err)

	rec, err := s.CrossReferences(context.Background(), rootSig)
	require.NoError(t, err)
	assert.Equal(t, []signature.Signature{childSig}, rec.Children())
	assert.Equal(t, "ui::EventHandler", rec.Parent().ClassName())

	sig, err := s.ResolveSignature(context.Background(), "ui/views/view.h", "View")
	require.NoError(t, err)
	assert.Equal(t, rootSig, sig)
}

func TestLoadStatic_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := LoadStatic(filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = LoadStatic(bad)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
