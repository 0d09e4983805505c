package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mvp-joe/classmap/internal/signature"
)

// Static is an in-memory Oracle backed by fixed responses.
// It serves tests and offline runs from a fixture file.
type Static struct {
	// Records maps a queried signature to its record. Missing entries
	// answer with an empty record.
	Records map[signature.Signature]*XrefRecord `json:"records"`

	// Resolutions maps "path#word" to a signature.
	Resolutions map[string]signature.Signature `json:"resolutions,omitempty"`

	// Errors makes CrossReferences fail for the given signatures.
	Errors map[signature.Signature]error `json:"-"`

	// Queries records every CrossReferences call in order.
	Queries []signature.Signature `json:"-"`
}

// NewStatic creates an empty static oracle.
func NewStatic() *Static {
	return &Static{
		Records:     make(map[signature.Signature]*XrefRecord),
		Resolutions: make(map[string]signature.Signature),
		Errors:      make(map[signature.Signature]error),
	}
}

// LoadStatic reads a static oracle from a JSON fixture file of the form
// {"records": {<signature>: <record>}, "resolutions": {"path#word": <signature>}}.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	s := NewStatic()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: fixture %s: %v", ErrMalformedResponse, path, err)
	}
	if s.Records == nil {
		s.Records = make(map[signature.Signature]*XrefRecord)
	}
	if s.Resolutions == nil {
		s.Resolutions = make(map[string]signature.Signature)
	}
	return s, nil
}

// ResolutionKey builds the Resolutions key for a (path, word) pair.
func ResolutionKey(filePath, word string) string {
	return filePath + "#" + word
}

// AddClass records a class with its parent and children.
func (s *Static) AddClass(sig, parent signature.Signature, children ...signature.Signature) {
	rec := &XrefRecord{
		Definition: &XrefView{Signature: sig},
		Extends:    &Ref{Signature: parent},
	}
	for _, child := range children {
		rec.ExtendedBy = append(rec.ExtendedBy, Ref{Signature: child})
	}
	s.Records[sig] = rec
}

// AddOverrides records the functions overriding method.
func (s *Static) AddOverrides(method signature.Signature, overriders ...signature.Signature) {
	rec := s.Records[method]
	if rec == nil {
		rec = &XrefRecord{Declaration: &XrefView{Signature: method}}
		s.Records[method] = rec
	}
	for _, o := range overriders {
		rec.Overrides = append(rec.Overrides, Ref{Signature: o})
	}
}

// ResolveSignature implements Oracle.
func (s *Static) ResolveSignature(ctx context.Context, filePath, word string) (signature.Signature, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sig, ok := s.Resolutions[ResolutionKey(filePath, word)]
	if !ok || sig == "" {
		return "", fmt.Errorf("%w: %s in %s", ErrSignatureNotFound, word, filePath)
	}
	return sig, nil
}

// CrossReferences implements Oracle.
func (s *Static) CrossReferences(ctx context.Context, sig signature.Signature) (*XrefRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.Queries = append(s.Queries, sig)
	if err, ok := s.Errors[sig]; ok {
		return nil, err
	}
	if rec, ok := s.Records[sig]; ok {
		return rec, nil
	}
	return &XrefRecord{}, nil
}
