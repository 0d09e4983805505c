// Package oracle answers cross-reference questions about the indexed
// codebase: which signature a word in a file resolves to, what a class
// extends and is extended by, and which functions override a method.
package oracle

import (
	"context"
	"errors"

	"github.com/mvp-joe/classmap/internal/signature"
)

var (
	// ErrSignatureNotFound indicates a (path, word) pair did not resolve.
	ErrSignatureNotFound = errors.New("signature not found")

	// ErrUnavailable indicates the cross-reference service failed to answer.
	ErrUnavailable = errors.New("cross-reference service unavailable")

	// ErrMalformedResponse indicates the service answered with data that
	// could not be decoded.
	ErrMalformedResponse = errors.New("malformed cross-reference response")
)

// Oracle is the cross-reference service consumed by the hierarchy builder
// and override mapper. Calls are blocking.
type Oracle interface {
	// ResolveSignature maps a word in a file to its signature.
	// Returns ErrSignatureNotFound when nothing matches.
	ResolveSignature(ctx context.Context, filePath, word string) (signature.Signature, error)

	// CrossReferences returns the cross-reference record for sig.
	CrossReferences(ctx context.Context, sig signature.Signature) (*XrefRecord, error)
}

// Ref points at another indexed entity.
type Ref struct {
	Signature signature.Signature `json:"signature"`
}

// XrefView is the declaration or definition site of an entity.
type XrefView struct {
	Signature  signature.Signature `json:"signature,omitempty"`
	File       string              `json:"file,omitempty"`
	Line       int                 `json:"line,omitempty"`
	Extends    *Ref                `json:"extends,omitempty"`
	ExtendedBy []Ref               `json:"extended_by,omitempty"`
}

// XrefRecord is the cross-reference answer for one signature.
//
// Class queries populate Extends and ExtendedBy; function queries
// populate Overrides. Inheritance edges may be attached to the view or
// to the record itself, depending on the service version.
type XrefRecord struct {
	Declaration *XrefView `json:"declaration,omitempty"`
	Definition  *XrefView `json:"definition,omitempty"`
	Extends     *Ref      `json:"extends,omitempty"`
	ExtendedBy  []Ref     `json:"extended_by,omitempty"`
	Overrides   []Ref     `json:"overrides,omitempty"`
}

// View returns the declaration view, else the definition view, else nil.
func (r *XrefRecord) View() *XrefView {
	if r == nil {
		return nil
	}
	if r.Declaration != nil {
		return r.Declaration
	}
	return r.Definition
}

// Parent returns the signature the entity extends, or "" if unknown.
func (r *XrefRecord) Parent() signature.Signature {
	if v := r.View(); v != nil && v.Extends != nil {
		return v.Extends.Signature
	}
	if r != nil && r.Extends != nil {
		return r.Extends.Signature
	}
	return ""
}

// Children returns the signatures that directly extend the entity,
// in service order.
func (r *XrefRecord) Children() []signature.Signature {
	refs := r.childRefs()
	out := make([]signature.Signature, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.Signature)
	}
	return out
}

// Overriders returns the signatures of functions overriding the entity.
func (r *XrefRecord) Overriders() []signature.Signature {
	if r == nil {
		return nil
	}
	out := make([]signature.Signature, 0, len(r.Overrides))
	for _, ref := range r.Overrides {
		out = append(out, ref.Signature)
	}
	return out
}

func (r *XrefRecord) childRefs() []Ref {
	if v := r.View(); v != nil && len(v.ExtendedBy) > 0 {
		return v.ExtendedBy
	}
	if r == nil {
		return nil
	}
	return r.ExtendedBy
}
