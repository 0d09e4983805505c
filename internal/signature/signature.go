// Package signature parses the signature strings produced by the code
// search index.
//
// A signature identifies a class or function in the indexed codebase:
//
//	cpp:views::class-View::OnMousePressed(const ui::MouseEvent &)@chromium/../../ui/views/view.h|decl
//	cpp:views::class-View@chromium/../../ui/views/view.h|def
//
// The grammar is ad hoc, so every accessor lives here and callers treat
// Signature as an opaque value.
package signature

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	// BasePrefix precedes the repository-relative path inside a signature.
	BasePrefix = "chromium/../../"

	// LanguageTag is the only language the grammar supports.
	LanguageTag = "cpp:"

	classMarker = "class-"
	declSuffix  = "|decl"
	defSuffix   = "|def"
)

// ErrMalformed indicates a string that does not follow the signature grammar.
var ErrMalformed = errors.New("malformed signature")

// methodSuffix matches "::Name(args)". Greedy to the last ')' so nested
// parentheses in argument lists are consumed.
var methodSuffix = regexp.MustCompile(`::[A-Za-z0-9_]*\(.*\)`)

// Signature is an opaque identifier for a class or function.
type Signature string

// String implements fmt.Stringer.
func (s Signature) String() string {
	return string(s)
}

// FilePath returns the repository-relative path encoded in the signature,
// or "" if the base prefix followed by '|' does not occur.
// The last occurrence of the prefix wins.
func (s Signature) FilePath() string {
	str := string(s)
	end := strings.LastIndex(str, "|")
	if end < 0 {
		return ""
	}
	start := strings.LastIndex(str[:end], BasePrefix)
	if start < 0 {
		return ""
	}
	return str[start+len(BasePrefix) : end]
}

// ClassName returns the human readable qualified class name, e.g. "ui::View".
// Function signatures yield their enclosing class.
func (s Signature) ClassName() string {
	name := string(s)
	if at := strings.LastIndex(name, "@"); at >= 0 {
		name = name[:at]
	}
	name = strings.TrimPrefix(name, LanguageTag)
	name = strings.ReplaceAll(name, classMarker, "")
	return methodSuffix.ReplaceAllString(name, "")
}

// EnclosingClass converts a function declaration signature into the
// definition signature of the class that declares it.
func (s Signature) EnclosingClass() Signature {
	class := strings.ReplaceAll(string(s), declSuffix, defSuffix)
	return Signature(methodSuffix.ReplaceAllString(class, ""))
}

// IsFunction reports whether the signature names a function.
func (s Signature) IsFunction() bool {
	return methodSuffix.MatchString(s.qualifiedName())
}

// IsDeclaration reports whether the signature carries the |decl discriminator.
func (s Signature) IsDeclaration() bool {
	return strings.HasSuffix(string(s), declSuffix)
}

// Validate checks the parts of the grammar the accessors depend on.
func (s Signature) Validate() error {
	str := string(s)
	if strings.TrimSpace(str) == "" {
		return fmt.Errorf("%w: empty", ErrMalformed)
	}
	if !strings.Contains(str, "@") {
		return fmt.Errorf("%w: missing '@' in %q", ErrMalformed, str)
	}
	if s.FilePath() == "" {
		return fmt.Errorf("%w: missing %q path or '|' discriminator in %q", ErrMalformed, BasePrefix, str)
	}
	return nil
}

func (s Signature) qualifiedName() string {
	str := string(s)
	if at := strings.LastIndex(str, "@"); at >= 0 {
		return str[:at]
	}
	return str
}

// DefaultSourceBase is the code search location that source URLs point into.
const DefaultSourceBase = "https://cs.chromium.org/chromium/src/"

// Linker builds browsable source URLs for signatures.
type Linker struct {
	Base string
}

// NewLinker returns a Linker rooted at base, or DefaultSourceBase when empty.
func NewLinker(base string) Linker {
	if base == "" {
		base = DefaultSourceBase
	}
	return Linker{Base: base}
}

// SourceURL returns <base><path>?gs=<signature>&gsn=<class name>.
func (l Linker) SourceURL(s Signature) string {
	return fmt.Sprintf("%s%s?gs=%s&gsn=%s",
		l.Base,
		escape(s.FilePath()),
		escape(string(s)),
		escape(s.ClassName()),
	)
}

// escape percent-encodes everything outside [A-Za-z0-9-_.~].
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
