package hierarchy

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/classmap/internal/signature"
)

var (
	// ErrEmptyCatalogue indicates a catalogue without entries.
	ErrEmptyCatalogue = errors.New("empty override catalogue")

	// ErrDuplicateEntry indicates the same method listed twice.
	ErrDuplicateEntry = errors.New("duplicate catalogue entry")

	// ErrNotMethodDeclaration indicates an entry that is not a |decl function signature.
	ErrNotMethodDeclaration = errors.New("catalogue entry is not a method declaration")
)

// Catalogue is the ordered, immutable list of ancestor virtual methods
// checked for overrides. Order defines the table's column order.
type Catalogue struct {
	entries []signature.Signature
}

// catalogueFile is the on-disk YAML layout.
type catalogueFile struct {
	Signatures []string `yaml:"signatures"`
}

// NewCatalogue validates entries and returns a catalogue.
func NewCatalogue(entries ...signature.Signature) (Catalogue, error) {
	if len(entries) == 0 {
		return Catalogue{}, ErrEmptyCatalogue
	}

	seen := make(map[signature.Signature]bool, len(entries))
	out := make([]signature.Signature, 0, len(entries))
	for i, entry := range entries {
		entry = signature.Signature(strings.TrimSpace(string(entry)))
		if entry == "" {
			return Catalogue{}, fmt.Errorf("catalogue entry %d is empty", i)
		}
		if !entry.IsFunction() || !entry.IsDeclaration() {
			return Catalogue{}, fmt.Errorf("%w: %s", ErrNotMethodDeclaration, entry)
		}
		if seen[entry] {
			return Catalogue{}, fmt.Errorf("%w: %s", ErrDuplicateEntry, entry)
		}
		seen[entry] = true
		out = append(out, entry)
	}
	return Catalogue{entries: out}, nil
}

// LoadCatalogue reads a YAML catalogue:
//
//	signatures:
//	  - "cpp:views::class-View::OnKeyPressed(const ui::KeyEvent &)@chromium/../../ui/views/view.h|decl"
func LoadCatalogue(path string) (Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalogue{}, fmt.Errorf("failed to read catalogue: %w", err)
	}

	var file catalogueFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Catalogue{}, fmt.Errorf("failed to parse catalogue %s: %w", path, err)
	}

	entries := make([]signature.Signature, 0, len(file.Signatures))
	for _, s := range file.Signatures {
		entries = append(entries, signature.Signature(s))
	}
	cat, err := NewCatalogue(entries...)
	if err != nil {
		return Catalogue{}, fmt.Errorf("invalid catalogue %s: %w", path, err)
	}
	return cat, nil
}

// Len returns the number of methods.
func (c Catalogue) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the methods in order.
func (c Catalogue) Entries() []signature.Signature {
	out := make([]signature.Signature, len(c.entries))
	copy(out, c.entries)
	return out
}

// MethodName returns "Class::Method" for a catalogued function signature,
// used for table headers.
func MethodName(sig signature.Signature) string {
	s := string(sig)
	if at := strings.LastIndex(s, "@"); at >= 0 {
		s = s[:at]
	}
	if paren := strings.Index(s, "("); paren >= 0 {
		s = s[:paren]
	}
	method := s
	if sep := strings.LastIndex(s, "::"); sep >= 0 {
		method = s[sep+2:]
	}
	return sig.ClassName() + "::" + method
}

// DefaultCatalogue returns the ui::EventHandler and views::View input
// handlers audited by default.
func DefaultCatalogue() Catalogue {
	cat, err := NewCatalogue(defaultEntries...)
	if err != nil {
		panic(err)
	}
	return cat
}

var defaultEntries = []signature.Signature{
	"cpp:ui::class-EventHandler::OnEvent(ui::Event *)@chromium/../../ui/events/event_handler.h|decl",
	"cpp:ui::class-EventHandler::OnKeyEvent(ui::KeyEvent *)@chromium/../../ui/events/event_handler.h|decl",
	"cpp:ui::class-EventHandler::OnMouseEvent(ui::MouseEvent *)@chromium/../../ui/events/event_handler.h|decl",
	"cpp:ui::class-EventHandler::OnScrollEvent(ui::ScrollEvent *)@chromium/../../ui/events/event_handler.h|decl",
	"cpp:ui::class-EventHandler::OnTouchEvent(ui::TouchEvent *)@chromium/../../ui/events/event_handler.h|decl",
	"cpp:ui::class-EventHandler::OnGestureEvent(ui::GestureEvent *)@chromium/../../ui/events/event_handler.h|decl",
	"cpp:ui::class-EventHandler::OnCancelMode(ui::CancelModeEvent *)@chromium/../../ui/events/event_handler.h|decl",
	"cpp:views::class-View::OnMousePressed(const ui::MouseEvent &)@chromium/../../ui/views/view.h|decl",
	"cpp:views::class-View::OnMouseDragged(const ui::MouseEvent &)@chromium/../../ui/views/view.h|decl",
	"cpp:views::class-View::OnMouseReleased(const ui::MouseEvent &)@chromium/../../ui/views/view.h|decl",
	"cpp:views::class-View::OnMouseCaptureLost()@chromium/../../ui/views/view.h|decl",
	"cpp:views::class-View::OnMouseMoved(const ui::MouseEvent &)@chromium/../../ui/views/view.h|decl",
	"cpp:views::class-View::OnMouseEntered(const ui::MouseEvent &)@chromium/../../ui/views/view.h|decl",
	"cpp:views::class-View::OnMouseExited(const ui::MouseEvent &)@chromium/../../ui/views/view.h|decl",
	"cpp:views::class-View::OnKeyPressed(const ui::KeyEvent &)@chromium/../../ui/views/view.h|decl",
	"cpp:views::class-View::OnKeyReleased(const ui::KeyEvent &)@chromium/../../ui/views/view.h|decl",
	"cpp:views::class-View::OnMouseWheel(const ui::MouseWheelEvent &)@chromium/../../ui/views/view.h|decl",
	"cpp:views::class-View::OnDragEntered(const ui::DropTargetEvent &)@chromium/../../ui/views/view.h|decl",
	"cpp:views::class-View::OnDragUpdated(const ui::DropTargetEvent &)@chromium/../../ui/views/view.h|decl",
	"cpp:views::class-View::OnDragExited()@chromium/../../ui/views/view.h|decl",
	"cpp:views::class-View::OnPerformDrop(const ui::DropTargetEvent &)@chromium/../../ui/views/view.h|decl",
	"cpp:views::class-View::OnDragDone()@chromium/../../ui/views/view.h|decl",
}
