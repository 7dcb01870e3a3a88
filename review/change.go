package review

import "scriptsync/text"

// Kind classifies a pending change.
type Kind int

const (
	// KindAdded means the remote has lines the local document lacks.
	KindAdded Kind = iota
	// KindRemoved means the local document has lines the remote lacks.
	KindRemoved
	// KindChanged is a removed block replaced by an added block, treated as
	// one replacement unit rather than two independent changes.
	KindChanged
)

// String returns the string representation of Kind for Lua integration
func (k Kind) String() string {
	switch k {
	case KindAdded:
		return "added"
	case KindRemoved:
		return "removed"
	case KindChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// Range is a half-open line-and-character span in the current document
// coordinate space. Lines are 0-indexed. For KindRemoved and KindChanged the
// span covers whole lines including the trailing line break of the last
// covered line, so both columns are 0 and EndLine points one past the last
// covered line. For KindAdded the span is zero-width at the start of the
// target line.
type Range struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Lines returns the number of whole document lines the range spans.
func (r Range) Lines() int { return r.EndLine - r.StartLine }

// Change is one unresolved divergence between local and remote text. The ID
// is process-unique and stable for the lifetime of the change; it is the only
// legal handle across renders and user actions. The Range is consistent with
// the document text only as of the most recent mutation: it is re-anchored
// after every accept, not tracked live.
type Change struct {
	ID         int64
	Kind       Kind
	Range      Range
	RemoteText string // empty for KindRemoved
}

// LineDelta is the net number of lines the document gains or loses when this
// change is accepted.
func (c *Change) LineDelta() int {
	switch c.Kind {
	case KindRemoved:
		return -c.Range.Lines()
	case KindChanged:
		return text.LineCount(c.RemoteText) - c.Range.Lines()
	case KindAdded:
		return text.LineCount(c.RemoteText)
	}
	return 0
}

// Document provides line-oriented access to one live editor document.
type Document interface {
	// Key is the canonical identity of the document.
	Key() string
	// LineCount is the current number of lines in the document.
	LineCount() int
	// Line returns the text of the 0-indexed line without its terminator.
	Line(i int) string
	// ApplyEdit replaces the half-open line range [startLine, endLine) with
	// the given lines as a single atomic edit. startLine == endLine inserts
	// without removing; nil lines deletes the range.
	ApplyEdit(startLine, endLine int, lines []string) error
}

// Annotation is one display range with its attached detail payload: the
// verbatim remote text and the (document, id) pair the accept and reject
// actions are parameterized by. EndLine is inclusive in display coordinates.
type Annotation struct {
	ID         int64
	StartLine  int
	StartCol   int
	EndLine    int
	EndCol     int
	RemoteText string
}

// Painting is a full set of annotations for one document, grouped by kind.
// A paint always replaces any prior paint for the document entirely.
type Painting struct {
	DocKey  string
	Added   []Annotation
	Removed []Annotation
	Changed []Annotation
}

// Surface paints review annotations in the host editor.
type Surface interface {
	// Paint replaces all annotations for the painting's document.
	Paint(p *Painting) error
	// Clear removes all annotations for the document. Clearing a document
	// with no visible surface is a no-op, not an error.
	Clear(docKey string) error
	// Notify surfaces an informational message to the user.
	Notify(msg string) error
}
