package text

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op classifies a diff segment.
type Op int

const (
	OpEqual Op = iota
	OpRemoved
	OpAdded
)

// String returns the string representation of Op for Lua integration
func (op Op) String() string {
	switch op {
	case OpEqual:
		return "equal"
	case OpRemoved:
		return "removed"
	case OpAdded:
		return "added"
	default:
		return "unknown"
	}
}

// Segment is one run of the line-level diff between local and remote text.
// The ordered segment sequence tiles both inputs with no gaps: equal and
// removed segments cover the local text, equal and added segments cover the
// remote text.
type Segment struct {
	Text string
	Op   Op
}

// Diff computes ordered line-level segments between localText and remoteText.
func Diff(localText, remoteText string) []Segment {
	dmp := diffmatchpatch.New()
	chars1, chars2, lineArray := dmp.DiffLinesToChars(localText, remoteText)
	diffs := dmp.DiffMain(chars1, chars2, false)
	lineDiffs := dmp.DiffCharsToLines(diffs, lineArray)

	segs := make([]Segment, 0, len(lineDiffs))
	for _, d := range lineDiffs {
		if d.Text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			segs = append(segs, Segment{Text: d.Text, Op: OpEqual})
		case diffmatchpatch.DiffDelete:
			segs = append(segs, Segment{Text: d.Text, Op: OpRemoved})
		case diffmatchpatch.DiffInsert:
			segs = append(segs, Segment{Text: d.Text, Op: OpAdded})
		}
	}
	return segs
}

// LineCount returns the number of editor lines a segment's text occupies.
// Text ending without a trailing newline still occupies its final line;
// zero-length text occupies none. This reconciles diff-segment text with
// editor line numbering.
func LineCount(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
