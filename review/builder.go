package review

import (
	"sync/atomic"

	"scriptsync/text"
)

// nextID is shared across all documents so ids never collide, even across
// concurrent reviews of different files. Initialize once, increment forever;
// ids are never reused.
var nextID atomic.Int64

// BuildChanges walks the diff segments once, left to right, and produces the
// ordered pending-change list for a document. li tracks the line index in the
// local (pre-change) document at which the next segment begins; equal and
// removed segments advance it, added segments do not (added text has not been
// materialized into the document yet).
//
// A removed segment adjacent to an added segment — in either order — merges
// into a single KindChanged record covering the removed block's lines and
// carrying the added segment's text. Without the merge a one-line edit would
// be presented as a delete-then-insert pair, and accepting the delete half
// first would desynchronize line numbers under the insert half.
func BuildChanges(segs []text.Segment) []*Change {
	var changes []*Change
	li := 0

	for i := 0; i < len(segs); i++ {
		seg := segs[i]
		switch seg.Op {
		case text.OpEqual:
			li += text.LineCount(seg.Text)

		case text.OpRemoved:
			removed := text.LineCount(seg.Text)
			if i+1 < len(segs) && segs[i+1].Op == text.OpAdded {
				changes = append(changes, newChange(KindChanged, li, removed, segs[i+1].Text))
				i++ // both segments consumed together
			} else {
				changes = append(changes, newChange(KindRemoved, li, removed, ""))
			}
			li += removed

		case text.OpAdded:
			if i+1 < len(segs) && segs[i+1].Op == text.OpRemoved {
				// The differ may emit the added half of a replacement first.
				removed := text.LineCount(segs[i+1].Text)
				changes = append(changes, newChange(KindChanged, li, removed, seg.Text))
				li += removed
				i++
			} else {
				changes = append(changes, newChange(KindAdded, li, 0, seg.Text))
			}
		}
	}

	return changes
}

func newChange(kind Kind, li, spanned int, remoteText string) *Change {
	c := &Change{
		ID:         nextID.Add(1),
		Kind:       kind,
		RemoteText: remoteText,
	}
	if kind == KindAdded {
		// Zero-width insertion point at the start of the target line.
		c.Range = Range{StartLine: li, EndLine: li}
	} else {
		c.Range = Range{StartLine: li, EndLine: li + spanned}
	}
	return c
}
