package review

import (
	"fmt"

	"scriptsync/logger"
	"scriptsync/text"
)

// Resolver applies accept and reject decisions for single pending changes.
// Each change is terminal after either decision; there are no further
// transitions. Both operations are idempotent against an already-resolved or
// unknown id: a stale hover racing a superseding pull is expected, so a miss
// is a logged no-op, never an error.
type Resolver struct {
	store    *Store
	renderer *Renderer
	surface  Surface
}

func NewResolver(store *Store, renderer *Renderer, surface Surface) *Resolver {
	return &Resolver{store: store, renderer: renderer, surface: surface}
}

// Accept applies the change's remote text to the document as one atomic
// edit, re-anchors every remaining change at or after it by the resulting
// line delta, swaps the updated list into the store, and repaints. If the
// edit is rejected by the host the store is left unmodified, so no partial
// re-anchoring is ever committed.
//
// Because each accept fully re-derives the remaining ranges from its single
// line delta and never shifts changes before the acted-on one, accepts and
// rejects in any order yield the same final document text.
func (r *Resolver) Accept(doc Document, id int64) error {
	list := r.store.Get(doc.Key())
	idx := indexOf(list, id)
	if idx < 0 {
		logger.Debug("accept: no pending change %d for %s", id, doc.Key())
		return nil
	}
	c := list[idx]

	if err := applyEdit(doc, c); err != nil {
		return fmt.Errorf("apply change %d to %s: %w", id, doc.Key(), err)
	}

	delta := c.LineDelta()
	next := make([]*Change, 0, len(list)-1)
	for _, o := range list {
		if o.ID == id {
			continue
		}
		if delta != 0 && o.Range.StartLine >= c.Range.StartLine {
			// Only whole lines were inserted or removed above, so character
			// offsets on the shifted lines are unaffected.
			shifted := *o
			shifted.Range.StartLine += delta
			shifted.Range.EndLine += delta
			next = append(next, &shifted)
		} else {
			next = append(next, o)
		}
	}
	r.store.Put(doc.Key(), next)

	r.repaint(doc)
	if len(next) == 0 {
		r.notifyDone(doc)
	}
	return nil
}

// Reject removes the change from the list without touching the document.
// Local content is unchanged, so no other change's position is affected and
// no re-anchoring happens.
func (r *Resolver) Reject(doc Document, id int64) error {
	list := r.store.Get(doc.Key())
	idx := indexOf(list, id)
	if idx < 0 {
		logger.Debug("reject: no pending change %d for %s", id, doc.Key())
		return nil
	}

	next := make([]*Change, 0, len(list)-1)
	next = append(next, list[:idx]...)
	next = append(next, list[idx+1:]...)
	r.store.Put(doc.Key(), next)

	r.repaint(doc)
	if len(next) == 0 {
		r.notifyDone(doc)
	}
	return nil
}

func (r *Resolver) repaint(doc Document) {
	if err := r.renderer.Render(doc); err != nil {
		logger.Error("repaint %s: %v", doc.Key(), err)
	}
}

func (r *Resolver) notifyDone(doc Document) {
	if err := r.surface.Notify(fmt.Sprintf("scriptsync: review of %s complete", doc.Key())); err != nil {
		logger.Error("notify: %v", err)
	}
}

// applyEdit mutates the live document for an accepted change. This is the one
// path that changes file content; each arm is a single atomic edit so the
// host's undo stack treats it as one user action.
func applyEdit(doc Document, c *Change) error {
	switch c.Kind {
	case KindRemoved:
		return doc.ApplyEdit(c.Range.StartLine, c.Range.EndLine, nil)
	case KindChanged:
		return doc.ApplyEdit(c.Range.StartLine, c.Range.EndLine, text.SplitLines(c.RemoteText))
	case KindAdded:
		return doc.ApplyEdit(c.Range.StartLine, c.Range.StartLine, text.SplitLines(c.RemoteText))
	}
	return nil
}

func indexOf(list []*Change, id int64) int {
	for i, c := range list {
		if c.ID == id {
			return i
		}
	}
	return -1
}
