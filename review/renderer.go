package review

// Renderer projects a document's current pending-change list into three
// disjoint kind groups of display annotations and asks the surface to paint
// them, replacing any prior paint for the document. There is no incremental
// diffing of old vs new annotation sets: the list is always rebuilt
// atomically and is small, so a full repaint is both correct and cheap.
type Renderer struct {
	store   *Store
	surface Surface
}

func NewRenderer(store *Store, surface Surface) *Renderer {
	return &Renderer{store: store, surface: surface}
}

// Render repaints the document's annotations from the store. Invoked whenever
// the store's list for the document changes or the document regains viewport
// focus. A document with no pending changes gets its annotations cleared.
func (r *Renderer) Render(doc Document) error {
	list := r.store.Get(doc.Key())
	if len(list) == 0 {
		return r.surface.Clear(doc.Key())
	}

	p := &Painting{DocKey: doc.Key()}
	for _, c := range list {
		a := displayAnnotation(c, doc)
		switch c.Kind {
		case KindAdded:
			p.Added = append(p.Added, a)
		case KindRemoved:
			p.Removed = append(p.Removed, a)
		case KindChanged:
			p.Changed = append(p.Changed, a)
		}
	}
	return r.surface.Paint(p)
}

// displayAnnotation converts a change's canonical range into display
// coordinates. A full-line-inclusive span ends at column 0 of the line after
// its last covered line; painting that raw boundary would highlight an extra
// blank line, so the display range is trimmed to end at the end of the
// previous line instead. The canonical range stored on the change is
// untouched; this is a display transform only.
func displayAnnotation(c *Change, doc Document) Annotation {
	a := Annotation{
		ID:         c.ID,
		StartLine:  c.Range.StartLine,
		StartCol:   c.Range.StartCol,
		EndLine:    c.Range.EndLine,
		EndCol:     c.Range.EndCol,
		RemoteText: c.RemoteText,
	}
	if c.Kind != KindAdded && a.EndCol == 0 && a.EndLine > a.StartLine {
		a.EndLine--
		if a.EndLine >= 0 && a.EndLine < doc.LineCount() {
			a.EndCol = len(doc.Line(a.EndLine))
		}
	}
	return a
}
