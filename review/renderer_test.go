package review

import (
	"testing"

	"scriptsync/assert"
	"scriptsync/text"
)

func TestRenderGroupsByKind(t *testing.T) {
	store := NewStore()
	surface := &fakeSurface{}
	renderer := NewRenderer(store, surface)
	doc := newFakeDoc("a.js", "1\n2\n3\n4\n5\n6\n")

	changes := BuildChanges(text.Diff(doc.Text(), "1\nX\n3\n5\nY\n6\n"))
	store.Put(doc.Key(), changes)

	assert.NoError(t, renderer.Render(doc), "render")

	assert.Equal(t, 1, len(surface.paints), "one paint")
	p := surface.paints[0]
	assert.Equal(t, doc.Key(), p.DocKey, "doc key")
	assert.Equal(t, 1, len(p.Changed), "changed group")
	assert.Equal(t, 1, len(p.Added), "added group")
	assert.Equal(t, 1, len(p.Removed), "removed group")
}

func TestRenderTrimsFullLineSpanForDisplay(t *testing.T) {
	store := NewStore()
	surface := &fakeSurface{}
	renderer := NewRenderer(store, surface)
	doc := newFakeDoc("a.js", "short\nlonger line\ntail\n")

	store.Put(doc.Key(), []*Change{{
		ID:         1,
		Kind:       KindChanged,
		Range:      Range{StartLine: 0, EndLine: 2},
		RemoteText: "X\n",
	}})

	assert.NoError(t, renderer.Render(doc), "render")

	a := surface.paints[0].Changed[0]
	assert.Equal(t, 0, a.StartLine, "start line")
	assert.Equal(t, 1, a.EndLine, "end trimmed to last covered line")
	assert.Equal(t, len("longer line"), a.EndCol, "end col at end of line")
}

func TestRenderDisplayTrimDoesNotMutateChange(t *testing.T) {
	store := NewStore()
	surface := &fakeSurface{}
	renderer := NewRenderer(store, surface)
	doc := newFakeDoc("a.js", "a\nb\nc\n")

	c := &Change{ID: 1, Kind: KindRemoved, Range: Range{StartLine: 1, EndLine: 2}}
	store.Put(doc.Key(), []*Change{c})

	assert.NoError(t, renderer.Render(doc), "render")

	assert.Equal(t, 2, c.Range.EndLine, "canonical end line untouched")
	assert.Equal(t, 0, c.Range.EndCol, "canonical end col untouched")

	a := surface.paints[0].Removed[0]
	assert.Equal(t, 1, a.EndLine, "display end line")
	assert.Equal(t, 1, a.EndCol, "display end col")
}

func TestRenderInsertionKeepsZeroWidthRange(t *testing.T) {
	store := NewStore()
	surface := &fakeSurface{}
	renderer := NewRenderer(store, surface)
	doc := newFakeDoc("a.js", "a\nb\n")

	store.Put(doc.Key(), []*Change{{
		ID:         1,
		Kind:       KindAdded,
		Range:      Range{StartLine: 1, EndLine: 1},
		RemoteText: "X\n",
	}})

	assert.NoError(t, renderer.Render(doc), "render")

	a := surface.paints[0].Added[0]
	assert.Equal(t, 1, a.StartLine, "start line")
	assert.Equal(t, 1, a.EndLine, "end line stays zero-width")
	assert.Equal(t, 0, a.EndCol, "end col")
	assert.Equal(t, "X\n", a.RemoteText, "remote text carried to surface")
}

func TestRenderEmptyListClears(t *testing.T) {
	store := NewStore()
	surface := &fakeSurface{}
	renderer := NewRenderer(store, surface)
	doc := newFakeDoc("a.js", "a\n")

	assert.NoError(t, renderer.Render(doc), "render")

	assert.Equal(t, 0, len(surface.paints), "nothing painted")
	assert.Equal(t, 1, len(surface.clears), "annotations cleared")
	assert.Equal(t, doc.Key(), surface.clears[0], "cleared doc key")
}
