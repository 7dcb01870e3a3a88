package review

import (
	"testing"

	"scriptsync/assert"
	"scriptsync/text"
)

func assertRange(t *testing.T, startLine, endLine int, r Range, name string) {
	t.Helper()
	assert.Equal(t, startLine, r.StartLine, name+" start line")
	assert.Equal(t, endLine, r.EndLine, name+" end line")
	assert.Equal(t, 0, r.StartCol, name+" start col")
	assert.Equal(t, 0, r.EndCol, name+" end col")
}

func TestBuildChangesPureAddition(t *testing.T) {
	changes := BuildChanges(text.Diff("a\nb\n", "a\nX\nb\n"))

	assert.Equal(t, 1, len(changes), "change count")
	assert.Equal(t, KindAdded, changes[0].Kind, "kind")
	assertRange(t, 1, 1, changes[0].Range, "insertion point")
	assert.Equal(t, "X\n", changes[0].RemoteText, "remote text")
}

func TestBuildChangesPureDeletion(t *testing.T) {
	changes := BuildChanges(text.Diff("a\nb\nc\n", "a\nc\n"))

	assert.Equal(t, 1, len(changes), "change count")
	assert.Equal(t, KindRemoved, changes[0].Kind, "kind")
	assertRange(t, 1, 2, changes[0].Range, "removed span")
	assert.Equal(t, "", changes[0].RemoteText, "remote text")
}

func TestBuildChangesMergesReplacement(t *testing.T) {
	changes := BuildChanges(text.Diff("a\nb\nc\n", "a\nB\nc\n"))

	assert.Equal(t, 1, len(changes), "replacement is one change, not a pair")
	assert.Equal(t, KindChanged, changes[0].Kind, "kind")
	assertRange(t, 1, 2, changes[0].Range, "changed span")
	assert.Equal(t, "B\n", changes[0].RemoteText, "remote text")
}

func TestBuildChangesMergesAddedBeforeRemoved(t *testing.T) {
	// Hand-built ordering: some differ paths emit the insert half first.
	segs := []text.Segment{
		{Text: "a\n", Op: text.OpEqual},
		{Text: "X\n", Op: text.OpAdded},
		{Text: "b\n", Op: text.OpRemoved},
		{Text: "c\n", Op: text.OpEqual},
	}
	changes := BuildChanges(segs)

	assert.Equal(t, 1, len(changes), "change count")
	assert.Equal(t, KindChanged, changes[0].Kind, "kind")
	assertRange(t, 1, 2, changes[0].Range, "changed span")
	assert.Equal(t, "X\n", changes[0].RemoteText, "remote text")
}

func TestBuildChangesMixedEdit(t *testing.T) {
	changes := BuildChanges(text.Diff("1\n2\n3\n4\n", "1\nX\n3\nY\n4\n"))

	assert.Equal(t, 2, len(changes), "change count")

	assert.Equal(t, KindChanged, changes[0].Kind, "first kind")
	assertRange(t, 1, 2, changes[0].Range, "first span")
	assert.Equal(t, "X\n", changes[0].RemoteText, "first remote text")

	assert.Equal(t, KindAdded, changes[1].Kind, "second kind")
	assertRange(t, 3, 3, changes[1].Range, "second span")
	assert.Equal(t, "Y\n", changes[1].RemoteText, "second remote text")
}

func TestBuildChangesUnevenReplacement(t *testing.T) {
	changes := BuildChanges(text.Diff("a\nb\nc\nd\n", "a\nX\nY\nZ\nd\n"))

	assert.Equal(t, 1, len(changes), "change count")
	assert.Equal(t, KindChanged, changes[0].Kind, "kind")
	assertRange(t, 1, 3, changes[0].Range, "changed span")
	assert.Equal(t, "X\nY\nZ\n", changes[0].RemoteText, "remote text")
	assert.Equal(t, 1, changes[0].LineDelta(), "net line delta")
}

func TestBuildChangesIdenticalInputs(t *testing.T) {
	changes := BuildChanges(text.Diff("a\nb\n", "a\nb\n"))
	assert.Equal(t, 0, len(changes), "no changes for identical text")
}

func TestBuildChangesOrderedAndDisjoint(t *testing.T) {
	local := "a\nb\nc\nd\ne\nf\n"
	remote := "a\nB\nc\nd\nX\ne\n"
	changes := BuildChanges(text.Diff(local, remote))

	assert.True(t, len(changes) >= 2, "multiple changes expected")
	for i := 1; i < len(changes); i++ {
		prev, cur := changes[i-1], changes[i]
		assert.True(t, prev.Range.EndLine <= cur.Range.StartLine, "ranges ordered and disjoint")
	}
}

func TestBuildChangesIDsUniqueAndIncreasing(t *testing.T) {
	first := BuildChanges(text.Diff("a\n", "X\n"))
	second := BuildChanges(text.Diff("a\nb\nc\n", "A\nb\nC\n"))

	var ids []int64
	for _, c := range first {
		ids = append(ids, c.ID)
	}
	for _, c := range second {
		ids = append(ids, c.ID)
	}

	assert.True(t, len(ids) >= 3, "enough changes to compare ids")
	for i := 1; i < len(ids); i++ {
		assert.True(t, ids[i] > ids[i-1], "ids strictly increasing")
	}
}
