package review

import (
	"testing"

	"scriptsync/assert"
)

func TestStorePutGet(t *testing.T) {
	s := NewStore()
	list := []*Change{{ID: 1, Kind: KindAdded}}

	s.Put("a.js", list)

	assert.Equal(t, 1, len(s.Get("a.js")), "stored list length")
	assert.Equal(t, int64(1), s.Get("a.js")[0].ID, "stored change id")
	assert.Equal(t, 0, len(s.Get("b.js")), "unknown doc is empty")
}

func TestStorePutReplacesWholeList(t *testing.T) {
	s := NewStore()
	s.Put("a.js", []*Change{{ID: 1}, {ID: 2}})
	s.Put("a.js", []*Change{{ID: 3}})

	list := s.Get("a.js")
	assert.Equal(t, 1, len(list), "replacement list length")
	assert.Equal(t, int64(3), list[0].ID, "replacement change id")
}

func TestStorePutEmptyRemovesEntry(t *testing.T) {
	s := NewStore()
	s.Put("a.js", []*Change{{ID: 1}})

	s.Put("a.js", nil)
	assert.Equal(t, 0, len(s.Get("a.js")), "nil put removes entry")

	s.Put("a.js", []*Change{{ID: 2}})
	s.Put("a.js", []*Change{})
	assert.Equal(t, 0, len(s.Get("a.js")), "empty put removes entry")
}

func TestStoreRemove(t *testing.T) {
	s := NewStore()
	s.Put("a.js", []*Change{{ID: 1}})
	s.Put("b.js", []*Change{{ID: 2}})

	s.Remove("a.js")

	assert.Equal(t, 0, len(s.Get("a.js")), "removed doc is empty")
	assert.Equal(t, 1, len(s.Get("b.js")), "other doc untouched")

	// Removing an absent key is fine.
	s.Remove("c.js")
}
