package review

import "sync"

// Store is the process-wide registry of unresolved changes, keyed by
// canonical document key. It is the single source of truth for what is still
// unresolved in a given document.
//
// Lists are built entirely off-store and swapped in whole, so a reader always
// observes a fully-built list, never a partially-populated one. A Put for a
// document wholly replaces any prior list: a fresh pull supersedes an
// in-progress review of that file. Nothing is persisted; a process restart
// simply means the user must re-pull to resume review.
type Store struct {
	mu   sync.RWMutex
	docs map[string][]*Change
}

func NewStore() *Store {
	return &Store{docs: make(map[string][]*Change)}
}

// Put replaces the document's list. An empty or nil list removes the entry.
func (s *Store) Put(docKey string, list []*Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(list) == 0 {
		delete(s.docs, docKey)
		return
	}
	s.docs[docKey] = list
}

// Get returns the document's ordered pending-change list, or nil if the
// document has none.
func (s *Store) Get(docKey string) []*Change {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[docKey]
}

// Remove deletes the document's entry, if any.
func (s *Store) Remove(docKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, docKey)
}
