// Package users tracks the connected-client map U: address -> live
// client session, so server-originated pushes (SEND_MESSAGE) can reach
// a client without the client asking first.
//
// Grounded on internal/bitcask/index.go's strIndex shape
// (mu *sync.RWMutex, idxTree *art.AdaptiveRadixTree): the same
// mutex-guarded ART pattern, repurposed from key->indexNode to
// address->Session.
package users

import (
	"sync"

	"msgproxy/internal/ds/art"
)

// Session is the capability this package needs from a client connection:
// enough to push a server-originated message to it.
type Session interface {
	Push(line string) error
}

type Map struct {
	mu   sync.RWMutex
	tree *art.AdaptiveRadixTree
}

func New() *Map {
	return &Map{tree: art.New()}
}

// InsertIfAbsent stores sess under addr unless an entry already exists,
// returning the entry that ends up under addr and whether it was this
// call that inserted it.
func (m *Map) InsertIfAbsent(addr string, sess Session) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing := m.tree.Get([]byte(addr)); existing != nil {
		return existing.(Session), false
	}
	m.tree.Put([]byte(addr), sess)
	return sess, true
}

func (m *Map) Get(addr string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v := m.tree.Get([]byte(addr))
	if v == nil {
		return nil, false
	}
	return v.(Session), true
}

// Remove deletes addr's entry. It is the owning session's responsibility
// to call this on every exit path.
func (m *Map) Remove(addr string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tree.Delete([]byte(addr))
}

func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.tree.Size()
}
