// Package art wraps github.com/plar/go-adaptive-radix-tree with the
// Put/Get/Delete naming internal/bitcask/index.go already calls through
// (that call site predates this retrieval pack; this reconstructs the
// thin wrapper it assumes).
package art

import goart "github.com/plar/go-adaptive-radix-tree"

// AdaptiveRadixTree is a byte-key, any-value ordered map. It does no
// locking of its own: callers must keep writers apart from readers and
// from each other (users.Map does so with an RWMutex).
type AdaptiveRadixTree struct {
	tree goart.Tree
}

func New() *AdaptiveRadixTree {
	return &AdaptiveRadixTree{tree: goart.New()}
}

func (t *AdaptiveRadixTree) Put(key []byte, value interface{}) (interface{}, bool) {
	return t.tree.Insert(goart.Key(key), value)
}

func (t *AdaptiveRadixTree) Get(key []byte) interface{} {
	value, found := t.tree.Search(goart.Key(key))
	if !found {
		return nil
	}
	return value
}

func (t *AdaptiveRadixTree) Delete(key []byte) (interface{}, bool) {
	return t.tree.Delete(goart.Key(key))
}

func (t *AdaptiveRadixTree) Size() int {
	return t.tree.Size()
}

// ForEach visits every entry in key order.
func (t *AdaptiveRadixTree) ForEach(fn func(key []byte, value interface{}) bool) {
	t.tree.ForEach(func(node goart.Node) bool {
		return fn(node.Key(), node.Value())
	})
}
