package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	pushed []string
}

func (f *fakeSession) Push(line string) error {
	f.pushed = append(f.pushed, line)
	return nil
}

func TestInsertIfAbsentInsertsOnce(t *testing.T) {
	m := New()
	s1 := &fakeSession{}
	s2 := &fakeSession{}

	got, inserted := m.InsertIfAbsent("127.0.0.15555", s1)
	require.True(t, inserted)
	assert.Same(t, s1, got)

	got, inserted = m.InsertIfAbsent("127.0.0.15555", s2)
	assert.False(t, inserted, "second insert for the same address must not win")
	assert.Same(t, s1, got, "original session must stay in place")
}

func TestGetMissing(t *testing.T) {
	m := New()
	_, ok := m.Get("nobody")
	assert.False(t, ok)
}

func TestRemove(t *testing.T) {
	m := New()
	m.InsertIfAbsent("addr", &fakeSession{})
	assert.Equal(t, 1, m.Len())

	m.Remove("addr")
	_, ok := m.Get("addr")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	m := New()
	m.Remove("never-inserted")
	assert.Equal(t, 0, m.Len())
}
