package classfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolDedupesIdenticalEntries(t *testing.T) {
	p := NewPool()
	a := p.Number(3.5)
	b := p.Number(3.5)
	require.Equal(t, a, b)
	require.Equal(t, 1, p.Len())
}

func TestPoolDistinguishesNumberFromString(t *testing.T) {
	p := NewPool()
	n := p.Number(3.5)
	s := p.String("3.5")
	require.NotEqual(t, n, s)
}

func TestPoolStringInternsBackingUtf8(t *testing.T) {
	p := NewPool()
	idx := p.String("hello")
	entry, ok := p.Get(idx)
	require.True(t, ok)
	require.Equal(t, TagString, entry.Tag)

	backing, ok := p.Get(entry.StringIndex)
	require.True(t, ok)
	require.Equal(t, TagUtf8, backing.Tag)
	require.Equal(t, "hello", backing.Utf8)
}

func TestPoolIsOneIndexed(t *testing.T) {
	p := NewPool()
	idx := p.Utf8("first")
	require.EqualValues(t, 1, idx)

	_, ok := p.Get(0)
	require.False(t, ok)
}

func TestPoolGetOutOfRange(t *testing.T) {
	p := NewPool()
	p.Utf8("only")
	_, ok := p.Get(5)
	require.False(t, ok)
}

func TestPoolEntriesOrderIsInsertionOrder(t *testing.T) {
	p := NewPool()
	p.Number(1)
	p.Number(2)
	p.Number(3)
	entries := p.Entries()
	require.Equal(t, []float64{1, 2, 3}, []float64{entries[0].Number, entries[1].Number, entries[2].Number})
}
