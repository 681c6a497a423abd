package classfile

import (
	"github.com/dolthub/swiss"
)

// EntryTag identifies the shape of one constant-pool entry (spec.md §6).
type EntryTag byte

const (
	TagUtf8   EntryTag = 0x00
	TagNumber EntryTag = 0x01
	TagString EntryTag = 0x03
)

// Entry is one 1-indexed constant-pool slot. Exactly one of the fields
// below is meaningful, selected by Tag.
type Entry struct {
	Tag EntryTag

	Utf8        string  // TagUtf8
	Number      float64 // TagNumber
	StringIndex uint16  // TagString: index of the backing Utf8 entry
}

// key is the comparable identity used for dedup - mirrors Entry but
// without the Utf8 field's interaction with StringIndex so two otherwise
// distinct entries never collide on their zero values.
type key struct {
	tag EntryTag
	num float64
	str string
	idx uint16
}

// Pool is the deduplicating constant-pool builder the emitter fills as it
// walks the attributed AST. Lookups are backed by a generic hash map
// instead of a plain Go map so entries keyed on a float64 payload hash
// deterministically regardless of map iteration order (pool emission
// order is insertion order, which the dedup map has no bearing on).
type Pool struct {
	entries []Entry
	index   *swiss.Map[key, uint16]
}

func NewPool() *Pool {
	return &Pool{index: swiss.NewMap[key, uint16](16)}
}

// Entries returns the pool contents in 1-indexed emission order (element
// 0 of the slice is constant-pool index 1).
func (p *Pool) Entries() []Entry { return p.entries }

// Len reports how many real entries the pool holds (not counting the
// reserved index 0).
func (p *Pool) Len() int { return len(p.entries) }

func (p *Pool) intern(k key, e Entry) uint16 {
	if idx, ok := p.index.Get(k); ok {
		return idx
	}
	p.entries = append(p.entries, e)
	idx := uint16(len(p.entries))
	p.index.Put(k, idx)
	return idx
}

// Utf8 interns a raw UTF-8 byte entry, returning its 1-indexed pool slot.
func (p *Pool) Utf8(s string) uint16 {
	return p.intern(key{tag: TagUtf8, str: s}, Entry{Tag: TagUtf8, Utf8: s})
}

// Number interns a Number entry.
func (p *Pool) Number(f float64) uint16 {
	return p.intern(key{tag: TagNumber, num: f}, Entry{Tag: TagNumber, Number: f})
}

// String interns a String entry pointing at the Utf8 entry holding s,
// creating that Utf8 entry first if needed.
func (p *Pool) String(s string) uint16 {
	utf8Idx := p.Utf8(s)
	return p.intern(key{tag: TagString, idx: utf8Idx}, Entry{Tag: TagString, StringIndex: utf8Idx})
}

// Get returns the entry at the given 1-indexed pool index.
func (p *Pool) Get(idx uint16) (Entry, bool) {
	if idx == 0 || int(idx) > len(p.entries) {
		return Entry{}, false
	}
	return p.entries[idx-1], true
}
