package lzw

import (
	"github.com/chronos-tachyon/assert"
)

type entry struct {
	parent Code
	b      byte
}

// DecodeTable maps codes to (parent code, trailing byte) pairs.  The string
// of a code is recovered by following parent links back to a single-byte
// code.
type DecodeTable struct {
	entries []entry
	scratch []byte
}

// NewDecodeTable returns a table holding the single-byte codes and the
// EndOfStream slot.  capacity is only a sizing hint.
func NewDecodeTable(capacity int) *DecodeTable {
	t := &DecodeTable{
		entries: make([]entry, 0, min(capacity, DefaultDictionaryCapacity)),
	}
	t.Reset()
	return t
}

// Reset returns the table to its initial contents.
func (t *DecodeTable) Reset() {
	t.entries = t.entries[:0]
	for c := 0; c < 1<<ByteWidth; c++ {
		t.entries = append(t.entries, entry{parent: NoParent, b: byte(c)})
	}
	// dummy for EndOfStream
	t.entries = append(t.entries, entry{parent: NoParent})
}

// Len returns the number of entries, including the EndOfStream slot.
func (t *DecodeTable) Len() int {
	return len(t.entries)
}

// Append adds the string of parent extended by b as the next code.
func (t *DecodeTable) Append(parent Code, b byte) {
	assert.Assertf(int(parent) < len(t.entries), "parent code %d outside table of size %d", parent, len(t.entries))
	t.entries = append(t.entries, entry{parent: parent, b: b})
}

// Bytes returns the string of code k.  The result aliases a scratch buffer
// and is only valid until the next call.
func (t *DecodeTable) Bytes(k Code) []byte {
	assert.Assertf(int(k) < len(t.entries), "code %d outside table of size %d", k, len(t.entries))
	s := t.scratch[:0]
	for k != NoParent {
		e := t.entries[k]
		s = append(s, e.b)
		k = e.parent
	}
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
	t.scratch = s
	return s
}

// First returns the first byte of the string of code k.
func (t *DecodeTable) First(k Code) byte {
	assert.Assertf(int(k) < len(t.entries), "code %d outside table of size %d", k, len(t.entries))
	for {
		e := t.entries[k]
		if e.parent == NoParent {
			return e.b
		}
		k = e.parent
	}
}
