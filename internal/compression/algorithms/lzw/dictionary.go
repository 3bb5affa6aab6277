package lzw

import (
	"github.com/chronos-tachyon/assert"
)

// noChild marks an empty subtree link.
const noChild = NoParent

// node is one dictionary entry.  The continuations of a prefix form a binary
// search tree keyed by the following byte: first is the root of that tree for
// the prefix this node represents, left and right are siblings with a smaller
// and a larger byte respectively.
type node struct {
	first Code
	left  Code
	right Code
	b     byte
}

func makeNode(b byte) node {
	return node{first: noChild, left: noChild, right: noChild, b: b}
}

// EncodeDictionary maps (prefix code, next byte) pairs to codes.  Nodes live
// in one slice and refer to each other by index, so a reset is a truncation.
type EncodeDictionary struct {
	nodes []node
}

// NewEncodeDictionary returns a dictionary holding the single-byte codes and
// the EndOfStream slot.  capacity is only a sizing hint.
func NewEncodeDictionary(capacity int) *EncodeDictionary {
	d := &EncodeDictionary{
		nodes: make([]node, 0, min(capacity, DefaultDictionaryCapacity)),
	}
	d.Reset()
	return d
}

// Reset returns the dictionary to its initial contents.
func (d *EncodeDictionary) Reset() {
	d.nodes = d.nodes[:0]
	for c := 0; c < 1<<ByteWidth; c++ {
		d.nodes = append(d.nodes, makeNode(byte(c)))
	}
	// dummy for EndOfStream
	d.nodes = append(d.nodes, makeNode(0))
	assert.Assertf(len(d.nodes) == initialSize, "dictionary holds %d entries after reset, want %d", len(d.nodes), initialSize)
}

// Size returns the number of entries, including the EndOfStream slot.
func (d *EncodeDictionary) Size() int {
	return len(d.nodes)
}

// Initial returns the code of the one-byte string b.
func (d *EncodeDictionary) Initial(b byte) Code {
	return Code(b)
}

// SearchAndInsert looks up the string formed by appending b to the string of
// parent.  If it exists, its code and true are returned.  Otherwise a new
// entry is appended and linked into the parent's subtree, and the result is
// (NoParent, false); the new entry's code is Size()-1.
//
// A parent of NoParent denotes the empty string, whose one-byte extensions
// always exist.
func (d *EncodeDictionary) SearchAndInsert(parent Code, b byte) (Code, bool) {
	if parent == NoParent {
		return d.Initial(b), true
	}
	assert.Assertf(int(parent) < len(d.nodes), "parent code %d outside dictionary of size %d", parent, len(d.nodes))

	next := Code(len(d.nodes))
	link := &d.nodes[parent].first
	for *link != noChild {
		ci := *link
		n := &d.nodes[ci]
		switch {
		case b < n.b:
			link = &n.left
		case b > n.b:
			link = &n.right
		default:
			return ci, true
		}
	}
	*link = next
	d.nodes = append(d.nodes, makeNode(b))
	return NoParent, false
}
