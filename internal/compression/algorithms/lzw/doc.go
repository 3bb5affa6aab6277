// Package lzw implements an adaptive-width Lempel-Ziv-Welch codec.
//
// Codes are packed least significant bit first.  Every stream starts with
// 9-bit codes; the width grows by one bit whenever the dictionary outgrows
// it, and drops back to 9 bits when the dictionary reaches its capacity and
// is reset.  Code 256 is reserved as the end-of-stream marker.  There is no
// header: encoder and decoder must be configured with the same
// Options.DictionaryCapacity.
//
// The encoder keeps its dictionary as a trie whose children are kept in
// per-prefix binary search trees; the decoder keeps a flat table of
// (parent, byte) pairs.  Both live in index-addressed slices.
//
// References:
//
//	<https://en.wikipedia.org/wiki/Lempel%E2%80%93Ziv%E2%80%93Welch>
package lzw
