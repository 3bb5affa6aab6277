package lzw

import (
	"fmt"
	mathbits "math/bits"

	"github.com/adilg123/lzw-compression-tool/internal/derrors"
)

// Code identifies a dictionary entry, i.e. a byte string prefix.
type Code uint32

const (
	// ByteWidth is the number of bits in one input symbol.
	ByteWidth = 8

	// InitialWidth is the code width at the start of every epoch.  It is one
	// bit wider than a byte so that EndOfStream can be addressed.
	InitialWidth = ByteWidth + 1

	// EndOfStream is the metacode that terminates every encoded stream.
	EndOfStream Code = 1 << ByteWidth

	// NoParent marks the absence of a parent code.  It is outside the range
	// of every legal dictionary capacity.
	NoParent Code = ^Code(0)

	// initialSize is the number of entries present right after a reset: one
	// per byte value plus the EndOfStream dummy slot.
	initialSize = 1<<ByteWidth + 1
)

const (
	// DefaultDictionaryCapacity is the number of entries at which both
	// sides reset their dictionaries.
	DefaultDictionaryCapacity = 512 * 1024

	// MinDictionaryCapacity leaves room for at least one learned string.
	MinDictionaryCapacity = initialSize + 1

	// MaxDictionaryCapacity keeps codes within 31 bits.
	MaxDictionaryCapacity = 1 << 30
)

// Options configures both directions of the codec.  Encoder and decoder must
// be given the same Options.
type Options struct {
	// DictionaryCapacity is the size at which the dictionary is reset.
	// Zero means DefaultDictionaryCapacity.
	DictionaryCapacity int

	// MaxOutputSize caps the number of bytes a decoder may produce.  Zero
	// means no limit.  Encoders ignore it.
	MaxOutputSize int64
}

func (o Options) capacity() (int, error) {
	capacity := o.DictionaryCapacity
	if capacity == 0 {
		capacity = DefaultDictionaryCapacity
	}
	if capacity < MinDictionaryCapacity || capacity > MaxDictionaryCapacity {
		return 0, fmt.Errorf("dictionary capacity %d outside [%d, %d]: %w",
			capacity, MinDictionaryCapacity, MaxDictionaryCapacity, derrors.InvalidArgument)
	}
	return capacity, nil
}

func (o Options) outputLimit() (int64, error) {
	if o.MaxOutputSize < 0 {
		return 0, fmt.Errorf("max output size %d is negative: %w", o.MaxOutputSize, derrors.InvalidArgument)
	}
	return o.MaxOutputSize, nil
}

// RequiredBits returns the minimum number of bits needed to store n.  The
// result is never less than 1.
func RequiredBits(n uint64) uint {
	if n == 0 {
		return 1
	}
	return uint(mathbits.Len64(n))
}

// WidthChange records that the code with index Code (counting data codes
// from zero, across the whole stream) was the first one transferred at Width
// bits.
type WidthChange struct {
	Code  int64
	Width uint
}

// Stats describes one pass of the codec.
type Stats struct {
	// Codes is the number of data codes transferred.  EndOfStream is not
	// counted.
	Codes int64

	// Resets is the number of dictionary resets that took effect.
	Resets int

	// WidthChanges lists every change of the code width, in stream order.
	WidthChanges []WidthChange
}
