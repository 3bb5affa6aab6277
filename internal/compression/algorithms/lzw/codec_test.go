package lzw

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilg123/lzw-compression-tool/internal/derrors"
)

func randomBytes(seed int64, n int) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(b)
	return b
}

// skewedBytes draws from a small alphabet so that long matches occur.
func skewedBytes(seed int64, n int) []byte {
	r := rand.New(rand.NewSource(seed))
	b := make([]byte, n)
	for i := range b {
		b[i] = "aaaabbc d"[r.Intn(9)]
	}
	return b
}

func roundTrip(t *testing.T, data []byte, opts Options) (encoded []byte, enc, dec Stats) {
	t.Helper()
	var compressed bytes.Buffer
	enc, err := Compress(&compressed, bytes.NewReader(data), opts)
	require.NoError(t, err)
	encoded = append([]byte(nil), compressed.Bytes()...)

	var out bytes.Buffer
	dec, err = Decompress(&out, &compressed, opts)
	require.NoError(t, err)
	require.True(t, bytes.Equal(data, out.Bytes()), "round trip of %d bytes produced %d different bytes", len(data), out.Len())
	return encoded, enc, dec
}

func checkWidths(t *testing.T, changes []WidthChange) {
	t.Helper()
	width := uint(InitialWidth)
	var last int64 = -1
	for _, wc := range changes {
		if wc.Width != InitialWidth && wc.Width != width+1 {
			t.Errorf("width change %+v after width %d", wc, width)
		}
		if wc.Code < last {
			t.Errorf("width change %+v out of order", wc)
		}
		width, last = wc.Width, wc.Code
	}
}

func TestCompress_Empty(t *testing.T) {
	encoded, enc, dec := roundTrip(t, nil, Options{})
	assert.Equal(t, []byte{0x00, 0x01}, encoded)
	assert.Equal(t, int64(0), enc.Codes)
	assert.Empty(t, cmp.Diff(enc, dec))
}

func TestCompress_RepeatedByte(t *testing.T) {
	encoded, enc, dec := roundTrip(t, []byte("AAAA"), Options{})
	// 'A', "AA", 'A', EndOfStream at 9 bits each.
	assert.Equal(t, []byte{0x41, 0x02, 0x06, 0x01, 0x08}, encoded)
	assert.Equal(t, int64(3), enc.Codes)
	assert.Empty(t, cmp.Diff(enc, dec))
}

func TestCompress_SelfReference(t *testing.T) {
	// "ABBB" makes the encoder emit code 258 right after defining it, which
	// the decoder has to reconstruct from the previous string.
	var want bytes.Buffer
	cw := NewCodeWriter(&want)
	for _, code := range []Code{'A', 'B', 258} {
		require.NoError(t, cw.WriteCode(code))
	}
	require.NoError(t, cw.Close())

	encoded, _, _ := roundTrip(t, []byte("ABBB"), Options{})
	assert.Equal(t, want.Bytes(), encoded)
}

func TestRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 2, 3, 255, 256, 257, 258, 511, 512, 513, 1023, 1024, 4097, 30000}
	capacities := []int{
		MinDictionaryCapacity,
		MinDictionaryCapacity + 1,
		300,
		511, 512, 513, 514,
		1024, 1025,
		0,
	}
	inputs := map[string]func(n int) []byte{
		"random": func(n int) []byte { return randomBytes(int64(n), n) },
		"skewed": func(n int) []byte { return skewedBytes(int64(n), n) },
		"zeros":  func(n int) []byte { return make([]byte, n) },
		"text": func(n int) []byte {
			s := strings.Repeat("the quick brown fox jumps over the lazy dog. ", n/45+1)
			return []byte(s[:n])
		},
	}
	for name, gen := range inputs {
		for _, capacity := range capacities {
			for _, n := range sizes {
				t.Run(fmt.Sprintf("%s/cap=%d/n=%d", name, capacity, n), func(t *testing.T) {
					_, enc, dec := roundTrip(t, gen(n), Options{DictionaryCapacity: capacity})
					if diff := cmp.Diff(enc, dec); diff != "" {
						t.Errorf("encoder and decoder disagree (-enc +dec):\n%s", diff)
					}
					checkWidths(t, enc.WidthChanges)
				})
			}
		}
	}
}

func TestWidthGrowth(t *testing.T) {
	_, enc, dec := roundTrip(t, randomBytes(3, 4096), Options{})
	require.NotEmpty(t, enc.WidthChanges)
	// Code 256 is the first one written after the dictionary reaches 512
	// entries.
	assert.Equal(t, WidthChange{Code: 256, Width: 10}, enc.WidthChanges[0])
	assert.Equal(t, 0, enc.Resets)
	if diff := cmp.Diff(enc, dec); diff != "" {
		t.Errorf("encoder and decoder disagree (-enc +dec):\n%s", diff)
	}
}

func TestResetSymmetry(t *testing.T) {
	_, enc, dec := roundTrip(t, randomBytes(4, 20000), Options{DictionaryCapacity: 600})
	assert.Greater(t, enc.Resets, 10)
	assert.Equal(t, enc.Resets, dec.Resets)
	if diff := cmp.Diff(enc.WidthChanges, dec.WidthChanges); diff != "" {
		t.Errorf("width changes differ (-enc +dec):\n%s", diff)
	}
	checkWidths(t, enc.WidthChanges)

	// With capacity 600 every epoch reaches 10 bits before it ends, so each
	// reset shows up as a return to the initial width.
	var widthResets int
	for _, wc := range enc.WidthChanges {
		if wc.Width == InitialWidth {
			widthResets++
		}
	}
	assert.Equal(t, enc.Resets, widthResets)
}

func TestEncoder_ResetStates(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewEncoder(&buf, Options{DictionaryCapacity: MinDictionaryCapacity + 1})
	require.NoError(t, err)

	want := []resetState{growing, growing, growing, justReset, growing}
	for i, c := range []byte("ABCDE") {
		_, err := e.Write([]byte{c})
		require.NoError(t, err)
		assert.Equal(t, want[i], e.state, "after byte %d", i)
	}
	require.NoError(t, e.Close())
	assert.Equal(t, 1, e.Stats().Resets)
}

func TestEncoder_ResetAfterGrowth(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewEncoder(&buf, Options{DictionaryCapacity: 600})
	require.NoError(t, err)

	data := randomBytes(5, 10000)
	i := 0
	for ; i < len(data) && e.Stats().Resets == 0; i++ {
		_, err := e.Write(data[i : i+1])
		require.NoError(t, err)
		if e.Stats().Resets == 0 {
			assert.Equal(t, growing, e.state)
		}
	}
	require.Equal(t, 1, e.Stats().Resets)
	assert.Equal(t, justReset, e.state)
	assert.Equal(t, uint(InitialWidth), e.cw.Width())

	_, err = e.Write(data[i:])
	require.NoError(t, err)
	require.NoError(t, e.Close())

	var out bytes.Buffer
	_, err = Decompress(&out, &buf, Options{DictionaryCapacity: 600})
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, out.Bytes()))
}

func TestEncoder_Close(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewEncoder(&buf, Options{})
	require.NoError(t, err)
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	assert.Equal(t, []byte{0x00, 0x01}, buf.Bytes())

	_, err = e.Write([]byte("x"))
	assert.Error(t, err)
}

func TestCompress_SourceFailure(t *testing.T) {
	boom := errors.New("read failed")
	var buf bytes.Buffer
	_, err := Compress(&buf, iotest.ErrReader(boom), Options{})
	assert.ErrorIs(t, err, derrors.IO)
	assert.ErrorIs(t, err, boom)
	// No EndOfStream was written.
	assert.Zero(t, buf.Len())
}

func TestOptions(t *testing.T) {
	for _, capacity := range []int{-1, 1, 256, MinDictionaryCapacity - 1, MaxDictionaryCapacity + 1} {
		_, err := NewEncoder(&bytes.Buffer{}, Options{DictionaryCapacity: capacity})
		assert.ErrorIs(t, err, derrors.InvalidArgument, "capacity %d", capacity)
		_, err = NewDecoder(&bytes.Buffer{}, Options{DictionaryCapacity: capacity})
		assert.ErrorIs(t, err, derrors.InvalidArgument, "capacity %d", capacity)
	}
}

func writeCodes(t *testing.T, codes []Code, terminate bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	cw := NewCodeWriter(&buf)
	for _, code := range codes {
		require.NoError(t, cw.WriteCode(code))
	}
	if terminate {
		require.NoError(t, cw.Close())
	}
	return buf.Bytes()
}

func TestDecompress_Corrupt(t *testing.T) {
	for _, test := range []struct {
		name    string
		codes   []Code
		wantOut string
	}{
		{"first code beyond table", []Code{300}, ""},
		{"first code is next entry", []Code{initialSize}, ""},
		{"later code beyond table", []Code{'A', 'B', initialSize + 2}, "AB"},
		{"far beyond table", []Code{'A', 'B', 'C', 511}, "ABC"},
	} {
		t.Run(test.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := Decompress(&out, bytes.NewReader(writeCodes(t, test.codes, true)), Options{})
			assert.ErrorIs(t, err, derrors.Corrupt)
			// Output already produced is kept.
			assert.Equal(t, test.wantOut, out.String())
		})
	}
}

func TestDecompress_MutatedCode(t *testing.T) {
	encoded, _, _ := roundTrip(t, []byte("AAAA"), Options{})
	// The second code (257, bits 9..17) becomes 259; the decoder holds 257
	// entries at that point.
	mutated := writeCodes(t, []Code{'A', 259, 'A'}, true)
	require.Len(t, mutated, len(encoded))

	var out bytes.Buffer
	_, err := Decompress(&out, bytes.NewReader(mutated), Options{})
	assert.ErrorIs(t, err, derrors.Corrupt)
}

func TestDecompress_Truncated(t *testing.T) {
	aaaa, _, _ := roundTrip(t, []byte("AAAA"), Options{})
	empty, _, _ := roundTrip(t, nil, Options{})

	for _, test := range []struct {
		name    string
		in      []byte
		wantOut string
	}{
		{"no input", nil, ""},
		{"empty stream cut", empty[:1], ""},
		{"sentinel cut", aaaa[:len(aaaa)-1], "AAAA"},
		{"unterminated", writeCodes(t, []Code{'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H'}, false), "ABCDEFGH"},
	} {
		t.Run(test.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := Decompress(&out, bytes.NewReader(test.in), Options{})
			assert.ErrorIs(t, err, derrors.Truncated)
			assert.False(t, errors.Is(err, derrors.Corrupt))
			assert.Equal(t, test.wantOut, out.String())
		})
	}
}

func TestDecompress_CapacityMismatch(t *testing.T) {
	// Streams written with the default capacity, read by a decoder that
	// resets after every learned entry.
	for _, test := range []struct {
		in      string
		wantOut string
		wantErr error
	}{
		// Codes 'A', 'B', 257: the decoder has dropped "AB" and rebuilds
		// 257 from the previous code as "BB".
		{"ABAB", "ABBB", nil},
		// Codes 'A', 'B', 'C', 258: 258 is beyond the decoder's table.
		{"ABCBC", "ABC", derrors.Corrupt},
	} {
		t.Run(test.in, func(t *testing.T) {
			encoded, _, _ := roundTrip(t, []byte(test.in), Options{})

			var out bytes.Buffer
			_, err := Decompress(&out, bytes.NewReader(encoded), Options{DictionaryCapacity: MinDictionaryCapacity})
			if test.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, test.wantErr)
			}
			assert.Equal(t, test.wantOut, out.String())
		})
	}
}

func TestDecompress_OutputLimit(t *testing.T) {
	data := make([]byte, 1<<20)
	encoded, _, _ := roundTrip(t, data, Options{})
	require.Less(t, len(encoded), 4096)

	var out bytes.Buffer
	_, err := Decompress(&out, bytes.NewReader(encoded), Options{MaxOutputSize: 4096})
	assert.ErrorIs(t, err, derrors.TooLarge)
	assert.False(t, errors.Is(err, derrors.IO))
	assert.LessOrEqual(t, out.Len(), 4096)

	out.Reset()
	_, err = Decompress(&out, bytes.NewReader(encoded), Options{MaxOutputSize: int64(len(data))})
	require.NoError(t, err)
	assert.Equal(t, len(data), out.Len())

	_, err = Decompress(io.Discard, bytes.NewReader(encoded), Options{MaxOutputSize: -1})
	assert.ErrorIs(t, err, derrors.InvalidArgument)
}
