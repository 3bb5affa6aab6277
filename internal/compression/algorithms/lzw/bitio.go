package lzw

import (
	"bufio"
	"errors"
	"io"

	"github.com/chronos-tachyon/assert"

	"github.com/adilg123/lzw-compression-tool/internal/derrors"
)

// maxWidth bounds the code width; codes are 32-bit values.
const maxWidth = 32

var errWriterClosed = errors.New("lzw: write to closed CodeWriter")

// CodeWriter packs variable-width codes into a byte stream, least
// significant bit first.  A partial byte is carried across calls until Close.
type CodeWriter struct {
	w      io.ByteWriter
	flush  func() error
	width  uint
	holder uint64
	count  uint
	closed bool
	err    error
}

// NewCodeWriter returns a CodeWriter at InitialWidth.  If w is not an
// io.ByteWriter it is buffered, and the buffer is flushed by Close.
func NewCodeWriter(w io.Writer) *CodeWriter {
	cw := &CodeWriter{width: InitialWidth}
	if bw, ok := w.(io.ByteWriter); ok {
		cw.w = bw
	} else {
		buf := bufio.NewWriter(w)
		cw.w, cw.flush = buf, buf.Flush
	}
	return cw
}

// Width is the number of bits the next code will occupy.
func (cw *CodeWriter) Width() uint {
	return cw.width
}

// IncreaseWidth grows the code width by one bit.
func (cw *CodeWriter) IncreaseWidth() {
	assert.Assertf(cw.width < maxWidth, "CodeWriter width %d cannot grow", cw.width)
	cw.width++
}

// ResetWidth restores InitialWidth.
func (cw *CodeWriter) ResetWidth() {
	cw.width = InitialWidth
}

// WriteCode appends the low Width() bits of code.  Once the sink has failed,
// every call returns the same error.
func (cw *CodeWriter) WriteCode(code Code) error {
	if cw.closed {
		return errWriterClosed
	}
	return cw.writeCode(code)
}

func (cw *CodeWriter) writeCode(code Code) error {
	if cw.err != nil {
		return cw.err
	}
	assert.Assertf(uint64(code) < 1<<cw.width, "code %d does not fit in %d bits", code, cw.width)
	cw.holder |= uint64(code) << cw.count
	cw.count += cw.width
	for cw.count >= 8 {
		if err := cw.w.WriteByte(byte(cw.holder)); err != nil {
			cw.err = derrors.IOError(err)
			return cw.err
		}
		cw.holder >>= 8
		cw.count -= 8
	}
	return nil
}

// Close writes EndOfStream at the current width followed by the incomplete
// leftover byte, if any, padded with zero bits.  Only the first call has an
// effect; later calls return its result.
func (cw *CodeWriter) Close() error {
	if cw.closed {
		return cw.err
	}
	cw.closed = true
	if err := cw.writeCode(EndOfStream); err != nil {
		return err
	}
	if cw.count > 0 {
		if err := cw.w.WriteByte(byte(cw.holder)); err != nil {
			cw.err = derrors.IOError(err)
			return cw.err
		}
		cw.holder, cw.count = 0, 0
	}
	if cw.flush != nil {
		cw.err = derrors.IOError(cw.flush())
	}
	return cw.err
}

// CodeReader unpacks codes written by CodeWriter.
type CodeReader struct {
	r      io.ByteReader
	width  uint
	holder uint64
	count  uint
	eof    bool
	sawEOS bool
	err    error

	// widened is set while no code has been read since the last width
	// increase.
	widened bool
}

// NewCodeReader returns a CodeReader at InitialWidth.  If r is not an
// io.ByteReader it is buffered, so the reader may consume bytes past the end
// of the encoded stream.
func NewCodeReader(r io.Reader) *CodeReader {
	cr := &CodeReader{width: InitialWidth}
	if br, ok := r.(io.ByteReader); ok {
		cr.r = br
	} else {
		cr.r = bufio.NewReader(r)
	}
	return cr
}

// Width is the number of bits the next code will occupy.
func (cr *CodeReader) Width() uint {
	return cr.width
}

// IncreaseWidth grows the code width by one bit.
func (cr *CodeReader) IncreaseWidth() {
	assert.Assertf(cr.width < maxWidth, "CodeReader width %d cannot grow", cr.width)
	cr.width++
	cr.widened = true
}

// ResetWidth restores InitialWidth.
func (cr *CodeReader) ResetWidth() {
	cr.width = InitialWidth
	cr.widened = false
}

// ReadCode returns the next code.  It returns io.EOF once EndOfStream has
// been read or the source is exhausted; Corrupted tells the two apart.
// Other source errors are returned wrapped in derrors.IO.
//
// A writer closes the stream at the width it was using, which can be one bit
// narrower than the width a reader has just grown to.  So if the source runs
// dry exactly one bit short of a code, right after IncreaseWidth, and the
// bits present spell EndOfStream, the stream ends cleanly.  Every other short
// read leaves the reader Corrupted.  A stream cut at that one position inside
// a data code whose low bits equal EndOfStream cannot be told apart from a
// complete one.
func (cr *CodeReader) ReadCode() (Code, error) {
	if cr.err != nil {
		return 0, cr.err
	}
	if cr.eof {
		return 0, io.EOF
	}
	short := false
	for cr.count < cr.width {
		b, err := cr.r.ReadByte()
		if err == io.EOF {
			short = true
			break
		}
		if err != nil {
			cr.err = derrors.IOError(err)
			return 0, cr.err
		}
		cr.holder |= uint64(b) << cr.count
		cr.count += 8
	}
	code := Code(cr.holder & (1<<cr.width - 1))
	if short {
		cr.eof = true
		cr.sawEOS = code == EndOfStream && cr.widened && cr.count == cr.width-1
		cr.holder, cr.count = 0, 0
		return 0, io.EOF
	}
	cr.holder >>= cr.width
	cr.count -= cr.width
	cr.widened = false
	if code == EndOfStream {
		cr.eof = true
		cr.sawEOS = true
		return 0, io.EOF
	}
	return code, nil
}

// Corrupted reports whether the source was exhausted before EndOfStream was
// read.
func (cr *CodeReader) Corrupted() bool {
	return cr.eof && !cr.sawEOS
}
