package lzw

import (
	"errors"
	"io"

	"github.com/adilg123/lzw-compression-tool/internal/derrors"
)

// resetState tracks where the encoder is relative to a dictionary reset.  The
// width reset belonging to a dictionary reset must be applied after any width
// increase caused by the same input byte.
type resetState int

const (
	// growing: the dictionary is filling up.
	growing resetState = iota
	// pendingReset: the dictionary was cleared for the current byte and the
	// writer's width has not been restored yet.
	pendingReset
	// justReset: the width was restored while processing the previous byte.
	justReset
)

func (s resetState) String() string {
	switch s {
	case growing:
		return "Growing"
	case pendingReset:
		return "PendingReset"
	case justReset:
		return "JustReset"
	}
	return "resetState(?)"
}

var errEncoderClosed = errors.New("lzw: write to closed Encoder")

// Encoder compresses the bytes written to it.  Close must be called to
// terminate the stream.
type Encoder struct {
	dict     *EncodeDictionary
	cw       *CodeWriter
	capacity int
	current  Code
	state    resetState
	stats    Stats
	closed   bool
	err      error
}

// NewEncoder returns an Encoder writing the compressed stream to w.
func NewEncoder(w io.Writer, opts Options) (*Encoder, error) {
	capacity, err := opts.capacity()
	if err != nil {
		return nil, err
	}
	return &Encoder{
		dict:     NewEncodeDictionary(capacity),
		cw:       NewCodeWriter(w),
		capacity: capacity,
		current:  NoParent,
		state:    growing,
	}, nil
}

// Write compresses p.  After the first error every call fails with it.
func (e *Encoder) Write(p []byte) (int, error) {
	if e.closed {
		return 0, errEncoderClosed
	}
	if e.err != nil {
		return 0, e.err
	}
	for i, c := range p {
		if err := e.encodeByte(c); err != nil {
			e.err = err
			return i, err
		}
	}
	return len(p), nil
}

func (e *Encoder) encodeByte(c byte) error {
	if e.dict.Size() == e.capacity {
		e.dict.Reset()
		e.stats.Resets++
		e.state = pendingReset
	} else if e.state == justReset {
		e.state = growing
	}

	prev := e.current
	if code, found := e.dict.SearchAndInsert(prev, c); found {
		e.current = code
	} else {
		if err := e.emit(prev); err != nil {
			return err
		}
		e.current = e.dict.Initial(c)
		if RequiredBits(uint64(e.dict.Size()-1)) > e.cw.Width() {
			e.cw.IncreaseWidth()
			e.noteWidth()
		}
	}

	if e.state == pendingReset {
		if e.cw.Width() != InitialWidth {
			e.cw.ResetWidth()
			e.noteWidth()
		}
		e.state = justReset
	}
	return nil
}

func (e *Encoder) emit(code Code) error {
	if err := e.cw.WriteCode(code); err != nil {
		return err
	}
	e.stats.Codes++
	return nil
}

func (e *Encoder) noteWidth() {
	e.stats.WidthChanges = append(e.stats.WidthChanges, WidthChange{Code: e.stats.Codes, Width: e.cw.Width()})
}

// Close writes the pending code, EndOfStream and the final partial byte.  It
// must be called exactly once per stream, also when nothing was written;
// later calls return the first result.
func (e *Encoder) Close() error {
	if e.closed {
		return e.err
	}
	e.closed = true
	if e.err != nil {
		return e.err
	}
	if e.current != NoParent {
		if e.err = e.emit(e.current); e.err != nil {
			return e.err
		}
	}
	e.err = e.cw.Close()
	return e.err
}

// Stats returns the statistics gathered so far.
func (e *Encoder) Stats() Stats {
	s := e.stats
	s.WidthChanges = append([]WidthChange(nil), e.stats.WidthChanges...)
	return s
}

// Compress reads src to the end and writes its compressed form to dst.  When
// reading src fails the stream is left unterminated, so a decoder reports it
// as truncated.
func Compress(dst io.Writer, src io.Reader, opts Options) (_ Stats, err error) {
	defer derrors.Wrap(&err, "lzw.Compress")

	e, err := NewEncoder(dst, opts)
	if err != nil {
		return Stats{}, err
	}
	buf := make([]byte, 32*1024)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, err := e.Write(buf[:n]); err != nil {
				return e.Stats(), err
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return e.Stats(), derrors.IOError(rerr)
		}
	}
	if err := e.Close(); err != nil {
		return e.Stats(), err
	}
	return e.Stats(), nil
}
