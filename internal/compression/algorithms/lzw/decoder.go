package lzw

import (
	"fmt"
	"io"

	"github.com/adilg123/lzw-compression-tool/internal/derrors"
)

// Decoder decompresses a stream produced by Encoder.
type Decoder struct {
	table    *DecodeTable
	cr       *CodeReader
	capacity int
	limit    int64
	prev     Code
	stats    Stats
	done     bool

	// Resets and width changes are reported only once a data code has been
	// read after them.
	pendingResets int
	pendingWidths []WidthChange
}

// NewDecoder returns a Decoder reading the compressed stream from r.
func NewDecoder(r io.Reader, opts Options) (*Decoder, error) {
	capacity, err := opts.capacity()
	if err != nil {
		return nil, err
	}
	limit, err := opts.outputLimit()
	if err != nil {
		return nil, err
	}
	return &Decoder{
		table:    NewDecodeTable(capacity),
		cr:       NewCodeReader(r),
		capacity: capacity,
		limit:    limit,
		prev:     NoParent,
	}, nil
}

// WriteTo decodes the whole stream into w.  Bytes written before a failure
// are not taken back.  It returns an error matching derrors.Corrupt when the
// stream references a code that cannot exist yet, and derrors.Truncated when
// the stream ends without EndOfStream.  If the output would grow past
// Options.MaxOutputSize it stops before writing the code that overflows and
// returns an error matching derrors.TooLarge.
func (d *Decoder) WriteTo(w io.Writer) (n int64, err error) {
	if d.done {
		return 0, nil
	}
	d.done = true
	for {
		if d.table.Len() == d.capacity {
			d.table.Reset()
			d.pendingResets++
			if d.cr.Width() != InitialWidth {
				d.cr.ResetWidth()
				d.noteWidth()
			}
		}
		if RequiredBits(uint64(d.table.Len())) > d.cr.Width() {
			d.cr.IncreaseWidth()
			d.noteWidth()
		}

		k, err := d.cr.ReadCode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		d.commit()

		s, err := d.expand(k)
		if err != nil {
			return n, err
		}
		if d.limit > 0 && n+int64(len(s)) > d.limit {
			return n, fmt.Errorf("lzw: output exceeds %d bytes: %w", d.limit, derrors.TooLarge)
		}
		m, err := w.Write(s)
		n += int64(m)
		if err != nil {
			return n, derrors.IOError(err)
		}
		d.prev = k
	}
	if d.cr.Corrupted() {
		return n, fmt.Errorf("lzw: after %d codes: %w", d.stats.Codes, derrors.Truncated)
	}
	return n, nil
}

// expand grows the table for code k and returns the string of k.
func (d *Decoder) expand(k Code) ([]byte, error) {
	size := Code(d.table.Len())
	if k > size {
		return nil, fmt.Errorf("lzw: code %d exceeds table size %d: %w", k, size, derrors.Corrupt)
	}
	if d.prev != NoParent && d.prev >= size {
		return nil, fmt.Errorf("lzw: previous code %d undefined after reset: %w", d.prev, derrors.Corrupt)
	}

	// k is the entry the encoder defined while emitting prev: prev's string
	// followed by its own first byte.
	if k == size {
		if d.prev == NoParent {
			return nil, fmt.Errorf("lzw: code %d has no previous string: %w", k, derrors.Corrupt)
		}
		d.table.Append(d.prev, d.table.First(d.prev))
		return d.table.Bytes(k), nil
	}

	s := d.table.Bytes(k)
	if d.prev != NoParent {
		d.table.Append(d.prev, s[0])
	}
	return s, nil
}

func (d *Decoder) noteWidth() {
	d.pendingWidths = append(d.pendingWidths, WidthChange{Code: d.stats.Codes, Width: d.cr.Width()})
}

func (d *Decoder) commit() {
	d.stats.Resets += d.pendingResets
	d.stats.WidthChanges = append(d.stats.WidthChanges, d.pendingWidths...)
	d.pendingResets = 0
	d.pendingWidths = d.pendingWidths[:0]
	d.stats.Codes++
}

// Stats returns the statistics gathered so far.
func (d *Decoder) Stats() Stats {
	s := d.stats
	s.WidthChanges = append([]WidthChange(nil), d.stats.WidthChanges...)
	return s
}

// Decompress decodes the stream in src and writes the original bytes to dst.
func Decompress(dst io.Writer, src io.Reader, opts Options) (_ Stats, err error) {
	defer derrors.Wrap(&err, "lzw.Decompress")

	d, err := NewDecoder(src, opts)
	if err != nil {
		return Stats{}, err
	}
	_, err = d.WriteTo(dst)
	return d.Stats(), err
}
