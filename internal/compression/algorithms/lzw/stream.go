package lzw

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

var errWriterDone = errors.New("lzw: content upload has already been signaled as complete")

// streamCore is shared by the two halves of a buffered reader/writer pair.
// The reader blocks until the writer has been closed, then serves the result
// or the codec error.
type streamCore struct {
	lock   sync.Mutex
	cond   *sync.Cond
	closed bool
	err    error
	output bytes.Buffer
	stats  Stats
}

func newStreamCore() *streamCore {
	c := new(streamCore)
	c.cond = sync.NewCond(&c.lock)
	return c
}

func (c *streamCore) finish(stats Stats, err error) {
	c.closed = true
	c.stats = stats
	c.err = err
	c.cond.Broadcast()
}

// StreamReader is the output half of a buffered pair.
type StreamReader struct {
	core *streamCore
}

// Read blocks until the paired writer is closed.
func (sr *StreamReader) Read(p []byte) (int, error) {
	sr.core.lock.Lock()
	defer sr.core.lock.Unlock()
	for !sr.core.closed {
		sr.core.cond.Wait()
	}
	if sr.core.err != nil {
		return 0, sr.core.err
	}
	return sr.core.output.Read(p)
}

// Close releases the buffered output.
func (sr *StreamReader) Close() error {
	sr.core.lock.Lock()
	defer sr.core.lock.Unlock()
	sr.core.output.Reset()
	return nil
}

// Stats blocks until the paired writer is closed and returns the codec
// statistics.
func (sr *StreamReader) Stats() Stats {
	sr.core.lock.Lock()
	defer sr.core.lock.Unlock()
	for !sr.core.closed {
		sr.core.cond.Wait()
	}
	return sr.core.stats
}

// CompressionWriter is the input half of a compressing pair.  Bytes are
// encoded as they are written.
type CompressionWriter struct {
	core *streamCore
	enc  *Encoder
}

func (cw *CompressionWriter) Write(data []byte) (int, error) {
	cw.core.lock.Lock()
	defer cw.core.lock.Unlock()
	if cw.core.closed {
		return 0, errWriterDone
	}
	return cw.enc.Write(data)
}

// Close terminates the compressed stream and releases the reader.
func (cw *CompressionWriter) Close() error {
	cw.core.lock.Lock()
	defer cw.core.lock.Unlock()
	if cw.core.closed {
		return cw.core.err
	}
	err := cw.enc.Close()
	cw.core.finish(cw.enc.Stats(), err)
	return err
}

// NewCompressionReaderAndWriter returns a buffered pair: everything written
// to the writer can be read, compressed, from the reader once the writer is
// closed.
func NewCompressionReaderAndWriter(opts Options) (*StreamReader, *CompressionWriter, error) {
	core := newStreamCore()
	enc, err := NewEncoder(&core.output, opts)
	if err != nil {
		return nil, nil, err
	}
	return &StreamReader{core: core}, &CompressionWriter{core: core, enc: enc}, nil
}

// DecompressionWriter is the input half of a decompressing pair.  The
// compressed stream is buffered and decoded on Close.
type DecompressionWriter struct {
	core  *streamCore
	input bytes.Buffer
	opts  Options
}

func (dw *DecompressionWriter) Write(data []byte) (int, error) {
	dw.core.lock.Lock()
	defer dw.core.lock.Unlock()
	if dw.core.closed {
		return 0, errWriterDone
	}
	return dw.input.Write(data)
}

// Close decodes the buffered stream and releases the reader.
func (dw *DecompressionWriter) Close() error {
	dw.core.lock.Lock()
	defer dw.core.lock.Unlock()
	if dw.core.closed {
		return dw.core.err
	}
	stats, err := Decompress(&dw.core.output, &dw.input, dw.opts)
	dw.input.Reset()
	dw.core.finish(stats, err)
	return err
}

// NewDecompressionReaderAndWriter is the decompressing counterpart of
// NewCompressionReaderAndWriter.
func NewDecompressionReaderAndWriter(opts Options) (*StreamReader, *DecompressionWriter, error) {
	if _, err := opts.capacity(); err != nil {
		return nil, nil, err
	}
	if _, err := opts.outputLimit(); err != nil {
		return nil, nil, err
	}
	core := newStreamCore()
	return &StreamReader{core: core}, &DecompressionWriter{core: core, opts: opts}, nil
}

var (
	_ io.ReadCloser  = (*StreamReader)(nil)
	_ io.WriteCloser = (*CompressionWriter)(nil)
	_ io.WriteCloser = (*DecompressionWriter)(nil)
)
