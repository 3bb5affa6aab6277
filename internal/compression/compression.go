package compression

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/adilg123/lzw-compression-tool/internal/compression/algorithms/lzw"
	"github.com/adilg123/lzw-compression-tool/internal/derrors"
	"github.com/adilg123/lzw-compression-tool/internal/log"
)

// DefaultAlgorithm is used when a request names no algorithm.
const DefaultAlgorithm = "lzw"

// SupportedAlgorithms contains all supported compression algorithms
var SupportedAlgorithms = []string{
	"lzw",
}

// Options contains compression/decompression options
type Options struct {
	Algorithm          string
	DictionaryCapacity int   // For LZW; zero selects the codec default
	MaxOutputSize      int64 // Decompression fails past this many bytes; zero means no limit
}

// Stats contains compression statistics
type Stats struct {
	OriginalSize     int
	ProcessedSize    int
	CompressionRatio float64
	Algorithm        string
	Codes            int64
	Resets           int
}

// codecStats is implemented by readers that can report what the codec did.
type codecStats interface {
	Stats() lzw.Stats
}

// AlgorithmFactory defines the interface for compression algorithms
type AlgorithmFactory interface {
	NewCompressionReaderAndWriter(options Options) (io.ReadCloser, io.WriteCloser, error)
	NewDecompressionReaderAndWriter(options Options) (io.ReadCloser, io.WriteCloser, error)
}

// factoryMap maps algorithm names to their factories
var factoryMap = map[string]AlgorithmFactory{
	"lzw": &LZWFactory{},
}

type LZWFactory struct{}

func lzwOptions(options Options) lzw.Options {
	return lzw.Options{
		DictionaryCapacity: options.DictionaryCapacity,
		MaxOutputSize:      options.MaxOutputSize,
	}
}

func (f *LZWFactory) NewCompressionReaderAndWriter(options Options) (io.ReadCloser, io.WriteCloser, error) {
	r, w, err := lzw.NewCompressionReaderAndWriter(lzwOptions(options))
	if err != nil {
		return nil, nil, err
	}
	return r, w, nil
}

func (f *LZWFactory) NewDecompressionReaderAndWriter(options Options) (io.ReadCloser, io.WriteCloser, error) {
	r, w, err := lzw.NewDecompressionReaderAndWriter(lzwOptions(options))
	if err != nil {
		return nil, nil, err
	}
	return r, w, nil
}

// IsValidAlgorithm checks if the provided algorithm is supported
func IsValidAlgorithm(algorithm string) bool {
	_, exists := factoryMap[algorithm]
	return exists
}

// GetSupportedAlgorithms returns a list of supported algorithms
func GetSupportedAlgorithms() []string {
	return append([]string{}, SupportedAlgorithms...)
}

// Compress compresses data using the specified algorithm
func Compress(ctx context.Context, data []byte, options Options) (_ []byte, _ *Stats, err error) {
	defer derrors.Wrap(&err, "compression failed")

	if !IsValidAlgorithm(options.Algorithm) {
		return nil, nil, fmt.Errorf("unsupported algorithm %q: %w", options.Algorithm, derrors.InvalidArgument)
	}

	factory := factoryMap[options.Algorithm]
	reader, writer, err := factory.NewCompressionReaderAndWriter(options)
	if err != nil {
		return nil, nil, err
	}

	compressedData, err := processData(data, reader, writer)
	if err != nil {
		return nil, nil, err
	}

	stats := newStats(options.Algorithm, len(data), len(compressedData), reader)
	if len(data) > 0 {
		stats.CompressionRatio = float64(len(compressedData)) / float64(len(data)) * 100
	}
	log.Debugf(ctx, "compressed %d bytes to %d with %s (%d codes, %d resets)",
		stats.OriginalSize, stats.ProcessedSize, stats.Algorithm, stats.Codes, stats.Resets)
	return compressedData, stats, nil
}

// Decompress decompresses data using the specified algorithm
func Decompress(ctx context.Context, data []byte, options Options) (_ []byte, _ *Stats, err error) {
	defer derrors.Wrap(&err, "decompression failed")

	if !IsValidAlgorithm(options.Algorithm) {
		return nil, nil, fmt.Errorf("unsupported algorithm %q: %w", options.Algorithm, derrors.InvalidArgument)
	}

	factory := factoryMap[options.Algorithm]
	reader, writer, err := factory.NewDecompressionReaderAndWriter(options)
	if err != nil {
		return nil, nil, err
	}

	decompressedData, err := processData(data, reader, writer)
	if err != nil {
		return nil, nil, err
	}

	stats := newStats(options.Algorithm, len(data), len(decompressedData), reader)
	if len(decompressedData) > 0 {
		stats.CompressionRatio = float64(len(data)) / float64(len(decompressedData)) * 100
	}
	log.Debugf(ctx, "decompressed %d bytes to %d with %s (%d codes, %d resets)",
		stats.OriginalSize, stats.ProcessedSize, stats.Algorithm, stats.Codes, stats.Resets)
	return decompressedData, stats, nil
}

func newStats(algorithm string, originalSize, processedSize int, reader io.Reader) *Stats {
	stats := &Stats{
		OriginalSize:  originalSize,
		ProcessedSize: processedSize,
		Algorithm:     algorithm,
	}
	if cs, ok := reader.(codecStats); ok {
		s := cs.Stats()
		stats.Codes, stats.Resets = s.Codes, s.Resets
	}
	return stats
}

// processData writes inputData to writer and collects everything reader
// produces.  The reader is drained concurrently because it may block until
// the writer is closed.
func processData(inputData []byte, reader io.ReadCloser, writer io.WriteCloser) ([]byte, error) {
	defer reader.Close()

	var result []byte
	var g errgroup.Group
	g.Go(func() error {
		data, err := io.ReadAll(reader)
		if err != nil {
			return err
		}
		result = data
		return nil
	})

	_, werr := writer.Write(inputData)
	// Close even after a failed write so the reader goroutine is released.
	cerr := writer.Close()
	rerr := g.Wait()

	switch {
	case werr != nil:
		return nil, fmt.Errorf("failed to write data: %w", werr)
	case cerr != nil:
		return nil, cerr
	case rerr != nil:
		return nil, rerr
	}
	return result, nil
}
