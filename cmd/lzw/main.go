// Command lzw compresses or decompresses a single file with the adaptive
// width LZW codec.
//
// Usage:
//
//	lzw -c [flags] INPUT OUTPUT   # compress INPUT into OUTPUT
//	lzw -d [flags] INPUT OUTPUT   # decompress INPUT into OUTPUT
//
// The flags are:
//
//	-dict=524288
//	    dictionary capacity; the same value must be used to decompress
//	-progress
//	    show a progress bar on stderr
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"

	"github.com/adilg123/lzw-compression-tool/internal/compression/algorithms/lzw"
	"github.com/adilg123/lzw-compression-tool/internal/derrors"
)

const bufferSize = 1 << 20

var (
	compress   = flag.Bool("c", false, "compress INPUT into OUTPUT")
	decompress = flag.Bool("d", false, "decompress INPUT into OUTPUT")
	dictionary = flag.Int("dict", lzw.DefaultDictionaryCapacity, "dictionary capacity; the same value must be used to decompress")
	progress   = flag.Bool("progress", false, "show a progress bar on stderr")
)

func main() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "usage: %s -c|-d [flags] INPUT OUTPUT\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if *compress == *decompress || flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "ERROR: exactly one of -c and -d, an input and an output are required")
		flag.Usage()
		os.Exit(1)
	}
	j := job{
		compress: *compress,
		opts:     lzw.Options{DictionaryCapacity: *dictionary},
		progress: *progress,
	}
	if err := j.run(flag.Arg(0), flag.Arg(1)); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

// job is one compression or decompression of a file.
type job struct {
	compress bool
	opts     lzw.Options
	progress bool
}

func (j job) run(input, output string) (err error) {
	if err := checkDistinct(input, output); err != nil {
		return err
	}

	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	var src io.Reader = bufio.NewReaderSize(in, bufferSize)
	if j.progress {
		info, err := in.Stat()
		if err != nil {
			return err
		}
		bar := pb.New64(info.Size()).SetTemplate(pb.Full).SetWriter(os.Stderr).Start()
		defer bar.Finish()
		src = bar.NewProxyReader(src)
	}

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = derrors.IOError(cerr)
		}
		if err != nil {
			os.Remove(output)
		}
	}()
	dst := bufio.NewWriterSize(out, bufferSize)

	if j.compress {
		_, err = lzw.Compress(dst, src, j.opts)
	} else {
		_, err = lzw.Decompress(dst, src, j.opts)
	}
	if err != nil {
		return err
	}
	return derrors.IOError(dst.Flush())
}

// checkDistinct rejects an output path that names the input file.
func checkDistinct(input, output string) error {
	ia, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	oa, err := filepath.Abs(output)
	if err != nil {
		return err
	}
	same := ia == oa
	if !same {
		ii, ierr := os.Stat(input)
		oi, oerr := os.Stat(output)
		same = ierr == nil && oerr == nil && os.SameFile(ii, oi)
	}
	if same {
		return fmt.Errorf("input and output must be different files: %w", derrors.InvalidArgument)
	}
	return nil
}
