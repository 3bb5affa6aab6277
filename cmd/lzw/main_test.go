package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilg123/lzw-compression-tool/internal/compression/algorithms/lzw"
	"github.com/adilg123/lzw-compression-tool/internal/derrors"
)

func TestRunRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	packed := filepath.Join(dir, "in.txt.lzw")
	unpacked := filepath.Join(dir, "out.txt")

	data := bytes.Repeat([]byte("she sells sea shells by the sea shore\n"), 2000)
	require.NoError(t, os.WriteFile(input, data, 0o644))

	opts := lzw.Options{DictionaryCapacity: 4096}
	require.NoError(t, job{compress: true, opts: opts}.run(input, packed))
	require.NoError(t, job{opts: opts}.run(packed, unpacked))

	got, err := os.ReadFile(unpacked)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, got))

	info, err := os.Stat(packed)
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(len(data)))
}

func TestRunSameFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in")
	require.NoError(t, os.WriteFile(input, []byte("data"), 0o644))

	err := job{compress: true}.run(input, input)
	assert.ErrorIs(t, err, derrors.InvalidArgument)
	err = job{compress: true}.run(input, filepath.Join(dir, ".", "in"))
	assert.ErrorIs(t, err, derrors.InvalidArgument)

	got, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

func TestRunRemovesOutputOnFailure(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "garbage.lzw")
	output := filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(input, []byte{0xff, 0xff, 0xff, 0xff}, 0o644))

	err := job{}.run(input, output)
	assert.ErrorIs(t, err, derrors.Corrupt)
	_, err = os.Stat(output)
	assert.True(t, os.IsNotExist(err))

	err = job{compress: true}.run(filepath.Join(dir, "missing"), output)
	assert.Error(t, err)
	_, err = os.Stat(output)
	assert.True(t, os.IsNotExist(err))
}
