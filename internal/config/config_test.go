package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilg123/lzw-compression-tool/internal/derrors"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"LZW_CONFIG", "PORT", "GO_ENV", "LOG_LEVEL", "MAX_FILE_SIZE", "MAX_OUTPUT_SIZE", "LZW_DICTIONARY_CAPACITY"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "lzw.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
environment: production
dictionary_capacity: 4096
max_output_size: 8192
log_level: debug
`), 0o644))
	t.Setenv("LZW_CONFIG", path)
	t.Setenv("PORT", "9100")
	t.Setenv("MAX_FILE_SIZE", "1024")

	cfg, err := Load()
	require.NoError(t, err)
	want := &Config{
		Port:               "9100",
		Environment:        "production",
		MaxFileSize:        1024,
		MaxOutputSize:      8192,
		DictionaryCapacity: 4096,
		LogLevel:           "debug",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Invalid(t *testing.T) {
	for _, test := range []struct {
		key, value string
	}{
		{"MAX_FILE_SIZE", "lots"},
		{"MAX_FILE_SIZE", "0"},
		{"MAX_OUTPUT_SIZE", "-5"},
		{"LZW_DICTIONARY_CAPACITY", "100"},
		{"LZW_DICTIONARY_CAPACITY", "2147483647"},
	} {
		t.Run(test.key+"="+test.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(test.key, test.value)
			_, err := Load()
			assert.ErrorIs(t, err, derrors.InvalidArgument)
		})
	}
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "lzw.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unterminated"), 0o644))
	t.Setenv("LZW_CONFIG", path)
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("LZW_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	assert.Error(t, err)
}
