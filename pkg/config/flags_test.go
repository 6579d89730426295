package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"url": "http://from-file:1",
		"workers": 4, // file value
		"iterations": 9,
	}`), 0o644))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-c", path, "--workers", "2", "--timeout", "3s"}))

	cfg, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers, "flag wins over file")
	assert.Equal(t, 9, cfg.Iterations, "unset flag keeps file value")
	assert.Equal(t, Duration(3*time.Second), cfg.Timeout)
	assert.Equal(t, 8, cfg.BatchSize)
}

func TestFlagsValidate(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--batch-size", "0"}))

	_, err := f.Load()
	assert.Error(t, err)
}
