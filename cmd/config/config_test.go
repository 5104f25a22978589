package config

import (
	"compress/gzip"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("test", flag.ContinueOnError)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse_Defaults(t *testing.T) {
	require.NoError(t, Parse(newFlagSet(), nil))

	assert.Equal(t, ":8080", FlagRunAddr)
	assert.Equal(t, "info", FlagLogLevel)
	assert.Equal(t, "", FlagLogFile)
	assert.Equal(t, DefaultMaxDecompressedSize, MaxDecompressedSize)
	assert.False(t, StrictContentType)
	assert.Equal(t, gzip.DefaultCompression, GzipLevel)
	assert.Equal(t, DefaultSecretKey, SecretKey)
	assert.False(t, EnableHTTPS)
	assert.Equal(t, "", TrustedSubnet)
	assert.Equal(t, DefaultTabIdleTimeout, TabIdleTimeout)
	assert.Equal(t, "", JournalFile)
}

func TestParse_Flags(t *testing.T) {
	err := Parse(newFlagSet(), []string{"-a", ":9090", "-l", "debug", "-m", "0", "-strict", "-z", "9", "-k", "k1"})
	require.NoError(t, err)

	assert.Equal(t, ":9090", FlagRunAddr)
	assert.Equal(t, "debug", FlagLogLevel)
	assert.Equal(t, int64(0), MaxDecompressedSize)
	assert.True(t, StrictContentType)
	assert.Equal(t, gzip.BestCompression, GzipLevel)
	assert.Equal(t, "k1", SecretKey)
}

func TestParse_EnvOverridesFlags(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7070")
	t.Setenv("MAX_DECOMPRESSED_SIZE", "1024")
	t.Setenv("STRICT_CONTENT_TYPE", "true")
	t.Setenv("ENABLE_HTTPS", "1")
	t.Setenv("TRUSTED_SUBNET", "10.0.0.0/8")
	t.Setenv("TAB_IDLE_TIMEOUT", "90s")
	t.Setenv("JOURNAL_FILE", "/tmp/env.jsonl")

	require.NoError(t, Parse(newFlagSet(), []string{"-a", ":9090", "-m", "5", "-t", "192.168.0.0/16", "-f", "flag.jsonl"}))

	assert.Equal(t, ":7070", FlagRunAddr)
	assert.Equal(t, int64(1024), MaxDecompressedSize)
	assert.True(t, StrictContentType)
	assert.True(t, EnableHTTPS)
	assert.Equal(t, "10.0.0.0/8", TrustedSubnet)
	assert.Equal(t, 90*time.Second, TabIdleTimeout)
	assert.Equal(t, "/tmp/env.jsonl", JournalFile)
}

func TestParse_YAMLFile(t *testing.T) {
	t.Setenv("TEST_INSPECTOR_SECRET", "from-env")
	path := writeConfig(t, `
server:
  address: ":6060"
  trustedSubnet: 127.0.0.0/8
log:
  level: warn
transform:
  maxDecompressedSize: 0
  strictContentType: true
  gzipLevel: 1
auth:
  secretKey: ${TEST_INSPECTOR_SECRET}
tabs:
  idleTimeout: 5m
  journal: saved.jsonl
`)

	require.NoError(t, Parse(newFlagSet(), []string{"-c", path}))

	assert.Equal(t, path, ConfigFile)
	assert.Equal(t, ":6060", FlagRunAddr)
	assert.Equal(t, "warn", FlagLogLevel)
	assert.Equal(t, int64(0), MaxDecompressedSize)
	assert.True(t, StrictContentType)
	assert.Equal(t, gzip.BestSpeed, GzipLevel)
	assert.Equal(t, "from-env", SecretKey)
	assert.Equal(t, "127.0.0.0/8", TrustedSubnet)
	assert.Equal(t, 5*time.Minute, TabIdleTimeout)
	assert.Equal(t, "saved.jsonl", JournalFile)

	// Флаг важнее файла.
	require.NoError(t, Parse(newFlagSet(), []string{"-c=" + path, "-a", ":5050"}))
	assert.Equal(t, ":5050", FlagRunAddr)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "missing file", args: []string{"-c", "/nonexistent/config.yaml"}},
		{name: "bad level", args: []string{"-z", "42"}},
		{name: "negative size", args: []string{"-m", "-1"}},
		{name: "bad env size", env: map[string]string{"MAX_DECOMPRESSED_SIZE": "lots"}},
		{name: "bad env bool", env: map[string]string{"STRICT_CONTENT_TYPE": "maybe"}},
		{name: "unknown flag", args: []string{"-unknown"}},
		{name: "zero idle timeout", args: []string{"-idle", "0s"}},
		{name: "bad env duration", env: map[string]string{"TAB_IDLE_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Error(t, Parse(newFlagSet(), tt.args))
		})
	}
}
