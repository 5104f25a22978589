package logger

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	defer func() { Log = zap.NewNop() }()

	assert.Error(t, Initialize("loud", ""))
	require.NoError(t, Initialize("debug", ""))
	assert.True(t, Log.Core().Enabled(zap.DebugLevel))
}

func TestInitialize_WithFile(t *testing.T) {
	defer func() { Log = zap.NewNop() }()

	file := filepath.Join(t.TempDir(), "inspector.log")
	require.NoError(t, Initialize("info", file))

	Log.Info("written to file")
	_ = Log.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestSink(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	sink := NewSink(zap.New(core))

	sink.Println("error(GzipFormatError): gzip: invalid header")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.WarnLevel, entry.Level)
	assert.Equal(t, "error(GzipFormatError): gzip: invalid header", entry.Message)
	assert.Equal(t, "gzip64", entry.ContextMap()["component"])
}

func TestSink_DefaultsToGlobal(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	Log = zap.New(core)
	defer func() { Log = zap.NewNop() }()

	NewSink(nil).Println("line")
	assert.Equal(t, 1, logs.Len())
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	Log = zap.New(core)
	defer func() { Log = zap.NewNop() }()

	h := RequestLogger(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("abc"))
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/transform/decode", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/api/transform/decode", fields["path"])
	assert.Equal(t, http.MethodPost, fields["method"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, int64(3), fields["size"])
}
