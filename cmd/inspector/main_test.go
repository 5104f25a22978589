package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sol1corejz/gzip64-inspector/cmd/config"
	"github.com/sol1corejz/gzip64-inspector/internal/storage"
	"github.com/sol1corejz/gzip64-inspector/pkg/httpmsg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest(t *testing.T, ts *httptest.Server, method, path, realIP string) (*http.Response, string) {
	req, err := http.NewRequest(method, ts.URL+path, nil)
	require.NoError(t, err)
	if realIP != "" {
		req.Header.Set("X-Real-IP", realIP)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(respBody)
}

func TestRouter_Pprof(t *testing.T) {
	config.TrustedSubnet = "10.0.0.0/8"
	config.SecretKey = "k"
	config.GzipLevel = 5
	t.Cleanup(func() { config.TrustedSubnet = "" })

	ts := httptest.NewServer(newRouter(storage.NewMemoryStorage(), nil))
	defer ts.Close()

	tests := []struct {
		name   string
		realIP string
		status int
	}{
		{name: "trusted", realIP: "10.1.2.3", status: http.StatusOK},
		{name: "untrusted", realIP: "192.168.1.1", status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := testRequest(t, ts, http.MethodGet, "/debug/pprof/", tt.realIP)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRouter_PprofDisabledWithoutSubnet(t *testing.T) {
	config.TrustedSubnet = ""
	config.SecretKey = "k"
	config.GzipLevel = 5

	ts := httptest.NewServer(newRouter(storage.NewMemoryStorage(), nil))
	defer ts.Close()

	resp, _ := testRequest(t, ts, http.MethodGet, "/debug/pprof/", "127.0.0.1")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = testRequest(t, ts, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_Encode(t *testing.T) {
	config.SecretKey = "k"
	config.GzipLevel = 5
	config.MaxDecompressedSize = 1 << 20

	ts := httptest.NewServer(newRouter(storage.NewMemoryStorage(), nil))
	defer ts.Close()

	resp, err := ts.Client().Post(ts.URL+"/api/transform/encode", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "H4sI"))
}

func TestNewFilter(t *testing.T) {
	config.StrictContentType = true
	assert.Equal(t, httpmsg.MatchStrict, newFilter().Mode)

	config.StrictContentType = false
	assert.Equal(t, httpmsg.MatchLoose, newFilter().Mode)
}

func TestSweep(t *testing.T) {
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Save(&storage.Entry{ID: "old", Owner: "u", LastUsed: time.Now().Add(-time.Hour)}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweep(ctx, store, 20*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
