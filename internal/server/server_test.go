package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"

	"github.com/atikulmunna/grokline/internal/parser"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "network"), []byte("client \\d+\\.\\d+\\.\\d+\\.\\d+\n"), 0644))

	ex, err := parser.NewExtractor(parser.Options{Pattern: "%{client}", PatternsDir: dir, NoDefaults: true})
	require.NoError(t, err)

	srv := httptest.NewServer(New(ex, prometheus.NewRegistry()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, contentType, body string) (int, *fastjson.Value) {
	t.Helper()
	resp, err := http.Post(url, contentType, strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	v, err := fastjson.ParseBytes(data)
	require.NoError(t, err, string(data))
	return resp.StatusCode, v
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	v, err := fastjson.ParseBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(v.GetStringBytes("status")))
	assert.Equal(t, "%{client}", string(v.GetStringBytes("pattern")))
}

func TestParsePlainText(t *testing.T) {
	srv := newTestServer(t)

	code, v := post(t, srv.URL+"/api/parse", "text/plain", "client 10.0.0.1\nnope\n")
	require.Equal(t, http.StatusOK, code)

	results := v.GetArray("results")
	require.Len(t, results, 2)
	assert.Equal(t, "10.0.0.1", string(results[0].GetStringBytes("fields", "client")))
	assert.Equal(t, `no match against data: "nope"`, string(results[1].GetStringBytes("error")))
	assert.Equal(t, "nope", string(results[1].GetStringBytes("raw")))

	assert.Equal(t, 1, v.GetInt("stats", "parsed"))
	assert.Equal(t, 1, v.GetInt("stats", "failed"))
}

func TestParseJSONBodies(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{
		`["client 10.0.0.1", "client 10.0.0.2", "x"]`,
		`{"lines": ["client 10.0.0.1", "client 10.0.0.2", "x"]}`,
	} {
		code, v := post(t, srv.URL+"/api/parse", "application/json", body)
		require.Equal(t, http.StatusOK, code, body)
		assert.Len(t, v.GetArray("results"), 3, body)
		assert.Equal(t, 2, v.GetInt("stats", "parsed"), body)
		assert.Equal(t, 1, v.GetInt("stats", "failed"), body)
	}
}

func TestParseBadJSON(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{`[1, 2`, `{"other": []}`, `[1]`, `"str"`} {
		code, v := post(t, srv.URL+"/api/parse", "application/json", body)
		assert.Equal(t, http.StatusBadRequest, code, body)
		assert.NotEmpty(t, v.GetStringBytes("error"), body)
	}
}

func TestWebSocket(t *testing.T) {
	srv := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("client 172.16.0.9")))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"fields":{"client":"172.16.0.9"}}`, string(data))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("garbage")))
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"no match against data: \"garbage\"","raw":"garbage"}`, string(data))
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t)

	code, _ := post(t, srv.URL+"/api/parse", "text/plain", "client 10.0.0.1\nclient 10.0.0.2\nbad\n")
	require.Equal(t, http.StatusOK, code)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(data), `grokline_lines_total{outcome="parsed"} 2`)
	assert.Contains(t, string(data), `grokline_lines_total{outcome="failed"} 1`)
}

func TestStartShutdown(t *testing.T) {
	ex, err := parser.NewExtractor(parser.Options{Pattern: "%{WORD:w}"})
	require.NoError(t, err)
	s := New(ex, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx, "127.0.0.1:0")
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for shutdown")
	}
}
