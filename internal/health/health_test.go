package health

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code, rec.Body.String()
}

func TestRootAndHealthz(t *testing.T) {
	h := New(Config{}, pinger{}).Handler()

	code, body := get(t, h, "/")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body)

	code, body = get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body)
}

func TestHealthzReportsDatabaseDown(t *testing.T) {
	h := New(Config{}, pinger{err: errors.New("closed")}).Handler()
	code, _ := get(t, h, "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, code)
}

func TestMetricsEndpoint(t *testing.T) {
	code, body := get(t, New(Config{}, nil).Handler(), "/metrics")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "go_goroutines")
}

func TestDefaultListen(t *testing.T) {
	require.Equal(t, DefaultListen, New(Config{}, nil).listen)
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(Config{}, nil).serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return")
	}
}
