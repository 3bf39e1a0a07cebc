package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler http.Handler) (*Server, net.Listener) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(handler, Options{ShutdownTimeout: 2 * time.Second}, logger)
	return srv, ln
}

func TestServer_ServeAndShutdownHooks(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	srv, ln := newTestServer(t, handler)

	var order []string
	srv.OnShutdown("storage", func(context.Context) error {
		order = append(order, "storage")
		return nil
	})
	srv.OnShutdown("cache", func(context.Context) error {
		order = append(order, "cache")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if strings.Join(order, ",") != "cache,storage" {
		t.Errorf("shutdown order = %v, want cache,storage", order)
	}
}

func TestServer_ShutdownHookError(t *testing.T) {
	srv, ln := newTestServer(t, http.NotFoundHandler())

	hookErr := errors.New("close failed")
	ran := false
	srv.OnShutdown("first", func(context.Context) error {
		ran = true
		return nil
	})
	srv.OnShutdown("failing", func(context.Context) error { return hookErr })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := srv.Serve(ctx, ln)
	if !errors.Is(err, hookErr) {
		t.Fatalf("expected hook error, got %v", err)
	}
	if !ran {
		t.Error("remaining hooks should still run after a failure")
	}
}

func TestServer_Addr(t *testing.T) {
	srv := New(http.NotFoundHandler(), Options{Port: 9090}, nil)
	if srv.Addr() != ":9090" {
		t.Errorf("Addr = %s, want :9090", srv.Addr())
	}
}
