package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLiveReloadBroadcast(t *testing.T) {
	hub := NewLiveReloadHub()
	defer hub.Close()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// Wait for the client to register before broadcasting.
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast("build-42")

	buf := make([]byte, 256)
	n, err := resp.Body.Read(buf)
	require.NoError(t, err)
	event := string(buf[:n])
	require.Contains(t, event, "event: reload")
	require.Contains(t, event, "data: build-42")
}

func TestLiveReloadClosedHubRejectsClients(t *testing.T) {
	hub := NewLiveReloadHub()
	hub.Close()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 503, resp.StatusCode)
}

func TestLiveReloadSlowClientDoesNotBlock(t *testing.T) {
	hub := NewLiveReloadHub()
	defer hub.Close()

	hub.mu.Lock()
	hub.clients[0] = make(chan string) // unbuffered, nobody reading
	hub.mu.Unlock()

	done := make(chan struct{})
	go func() {
		hub.Broadcast("b-1")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on slow client")
	}
}

func TestLiveReloadEventFraming(t *testing.T) {
	// Each SSE event must end with a blank line.
	hub := NewLiveReloadHub()
	defer hub.Close()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast("b-9")

	buf := make([]byte, 256)
	n, err := resp.Body.Read(buf)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(buf[:n]), "\n\n"))
}
