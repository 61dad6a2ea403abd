package ws

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestHeartbeatStopsOnClose(t *testing.T) {
	hub := NewHub(zap.NewNop())

	stopped := make(chan struct{})
	go func() {
		hub.Heartbeat(time.Millisecond)
		close(stopped)
	}()

	hub.Close()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("heartbeat still running after Close")
	}
}
