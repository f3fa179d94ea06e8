package app

import (
	"reflect"
	"testing"

	"github.com/kavinsood/instaclone-signal/internal/core"
)

type stubConn struct {
	frames []core.Frame
	closed bool
}

func (c *stubConn) TrySend(f core.Frame) error {
	c.frames = append(c.frames, f)
	return nil
}

func (c *stubConn) Close() { c.closed = true }

func TestRegistry_LastConnectWins(t *testing.T) {
	r := NewRegistry()
	first := &stubConn{}
	second := &stubConn{}

	r.Connect("alice", first)
	r.Connect("alice", second)

	got, ok := r.Resolve("alice")
	if !ok {
		t.Fatalf("expected alice to be online")
	}
	if got != core.SignalConnection(second) {
		t.Fatalf("expected the later connection to win")
	}
	if len(r.Online()) != 1 {
		t.Fatalf("expected a single presence entry, got %v", r.Online())
	}
}

func TestRegistry_DisconnectIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Connect("alice", &stubConn{})

	r.Disconnect("alice")
	r.Disconnect("alice") // second call is a no-op

	if _, ok := r.Resolve("alice"); ok {
		t.Fatalf("expected alice offline")
	}
	if r.Count() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Count())
	}
}

func TestRegistry_DisconnectConnIgnoresStaleHandle(t *testing.T) {
	r := NewRegistry()
	stale := &stubConn{}
	fresh := &stubConn{}

	r.Connect("alice", stale)
	r.Connect("alice", fresh)

	if r.DisconnectConn("alice", stale) {
		t.Fatalf("stale handle must not evict the fresh one")
	}
	if got, ok := r.Resolve("alice"); !ok || got != core.SignalConnection(fresh) {
		t.Fatalf("fresh connection should still be registered")
	}

	if !r.DisconnectConn("alice", fresh) {
		t.Fatalf("expected fresh handle disconnect to succeed")
	}
	if _, ok := r.Resolve("alice"); ok {
		t.Fatalf("expected alice offline")
	}
}

func TestRegistry_OnlineSorted(t *testing.T) {
	r := NewRegistry()
	r.Connect("carol", &stubConn{})
	r.Connect("alice", &stubConn{})
	r.Connect("bob", &stubConn{})

	want := []string{"alice", "bob", "carol"}
	if got := r.Online(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Online() = %v, want %v", got, want)
	}
}
