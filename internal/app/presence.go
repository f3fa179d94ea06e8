package app

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/kavinsood/instaclone-signal/internal/core"
	"github.com/kavinsood/instaclone-signal/internal/domain"
)

// Registry maps a user identity to its current live signal connection.
// Last connect wins: a reconnect for the same user overwrites the prior
// handle, which is considered stale from that point on.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.UserID]core.SignalConnection
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.UserID]core.SignalConnection)}
}

func (r *Registry) Connect(uid domain.UserID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[uid] = conn
	log.Info().Str("module", "app.presence").Str("user", string(uid)).Msg("connected")
}

// Disconnect removes the entry for uid. No-op when absent.
func (r *Registry) Disconnect(uid domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[uid]; !ok {
		return
	}
	delete(r.conns, uid)
	log.Info().Str("module", "app.presence").Str("user", string(uid)).Msg("disconnected")
}

// DisconnectConn removes the entry for uid only while conn is still the
// registered handle. The teardown of a stale connection must not evict the
// one that replaced it.
func (r *Registry) DisconnectConn(uid domain.UserID, conn core.SignalConnection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.conns[uid]
	if !ok || cur != conn {
		return false
	}
	delete(r.conns, uid)
	log.Info().Str("module", "app.presence").Str("user", string(uid)).Msg("disconnected")
	return true
}

func (r *Registry) Resolve(uid domain.UserID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[uid]
	return conn, ok
}

// Online returns the sorted set of currently connected user ids.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.conns))
	for uid := range r.conns {
		out = append(out, string(uid))
	}
	sort.Strings(out)
	return out
}

// Connections snapshots every live handle, for fan-out.
func (r *Registry) Connections() []core.SignalConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SignalConnection, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
