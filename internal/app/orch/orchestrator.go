// Package orch serializes every presence and call mutation behind one lock:
// connects, disconnects, relayed signaling, timer fires and sweep fires are
// each processed to completion before the next event starts.
package orch

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kavinsood/instaclone-signal/internal/app"
	"github.com/kavinsood/instaclone-signal/internal/core"
	"github.com/kavinsood/instaclone-signal/internal/domain"
)

const (
	DefaultOfferTimeout  = 30 * time.Second
	DefaultSweepInterval = 5 * time.Minute
	DefaultStaleAfter    = 5 * time.Minute
)

type Orchestrator struct {
	mu sync.Mutex

	Presence *app.Registry
	Calls    *app.CallTable
	Clock    Clock

	OfferTimeout  time.Duration
	SweepInterval time.Duration
	StaleAfter    time.Duration
}

func New(presence *app.Registry, calls *app.CallTable, clk Clock) *Orchestrator {
	if clk == nil {
		clk = SystemClock
	}
	return &Orchestrator{
		Presence:      presence,
		Calls:         calls,
		Clock:         clk,
		OfferTimeout:  DefaultOfferTimeout,
		SweepInterval: DefaultSweepInterval,
		StaleAfter:    DefaultStaleAfter,
	}
}

func (o *Orchestrator) now() int64 { return o.Clock.Now().UnixMilli() }

// Connect registers uid's live connection and broadcasts the new online set.
// A reconnect for the same uid overwrites the prior handle.
func (o *Orchestrator) Connect(uid domain.UserID, conn core.SignalConnection) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Presence.Connect(uid, conn)
	o.broadcastOnline()
}

// Disconnect tears down uid's registration for conn. When uid was mid-call
// the other participant gets exactly one peer_disconnected notice and the
// session is removed. A stale handle (already replaced by a reconnect) is
// ignored entirely.
func (o *Orchestrator) Disconnect(uid domain.UserID, conn core.SignalConnection) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.Presence.DisconnectConn(uid, conn) {
		return
	}
	if s, ok := o.Calls.Terminate(uid); ok {
		o.notifyEnded(s.Other(uid), uid, domain.ReasonPeerDisconnected)
	}
	o.broadcastOnline()
}

// Shutdown announces the stop to every connection, then tells all in-call
// participants their call is over. Callers should allow a short grace period
// for the frames to flush before exiting.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	defer o.mu.Unlock()
	notice := shutdownEvent{Type: "server-shutdown", Message: "Server is shutting down"}
	for _, conn := range o.Presence.Connections() {
		sendJSON(conn, notice)
	}
	for _, s := range o.Calls.Sessions() {
		o.Calls.Terminate(s.Caller)
		o.notifyEnded(s.Caller, s.Callee, domain.ReasonServerShutdown)
		o.notifyEnded(s.Callee, s.Caller, domain.ReasonServerShutdown)
	}
	log.Info().Str("module", "orch").Msg("shutdown notices sent")
}

// broadcastOnline fans the current online set out to every live connection,
// not just the one whose presence changed.
func (o *Orchestrator) broadcastOnline() {
	ev := onlineUsersEvent{Type: "getOnlineUsers", Users: o.Presence.Online()}
	for _, conn := range o.Presence.Connections() {
		sendJSON(conn, ev)
	}
}

// notifyEnded sends a call-ended notice to uid, best-effort.
func (o *Orchestrator) notifyEnded(uid, from domain.UserID, reason domain.EndReason) {
	conn, ok := o.Presence.Resolve(uid)
	if !ok {
		return
	}
	sendJSON(conn, endedEvent{Type: "call-ended", From: string(from), Reason: reason})
}
