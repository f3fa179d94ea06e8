package orch

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kavinsood/instaclone-signal/internal/domain"
)

// scheduleOfferTimeout arms the one-shot timer for a freshly created offer.
// Caller holds o.mu; the fired callback re-enters through expireOffer.
func (o *Orchestrator) scheduleOfferTimeout(id domain.CallID) {
	o.Clock.AfterFunc(o.OfferTimeout, func() { o.expireOffer(id) })
}

// expireOffer removes the session if nobody answered in time and notifies
// both parties once. Expire only succeeds while the session is still in the
// offering phase, so an answer that raced the timer makes this a no-op.
func (o *Orchestrator) expireOffer(id domain.CallID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s, ok := o.Calls.Expire(id)
	if !ok {
		return
	}
	if conn, ok := o.Presence.Resolve(s.Caller); ok {
		sendJSON(conn, timeoutEvent{Type: "call-timeout", To: string(s.Callee)})
	}
	if conn, ok := o.Presence.Resolve(s.Callee); ok {
		sendJSON(conn, timeoutEvent{Type: "call-timeout", From: string(s.Caller)})
	}
	log.Info().Str("module", "orch").
		Str("call", string(s.ID)).
		Str("caller", string(s.Caller)).
		Str("callee", string(s.Callee)).
		Msg("offer timed out")
}

// Run drives the periodic stale sweep until ctx is done. The sweep is a
// safety net behind the per-offer timers: whatever leaks, the table is
// drained of sessions older than StaleAfter.
func (o *Orchestrator) Run(ctx context.Context) {
	ticker := time.NewTicker(o.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "orch").Msg("sweep loop stopped")
			return
		case <-ticker.C:
			o.Sweep()
		}
	}
}

// Sweep force-terminates every session older than StaleAfter and notifies
// both participants with reason stale.
func (o *Orchestrator) Sweep() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "orch").Any("panic", r).Msg("sweep panicked")
		}
	}()
	o.mu.Lock()
	defer o.mu.Unlock()

	cutoff := o.Clock.Now().Add(-o.StaleAfter)
	for _, s := range o.Calls.ExpireStale(cutoff) {
		o.notifyEnded(s.Caller, s.Callee, domain.ReasonStale)
		o.notifyEnded(s.Callee, s.Caller, domain.ReasonStale)
	}
}
