package app

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kavinsood/instaclone-signal/internal/domain"
)

var (
	ErrBusy     = errors.New("user already in a call")
	ErrNotFound = errors.New("no matching call session")
)

// CallTable tracks which users are mid-call. Each logical call is one record
// indexed under both participant ids, so a lookup by either side lands on the
// same session and the two views can never drift apart.
type CallTable struct {
	mu       sync.RWMutex
	sessions map[domain.CallID]domain.CallSession
	byUser   map[domain.UserID]domain.CallID
}

func NewCallTable() *CallTable {
	return &CallTable{
		sessions: make(map[domain.CallID]domain.CallSession),
		byUser:   make(map[domain.UserID]domain.CallID),
	}
}

// BeginOffer creates a session for caller→callee. The busy check and the
// insert happen under one lock: a concurrent offer can never slip between
// them.
func (t *CallTable) BeginOffer(caller, callee domain.UserID, now time.Time) (domain.CallSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.byUser[caller]; busy {
		return domain.CallSession{}, ErrBusy
	}
	if _, busy := t.byUser[callee]; busy {
		return domain.CallSession{}, ErrBusy
	}
	s := domain.NewCallSession(caller, callee, now)
	t.sessions[s.ID] = s
	t.byUser[caller] = s.ID
	t.byUser[callee] = s.ID
	log.Info().Str("module", "app.calls").
		Str("call", string(s.ID)).
		Str("caller", string(caller)).
		Str("callee", string(callee)).
		Msg("offer begun")
	return s, nil
}

// AcceptAnswer advances the session involving both ids to connected.
// A late answer after timeout cleanup reports ErrNotFound.
func (t *CallTable) AcceptAnswer(from, to domain.UserID) (domain.CallSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.byUser[from]
	if !ok {
		return domain.CallSession{}, ErrNotFound
	}
	s := t.sessions[id]
	if !s.Has(to) {
		return domain.CallSession{}, ErrNotFound
	}
	s.Status = domain.CallConnected
	t.sessions[id] = s
	log.Info().Str("module", "app.calls").Str("call", string(s.ID)).Msg("connected")
	return s, nil
}

// Terminate removes the session keyed by uid, clearing both participant
// index entries, and reports who the other party was.
func (t *CallTable) Terminate(uid domain.UserID) (domain.CallSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.byUser[uid]
	if !ok {
		return domain.CallSession{}, false
	}
	s := t.sessions[id]
	t.remove(s)
	log.Info().Str("module", "app.calls").Str("call", string(s.ID)).Msg("terminated")
	return s, true
}

// Expire removes the session only while it is still in the offering phase.
// The status re-check under the table lock is what makes the offer timer
// safe: an answer that landed first turns the timer into a no-op.
func (t *CallTable) Expire(id domain.CallID) (domain.CallSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	if !ok || s.Status != domain.CallOffering {
		return domain.CallSession{}, false
	}
	t.remove(s)
	log.Info().Str("module", "app.calls").Str("call", string(s.ID)).Msg("offer expired")
	return s, true
}

// ExpireStale removes and returns every session created before cutoff,
// regardless of status. Safety net against leaked entries.
func (t *CallTable) ExpireStale(cutoff time.Time) []domain.CallSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []domain.CallSession
	for _, s := range t.sessions {
		if s.CreatedAt.Before(cutoff) {
			t.remove(s)
			out = append(out, s)
			log.Warn().Str("module", "app.calls").Str("call", string(s.ID)).Msg("stale call swept")
		}
	}
	return out
}

func (t *CallTable) remove(s domain.CallSession) {
	delete(t.sessions, s.ID)
	delete(t.byUser, s.Caller)
	delete(t.byUser, s.Callee)
}

func (t *CallTable) IsBusy(uid domain.UserID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.byUser[uid]
	return ok
}

// Get returns the session uid participates in, with the status adjusted to
// uid's view (callee of a pending offer sees receiving).
func (t *CallTable) Get(uid domain.UserID) (domain.CallSession, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byUser[uid]
	if !ok {
		return domain.CallSession{}, false
	}
	s := t.sessions[id]
	s.Status = s.StatusFor(uid)
	return s, true
}

// Sessions snapshots every active session.
func (t *CallTable) Sessions() []domain.CallSession {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.CallSession, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, s)
	}
	return out
}

func (t *CallTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
