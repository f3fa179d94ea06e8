package domain

import (
	"time"

	"github.com/google/uuid"
)

type CallID string

type CallStatus string

const (
	CallOffering  CallStatus = "offering"
	CallReceiving CallStatus = "receiving"
	CallConnected CallStatus = "connected"
)

// CallSession is one logical call stored once, with the status recorded from
// the caller's point of view. Both participants resolve to the same record.
type CallSession struct {
	ID        CallID     `json:"id"`
	Caller    UserID     `json:"caller"`
	Callee    UserID     `json:"callee"`
	Status    CallStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

func NewCallSession(caller, callee UserID, now time.Time) CallSession {
	return CallSession{
		ID:        CallID(uuid.NewString()),
		Caller:    caller,
		Callee:    callee,
		Status:    CallOffering,
		CreatedAt: now,
	}
}

// Other returns the opposite participant of id.
func (s CallSession) Other(id UserID) UserID {
	if s.Caller == id {
		return s.Callee
	}
	return s.Caller
}

// StatusFor derives the per-participant view: while the record is in
// CallOffering the callee sees CallReceiving.
func (s CallSession) StatusFor(id UserID) CallStatus {
	if s.Status == CallOffering && s.Callee == id {
		return CallReceiving
	}
	return s.Status
}

func (s CallSession) Has(id UserID) bool {
	return s.Caller == id || s.Callee == id
}
