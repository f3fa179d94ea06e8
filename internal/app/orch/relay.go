package orch

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/kavinsood/instaclone-signal/internal/app"
	"github.com/kavinsood/instaclone-signal/internal/core"
	"github.com/kavinsood/instaclone-signal/internal/domain"
)

func (o *Orchestrator) sendError(conn core.SignalConnection, msg string, code domain.ErrorCode) {
	sendJSON(conn, callErrorEvent{Type: "call-error", Error: msg, Code: code})
}

// Offer starts a call from → to. The busy check, the session insert and the
// forward happen as one event; a 30s timer is armed against the new session.
func (o *Orchestrator) Offer(from, to domain.UserID, sender core.SignalConnection, offer json.RawMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var sd webrtc.SessionDescription
	if err := json.Unmarshal(offer, &sd); err != nil || sd.SDP == "" {
		log.Warn().Str("module", "orch").Str("from", string(from)).Msg("unparseable offer")
		o.sendError(sender, "Failed to send offer", domain.CodeOfferFailed)
		return
	}

	target, ok := o.Presence.Resolve(to)
	if !ok {
		o.sendError(sender, "User not found or offline", domain.CodeUserNotFound)
		return
	}

	s, err := o.Calls.BeginOffer(from, to, o.Clock.Now())
	if errors.Is(err, app.ErrBusy) {
		o.sendError(sender, "User is already in a call", domain.CodeUserBusy)
		return
	}

	if !sendJSON(target, offerEvent{Type: "video-offer", From: string(from), Offer: offer, Timestamp: o.now()}) {
		o.Calls.Terminate(from)
		o.sendError(sender, "Failed to send offer", domain.CodeOfferFailed)
		return
	}

	o.scheduleOfferTimeout(s.ID)
}

// Answer relays the callee's answer back and marks the session connected.
// A late answer whose session already timed out is still forwarded; the
// caller's client decides what to do with it.
func (o *Orchestrator) Answer(from, to domain.UserID, sender core.SignalConnection, answer json.RawMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var sd webrtc.SessionDescription
	if err := json.Unmarshal(answer, &sd); err != nil || sd.SDP == "" {
		log.Warn().Str("module", "orch").Str("from", string(from)).Msg("unparseable answer")
		o.sendError(sender, "Failed to send answer", domain.CodeAnswerFailed)
		return
	}

	target, ok := o.Presence.Resolve(to)
	if !ok {
		o.sendError(sender, "Caller not found or offline", domain.CodeCallerNotFound)
		return
	}

	if _, err := o.Calls.AcceptAnswer(from, to); errors.Is(err, app.ErrNotFound) {
		log.Warn().Str("module", "orch").
			Str("from", string(from)).Str("to", string(to)).
			Msg("answer without session")
	}

	if !sendJSON(target, answerEvent{Type: "video-answer", From: string(from), Answer: answer, Timestamp: o.now()}) {
		o.sendError(sender, "Failed to send answer", domain.CodeAnswerFailed)
	}
}

// Candidate forwards an ICE candidate, best-effort. A payload that is not a
// candidate object, or an offline target, is dropped with only a log line;
// the sender cannot usefully retry either case. An empty candidate string is
// a valid object: that is the end-of-candidates marker in trickle ICE.
func (o *Orchestrator) Candidate(from, to domain.UserID, candidate json.RawMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()

	trimmed := bytes.TrimSpace(candidate)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		log.Warn().Str("module", "orch").Str("from", string(from)).Msg("invalid ice candidate dropped")
		return
	}
	var ci webrtc.ICECandidateInit
	if err := json.Unmarshal(candidate, &ci); err != nil {
		log.Warn().Str("module", "orch").Str("from", string(from)).Msg("invalid ice candidate dropped")
		return
	}

	target, ok := o.Presence.Resolve(to)
	if !ok {
		log.Warn().Str("module", "orch").Str("to", string(to)).Msg("ice candidate: receiver offline")
		return
	}

	sendJSON(target, candidateEvent{Type: "ice-candidate", From: string(from), Candidate: candidate, Timestamp: o.now()})
}

// Reject clears the pending session and tells the caller, best-effort.
func (o *Orchestrator) Reject(from, to domain.UserID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.Calls.Terminate(from); !ok {
		o.Calls.Terminate(to)
	}
	if target, ok := o.Presence.Resolve(to); ok {
		sendJSON(target, rejectedEvent{Type: "call-rejected", From: string(from), Timestamp: o.now()})
	}
	log.Info().Str("module", "orch").Str("from", string(from)).Str("to", string(to)).Msg("call rejected")
}

// End clears the session and notifies the other party, best-effort.
func (o *Orchestrator) End(from, to domain.UserID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.Calls.Terminate(from); !ok {
		o.Calls.Terminate(to)
	}
	if target, ok := o.Presence.Resolve(to); ok {
		sendJSON(target, endedEvent{Type: "call-ended", From: string(from), Reason: domain.ReasonPeerEnded, Timestamp: o.now()})
	}
	log.Info().Str("module", "orch").Str("from", string(from)).Str("to", string(to)).Msg("call ended")
}

// CallStatus reports whether target is mid-call back to the asking
// connection.
func (o *Orchestrator) CallStatus(sender core.SignalConnection, target domain.UserID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	ev := callStatusEvent{Type: "call-status", UserID: string(target)}
	if s, ok := o.Calls.Get(target); ok {
		ev.InCall = true
		ev.CallInfo = &s
	}
	sendJSON(sender, ev)
}

// ForceEnd tears down target's call for error recovery, notifying the other
// participant with reason force_ended.
func (o *Orchestrator) ForceEnd(from, target domain.UserID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s, ok := o.Calls.Terminate(target)
	if !ok {
		return
	}
	o.notifyEnded(s.Other(target), from, domain.ReasonForceEnded)
	log.Info().Str("module", "orch").Str("target", string(target)).Msg("call force ended")
}

// Heartbeat relays a connection-quality probe between call peers,
// best-effort.
func (o *Orchestrator) Heartbeat(from, to domain.UserID, status json.RawMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()

	target, ok := o.Presence.Resolve(to)
	if !ok {
		return
	}
	sendJSON(target, heartbeatEvent{Type: "webrtc-heartbeat", From: string(from), Status: status, Timestamp: o.now()})
}
