package orch

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/kavinsood/instaclone-signal/internal/core"
	"github.com/kavinsood/instaclone-signal/internal/domain"
)

type onlineUsersEvent struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

type offerEvent struct {
	Type      string          `json:"type"`
	From      string          `json:"from"`
	Offer     json.RawMessage `json:"offer"`
	Timestamp int64           `json:"timestamp"`
}

type answerEvent struct {
	Type      string          `json:"type"`
	From      string          `json:"from"`
	Answer    json.RawMessage `json:"answer"`
	Timestamp int64           `json:"timestamp"`
}

type candidateEvent struct {
	Type      string          `json:"type"`
	From      string          `json:"from"`
	Candidate json.RawMessage `json:"candidate"`
	Timestamp int64           `json:"timestamp"`
}

type rejectedEvent struct {
	Type      string `json:"type"`
	From      string `json:"from"`
	Timestamp int64  `json:"timestamp"`
}

type endedEvent struct {
	Type      string           `json:"type"`
	From      string           `json:"from"`
	Reason    domain.EndReason `json:"reason,omitempty"`
	Timestamp int64            `json:"timestamp,omitempty"`
}

// timeoutEvent carries To on the caller's copy and From on the callee's.
type timeoutEvent struct {
	Type string `json:"type"`
	To   string `json:"to,omitempty"`
	From string `json:"from,omitempty"`
}

type callErrorEvent struct {
	Type  string           `json:"type"`
	Error string           `json:"error"`
	Code  domain.ErrorCode `json:"code"`
}

type callStatusEvent struct {
	Type     string              `json:"type"`
	UserID   string              `json:"userId"`
	InCall   bool                `json:"inCall"`
	CallInfo *domain.CallSession `json:"callInfo"`
}

type heartbeatEvent struct {
	Type      string          `json:"type"`
	From      string          `json:"from"`
	Status    json.RawMessage `json:"status"`
	Timestamp int64           `json:"timestamp"`
}

type shutdownEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// sendJSON marshals v and hands it to conn without blocking. Delivery is
// fire-and-forget; a full or closed connection only gets logged.
func sendJSON(conn core.SignalConnection, v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("sendJSON marshal")
		return false
	}
	if err := conn.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "orch").Msg("sendJSON dropped")
		return false
	}
	return true
}
