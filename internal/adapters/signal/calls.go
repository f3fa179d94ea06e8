package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/kavinsood/instaclone-signal/internal/domain"
)

func (ctl *SignalWSController) handleOffer(
	uid domain.UserID,
	conn *wsConn,
	data []byte,
) {
	var p struct {
		Type  string          `json:"type"`
		To    string          `json:"to"`
		Offer json.RawMessage `json:"offer"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad offer payload")
		return
	}
	ctl.Orch.Offer(uid, domain.UserID(p.To), conn, p.Offer)
}

func (ctl *SignalWSController) handleAnswer(
	uid domain.UserID,
	conn *wsConn,
	data []byte,
) {
	var p struct {
		Type   string          `json:"type"`
		To     string          `json:"to"`
		Answer json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad answer payload")
		return
	}
	ctl.Orch.Answer(uid, domain.UserID(p.To), conn, p.Answer)
}

func (ctl *SignalWSController) handleCandidate(
	uid domain.UserID,
	data []byte,
) {
	var p struct {
		Type      string          `json:"type"`
		To        string          `json:"to"`
		Candidate json.RawMessage `json:"candidate"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad candidate payload")
		return
	}
	ctl.Orch.Candidate(uid, domain.UserID(p.To), p.Candidate)
}

func (ctl *SignalWSController) handleRejected(
	uid domain.UserID,
	data []byte,
) {
	var p struct {
		Type string `json:"type"`
		To   string `json:"to"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad reject payload")
		return
	}
	ctl.Orch.Reject(uid, domain.UserID(p.To))
}

func (ctl *SignalWSController) handleEnded(
	uid domain.UserID,
	data []byte,
) {
	var p struct {
		Type string `json:"type"`
		To   string `json:"to"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad end payload")
		return
	}
	ctl.Orch.End(uid, domain.UserID(p.To))
}

func (ctl *SignalWSController) handleCallStatus(
	conn *wsConn,
	data []byte,
) {
	var p struct {
		Type   string `json:"type"`
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad status payload")
		return
	}
	ctl.Orch.CallStatus(conn, domain.UserID(p.UserID))
}

func (ctl *SignalWSController) handleForceEnd(
	uid domain.UserID,
	data []byte,
) {
	var p struct {
		Type   string `json:"type"`
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad force-end payload")
		return
	}
	ctl.Orch.ForceEnd(uid, domain.UserID(p.UserID))
}

func (ctl *SignalWSController) handleHeartbeat(
	uid domain.UserID,
	data []byte,
) {
	var p struct {
		Type   string          `json:"type"`
		To     string          `json:"to"`
		Status json.RawMessage `json:"status"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad heartbeat payload")
		return
	}
	ctl.Orch.Heartbeat(uid, domain.UserID(p.To), p.Status)
}
