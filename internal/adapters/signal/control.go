package signal

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// handlePing echoes the client's payload back with the server time appended.
func (ctl *SignalWSController) handlePing(
	conn *wsConn,
	data []byte,
) {
	var p map[string]any
	if err := json.Unmarshal(data, &p); err != nil || p == nil {
		p = map[string]any{}
	}
	p["type"] = "pong"
	p["serverTime"] = time.Now().UnixMilli()

	b, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("pong marshal")
		return
	}
	_ = conn.TrySend(b)
}
