package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/kavinsood/instaclone-signal/internal/app/orch"
	"github.com/kavinsood/instaclone-signal/internal/config"
	"github.com/kavinsood/instaclone-signal/internal/core"
	"github.com/kavinsood/instaclone-signal/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type SignalWSController struct {
	Orch *orch.Orchestrator
	Cfg  *config.Config
}

func NewSignalWSController(o *orch.Orchestrator, cfg *config.Config) *SignalWSController {
	return &SignalWSController{Orch: o, Cfg: cfg}
}

type wsConn struct {
	conn   *websocket.Conn
	send   chan core.Frame
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and registers the client under the
// userId it announced. Identity issuance lives elsewhere; an id that fails
// the basic shape check is turned away before the upgrade.
//
// ctx is the server-lifetime context, not the request's: net/http cancels
// the request context when the handler returns, which would kill the pumps
// of a freshly hijacked connection.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	uid, err := domain.ValidateUserID(c.GetString("user_id"))
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("rejected connect")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid userId"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("user", string(uid)).Msg("new WS connection")

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}

	ctx, cancel := context.WithCancel(ctx)
	conn.cancel = cancel

	ctl.Orch.Connect(uid, conn)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, uid, conn)
}
