package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kavinsood/instaclone-signal/internal/adapters/signal"
	"github.com/kavinsood/instaclone-signal/internal/app/orch"
	"github.com/kavinsood/instaclone-signal/internal/config"
)

// UserIDMiddleware resolves the caller's identity: the userId query
// parameter wins, and is remembered in the cookie session so a reconnect
// without the parameter keeps its id.
func UserIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		uid := c.Query("userId")
		if uid == "" {
			if v, ok := sess.Get("user_id").(string); ok {
				uid = v
			}
		} else if prev, ok := sess.Get("user_id").(string); !ok || prev != uid {
			sess.Set("user_id", uid)
			if err := sess.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
			}
		}
		c.Set("user_id", uid)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("InstaSessions", store))
	r.Use(UserIDMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "Server is running")
	})

	api := r.Group("/api")

	ctl := signal.NewSignalWSController(o, cfg)
	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("user", c.GetString("user_id")).Msg("ws endpoint hit")
		ctl.HandleSignal(ctx, c)
	})

	api.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"online":      o.Presence.Count(),
			"activeCalls": o.Calls.Count(),
			"serverTime":  time.Now().UnixMilli(),
		})
	})

	return r
}
