package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/playrelay/internal/config"
	"github.com/vovakirdan/playrelay/internal/core"
)

// NewServer builds the HTTP server: health, the player WebSocket and a read-only API.
func NewServer(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           NewRouter(hub, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter mounts the WebSocket on a plain ServeMux at "/" and "/ws"; gin cannot hijack
// a connection once the upgrade response is written. Every other path goes to gin.
func NewRouter(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	ws := LogRequests(logger, NewWSHandler(hub, cfg, logger))

	mux := stdhttp.NewServeMux()
	mux.Handle("/{$}", ws)
	mux.Handle("/ws", ws)
	mux.Handle("/", newEngine(hub, logger))
	return mux
}

func newEngine(hub *core.Hub, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	api := NewAPIHandlers(hub, logger)
	router.GET("/api/players", api.ListPlayers)

	return router
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
