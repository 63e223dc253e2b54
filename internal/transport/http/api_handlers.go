package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/playrelay/internal/core"
	"github.com/vovakirdan/playrelay/internal/proto"
)

// APIHandlers provides read-only HTTP views of the relay.
type APIHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(hub *core.Hub, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		hub: hub,
		log: logger,
	}
}

// PlayersResponse lists connected players in join order.
type PlayersResponse struct {
	Count   int                 `json:"count"`
	Players []proto.PlayerState `json:"players"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListPlayers returns the current roster.
// GET /api/players
func (h *APIHandlers) ListPlayers(c *gin.Context) {
	players, err := h.hub.Players(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read roster")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "relay unavailable"})
		return
	}
	c.JSON(http.StatusOK, PlayersResponse{Count: len(players), Players: players})
}
