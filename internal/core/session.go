package core

import (
	"fmt"

	"github.com/vovakirdan/playrelay/internal/proto"
)

// SessionState is the lifecycle stage of one channel.
type SessionState int

const (
	// StateAwaitingConnect accepts only player.connect; everything else is dropped.
	StateAwaitingConnect SessionState = iota
	// StateActive has a player in the roster.
	StateActive
	// StateClosed processes nothing.
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateAwaitingConnect:
		return "awaiting_connect"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session binds one client to at most one player.
type Session struct {
	Client *Client
	Player *Player
	State  SessionState
}

func (h *Hub) handleCommand(s *Session, cmd Command) error {
	switch s.State {
	case StateAwaitingConnect:
		if cmd.Kind != CommandConnect {
			h.log.Debug().Str("client_id", s.Client.ID).Stringer("type", cmd.Kind).Msg("ignoring command before connect")
			return nil
		}
		return h.connect(s, cmd.Name)
	case StateActive:
		if cmd.Kind == CommandConnect {
			return fmt.Errorf("player %d: %w", s.Player.ID, ErrAlreadyConnected)
		}
		return h.route(s.Player, cmd)
	default:
		return nil
	}
}

// connect runs the join sequence. Order matters: the newcomer learns about itself and every
// existing player, existing players learn about the newcomer, and only then is the newcomer
// inserted and the join announced to everyone.
func (h *Hub) connect(s *Session, name string) error {
	player := NewPlayer(h.roster.NextID(), s.Client, name, h.rng)

	// Nobody may hear of a player the roster would then refuse.
	if err := h.roster.CanAdd(player); err != nil {
		h.log.Error().Err(err).Int64("player_id", player.ID).Msg("roster invariant violated")
		return err
	}

	if err := h.sendTo(s.Client, proto.TypeInit, player.State()); err != nil {
		return fmt.Errorf("join player %d: %w", player.ID, err)
	}

	for other := range h.roster.All() {
		if err := h.sendTo(s.Client, proto.TypeNew, other.State()); err != nil {
			return fmt.Errorf("join player %d: catch up on %d: %w", player.ID, other.ID, err)
		}
	}

	h.broadcast(h.roster.All(), proto.TypeNew, player.State())

	if err := h.roster.Add(player); err != nil {
		return err
	}
	s.Player = player
	s.State = StateActive

	h.log.Info().
		Str("client_id", s.Client.ID).
		Int64("player_id", player.ID).
		Str("name", player.Name).
		Int("players", h.roster.Len()).
		Msg("player joined")

	h.systemChat(player.Name + " joined")
	return nil
}

// disconnect closes the session of c. Repeated calls are no-ops.
func (h *Hub) disconnect(c *Client) {
	s, ok := h.sessions[c]
	if !ok {
		return
	}
	delete(h.sessions, c)
	s.State = StateClosed

	player, ok := h.roster.RemoveByClient(c)
	if !ok {
		h.log.Debug().Str("client_id", c.ID).Msg("client left before connecting")
		return
	}

	h.log.Info().
		Str("client_id", c.ID).
		Int64("player_id", player.ID).
		Str("name", player.Name).
		Int("players", h.roster.Len()).
		Msg("player left")

	h.broadcast(h.roster.All(), proto.TypeClose, proto.PlayerClose{ID: player.ID})
	h.systemChat(player.Name + " died")
}
