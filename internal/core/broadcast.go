package core

import (
	"fmt"
	"iter"

	"github.com/vovakirdan/playrelay/internal/proto"
)

// FanOut delivers ev to each recipient independently and returns those that could not take it.
// A failed recipient never stops delivery to the rest.
func FanOut(recipients iter.Seq[*Player], ev Event) []*Player {
	var failed []*Player
	for p := range recipients {
		if err := p.Client.deliver(ev); err != nil {
			failed = append(failed, p)
		}
	}
	return failed
}

// broadcast encodes data once and fans it out. Unreachable recipients are kicked so their
// transport closes and the regular leave sequence runs.
func (h *Hub) broadcast(recipients iter.Seq[*Player], typ string, data any) {
	ev, err := newEvent(typ, data)
	if err != nil {
		h.log.Error().Err(err).Str("type", typ).Msg("encode broadcast")
		return
	}
	for _, p := range FanOut(recipients, ev) {
		h.dropClient(p.Client, ev.Type)
	}
}

// systemChat sends a chat line from SystemSenderID to every player.
func (h *Hub) systemChat(message string) {
	h.broadcast(h.roster.All(), proto.TypeChat, proto.ChatEvent{ID: SystemSenderID, Message: message})
}

// sendTo delivers a single event to c.
func (h *Hub) sendTo(c *Client, typ string, data any) error {
	ev, err := newEvent(typ, data)
	if err != nil {
		h.log.Error().Err(err).Str("type", typ).Msg("encode event")
		return err
	}
	if err := c.deliver(ev); err != nil {
		h.dropClient(c, typ)
		return err
	}
	return nil
}

func (h *Hub) dropClient(c *Client, typ string) {
	if c.kicked() {
		return
	}
	h.log.Warn().Str("client_id", c.ID).Str("type", typ).Str("code", ErrCodeChannelFailure).Msg("client cannot keep up, closing")
	c.Kick(fmt.Errorf("deliver %s: %w", typ, ErrChannelFailure))
}
