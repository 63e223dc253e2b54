package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/playrelay/internal/proto"
	"github.com/vovakirdan/playrelay/internal/random"
)

// Options configures a Hub.
type Options struct {
	// Version is reported to every client in server.info.
	Version string
	// Seed starts the spawn generator.
	Seed int64
	// InboxSize bounds queued submissions.
	InboxSize int
	Logger    *zerolog.Logger
}

type opKind int

const (
	opRegister opKind = iota
	opCommand
	opUnregister
	opPlayers
)

type envelope struct {
	op     opKind
	client *Client
	cmd    Command
	reply  chan []proto.PlayerState
}

// Hub owns the roster and every session. All state is touched only by Run, so each
// submission runs to completion (mutate, then broadcast) before the next one starts.
type Hub struct {
	inbox   chan envelope
	stopped chan struct{}

	roster   *Roster
	sessions map[*Client]*Session
	rng      *random.Source
	version  string
	log      *zerolog.Logger
}

// NewHub creates a hub with an empty roster.
func NewHub(opts Options) *Hub {
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	inboxSize := opts.InboxSize
	if inboxSize <= 0 {
		inboxSize = 256
	}
	seed := opts.Seed
	if seed == 0 {
		seed = 1
	}
	return &Hub{
		inbox:    make(chan envelope, inboxSize),
		stopped:  make(chan struct{}),
		roster:   NewRoster(),
		sessions: make(map[*Client]*Session),
		rng:      random.New(seed),
		version:  opts.Version,
		log:      logger,
	}
}

// Run processes submissions until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-h.inbox:
			h.handle(env)
		}
	}
}

// RegisterClient opens a session for c and sends it server.info.
func (h *Hub) RegisterClient(ctx context.Context, c *Client) error {
	return h.enqueue(ctx, envelope{op: opRegister, client: c})
}

// Submit queues cmd from c. Commands from one client are processed in submission order.
func (h *Hub) Submit(ctx context.Context, c *Client, cmd Command) error {
	return h.enqueue(ctx, envelope{op: opCommand, client: c, cmd: cmd})
}

// UnregisterClient closes the session of c, removing its player and notifying the others.
// It is safe to call more than once.
func (h *Hub) UnregisterClient(c *Client) error {
	return h.enqueue(context.Background(), envelope{op: opUnregister, client: c})
}

// Players returns the current roster state in join order.
func (h *Hub) Players(ctx context.Context) ([]proto.PlayerState, error) {
	reply := make(chan []proto.PlayerState, 1)
	if err := h.enqueue(ctx, envelope{op: opPlayers, reply: reply}); err != nil {
		return nil, err
	}
	select {
	case players := <-reply:
		return players, nil
	case <-h.stopped:
		return nil, ErrHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) enqueue(ctx context.Context, env envelope) error {
	select {
	case <-h.stopped:
		return ErrHubStopped
	default:
	}
	select {
	case h.inbox <- env:
		return nil
	case <-h.stopped:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) handle(env envelope) {
	switch env.op {
	case opRegister:
		h.register(env.client)
	case opUnregister:
		h.disconnect(env.client)
	case opPlayers:
		players := make([]proto.PlayerState, 0, h.roster.Len())
		for p := range h.roster.All() {
			players = append(players, p.State())
		}
		env.reply <- players
	case opCommand:
		s, ok := h.sessions[env.client]
		if !ok {
			h.log.Debug().Str("client_id", env.client.ID).Msg("command from unregistered client")
			return
		}
		if env.client.kicked() {
			return
		}
		if err := h.handleCommand(s, env.cmd); err != nil {
			h.log.Warn().
				Err(err).
				Str("client_id", env.client.ID).
				Str("code", ErrorCode(err)).
				Stringer("type", env.cmd.Kind).
				Msg("closing client after failed command")
			env.client.Kick(err)
		}
	}
}

func (h *Hub) register(c *Client) {
	if _, exists := h.sessions[c]; exists {
		return
	}
	h.sessions[c] = &Session{Client: c, State: StateAwaitingConnect}
	h.log.Debug().Str("client_id", c.ID).Msg("client registered")
	_ = h.sendTo(c, proto.TypeServerInfo, proto.ServerInfo{Version: h.version})
}
