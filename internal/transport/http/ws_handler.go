package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/playrelay/internal/config"
	"github.com/vovakirdan/playrelay/internal/core"
	"github.com/vovakirdan/playrelay/internal/proto"
)

var errKicked = errors.New("client closed by relay")

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub          *core.Hub
	log          *zerolog.Logger
	sendBuffer   int
	readLimit    int64
	writeTimeout time.Duration
	rateLimit    int
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{
		hub:          hub,
		log:          logger,
		sendBuffer:   cfg.SendBuffer,
		readLimit:    cfg.ReadLimit,
		writeTimeout: cfg.WriteTimeout,
		rateLimit:    cfg.RateLimit,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()

	if h.readLimit > 0 {
		conn.SetReadLimit(h.readLimit)
	}

	client := core.NewClient(uuid.NewString(), h.sendBuffer)
	logger := h.log.With().Str("client_id", client.ID).Logger()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := h.hub.RegisterClient(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("register client")
		conn.Close(websocket.StatusTryAgainLater, "relay unavailable")
		return
	}
	defer func() {
		if err := h.hub.UnregisterClient(client); err != nil {
			logger.Debug().Err(err).Msg("unregister client")
		}
	}()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, &logger)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client, &logger)
	}()

	err = <-errCh
	status, reason := closeStatus(err, client)
	if status != websocket.StatusNormalClosure {
		logger.Warn().Err(err).Int("status", int(status)).Str("reason", reason).Msg("ws connection closed with error")
	}
	// Close unblocks the read loop with the peer's close frame; cancel stops the write loop.
	conn.Close(status, reason)
	cancel()
	<-errCh
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, logger *zerolog.Logger) error {
	limiter := newRateLimiter(h.rateLimit)
	for {
		_, frame, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		if !limiter.allow() {
			logger.Warn().Int("limit", h.rateLimit).Msg("rate limit exceeded, dropping message")
			continue
		}

		msg, err := proto.Decode(frame)
		if err != nil {
			logger.Warn().Err(err).Str("code", core.ErrCodeMalformedMessage).Msg("failed to decode inbound")
			return err
		}

		cmd, ok := commandFromMessage(msg)
		if !ok {
			logger.Debug().Str("type", msg.MessageType()).Msg("ignoring unknown message type")
			continue
		}
		if err := h.hub.Submit(ctx, client, cmd); err != nil {
			return err
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, logger *zerolog.Logger) error {
	for {
		select {
		case event := <-client.Events:
			if err := h.write(ctx, conn, event); err != nil {
				logger.Error().Err(err).Str("type", event.Type).Msg("write ws event")
				return err
			}
		case <-client.Done():
			h.flush(ctx, conn, client, logger)
			return errKicked
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// flush writes whatever was queued before the client was kicked.
func (h *WSHandler) flush(ctx context.Context, conn *websocket.Conn, client *core.Client, logger *zerolog.Logger) {
	for {
		select {
		case event := <-client.Events:
			if err := h.write(ctx, conn, event); err != nil {
				logger.Debug().Err(err).Str("type", event.Type).Msg("flush ws event")
				return
			}
		default:
			return
		}
	}
}

func (h *WSHandler) write(ctx context.Context, conn *websocket.Conn, event core.Event) error {
	if h.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.writeTimeout)
		defer cancel()
	}
	return conn.Write(ctx, websocket.MessageText, event.Frame)
}

// closeStatus picks the close frame for the error that ended a connection.
func closeStatus(err error, client *core.Client) (websocket.StatusCode, string) {
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, io.EOF):
		return websocket.StatusNormalClosure, "closing"
	case errors.Is(err, proto.ErrMalformed):
		return websocket.StatusPolicyViolation, core.ErrCodeMalformedMessage
	case errors.Is(err, errKicked):
		reason := client.KickReason()
		if errors.Is(reason, core.ErrChannelFailure) {
			return websocket.StatusTryAgainLater, core.ErrCodeChannelFailure
		}
		if code := core.ErrorCode(reason); code != "" {
			return websocket.StatusPolicyViolation, code
		}
		return websocket.StatusPolicyViolation, core.ErrCodeProtocolViolation
	case errors.Is(err, core.ErrHubStopped):
		return websocket.StatusGoingAway, "relay shutting down"
	}

	if websocket.CloseStatus(err) == -1 {
		return websocket.StatusInternalError, "internal error"
	}
	// The peer sent a close frame; answer it normally whatever its code.
	return websocket.StatusNormalClosure, "closing"
}
