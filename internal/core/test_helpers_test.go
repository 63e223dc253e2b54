package core

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/vovakirdan/playrelay/internal/proto"
)

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func startHub(t *testing.T) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(Options{Version: "test-version", Seed: 1})
	go hub.Run(ctx)
	return hub
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// registerClient opens a session and consumes server.info.
func registerClient(t *testing.T, hub *Hub, id string, buffer int) *Client {
	t.Helper()

	c := NewClient(id, buffer)
	if err := hub.RegisterClient(testContext(t), c); err != nil {
		t.Fatalf("register %s: %v", id, err)
	}
	var info proto.ServerInfo
	mustEvent(t, c, proto.TypeServerInfo, &info)
	if info.Version != "test-version" {
		t.Fatalf("unexpected server info: %+v", info)
	}
	return c
}

// joinPlayer registers a client, connects it and drains everything up to its own join announcement.
func joinPlayer(t *testing.T, hub *Hub, name string) (*Client, proto.PlayerState) {
	t.Helper()

	c := registerClient(t, hub, "client-"+name, 64)
	submit(t, hub, c, Command{Kind: CommandConnect, Name: name})

	var self proto.PlayerState
	mustEvent(t, c, proto.TypeInit, &self)
	for {
		f := nextFrame(t, c)
		if f.Type != proto.TypeChat {
			continue
		}
		var chat proto.ChatEvent
		decode(t, f, &chat)
		if chat.ID == SystemSenderID && chat.Message == name+" joined" {
			return c, self
		}
	}
}

func submit(t *testing.T, hub *Hub, c *Client, cmd Command) {
	t.Helper()

	if err := hub.Submit(testContext(t), c, cmd); err != nil {
		t.Fatalf("submit %s: %v", cmd.Kind, err)
	}
}

// settle returns once every previously submitted command has been processed.
func settle(t *testing.T, hub *Hub) []proto.PlayerState {
	t.Helper()

	players, err := hub.Players(testContext(t))
	if err != nil {
		t.Fatalf("players: %v", err)
	}
	return players
}

func nextFrame(t *testing.T, c *Client) frame {
	t.Helper()

	select {
	case ev := <-c.Events:
		var f frame
		if err := json.Unmarshal(ev.Frame, &f); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		if f.Type != ev.Type {
			t.Fatalf("event type %q does not match frame type %q", ev.Type, f.Type)
		}
		return f
	case <-time.After(2 * time.Second):
		t.Fatalf("%s: no event received", c.ID)
		return frame{}
	}
}

func mustEvent(t *testing.T, c *Client, typ string, dst any) {
	t.Helper()

	f := nextFrame(t, c)
	if f.Type != typ {
		t.Fatalf("%s: expected %s, got %s: %s", c.ID, typ, f.Type, f.Data)
	}
	if dst != nil {
		decode(t, f, dst)
	}
}

func decode(t *testing.T, f frame, dst any) {
	t.Helper()

	if err := json.Unmarshal(f.Data, dst); err != nil {
		t.Fatalf("unmarshal %s data: %v", f.Type, err)
	}
}

// mustNoEvent fails if c has anything queued once the hub has settled.
func mustNoEvent(t *testing.T, hub *Hub, c *Client) {
	t.Helper()

	settle(t, hub)
	select {
	case ev := <-c.Events:
		t.Fatalf("%s: unexpected event %s: %s", c.ID, ev.Type, ev.Frame)
	default:
	}
}

func drain(t *testing.T, hub *Hub, clients ...*Client) {
	t.Helper()

	settle(t, hub)
	for _, c := range clients {
		for {
			select {
			case <-c.Events:
				continue
			default:
			}
			break
		}
	}
}

func mustKicked(t *testing.T, c *Client) error {
	t.Helper()

	select {
	case <-c.Done():
		return c.KickReason()
	case <-time.After(2 * time.Second):
		t.Fatalf("%s: expected client to be kicked", c.ID)
		return nil
	}
}
