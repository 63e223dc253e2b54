package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/playrelay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8081/ws", "WebSocket address")
	name := flag.String("name", "tester", "player name sent with player.connect")
	text := flag.String("text", "hello from smoke test", "chat message to send after joining")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", typ, err)
		}
		return nil
	}

	if err := send(proto.TypeConnect, map[string]string{"name": *name}); err != nil {
		return err
	}

	var self proto.PlayerState
	for {
		var msg proto.Inbound
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		fmt.Printf("Received: type=%s data=%s\n", msg.Type, msg.Data)

		switch msg.Type {
		case proto.TypeInit:
			if err := json.Unmarshal(msg.Data, &self); err != nil {
				return fmt.Errorf("unmarshal init: %w", err)
			}
			fmt.Printf("Joined as id=%d at (%.0f, %.0f, %.0f)\n", self.ID, self.Position.X, self.Position.Y, self.Position.Z)
		case proto.TypeChat:
			var chat proto.ChatEvent
			if err := json.Unmarshal(msg.Data, &chat); err != nil {
				return fmt.Errorf("unmarshal chat: %w", err)
			}
			if chat.ID == 0 && chat.Message == *name+" joined" {
				return send(proto.TypeChat, map[string]string{"message": *text})
			}
		default:
			// keep looping until our own join line arrives
		}
	}
}
