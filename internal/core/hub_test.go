package core

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/vovakirdan/playrelay/internal/proto"
)

func TestHubJoinChatScenario(t *testing.T) {
	hub := startHub(t)

	alice := registerClient(t, hub, "a", 64)
	submit(t, hub, alice, Command{Kind: CommandConnect, Name: "Alice"})

	var aliceState proto.PlayerState
	mustEvent(t, alice, proto.TypeInit, &aliceState)
	if aliceState.ID != 1 || aliceState.Name != "Alice" {
		t.Fatalf("unexpected init for alice: %+v", aliceState)
	}
	var chat proto.ChatEvent
	mustEvent(t, alice, proto.TypeChat, &chat)
	if chat.ID != SystemSenderID || chat.Message != "Alice joined" {
		t.Fatalf("unexpected join line: %+v", chat)
	}

	bob := registerClient(t, hub, "b", 64)
	submit(t, hub, bob, Command{Kind: CommandConnect, Name: "Bob"})

	var bobState proto.PlayerState
	mustEvent(t, bob, proto.TypeInit, &bobState)
	if bobState.ID != 2 || bobState.Name != "Bob" {
		t.Fatalf("unexpected init for bob: %+v", bobState)
	}
	var known proto.PlayerState
	mustEvent(t, bob, proto.TypeNew, &known)
	if known != aliceState {
		t.Fatalf("bob caught up with %+v, want %+v", known, aliceState)
	}
	mustEvent(t, bob, proto.TypeChat, &chat)
	if chat.ID != SystemSenderID || chat.Message != "Bob joined" {
		t.Fatalf("unexpected join line for bob: %+v", chat)
	}

	var announced proto.PlayerState
	mustEvent(t, alice, proto.TypeNew, &announced)
	if announced != bobState {
		t.Fatalf("alice learned %+v, want %+v", announced, bobState)
	}
	mustEvent(t, alice, proto.TypeChat, &chat)
	if chat.Message != "Bob joined" {
		t.Fatalf("unexpected join line for alice: %+v", chat)
	}

	submit(t, hub, alice, Command{Kind: CommandChat, Text: "hi"})
	mustEvent(t, bob, proto.TypeChat, &chat)
	if chat.ID != aliceState.ID || chat.Message != "hi" {
		t.Fatalf("unexpected chat: %+v", chat)
	}
	mustNoEvent(t, hub, alice)
}

func TestHubSpawnIsDeterministic(t *testing.T) {
	hub := startHub(t)

	_, state := joinPlayer(t, hub, "Alice")

	if state.Position != (proto.Vector3{X: 2, Y: PlayerHeight * 5, Z: 4}) {
		t.Fatalf("unexpected spawn position: %+v", state.Position)
	}
	if state.Rotation.X != 0 || state.Rotation.Z != 0 || state.Rotation.Y < 0 || state.Rotation.Y >= math.Pi {
		t.Fatalf("unexpected spawn rotation: %+v", state.Rotation)
	}
	if state.Health != StartHealth || state.Strength != StartStrength || state.Attack != StartAttack || state.Money != StartMoney {
		t.Fatalf("unexpected default stats: %+v", state)
	}
}

func TestHubIDsIncreaseAndAreNeverReused(t *testing.T) {
	hub := startHub(t)

	var last int64
	for _, name := range []string{"a", "b", "c"} {
		c, state := joinPlayer(t, hub, name)
		if state.ID <= last || state.ID == SystemSenderID {
			t.Fatalf("id %d not greater than %d", state.ID, last)
		}
		last = state.ID
		if name == "b" {
			if err := hub.UnregisterClient(c); err != nil {
				t.Fatalf("unregister: %v", err)
			}
		}
	}

	_, state := joinPlayer(t, hub, "d")
	if state.ID != 4 {
		t.Fatalf("expected id 4 after removal, got %d", state.ID)
	}
}

func TestHubCatchUpReflectsCurrentState(t *testing.T) {
	hub := startHub(t)

	alice, aliceState := joinPlayer(t, hub, "Alice")
	moved := proto.Vector3{X: 10, Y: 1, Z: -3}
	turned := proto.Vector3{Y: 1.25}
	submit(t, hub, alice, Command{Kind: CommandMove, Position: moved, Rotation: turned})
	submit(t, hub, alice, Command{Kind: CommandSetHealth, Value: 40})
	submit(t, hub, alice, Command{Kind: CommandSetName, Name: "Alicia"})

	bob := registerClient(t, hub, "b", 64)
	submit(t, hub, bob, Command{Kind: CommandConnect, Name: "Bob"})
	mustEvent(t, bob, proto.TypeInit, nil)

	var known proto.PlayerState
	mustEvent(t, bob, proto.TypeNew, &known)
	want := aliceState
	want.Position = moved
	want.Rotation = turned
	want.Health = 40
	want.Name = "Alicia"
	if known != want {
		t.Fatalf("catch-up state %+v, want %+v", known, want)
	}
}

func TestHubFieldUpdatesReachOthersOnly(t *testing.T) {
	tests := []struct {
		name  string
		cmd   Command
		typ   string
		field string
		want  any
	}{
		{"name", Command{Kind: CommandSetName, Name: "Zed"}, proto.TypeName, "name", "Zed"},
		{"health", Command{Kind: CommandSetHealth, Value: -20}, proto.TypeHealth, "health", float64(-20)},
		{"strength", Command{Kind: CommandSetStrength, Value: 9000}, proto.TypeStrength, "strength", float64(9000)},
		{"attack", Command{Kind: CommandSetAttack, Value: 0}, proto.TypeAttack, "attack", float64(0)},
		{"money", Command{Kind: CommandSetMoney, Value: 77}, proto.TypeMoney, "money", float64(77)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := startHub(t)

			sender, senderState := joinPlayer(t, hub, "sender")
			first, _ := joinPlayer(t, hub, "first")
			second, _ := joinPlayer(t, hub, "second")
			drain(t, hub, sender, first, second)

			submit(t, hub, sender, tt.cmd)

			for _, c := range []*Client{first, second} {
				var data map[string]any
				mustEvent(t, c, tt.typ, &data)
				if data["id"] != float64(senderState.ID) || data[tt.field] != tt.want {
					t.Fatalf("%s got %+v", c.ID, data)
				}
				mustNoEvent(t, hub, c)
			}
			mustNoEvent(t, hub, sender)
		})
	}
}

func TestHubFieldUpdateIsStoredUnvalidated(t *testing.T) {
	hub := startHub(t)

	alice, _ := joinPlayer(t, hub, "Alice")
	submit(t, hub, alice, Command{Kind: CommandSetHealth, Value: -500})
	submit(t, hub, alice, Command{Kind: CommandSetMoney, Value: math.MaxInt64})

	players := settle(t, hub)
	if len(players) != 1 || players[0].Health != -500 || players[0].Money != math.MaxInt64 {
		t.Fatalf("unexpected stored state: %+v", players)
	}
}

func TestHubMoneyGiveCreditsTarget(t *testing.T) {
	for _, amount := range []int64{25, -40} {
		hub := startHub(t)

		alice, aliceState := joinPlayer(t, hub, "Alice")
		bob, bobState := joinPlayer(t, hub, "Bob")
		carol, _ := joinPlayer(t, hub, "Carol")
		drain(t, hub, alice, bob, carol)

		submit(t, hub, alice, Command{Kind: CommandGiveMoney, TargetID: bobState.ID, Value: amount})

		for _, c := range []*Client{bob, carol} {
			var give proto.MoneyGiveEvent
			mustEvent(t, c, proto.TypeMoneyGive, &give)
			if give.PlayerID != bobState.ID || give.Money != amount {
				t.Fatalf("%s got %+v", c.ID, give)
			}
		}
		mustNoEvent(t, hub, alice)

		for _, p := range settle(t, hub) {
			switch p.ID {
			case bobState.ID:
				if p.Money != StartMoney+amount {
					t.Fatalf("bob money %d, want %d", p.Money, StartMoney+amount)
				}
			case aliceState.ID:
				if p.Money != StartMoney {
					t.Fatalf("sender money changed to %d", p.Money)
				}
			}
		}
	}
}

func TestHubMoneyGiveUnknownRecipientClosesSender(t *testing.T) {
	hub := startHub(t)

	alice, aliceState := joinPlayer(t, hub, "Alice")
	bob, _ := joinPlayer(t, hub, "Bob")
	drain(t, hub, alice, bob)

	submit(t, hub, alice, Command{Kind: CommandGiveMoney, TargetID: 99, Value: 10})

	reason := mustKicked(t, alice)
	if !errors.Is(reason, ErrUnknownRecipient) || ErrorCode(reason) != ErrCodeUnknownRecipient {
		t.Fatalf("expected unknown recipient, got %v", reason)
	}
	mustNoEvent(t, hub, bob)

	if err := hub.UnregisterClient(alice); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	var closed proto.PlayerClose
	mustEvent(t, bob, proto.TypeClose, &closed)
	if closed.ID != aliceState.ID {
		t.Fatalf("unexpected close: %+v", closed)
	}
	var chat proto.ChatEvent
	mustEvent(t, bob, proto.TypeChat, &chat)
	if chat.ID != SystemSenderID || chat.Message != "Alice died" {
		t.Fatalf("unexpected leave line: %+v", chat)
	}
}

func TestHubIgnoresCommandsBeforeConnect(t *testing.T) {
	hub := startHub(t)

	alice, _ := joinPlayer(t, hub, "Alice")
	drain(t, hub, alice)

	lurker := registerClient(t, hub, "lurker", 64)
	submit(t, hub, lurker, Command{Kind: CommandChat, Text: "psst"})
	submit(t, hub, lurker, Command{Kind: CommandSetMoney, Value: 1})

	mustNoEvent(t, hub, alice)
	mustNoEvent(t, hub, lurker)
	if players := settle(t, hub); len(players) != 1 {
		t.Fatalf("expected only alice in roster, got %+v", players)
	}

	submit(t, hub, lurker, Command{Kind: CommandConnect, Name: "Late"})
	mustEvent(t, lurker, proto.TypeInit, nil)
}

func TestHubSecondConnectClosesChannel(t *testing.T) {
	hub := startHub(t)

	alice, _ := joinPlayer(t, hub, "Alice")
	submit(t, hub, alice, Command{Kind: CommandConnect, Name: "Again"})

	reason := mustKicked(t, alice)
	if !errors.Is(reason, ErrAlreadyConnected) || !errors.Is(reason, ErrProtocolViolation) {
		t.Fatalf("expected already connected protocol violation, got %v", reason)
	}
	if players := settle(t, hub); len(players) != 1 || players[0].Name != "Alice" {
		t.Fatalf("roster changed: %+v", players)
	}
}

func TestHubDropsCommandsAfterKick(t *testing.T) {
	hub := startHub(t)

	alice, _ := joinPlayer(t, hub, "Alice")
	bob, _ := joinPlayer(t, hub, "Bob")
	drain(t, hub, alice, bob)

	submit(t, hub, alice, Command{Kind: CommandConnect, Name: "Again"})
	submit(t, hub, alice, Command{Kind: CommandChat, Text: "still here"})
	mustKicked(t, alice)
	mustNoEvent(t, hub, bob)
}

func TestHubDoubleCloseLeavesOnce(t *testing.T) {
	hub := startHub(t)

	alice, aliceState := joinPlayer(t, hub, "Alice")
	bob, _ := joinPlayer(t, hub, "Bob")
	carol, _ := joinPlayer(t, hub, "Carol")
	drain(t, hub, alice, bob, carol)

	for i := 0; i < 2; i++ {
		if err := hub.UnregisterClient(alice); err != nil {
			t.Fatalf("unregister: %v", err)
		}
	}

	for _, c := range []*Client{bob, carol} {
		var closed proto.PlayerClose
		mustEvent(t, c, proto.TypeClose, &closed)
		if closed.ID != aliceState.ID {
			t.Fatalf("unexpected close: %+v", closed)
		}
		var chat proto.ChatEvent
		mustEvent(t, c, proto.TypeChat, &chat)
		if chat.Message != "Alice died" {
			t.Fatalf("unexpected leave line: %+v", chat)
		}
		mustNoEvent(t, hub, c)
	}
	if players := settle(t, hub); len(players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(players))
	}
}

func TestHubSoloConnectDisconnect(t *testing.T) {
	hub := startHub(t)

	alice, _ := joinPlayer(t, hub, "Alice")
	if err := hub.UnregisterClient(alice); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if players := settle(t, hub); len(players) != 0 {
		t.Fatalf("expected empty roster, got %+v", players)
	}
	mustNoEvent(t, hub, alice)
}

func TestHubUnregisterBeforeConnectIsSilent(t *testing.T) {
	hub := startHub(t)

	alice, _ := joinPlayer(t, hub, "Alice")
	drain(t, hub, alice)

	ghost := registerClient(t, hub, "ghost", 8)
	if err := hub.UnregisterClient(ghost); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	mustNoEvent(t, hub, alice)
}

func TestHubMoveEchoKeepsLayout(t *testing.T) {
	hub := startHub(t)

	alice, aliceState := joinPlayer(t, hub, "Alice")
	bob, _ := joinPlayer(t, hub, "Bob")
	drain(t, hub, alice, bob)

	pos := proto.Vector3{X: 1, Y: 2, Z: 3}
	rot := proto.Vector3{X: 0.5, Y: 1, Z: 0}

	submit(t, hub, alice, Command{Kind: CommandMove, Position: pos, Rotation: rot})
	var move proto.MoveEvent
	mustEvent(t, bob, proto.TypeMove, &move)
	if move.ID != aliceState.ID || move.Position != pos || move.Rotation != rot {
		t.Fatalf("unexpected nested move: %+v", move)
	}

	submit(t, hub, alice, Command{Kind: CommandMove, Position: pos, Rotation: rot, Flat: true})
	var flat proto.FlatMoveEvent
	mustEvent(t, bob, proto.TypeMove, &flat)
	want := proto.FlatMoveEvent{ID: aliceState.ID, X: 1, Y: 2, Z: 3, RotationX: 0.5, RotationY: 1}
	if flat != want {
		t.Fatalf("unexpected flat move: %+v", flat)
	}
	mustNoEvent(t, hub, alice)
}

func TestHubShootForwardsCreatedAt(t *testing.T) {
	hub := startHub(t)

	alice, aliceState := joinPlayer(t, hub, "Alice")
	bob, _ := joinPlayer(t, hub, "Bob")
	drain(t, hub, alice, bob)

	submit(t, hub, alice, Command{
		Kind:      CommandShoot,
		CreatedAt: json.RawMessage(`"2024-01-01T00:00:00Z"`),
		Position:  proto.Vector3{X: 1},
		Rotation:  proto.Vector3{Y: 2},
	})

	var shot struct {
		PlayerID  int64           `json:"playerId"`
		CreatedAt json.RawMessage `json:"createdAt"`
	}
	mustEvent(t, bob, proto.TypeShoot, &shot)
	if shot.PlayerID != aliceState.ID || string(shot.CreatedAt) != `"2024-01-01T00:00:00Z"` {
		t.Fatalf("unexpected shot: %+v", shot)
	}
	mustNoEvent(t, hub, alice)
}

func TestHubSlowClientDoesNotBlockOthers(t *testing.T) {
	hub := startHub(t)

	alice, aliceState := joinPlayer(t, hub, "Alice")
	bob, _ := joinPlayer(t, hub, "Bob")

	// server.info, init, two catch-ups and the join line fill the buffer exactly.
	slow := NewClient("slow", 5)
	if err := hub.RegisterClient(testContext(t), slow); err != nil {
		t.Fatalf("register: %v", err)
	}
	submit(t, hub, slow, Command{Kind: CommandConnect, Name: "Slow"})
	drain(t, hub, alice, bob)

	submit(t, hub, alice, Command{Kind: CommandChat, Text: "hello"})

	var chat proto.ChatEvent
	mustEvent(t, bob, proto.TypeChat, &chat)
	if chat.ID != aliceState.ID || chat.Message != "hello" {
		t.Fatalf("unexpected chat: %+v", chat)
	}
	reason := mustKicked(t, slow)
	if !errors.Is(reason, ErrChannelFailure) {
		t.Fatalf("expected channel failure, got %v", reason)
	}
	if len(slow.Events) != cap(slow.Events) {
		t.Fatalf("slow client buffer should be untouched, has %d", len(slow.Events))
	}
}

func TestHubStoppedRejectsSubmissions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(Options{})
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	c := NewClient("late", 4)
	if err := hub.RegisterClient(testContext(t), c); !errors.Is(err, ErrHubStopped) {
		t.Fatalf("expected ErrHubStopped, got %v", err)
	}
	if _, err := hub.Players(testContext(t)); !errors.Is(err, ErrHubStopped) {
		t.Fatalf("expected ErrHubStopped, got %v", err)
	}
}

// The tests below drive the loop body directly on a hub that is not running, so they can
// inspect and seed its state without racing Run.

func TestHubJoinReportsUndeliverableInit(t *testing.T) {
	hub := NewHub(Options{Version: "test-version", Seed: 1})

	c := NewClient("full", 1)
	hub.handle(envelope{op: opRegister, client: c}) // server.info fills the buffer
	s := hub.sessions[c]

	err := hub.handleCommand(s, Command{Kind: CommandConnect, Name: "Full"})
	if !errors.Is(err, ErrChannelFailure) {
		t.Fatalf("expected channel failure, got %v", err)
	}
	if ErrorCode(err) != ErrCodeChannelFailure {
		t.Fatalf("unexpected code %q", ErrorCode(err))
	}
	if s.State != StateAwaitingConnect || hub.roster.Len() != 0 {
		t.Fatalf("failed join left state behind: %s, %d players", s.State, hub.roster.Len())
	}
	if !c.kicked() {
		t.Fatal("expected client to be kicked")
	}
}

func TestHubRefusedJoinIsNeverAnnounced(t *testing.T) {
	hub := NewHub(Options{Version: "test-version", Seed: 1})

	alice := NewClient("alice", 16)
	hub.handle(envelope{op: opRegister, client: alice})
	hub.handle(envelope{op: opCommand, client: alice, cmd: Command{Kind: CommandConnect, Name: "Alice"}})
	for len(alice.Events) > 0 {
		<-alice.Events
	}

	// Occupy the id the next join will draw.
	if err := hub.roster.Add(&Player{ID: 2, Client: NewClient("ghost", 1)}); err != nil {
		t.Fatalf("seed roster: %v", err)
	}

	bob := NewClient("bob", 16)
	hub.handle(envelope{op: opRegister, client: bob})
	<-bob.Events // server.info
	hub.handle(envelope{op: opCommand, client: bob, cmd: Command{Kind: CommandConnect, Name: "Bob"}})

	if reason := bob.KickReason(); !errors.Is(reason, ErrDuplicateIdentity) {
		t.Fatalf("expected bob kicked for duplicate identity, got %v", reason)
	}
	for _, c := range []*Client{alice, bob} {
		select {
		case ev := <-c.Events:
			t.Fatalf("%s: unexpected event %s: %s", c.ID, ev.Type, ev.Frame)
		default:
		}
	}
}
