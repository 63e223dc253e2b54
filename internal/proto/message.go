package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const (
	TypeServerInfo = "server.info"

	TypeConnect   = "player.connect"
	TypeInit      = "player.init"
	TypeNew       = "player.new"
	TypeClose     = "player.close"
	TypeChat      = "player.chat"
	TypeName      = "player.name"
	TypeHealth    = "player.health"
	TypeStrength  = "player.strength"
	TypeAttack    = "player.attack"
	TypeMoney     = "player.money"
	TypeMoneyGive = "player.money.give"
	TypeMove      = "player.move"
	TypeShoot     = "player.shoot"
)

// Vector3 is a position or rotation triple.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ServerInfo is sent once per connection before anything else.
type ServerInfo struct {
	Version string `json:"version"`
}

// PlayerState is the full description of a participant used by init and new.
type PlayerState struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Health   int64   `json:"health"`
	Strength int64   `json:"strength"`
	Attack   int64   `json:"attack"`
	Money    int64   `json:"money"`
	Position Vector3 `json:"position"`
	Rotation Vector3 `json:"rotation"`
}

// PlayerClose notifies that a participant left.
type PlayerClose struct {
	ID int64 `json:"id"`
}

// ChatEvent carries a chat line. ID 0 marks a system message.
type ChatEvent struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// NameEvent echoes a name change.
type NameEvent struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// HealthEvent echoes a health change.
type HealthEvent struct {
	ID     int64 `json:"id"`
	Health int64 `json:"health"`
}

// StrengthEvent echoes a strength change.
type StrengthEvent struct {
	ID       int64 `json:"id"`
	Strength int64 `json:"strength"`
}

// AttackEvent echoes an attack change.
type AttackEvent struct {
	ID     int64 `json:"id"`
	Attack int64 `json:"attack"`
}

// MoneyEvent echoes a money change.
type MoneyEvent struct {
	ID    int64 `json:"id"`
	Money int64 `json:"money"`
}

// MoneyGiveEvent describes a transfer to PlayerID.
type MoneyGiveEvent struct {
	PlayerID int64 `json:"playerId"`
	Money    int64 `json:"money"`
}

// MoveEvent echoes a nested move.
type MoveEvent struct {
	ID       int64   `json:"id"`
	Position Vector3 `json:"position"`
	Rotation Vector3 `json:"rotation"`
}

// FlatMoveEvent echoes a move in the flattened layout.
type FlatMoveEvent struct {
	ID        int64   `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	RotationX float64 `json:"rotationX"`
	RotationY float64 `json:"rotationY"`
	RotationZ float64 `json:"rotationZ"`
}

// ShootEvent forwards a shot. CreatedAt is passed through untouched.
type ShootEvent struct {
	PlayerID  int64           `json:"playerId"`
	CreatedAt json.RawMessage `json:"createdAt"`
	Position  Vector3         `json:"position"`
	Rotation  Vector3         `json:"rotation"`
}

// Encode serializes an outbound frame.
func Encode(typ string, data any) ([]byte, error) {
	return json.Marshal(Outbound{Type: typ, Data: data})
}
