package core

import (
	"math"

	"github.com/vovakirdan/playrelay/internal/proto"
	"github.com/vovakirdan/playrelay/internal/random"
)

// SystemSenderID is the sender identity of relay-originated chat lines.
// It is never assigned to a player.
const SystemSenderID int64 = 0

// Spawn defaults.
const (
	PlayerHeight  = 2
	StartHealth   = 100
	StartStrength = 100
	StartAttack   = 5
	StartMoney    = 100
)

// Player is a roster entry. Stats are client-authoritative and stored as received.
type Player struct {
	ID     int64
	Client *Client

	Name     string
	Health   int64
	Strength int64
	Attack   int64
	Money    int64

	Position proto.Vector3
	Rotation proto.Vector3
}

// NewPlayer builds a player with default stats and a spawn drawn from rng.
func NewPlayer(id int64, client *Client, name string, rng *random.Source) *Player {
	x := rng.Range(-4, 4)
	z := rng.Range(-4, 4)
	return &Player{
		ID:       id,
		Client:   client,
		Name:     name,
		Health:   StartHealth,
		Strength: StartStrength,
		Attack:   StartAttack,
		Money:    StartMoney,
		Position: proto.Vector3{X: float64(x), Y: PlayerHeight * 5, Z: float64(z)},
		Rotation: proto.Vector3{Y: rng.Float64() * math.Pi},
	}
}

// State returns the wire description of the player.
func (p *Player) State() proto.PlayerState {
	return proto.PlayerState{
		ID:       p.ID,
		Name:     p.Name,
		Health:   p.Health,
		Strength: p.Strength,
		Attack:   p.Attack,
		Money:    p.Money,
		Position: p.Position,
		Rotation: p.Rotation,
	}
}
