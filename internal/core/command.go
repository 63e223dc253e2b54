package core

import (
	"encoding/json"

	"github.com/vovakirdan/playrelay/internal/proto"
)

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandConnect binds the channel to a new player.
	CommandConnect CommandKind = iota
	// CommandChat relays a chat line to other players.
	CommandChat
	// CommandSetName replaces the sender's name.
	CommandSetName
	// CommandSetHealth replaces the sender's health.
	CommandSetHealth
	// CommandSetStrength replaces the sender's strength.
	CommandSetStrength
	// CommandSetAttack replaces the sender's attack.
	CommandSetAttack
	// CommandSetMoney replaces the sender's money.
	CommandSetMoney
	// CommandGiveMoney adds money to another player.
	CommandGiveMoney
	// CommandMove stores and relays the sender's position and rotation.
	CommandMove
	// CommandShoot relays a shot.
	CommandShoot
)

var commandNames = map[CommandKind]string{
	CommandConnect:     proto.TypeConnect,
	CommandChat:        proto.TypeChat,
	CommandSetName:     proto.TypeName,
	CommandSetHealth:   proto.TypeHealth,
	CommandSetStrength: proto.TypeStrength,
	CommandSetAttack:   proto.TypeAttack,
	CommandSetMoney:    proto.TypeMoney,
	CommandGiveMoney:   proto.TypeMoneyGive,
	CommandMove:        proto.TypeMove,
	CommandShoot:       proto.TypeShoot,
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command represents an action requested by a client.
// Only the fields relevant to Kind are set.
type Command struct {
	Kind CommandKind

	Name     string
	Text     string
	Value    int64
	TargetID int64

	Position  proto.Vector3
	Rotation  proto.Vector3
	Flat      bool
	CreatedAt json.RawMessage
}
