package http

import (
	"github.com/vovakirdan/playrelay/internal/core"
	"github.com/vovakirdan/playrelay/internal/proto"
)

// commandFromMessage maps a decoded message to a hub command.
// It reports false for message types the relay does not handle.
func commandFromMessage(msg proto.Message) (core.Command, bool) {
	switch m := msg.(type) {
	case proto.Connect:
		return core.Command{Kind: core.CommandConnect, Name: m.Name}, true
	case proto.Chat:
		return core.Command{Kind: core.CommandChat, Text: m.Message}, true
	case proto.SetName:
		return core.Command{Kind: core.CommandSetName, Name: m.Name}, true
	case proto.SetHealth:
		return core.Command{Kind: core.CommandSetHealth, Value: m.Health}, true
	case proto.SetStrength:
		return core.Command{Kind: core.CommandSetStrength, Value: m.Strength}, true
	case proto.SetAttack:
		return core.Command{Kind: core.CommandSetAttack, Value: m.Attack}, true
	case proto.SetMoney:
		return core.Command{Kind: core.CommandSetMoney, Value: m.Money}, true
	case proto.MoneyGive:
		return core.Command{Kind: core.CommandGiveMoney, TargetID: m.PlayerID, Value: m.Money}, true
	case proto.Move:
		return core.Command{
			Kind:     core.CommandMove,
			Position: m.Position,
			Rotation: m.Rotation,
			Flat:     m.Flat,
		}, true
	case proto.Shoot:
		return core.Command{
			Kind:      core.CommandShoot,
			CreatedAt: m.CreatedAt,
			Position:  m.Position,
			Rotation:  m.Rotation,
		}, true
	default:
		return core.Command{}, false
	}
}
