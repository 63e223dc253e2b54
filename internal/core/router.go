package core

import (
	"fmt"
	"iter"

	"github.com/vovakirdan/playrelay/internal/proto"
)

type handlerFunc func(h *Hub, sender *Player, cmd Command) error

var routes = map[CommandKind]handlerFunc{
	CommandChat:        (*Hub).handleChat,
	CommandSetName:     (*Hub).handleSetName,
	CommandSetHealth:   (*Hub).handleSetHealth,
	CommandSetStrength: (*Hub).handleSetStrength,
	CommandSetAttack:   (*Hub).handleSetAttack,
	CommandSetMoney:    (*Hub).handleSetMoney,
	CommandGiveMoney:   (*Hub).handleGiveMoney,
	CommandMove:        (*Hub).handleMove,
	CommandShoot:       (*Hub).handleShoot,
}

func (h *Hub) route(sender *Player, cmd Command) error {
	handler, ok := routes[cmd.Kind]
	if !ok {
		return fmt.Errorf("route %s: %w", cmd.Kind, ErrProtocolViolation)
	}
	return handler(h, sender, cmd)
}

// others yields every player but sender.
func (h *Hub) others(sender *Player) iter.Seq[*Player] {
	return Except(h.roster.All(), sender)
}

func (h *Hub) handleChat(sender *Player, cmd Command) error {
	h.broadcast(h.others(sender), proto.TypeChat, proto.ChatEvent{ID: sender.ID, Message: cmd.Text})
	return nil
}

func (h *Hub) handleSetName(sender *Player, cmd Command) error {
	sender.Name = cmd.Name
	h.broadcast(h.others(sender), proto.TypeName, proto.NameEvent{ID: sender.ID, Name: cmd.Name})
	return nil
}

func (h *Hub) handleSetHealth(sender *Player, cmd Command) error {
	sender.Health = cmd.Value
	h.broadcast(h.others(sender), proto.TypeHealth, proto.HealthEvent{ID: sender.ID, Health: cmd.Value})
	return nil
}

func (h *Hub) handleSetStrength(sender *Player, cmd Command) error {
	sender.Strength = cmd.Value
	h.broadcast(h.others(sender), proto.TypeStrength, proto.StrengthEvent{ID: sender.ID, Strength: cmd.Value})
	return nil
}

func (h *Hub) handleSetAttack(sender *Player, cmd Command) error {
	sender.Attack = cmd.Value
	h.broadcast(h.others(sender), proto.TypeAttack, proto.AttackEvent{ID: sender.ID, Attack: cmd.Value})
	return nil
}

func (h *Hub) handleSetMoney(sender *Player, cmd Command) error {
	sender.Money = cmd.Value
	h.broadcast(h.others(sender), proto.TypeMoney, proto.MoneyEvent{ID: sender.ID, Money: cmd.Value})
	return nil
}

// handleGiveMoney credits the target, not the sender. An unknown target mutates nothing.
func (h *Hub) handleGiveMoney(sender *Player, cmd Command) error {
	target, ok := h.roster.FindByID(cmd.TargetID)
	if !ok {
		return fmt.Errorf("give money from %d to %d: %w", sender.ID, cmd.TargetID, ErrUnknownRecipient)
	}
	target.Money += cmd.Value
	h.broadcast(h.others(sender), proto.TypeMoneyGive, proto.MoneyGiveEvent{PlayerID: target.ID, Money: cmd.Value})
	return nil
}

func (h *Hub) handleMove(sender *Player, cmd Command) error {
	sender.Position = cmd.Position
	sender.Rotation = cmd.Rotation

	if cmd.Flat {
		h.broadcast(h.others(sender), proto.TypeMove, proto.FlatMoveEvent{
			ID:        sender.ID,
			X:         cmd.Position.X,
			Y:         cmd.Position.Y,
			Z:         cmd.Position.Z,
			RotationX: cmd.Rotation.X,
			RotationY: cmd.Rotation.Y,
			RotationZ: cmd.Rotation.Z,
		})
		return nil
	}
	h.broadcast(h.others(sender), proto.TypeMove, proto.MoveEvent{
		ID:       sender.ID,
		Position: cmd.Position,
		Rotation: cmd.Rotation,
	})
	return nil
}

func (h *Hub) handleShoot(sender *Player, cmd Command) error {
	h.broadcast(h.others(sender), proto.TypeShoot, proto.ShootEvent{
		PlayerID:  sender.ID,
		CreatedAt: cmd.CreatedAt,
		Position:  cmd.Position,
		Rotation:  cmd.Rotation,
	})
	return nil
}
