package proto

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrMalformed is returned for frames that are not valid JSON or miss required fields.
var ErrMalformed = errors.New("malformed message")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Message is a decoded inbound message. The concrete type identifies the variant.
type Message interface {
	MessageType() string
}

// Connect asks to join the roster under Name.
type Connect struct{ Name string }

// Chat is a chat line from the sender.
type Chat struct{ Message string }

// SetName replaces the sender's display name.
type SetName struct{ Name string }

// SetHealth replaces the sender's health.
type SetHealth struct{ Health int64 }

// SetStrength replaces the sender's strength.
type SetStrength struct{ Strength int64 }

// SetAttack replaces the sender's attack.
type SetAttack struct{ Attack int64 }

// SetMoney replaces the sender's money.
type SetMoney struct{ Money int64 }

// MoneyGive adds Money to the participant identified by PlayerID.
type MoneyGive struct {
	PlayerID int64
	Money    int64
}

// Move updates the sender's position and rotation. Flat records which layout the client used.
type Move struct {
	Position Vector3
	Rotation Vector3
	Flat     bool
}

// Shoot is forwarded to other participants.
type Shoot struct {
	CreatedAt json.RawMessage
	Position  Vector3
	Rotation  Vector3
}

// Unknown is any message whose type tag the relay does not handle.
type Unknown struct{ Type string }

func (Connect) MessageType() string     { return TypeConnect }
func (Chat) MessageType() string        { return TypeChat }
func (SetName) MessageType() string     { return TypeName }
func (SetHealth) MessageType() string   { return TypeHealth }
func (SetStrength) MessageType() string { return TypeStrength }
func (SetAttack) MessageType() string   { return TypeAttack }
func (SetMoney) MessageType() string    { return TypeMoney }
func (MoneyGive) MessageType() string   { return TypeMoneyGive }
func (Move) MessageType() string        { return TypeMove }
func (Shoot) MessageType() string       { return TypeShoot }
func (u Unknown) MessageType() string   { return u.Type }

type vectorData struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
	Z *float64 `json:"z" validate:"required"`
}

func (v *vectorData) vector() Vector3 {
	return Vector3{X: *v.X, Y: *v.Y, Z: *v.Z}
}

type connectData struct {
	Name *string `json:"name" validate:"required"`
}

type chatData struct {
	Message *string `json:"message" validate:"required"`
}

type healthData struct {
	Health *int64 `json:"health" validate:"required"`
}

type strengthData struct {
	Strength *int64 `json:"strength" validate:"required"`
}

type attackData struct {
	Attack *int64 `json:"attack" validate:"required"`
}

type moneyData struct {
	Money *int64 `json:"money" validate:"required"`
}

type moneyGiveData struct {
	PlayerID *int64 `json:"playerId" validate:"required"`
	Money    *int64 `json:"money" validate:"required"`
}

type moveData struct {
	Position *vectorData `json:"position" validate:"required"`
	Rotation *vectorData `json:"rotation" validate:"required"`
}

type flatMoveData struct {
	X         *float64 `json:"x" validate:"required"`
	Y         *float64 `json:"y" validate:"required"`
	Z         *float64 `json:"z" validate:"required"`
	RotationX *float64 `json:"rotationX" validate:"required"`
	RotationY *float64 `json:"rotationY" validate:"required"`
	RotationZ *float64 `json:"rotationZ" validate:"required"`
}

type shootData struct {
	CreatedAt json.RawMessage `json:"createdAt" validate:"required"`
	Position  *vectorData     `json:"position" validate:"required"`
	Rotation  *vectorData     `json:"rotation" validate:"required"`
}

// Decode parses one text frame into a Message.
// Errors wrap ErrMalformed.
func Decode(frame []byte) (Message, error) {
	var inbound Inbound
	if err := json.Unmarshal(frame, &inbound); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch inbound.Type {
	case TypeConnect:
		var d connectData
		if err := bind(inbound, &d); err != nil {
			return nil, err
		}
		return Connect{Name: *d.Name}, nil
	case TypeChat:
		var d chatData
		if err := bind(inbound, &d); err != nil {
			return nil, err
		}
		return Chat{Message: *d.Message}, nil
	case TypeName:
		var d connectData
		if err := bind(inbound, &d); err != nil {
			return nil, err
		}
		return SetName{Name: *d.Name}, nil
	case TypeHealth:
		var d healthData
		if err := bind(inbound, &d); err != nil {
			return nil, err
		}
		return SetHealth{Health: *d.Health}, nil
	case TypeStrength:
		var d strengthData
		if err := bind(inbound, &d); err != nil {
			return nil, err
		}
		return SetStrength{Strength: *d.Strength}, nil
	case TypeAttack:
		var d attackData
		if err := bind(inbound, &d); err != nil {
			return nil, err
		}
		return SetAttack{Attack: *d.Attack}, nil
	case TypeMoney:
		var d moneyData
		if err := bind(inbound, &d); err != nil {
			return nil, err
		}
		return SetMoney{Money: *d.Money}, nil
	case TypeMoneyGive:
		var d moneyGiveData
		if err := bind(inbound, &d); err != nil {
			return nil, err
		}
		return MoneyGive{PlayerID: *d.PlayerID, Money: *d.Money}, nil
	case TypeMove:
		return decodeMove(inbound)
	case TypeShoot:
		var d shootData
		if err := bind(inbound, &d); err != nil {
			return nil, err
		}
		return Shoot{
			CreatedAt: d.CreatedAt,
			Position:  d.Position.vector(),
			Rotation:  d.Rotation.vector(),
		}, nil
	default:
		return Unknown{Type: inbound.Type}, nil
	}
}

func decodeMove(inbound Inbound) (Message, error) {
	var probe struct {
		Position json.RawMessage `json:"position"`
		Rotation json.RawMessage `json:"rotation"`
	}
	if err := bind(inbound, &probe); err != nil {
		return nil, err
	}

	if probe.Position != nil || probe.Rotation != nil {
		var d moveData
		if err := bind(inbound, &d); err != nil {
			return nil, err
		}
		return Move{Position: d.Position.vector(), Rotation: d.Rotation.vector()}, nil
	}

	var d flatMoveData
	if err := bind(inbound, &d); err != nil {
		return nil, err
	}
	return Move{
		Position: Vector3{X: *d.X, Y: *d.Y, Z: *d.Z},
		Rotation: Vector3{X: *d.RotationX, Y: *d.RotationY, Z: *d.RotationZ},
		Flat:     true,
	}, nil
}

func bind(inbound Inbound, dst any) error {
	if len(inbound.Data) == 0 {
		return fmt.Errorf("%w: %s: data is required", ErrMalformed, inbound.Type)
	}
	if err := json.Unmarshal(inbound.Data, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, inbound.Type, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, inbound.Type, err)
	}
	return nil
}
