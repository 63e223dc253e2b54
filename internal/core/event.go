package core

import "github.com/vovakirdan/playrelay/internal/proto"

// Event is an outbound frame ready to be written to a client.
// Frame is shared between recipients of the same fan-out and must not be modified.
type Event struct {
	Type  string
	Frame []byte
}

func newEvent(typ string, data any) (Event, error) {
	frame, err := proto.Encode(typ, data)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: typ, Frame: frame}, nil
}
