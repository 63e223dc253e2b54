package core

import "sync"

// Client is one transport channel as seen by the core layer.
type Client struct {
	ID     string
	Events chan Event

	done       chan struct{}
	kickOnce   sync.Once
	kickReason error
}

// NewClient constructs a client whose event buffer holds up to buffer frames.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 1
	}
	return &Client{
		ID:     id,
		Events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
}

// Done is closed when the core wants the transport to drop the connection.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Kick asks the transport to close the channel. Only the first reason is kept.
func (c *Client) Kick(reason error) {
	c.kickOnce.Do(func() {
		c.kickReason = reason
		close(c.done)
	})
}

// KickReason returns the error passed to the first Kick, if any.
// It must only be read after Done is closed.
func (c *Client) KickReason() error {
	select {
	case <-c.done:
		return c.kickReason
	default:
		return nil
	}
}

func (c *Client) kicked() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// deliver enqueues ev without blocking.
func (c *Client) deliver(ev Event) error {
	if c.kicked() {
		return ErrChannelFailure
	}
	select {
	case c.Events <- ev:
		return nil
	default:
		return ErrChannelFailure
	}
}
