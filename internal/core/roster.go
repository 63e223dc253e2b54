package core

import (
	"fmt"
	"iter"
	"slices"
)

// Roster is the set of connected players in join order.
// It is owned by the hub loop and not safe for concurrent use.
type Roster struct {
	players  []*Player
	byID     map[int64]*Player
	byClient map[*Client]*Player
	lastID   int64
}

// NewRoster returns an empty roster whose first id is 1.
func NewRoster() *Roster {
	return &Roster{
		byID:     make(map[int64]*Player),
		byClient: make(map[*Client]*Player),
	}
}

// NextID returns a fresh id. Ids are never reused, even after removal.
func (r *Roster) NextID() int64 {
	r.lastID++
	return r.lastID
}

// CanAdd reports whether Add would accept p, without inserting it.
func (r *Roster) CanAdd(p *Player) error {
	if _, exists := r.byID[p.ID]; exists {
		return fmt.Errorf("add player %d: %w", p.ID, ErrDuplicateIdentity)
	}
	if _, exists := r.byClient[p.Client]; exists {
		return fmt.Errorf("add player %d: client already bound: %w", p.ID, ErrDuplicateIdentity)
	}
	return nil
}

// Add inserts p. It fails with ErrDuplicateIdentity if the id or the client is already present.
func (r *Roster) Add(p *Player) error {
	if err := r.CanAdd(p); err != nil {
		return err
	}
	r.players = append(r.players, p)
	r.byID[p.ID] = p
	r.byClient[p.Client] = p
	return nil
}

// RemoveByClient removes the player bound to c. It returns false if there was none.
func (r *Roster) RemoveByClient(c *Client) (*Player, bool) {
	p, ok := r.byClient[c]
	if !ok {
		return nil, false
	}
	delete(r.byClient, c)
	delete(r.byID, p.ID)
	if i := slices.Index(r.players, p); i >= 0 {
		r.players = slices.Delete(r.players, i, i+1)
	}
	return p, true
}

// FindByID looks a player up by id.
func (r *Roster) FindByID(id int64) (*Player, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// FindByClient looks a player up by its channel.
func (r *Roster) FindByClient(c *Client) (*Player, bool) {
	p, ok := r.byClient[c]
	return p, ok
}

// Len returns the number of players.
func (r *Roster) Len() int {
	return len(r.players)
}

// All returns a sequence over the players present at call time.
// The sequence can be ranged over repeatedly and is unaffected by later Add or Remove calls.
func (r *Roster) All() iter.Seq[*Player] {
	snapshot := slices.Clone(r.players)
	return slices.Values(snapshot)
}

// Except filters seq, dropping skip.
func Except(seq iter.Seq[*Player], skip *Player) iter.Seq[*Player] {
	return func(yield func(*Player) bool) {
		for p := range seq {
			if p == skip {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}
