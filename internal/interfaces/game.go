package interfaces

import "github.com/user/ecclesia-strategy/internal/game"

// Session defines the operations the transport layer drives on one
// play-through. Implemented by game.Session.
type Session interface {
	ID() string
	SelectChoice(choiceID string) error
	SetReflectionAnswer(index int) error
	Confirm() error
	Reset()
	Snapshot() game.Snapshot
}

var _ Session = (*game.Session)(nil)
