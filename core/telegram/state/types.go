// Package state keeps per-user conversation sessions in memory.
package state

import "time"

// State identifies a finite-state-machine step used in conversations.
type State string

// StateIdle indicates there is no active conversation with the user.
const StateIdle State = "idle"

// Session is a snapshot of one user's conversation.
type Session struct {
	State    State
	TempData map[string]any
	LastSeen time.Time
}

// Manager stores sessions keyed by Telegram user id.
//
// Lock serializes the events of one user: callers hold it for the whole
// read-decide-write cycle of an event. Sessions live until Forget; nothing
// is evicted automatically.
type Manager interface {
	Get(userID int64) Session
	SetState(userID int64, st State)
	SetTemp(userID int64, key string, value any)
	GetTemp(userID int64, key string) (any, bool)
	// Clear returns the user to StateIdle and drops temp data.
	Clear(userID int64)
	InProgress(userID int64) bool
	Lock(userID int64) (unlock func())
	Forget(userID int64)
	Len() int
}
