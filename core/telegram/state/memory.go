package state

import (
	"maps"
	"sync"
	"time"
)

type memoryManager struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	locks    map[int64]*sync.Mutex
	now      func() time.Time
}

// NewMemoryManager returns a Manager backed by process memory.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]*Session),
		locks:    make(map[int64]*sync.Mutex),
		now:      time.Now,
	}
}

func (m *memoryManager) session(userID int64) *Session {
	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{State: StateIdle, TempData: make(map[string]any)}
		m.sessions[userID] = s
	}
	s.LastSeen = m.now()
	return s
}

// Get returns a copy of the user's session, idle when none exists.
func (m *memoryManager) Get(userID int64) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return Session{State: StateIdle, TempData: map[string]any{}}
	}
	out := *s
	out.TempData = maps.Clone(s.TempData)
	return out
}

func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).State = st
}

func (m *memoryManager) SetTemp(userID int64, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).TempData[key] = value
}

func (m *memoryManager) GetTemp(userID int64, key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	v, ok := s.TempData[key]
	return v, ok
}

func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return
	}
	s.State = StateIdle
	clear(s.TempData)
	s.LastSeen = m.now()
}

func (m *memoryManager) InProgress(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return ok && s.State != StateIdle
}

func (m *memoryManager) Lock(userID int64) func() {
	m.mu.Lock()
	l, ok := m.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[userID] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Forget drops the session. The user's event lock is kept so a holder
// is never split from later waiters.
func (m *memoryManager) Forget(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

func (m *memoryManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
