package memory

import (
	"sync"

	"github.com/viethoang1520/quiz-competition/internal/app"
)

// RoomStore is an in-memory implementation of app.RoomStore. Rooms live for
// the lifetime of the process; there is no explicit destroy.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*app.Session
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*app.Session)}
}

// PutIfAbsent claims the code under the write lock; a taken code is refused.
func (s *RoomStore) PutIfAbsent(code string, session *app.Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[code]; ok {
		return false
	}
	s.rooms[code] = session
	return true
}

func (s *RoomStore) Get(code string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.rooms[code]
	return session, ok
}

func (s *RoomStore) Has(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[code]
	return ok
}
