package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/pongarena/pongarena-backend/models"
)

// MemoryRoomStore keeps room records in process memory. Used by tests
// and single-process setups without postgres.
type MemoryRoomStore struct {
	mu    sync.Mutex
	rooms map[string]models.Room
}

func NewMemoryRoomStore() *MemoryRoomStore {
	return &MemoryRoomStore{rooms: make(map[string]models.Room)}
}

func (s *MemoryRoomStore) Room(ctx context.Context, id string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return &room, nil
}

func (s *MemoryRoomStore) FindOrCreate(ctx context.Context, user1, user2 string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range s.rooms {
		if room.User1 == user1 && room.User2 == user2 && room.Status == models.StatusCreated {
			return &room, nil
		}
	}
	room := models.Room{
		ID:     uuid.New().String(),
		User1:  user1,
		User2:  user2,
		Status: models.StatusCreated,
	}
	s.rooms[room.ID] = room
	return &room, nil
}

func (s *MemoryRoomStore) UpdateStatus(ctx context.Context, id string, status models.RoomStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return ErrRoomNotFound
	}
	room.Status = status
	s.rooms[id] = room
	return nil
}
