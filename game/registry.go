package game

import (
	"context"
	"sync"

	"github.com/pongarena/pongarena-backend/config"
	"github.com/pongarena/pongarena-backend/fanout"
	"github.com/pongarena/pongarena-backend/repository"
)

// Registry starts workers and guarantees at most one per room.
type Registry struct {
	cfg   config.Game
	rooms repository.RoomStore
	bus   fanout.Bus
	opts  []Option

	mu     sync.Mutex
	active map[string]context.CancelFunc
}

func NewRegistry(cfg config.Game, rooms repository.RoomStore, bus fanout.Bus, opts ...Option) *Registry {
	return &Registry{
		cfg:    cfg,
		rooms:  rooms,
		bus:    bus,
		opts:   opts,
		active: make(map[string]context.CancelFunc),
	}
}

// Start launches the simulation worker for a room. Starting an already
// running room is a no-op.
func (r *Registry) Start(roomID, user1, user2 string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[roomID]; ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.active[roomID] = cancel

	worker := NewWorker(roomID, user1, user2, r.cfg, r.rooms, r.bus, r.opts...)
	go func() {
		defer cancel()
		worker.Run(ctx)

		r.mu.Lock()
		delete(r.active, roomID)
		r.mu.Unlock()
	}()
}

// Count returns the number of rooms with a live worker.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}
