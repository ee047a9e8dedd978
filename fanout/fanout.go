// Package fanout is the per-room message bus connecting the client
// session handlers and the simulation worker. Both sides publish to the
// same room topic; delivery is per-publisher FIFO and stays inside the
// room.
package fanout

import (
	"sync"

	"github.com/pongarena/pongarena-backend/pong"
)

// Kind tags an Event on the room topic.
type Kind int

const (
	// KindCommand is a client paddle intent, consumed by the worker.
	KindCommand Kind = iota
	// KindReady announces a round start after Delay seconds.
	KindReady
	// KindPaddle is the authoritative echo of an applied paddle move.
	KindPaddle
	// KindBall is the ball state after a collision.
	KindBall
	// KindRoundEnd reports a settled round and the running score.
	KindRoundEnd
	// KindGameEnd reports the finished match; Reason is SCORE or ABANDON.
	KindGameEnd
)

// Event is the message exchanged on a room topic. From is the
// originating username, empty for worker broadcasts. Movement, Position
// and Velocity are always in the server's unmirrored coordinate space.
type Event struct {
	Kind     Kind
	From     string
	Movement pong.Movement
	Position pong.Vector
	Velocity pong.Vector
	Delay    float64
	Winner   string
	Score    [2]int
	Reason   string
}

// Bus delivers events to every current subscriber of a room topic.
type Bus interface {
	Publish(roomID string, event Event)
	Subscribe(roomID string) *Subscription
}

// Subscription is one subscriber's feed of a room topic. Close releases
// the subscription; C is closed afterwards.
type Subscription struct {
	C <-chan Event

	once   sync.Once
	cancel func()
}

// Close unregisters the subscription from its topic.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

const subscriberBuffer = 256

// MemoryBus is the in-process Bus used when all sessions of a room live
// in one process. A slow subscriber loses events rather than blocking
// the publisher.
type MemoryBus struct {
	mu     sync.Mutex
	topics map[string]map[chan Event]bool
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{topics: make(map[string]map[chan Event]bool)}
}

func (b *MemoryBus) Publish(roomID string, event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.topics[roomID] {
		select {
		case ch <- event:
		default:
		}
	}
}

func (b *MemoryBus) Subscribe(roomID string) *Subscription {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	subs, ok := b.topics[roomID]
	if !ok {
		subs = make(map[chan Event]bool)
		b.topics[roomID] = subs
	}
	subs[ch] = true
	b.mu.Unlock()

	return &Subscription{
		C: ch,
		cancel: func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.topics[roomID]; ok {
				if subs[ch] {
					delete(subs, ch)
					close(ch)
				}
				if len(subs) == 0 {
					delete(b.topics, roomID)
				}
			}
		},
	}
}
