// Package game runs the authoritative simulation for active rooms. One
// worker goroutine per room owns the physics state; clients only ever
// see it through broadcast events.
package game

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/pongarena/pongarena-backend/config"
	"github.com/pongarena/pongarena-backend/fanout"
	"github.com/pongarena/pongarena-backend/models"
	"github.com/pongarena/pongarena-backend/pong"
	"github.com/pongarena/pongarena-backend/repository"
)

// Worker simulates one room: it runs rounds until a player reaches the
// win threshold or a forfeit stops the match, broadcasting state over
// the room's fanout topic.
type Worker struct {
	roomID string
	user1  string
	user2  string

	cfg   config.Game
	rooms repository.RoomStore
	bus   fanout.Bus

	rng   *rand.Rand
	now   func() time.Time
	sleep func(time.Duration)

	score [2]int
}

// Option configures optional worker parameters at construction time.
type Option func(*Worker)

// WithClock injects a deterministic time source and sleeper for tests.
func WithClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
		if sleep != nil {
			w.sleep = sleep
		}
	}
}

// WithRand injects the random source used for the serve direction.
func WithRand(rng *rand.Rand) Option {
	return func(w *Worker) {
		if rng != nil {
			w.rng = rng
		}
	}
}

func NewWorker(roomID, user1, user2 string, cfg config.Game, rooms repository.RoomStore, bus fanout.Bus, opts ...Option) *Worker {
	w := &Worker{
		roomID: roomID,
		user1:  user1,
		user2:  user2,
		cfg:    cfg,
		rooms:  rooms,
		bus:    bus,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) username(index int) string {
	if index == 2 {
		return w.user2
	}
	return w.user1
}

// Run plays rounds until the match is decided or aborted. It blocks;
// callers start it on its own goroutine.
func (w *Worker) Run(ctx context.Context) {
	sub := w.bus.Subscribe(w.roomID)
	defer sub.Close()

	log.Printf("Game worker started for room %s (%s vs %s)", w.roomID, w.user1, w.user2)

	for {
		winner := w.playRound(ctx, sub)
		if winner == 0 {
			log.Printf("Game worker for room %s stopped", w.roomID)
			return
		}

		w.score[winner-1]++
		w.bus.Publish(w.roomID, fanout.Event{
			Kind:   fanout.KindRoundEnd,
			Winner: w.username(winner),
			Score:  w.score,
		})

		if w.score[winner-1] >= w.cfg.WinThreshold {
			winnerName := w.username(winner)
			w.bus.Publish(w.roomID, fanout.Event{
				Kind:   fanout.KindGameEnd,
				Winner: winnerName,
				Score:  w.score,
				Reason: models.ReasonScore,
			})
			status := models.StatusPlayer1Won
			if winner == 2 {
				status = models.StatusPlayer2Won
			}
			if err := w.rooms.UpdateStatus(ctx, w.roomID, status); err != nil {
				log.Printf("Failed to save result for room %s: %v", w.roomID, err)
			}
			log.Printf("Match in room %s won by %s (%d-%d)", w.roomID, winnerName, w.score[0], w.score[1])
			return
		}
	}
}

// playRound runs one ball-in-play sequence and returns the round
// winner index, or 0 when the match was aborted.
func (w *Worker) playRound(ctx context.Context, sub *fanout.Subscription) int {
	game := pong.NewGame(pong.Settings{
		FieldWidth:  w.cfg.FieldWidth,
		FieldDepth:  w.cfg.FieldDepth,
		PaddleWidth: w.cfg.PaddleWidth,
		BallSpeed:   w.cfg.BallSpeed,
	}, w.rng)

	w.bus.Publish(w.roomID, fanout.Event{Kind: fanout.KindReady, Delay: w.cfg.PreRoundDelay})
	w.sleep(time.Duration(w.cfg.PreRoundDelay * float64(time.Second)))

	tickBudget := time.Duration(float64(time.Second) / w.cfg.TickRate)
	last := w.now()
	for {
		if ctx.Err() != nil {
			return 0
		}
		if !w.applyPending(sub, game) {
			return 0
		}

		started := w.now()
		// Scale the wall-clock delta so one full tick budget equals
		// one simulation time unit at the configured rate.
		delta := started.Sub(last).Seconds() * w.cfg.TickRate
		last = started

		collided := game.Frame(delta)
		if winner := game.Winner(); winner != 0 {
			return winner
		}
		if collided {
			w.bus.Publish(w.roomID, fanout.Event{
				Kind:     fanout.KindBall,
				Velocity: game.Ball.Velocity,
				Position: game.Ball.Position,
			})
		}

		if remaining := tickBudget - w.now().Sub(started); remaining > 0 {
			w.sleep(remaining)
		}
	}
}

// applyPending drains queued events without blocking. It reports false
// when the round must stop: a forfeit broadcast arrived or the
// subscription closed.
func (w *Worker) applyPending(sub *fanout.Subscription, game *pong.Game) bool {
	for {
		select {
		case evt, ok := <-sub.C:
			if !ok {
				return false
			}
			switch evt.Kind {
			case fanout.KindCommand:
				w.applyCommand(evt, game)
			case fanout.KindGameEnd:
				// A session handler announced a forfeit.
				return false
			}
		default:
			return true
		}
	}
}

// applyCommand updates the sender's paddle flags and broadcasts the
// applied movement with the authoritative position.
func (w *Worker) applyCommand(evt fanout.Event, game *pong.Game) {
	if !evt.Movement.Valid() {
		return
	}
	var index int
	switch evt.From {
	case w.user1:
		index = 1
	case w.user2:
		index = 2
	default:
		return
	}

	movement := evt.Movement
	if index == 2 {
		// Player2 sends commands in its mirrored view; the physics
		// frame always runs in server space.
		movement = movement.Mirror()
	}

	player := game.Player(index)
	player.Move(movement)

	w.bus.Publish(w.roomID, fanout.Event{
		Kind:     fanout.KindPaddle,
		From:     evt.From,
		Movement: movement,
		Position: player.Position,
	})
}
