package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/pongarena/pongarena-backend/fanout"
	"github.com/pongarena/pongarena-backend/models"
	"github.com/pongarena/pongarena-backend/rendezvous"
	"github.com/pongarena/pongarena-backend/repository"
	"github.com/pongarena/pongarena-backend/responses"
	"github.com/pongarena/pongarena-backend/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// session is one connected client's view of a room. It translates the
// wire protocol to fanout events and back, mirroring movement,
// positions and the score for player2.
type session struct {
	server   *Server
	ws       *websocket.Conn
	send     chan []byte
	room     *models.Room
	username string
	player2  bool

	mu        sync.Mutex
	active    bool
	ended     bool
	closed    bool
	lastScore [2]int
}

// WsHandler validates a connection against the room record, runs the
// join rendezvous and then pumps messages until the match ends or the
// client disconnects.
func (s *Server) WsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["roomID"]
	tokenStr := vars["token"]
	if roomID == "" || tokenStr == "" {
		utils.HandleError(w, responses.BadRequestError{Msg: "Missing room or token."})
		return
	}

	claims, err := ValidateToken(tokenStr, s.cfg.JWTSecret)
	if err != nil {
		log.Println(err)
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Error validating token."})
		return
	}
	username := claims.Username

	room, err := s.rooms.Room(r.Context(), roomID)
	if errors.Is(err, repository.ErrRoomNotFound) {
		utils.HandleError(w, responses.NotFoundError{Msg: "Room not found."})
		return
	}
	if err != nil {
		log.Println(err)
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to fetch room."})
		return
	}
	if !room.HasParticipant(username) {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "You are not a participant of this room."})
		return
	}
	if room.Status.Finished() {
		utils.HandleError(w, responses.BadRequestError{Msg: "This game is already finished."})
		return
	}
	// A running room means both participants are connected; a further
	// connect could only be a stale or duplicate client.
	if room.Status == models.StatusRunning {
		utils.HandleError(w, responses.BadRequestError{Msg: "This game is already in progress."})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	sub := s.bus.Subscribe(roomID)
	result, err := s.rendezvous.Join(r.Context(), roomID, username)
	if err != nil {
		if errors.Is(err, rendezvous.ErrDuplicateJoin) {
			log.Printf("User %s tried to join room %s twice", username, roomID)
		} else {
			log.Printf("Rendezvous failed for room %s: %v", roomID, err)
		}
		sub.Close()
		conn.Close()
		return
	}

	c := &session{
		server:   s,
		ws:       conn,
		send:     make(chan []byte, 256),
		room:     room,
		username: username,
		player2:  username == room.User2,
	}

	log.Printf("User %s connected to room %s", username, roomID)

	go c.writePump()
	go c.fanoutPump(sub)

	if result.Ready {
		// This side saw both players present, so it starts the one
		// worker for the room.
		s.workers.Start(roomID, room.User1, room.User2)
	} else {
		c.pushWait()
	}

	c.readPump(sub)
}

func (c *session) readPump(sub *fanout.Subscription) {
	defer c.teardown(sub)

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			break
		}
		c.processMessage(message)
	}
}

func (c *session) writePump() {
	defer c.ws.Close()

	for message := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
			break
		}
	}
}

// fanoutPump relays room broadcasts to the client. Closing the send
// channel afterwards lets writePump drain what is queued and then close
// the socket.
func (c *session) fanoutPump(sub *fanout.Subscription) {
	defer c.closeSend()

	for evt := range sub.C {
		if c.handleEvent(evt) {
			return
		}
	}
}

// processMessage handles one inbound frame. Undecodable payloads and
// unexpected tags are dropped without a reply.
func (c *session) processMessage(raw []byte) {
	var msg models.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	if !c.isActive() {
		c.pushWait()
		return
	}
	if msg.Type != models.TypeMovePaddle || !msg.Movement.Valid() {
		return
	}

	c.server.bus.Publish(c.room.ID, fanout.Event{
		Kind:     fanout.KindCommand,
		From:     c.username,
		Movement: msg.Movement,
	})
}

// handleEvent translates a room broadcast into the client's view. It
// reports true once the match is over and the session should close.
func (c *session) handleEvent(evt fanout.Event) bool {
	switch evt.Kind {
	case fanout.KindReady:
		c.setActive()
		c.push(models.ReadyMessage{
			Type:     models.TypeReady,
			Opponent: c.room.Opponent(c.username),
			Delay:    evt.Delay,
		})

	case fanout.KindPaddle:
		// Never re-deliver the client's own movement.
		if evt.From == c.username {
			return false
		}
		movement, position := evt.Movement, evt.Position
		if c.player2 {
			movement = movement.Mirror()
			position = position.Mirrored()
		}
		c.push(models.PaddleMessage{Type: models.TypeMovePaddle, Movement: movement, Position: position})

	case fanout.KindBall:
		velocity, position := evt.Velocity, evt.Position
		if c.player2 {
			velocity = velocity.Mirrored()
			position = position.Mirrored()
		}
		c.push(models.BallMessage{Type: models.TypeMoveBall, Velocity: velocity, Position: position})

	case fanout.KindRoundEnd:
		c.rememberScore(evt.Score)
		c.push(models.EndRoundMessage{
			Type:  models.TypeEndRound,
			Win:   evt.Winner == c.username,
			Score: c.viewScore(evt.Score),
		})

	case fanout.KindGameEnd:
		c.rememberScore(evt.Score)
		c.markEnded()
		c.push(models.EndGameMessage{
			Type:   models.TypeEndGame,
			Win:    evt.Winner == c.username,
			Score:  c.viewScore(evt.Score),
			Reason: evt.Reason,
		})
		return true
	}
	return false
}

// teardown releases the session's room resources. A disconnect while
// the room is still running counts as a forfeit: the opponent wins.
func (c *session) teardown(sub *fanout.Subscription) {
	ctx := context.Background()

	c.mu.Lock()
	ended := c.ended
	c.ended = true
	c.mu.Unlock()

	if !ended {
		room, err := c.server.rooms.Room(ctx, c.room.ID)
		if err == nil && room.Status == models.StatusRunning {
			winner := c.room.Opponent(c.username)
			c.server.bus.Publish(c.room.ID, fanout.Event{
				Kind:   fanout.KindGameEnd,
				From:   c.username,
				Winner: winner,
				Score:  c.scoreSnapshot(),
				Reason: models.ReasonAbandon,
			})
			if err := c.server.rooms.UpdateStatus(ctx, c.room.ID, c.room.WinStatusFor(winner)); err != nil {
				log.Printf("Failed to save forfeit result for room %s: %v", c.room.ID, err)
			}
			log.Printf("User %s abandoned room %s, %s wins", c.username, c.room.ID, winner)
		}
	}

	sub.Close()
	if err := c.server.rendezvous.Clear(ctx, c.room.ID); err != nil {
		log.Printf("Failed to clear join marker for room %s: %v", c.room.ID, err)
	}
	c.closeSend()
	c.ws.Close()

	log.Printf("User %s disconnected from room %s", c.username, c.room.ID)
}

func (c *session) isActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *session) setActive() {
	c.mu.Lock()
	c.active = true
	c.mu.Unlock()
}

func (c *session) markEnded() {
	c.mu.Lock()
	c.ended = true
	c.mu.Unlock()
}

func (c *session) rememberScore(score [2]int) {
	c.mu.Lock()
	c.lastScore = score
	c.mu.Unlock()
}

func (c *session) scoreSnapshot() [2]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastScore
}

// viewScore orders the score pair for the receiving player: player2
// sees its own wins first.
func (c *session) viewScore(score [2]int) [2]int {
	if c.player2 {
		return [2]int{score[1], score[0]}
	}
	return score
}

func (c *session) pushWait() {
	c.push(models.WaitMessage{Type: models.TypeWait, Message: "Please wait for other player to join"})
}

// push queues an outbound frame; a client too slow to drain its buffer
// loses frames rather than blocking the room.
func (c *session) push(v interface{}) {
	message, err := json.Marshal(v)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- message:
	default:
	}
}

func (c *session) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
