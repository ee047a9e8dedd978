package models

// RoomStatus tracks a room through its lifecycle. Statuses only move
// forward; a finished room is terminal.
type RoomStatus string

const (
	StatusCreated    RoomStatus = "CR"
	StatusWaiting    RoomStatus = "WA"
	StatusRunning    RoomStatus = "RU"
	StatusPlayer1Won RoomStatus = "P1"
	StatusPlayer2Won RoomStatus = "P2"
)

// Finished reports whether the room reached a terminal result.
func (s RoomStatus) Finished() bool {
	return s == StatusPlayer1Won || s == StatusPlayer2Won
}

// Precedes reports whether s comes before other in the forward
// lifecycle CREATED, WAITING, RUNNING, finished.
func (s RoomStatus) Precedes(other RoomStatus) bool {
	return s.order() < other.order()
}

func (s RoomStatus) order() int {
	switch s {
	case StatusWaiting:
		return 1
	case StatusRunning:
		return 2
	case StatusPlayer1Won, StatusPlayer2Won:
		return 3
	}
	return 0
}

// Room is the persisted record of one match between two players.
type Room struct {
	ID     string     `json:"room_uuid"`
	User1  string     `json:"user1"`
	User2  string     `json:"user2"`
	Status RoomStatus `json:"status"`
}

// HasParticipant reports whether username is one of the room's players.
func (r *Room) HasParticipant(username string) bool {
	return username == r.User1 || username == r.User2
}

// Opponent returns the other participant's username.
func (r *Room) Opponent(username string) string {
	if username == r.User1 {
		return r.User2
	}
	return r.User1
}

// WinStatusFor returns the terminal status recording a win by username.
func (r *Room) WinStatusFor(username string) RoomStatus {
	if username == r.User1 {
		return StatusPlayer1Won
	}
	return StatusPlayer2Won
}
