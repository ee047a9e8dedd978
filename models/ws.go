package models

import (
	"github.com/pongarena/pongarena-backend/pong"
)

// Websocket frame tags. One message type per frame; the tag picks the
// payload shape.
const (
	TypeWait       = "wait"
	TypeReady      = "ready"
	TypeMovePaddle = "move_paddle"
	TypeMoveBall   = "move_ball"
	TypeEndRound   = "end_round"
	TypeEndGame    = "end_game"
)

// End-of-game reasons.
const (
	ReasonScore   = "SCORE"
	ReasonAbandon = "ABANDON"
)

// ClientMessage is the only inbound frame: a paddle movement intent.
type ClientMessage struct {
	Type     string        `json:"type"`
	Movement pong.Movement `json:"movement"`
}

// WaitMessage tells a client the other player has not joined yet.
type WaitMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ReadyMessage announces a round start after a fixed delay in seconds.
type ReadyMessage struct {
	Type     string  `json:"type"`
	Opponent string  `json:"opponent"`
	Delay    float64 `json:"delay"`
}

// PaddleMessage relays the opponent's paddle movement, already mirrored
// into the receiving player's perspective.
type PaddleMessage struct {
	Type     string        `json:"type"`
	Movement pong.Movement `json:"movement"`
	Position pong.Vector   `json:"position"`
}

// BallMessage carries the authoritative ball state after a collision.
type BallMessage struct {
	Type     string      `json:"type"`
	Velocity pong.Vector `json:"velocity"`
	Position pong.Vector `json:"position"`
}

// EndRoundMessage reports a finished round. Win and Score are from the
// receiving player's perspective.
type EndRoundMessage struct {
	Type  string `json:"type"`
	Win   bool   `json:"win"`
	Score [2]int `json:"score"`
}

// EndGameMessage reports the finished match, either on score or after
// the opponent abandoned.
type EndGameMessage struct {
	Type   string `json:"type"`
	Win    bool   `json:"win"`
	Score  [2]int `json:"score"`
	Reason string `json:"reason"`
}
