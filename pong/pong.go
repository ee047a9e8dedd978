package pong

import "math/rand"

// Movement is a paddle control flag change sent by a client.
type Movement string

const (
	LeftStart  Movement = "LEFT_START"
	LeftEnd    Movement = "LEFT_END"
	RightStart Movement = "RIGHT_START"
	RightEnd   Movement = "RIGHT_END"
)

// Valid reports whether m is one of the four movement tags.
func (m Movement) Valid() bool {
	switch m {
	case LeftStart, LeftEnd, RightStart, RightEnd:
		return true
	}
	return false
}

// Mirror swaps left and right, translating a movement between the
// player1 and player2 points of view. Mirroring twice returns the
// original movement.
func (m Movement) Mirror() Movement {
	switch m {
	case LeftStart:
		return RightStart
	case LeftEnd:
		return RightEnd
	case RightStart:
		return LeftStart
	case RightEnd:
		return LeftEnd
	}
	return m
}

// Vector is a position or velocity in the field plane.
type Vector struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Mirrored returns the vector rotated into the opposite perspective.
func (v Vector) Mirrored() Vector {
	return Vector{X: -v.X, Z: -v.Z}
}

// Settings holds the immutable field dimensions for one game.
type Settings struct {
	FieldWidth  int
	FieldDepth  int
	PaddleWidth int
	BallSpeed   float64
}

func setRange(val, lowerbound, upperbound float64) float64 {
	if val < lowerbound {
		return lowerbound
	}
	if val > upperbound {
		return upperbound
	}
	return val
}

// Player is one paddle. At most one of MovingLeft/MovingRight is true;
// Move keeps that invariant.
type Player struct {
	Position     Vector
	MovingLeft   bool
	MovingRight  bool
	paddleOffset float64
}

// NewPlayer places a paddle at the given position.
func NewPlayer(position Vector, setting Settings) *Player {
	return &Player{
		Position:     position,
		paddleOffset: float64(setting.FieldWidth-setting.PaddleWidth) / 2,
	}
}

// Move applies a movement flag change.
func (p *Player) Move(action Movement) {
	switch action {
	case LeftStart:
		p.MovingLeft = true
		p.MovingRight = false
	case LeftEnd:
		p.MovingLeft = false
	case RightStart:
		p.MovingLeft = false
		p.MovingRight = true
	case RightEnd:
		p.MovingRight = false
	}
}

// Frame advances the paddle by one tick of delta time units.
func (p *Player) Frame(delta float64) {
	if p.MovingLeft {
		p.Position.X -= 1.5 * delta
	} else if p.MovingRight {
		p.Position.X += 1.5 * delta
	}
	p.Position.X = setRange(p.Position.X, -p.paddleOffset, p.paddleOffset)
}

// Ball is the ball position and velocity plus the field constants it
// bounces against.
type Ball struct {
	Position Vector
	Velocity Vector

	speed            float64
	fieldWidthHalves float64
	fieldDepthHalves float64
	paddleHalves     float64
}

// NewBall places a ball at the field center with the given velocity.
func NewBall(velocity Vector, setting Settings) *Ball {
	return &Ball{
		Velocity:         velocity,
		speed:            setting.BallSpeed,
		fieldWidthHalves: float64(setting.FieldWidth) / 2,
		fieldDepthHalves: float64(setting.FieldDepth) / 2,
		paddleHalves:     float64(setting.PaddleWidth) / 2,
	}
}

// Frame integrates the ball over delta and resolves wall and paddle
// collisions. It reports whether any collision happened this frame.
func (b *Ball) Frame(delta float64, p1, p2 *Player) bool {
	collision := false
	b.Position.X += b.Velocity.X * delta
	b.Position.Z += b.Velocity.Z * delta

	// Side walls: bounce one unit inside the boundary.
	if b.Position.X >= b.fieldWidthHalves {
		collision = true
		b.Position.X = b.fieldWidthHalves - 1
		b.Velocity.X *= -1
	} else if b.Position.X <= -b.fieldWidthHalves {
		collision = true
		b.Position.X = -b.fieldWidthHalves + 1
		b.Velocity.X *= -1
	}

	// Back walls: only a paddle in range reflects the ball.
	if b.Position.Z >= b.fieldDepthHalves {
		collision = b.checkPlayerX(p1) || collision
		b.Position.Z = b.fieldDepthHalves
	} else if b.Position.Z <= -b.fieldDepthHalves {
		collision = b.checkPlayerX(p2) || collision
		b.Position.Z = -b.fieldDepthHalves
	}

	return collision
}

// checkPlayerX tests the paddle span and, on a hit, reflects the ball
// with an angle proportional to the offset from the paddle center.
func (b *Ball) checkPlayerX(player *Player) bool {
	rangeX := setRange(
		b.Position.X,
		player.Position.X-b.paddleHalves,
		player.Position.X+b.paddleHalves,
	)
	if rangeX != b.Position.X {
		return false
	}
	b.Velocity.Z *= -1
	// The +0.1 keeps the divisor non-zero for a dead-center hit.
	b.Velocity.X = (b.Position.X - player.Position.X) / (b.paddleHalves + 0.1) * b.speed
	return true
}

// Game is one round of pong: two paddles, one ball, and the winner of
// the round once the ball gets past a paddle.
type Game struct {
	Player1 *Player
	Player2 *Player
	Ball    *Ball

	winner           int
	fieldDepthHalves float64
}

// NewGame builds a fresh round. The ball serves straight at one of the
// two players, direction chosen by rng.
func NewGame(setting Settings, rng *rand.Rand) *Game {
	depth := float64(setting.FieldDepth)
	velocity := Vector{Z: setting.BallSpeed}
	if rng.Intn(2) == 1 {
		velocity.Z = -setting.BallSpeed
	}
	return &Game{
		Player1:          NewPlayer(Vector{Z: depth / 2}, setting),
		Player2:          NewPlayer(Vector{Z: -depth / 2}, setting),
		Ball:             NewBall(velocity, setting),
		fieldDepthHalves: depth / 2,
	}
}

// Player returns the paddle for player index 1 or 2.
func (g *Game) Player(index int) *Player {
	if index == 2 {
		return g.Player2
	}
	return g.Player1
}

// Frame advances both paddles and the ball by one tick. It reports
// whether a collision happened; once the ball crosses a back wall with
// no paddle in the way the round winner is recorded.
func (g *Game) Frame(delta float64) bool {
	g.Player1.Frame(delta)
	g.Player2.Frame(delta)
	collision := g.Ball.Frame(delta, g.Player1, g.Player2)

	// The rally speeds up the longer it lasts.
	if g.Ball.Velocity.Z > 0 {
		g.Ball.Velocity.Z += 0.001 * delta
	} else {
		g.Ball.Velocity.Z -= 0.001 * delta
	}

	if g.Ball.Position.Z >= g.fieldDepthHalves && !collision {
		g.winner = 2
		return true
	}
	if g.Ball.Position.Z <= -g.fieldDepthHalves && !collision {
		g.winner = 1
		return true
	}
	return collision
}

// Winner returns 0 while the round is live, otherwise 1 or 2.
func (g *Game) Winner() int {
	return g.winner
}
