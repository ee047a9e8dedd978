package pong_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pongarena/pongarena-backend/pong"
)

func testSettings() pong.Settings {
	return pong.Settings{
		FieldWidth:  120,
		FieldDepth:  160,
		PaddleWidth: 18,
		BallSpeed:   1.8,
	}
}

func TestMovementMirrorIsInvolution(t *testing.T) {
	pairs := map[pong.Movement]pong.Movement{
		pong.LeftStart:  pong.RightStart,
		pong.LeftEnd:    pong.RightEnd,
		pong.RightStart: pong.LeftStart,
		pong.RightEnd:   pong.LeftEnd,
	}
	for movement, mirrored := range pairs {
		assert.Equal(t, mirrored, movement.Mirror())
		assert.Equal(t, movement, movement.Mirror().Mirror())
	}
}

func TestMovementValid(t *testing.T) {
	assert.True(t, pong.LeftStart.Valid())
	assert.True(t, pong.RightEnd.Valid())
	assert.False(t, pong.Movement("UP_START").Valid())
	assert.False(t, pong.Movement("").Valid())
}

func TestPlayerMoveKeepsOneDirection(t *testing.T) {
	player := pong.NewPlayer(pong.Vector{Z: 80}, testSettings())

	player.Move(pong.LeftStart)
	assert.True(t, player.MovingLeft)
	assert.False(t, player.MovingRight)

	// Pressing the other direction releases the first.
	player.Move(pong.RightStart)
	assert.False(t, player.MovingLeft)
	assert.True(t, player.MovingRight)

	player.Move(pong.RightEnd)
	assert.False(t, player.MovingLeft)
	assert.False(t, player.MovingRight)
}

func TestPlayerFrameLinearMotion(t *testing.T) {
	player := pong.NewPlayer(pong.Vector{Z: 80}, testSettings())
	player.Move(pong.RightStart)

	for i := 0; i < 10; i++ {
		player.Frame(1)
	}

	assert.InDelta(t, 15.0, player.Position.X, 1e-9)
}

func TestPlayerFrameClampsToField(t *testing.T) {
	player := pong.NewPlayer(pong.Vector{Z: 80}, testSettings())

	player.Move(pong.RightStart)
	for i := 0; i < 100; i++ {
		player.Frame(1)
		assert.LessOrEqual(t, player.Position.X, 51.0)
	}
	assert.InDelta(t, 51.0, player.Position.X, 1e-9)

	player.Move(pong.LeftStart)
	for i := 0; i < 200; i++ {
		player.Frame(1)
		assert.GreaterOrEqual(t, player.Position.X, -51.0)
	}
	assert.InDelta(t, -51.0, player.Position.X, 1e-9)
}

func TestBallBouncesOffSideWall(t *testing.T) {
	setting := testSettings()
	p1 := pong.NewPlayer(pong.Vector{Z: 80}, setting)
	p2 := pong.NewPlayer(pong.Vector{Z: -80}, setting)

	ball := pong.NewBall(pong.Vector{X: 5}, setting)
	ball.Position = pong.Vector{X: 58}

	collided := ball.Frame(1, p1, p2)

	assert.True(t, collided)
	assert.InDelta(t, 59.0, ball.Position.X, 1e-9)
	assert.InDelta(t, -5.0, ball.Velocity.X, 1e-9)
}

func TestBallPaddleReflection(t *testing.T) {
	setting := testSettings()
	p1 := pong.NewPlayer(pong.Vector{Z: 80}, setting)
	p2 := pong.NewPlayer(pong.Vector{Z: -80}, setting)

	ball := pong.NewBall(pong.Vector{Z: 2}, setting)
	ball.Position = pong.Vector{X: 4, Z: 79}

	collided := ball.Frame(1, p1, p2)

	require.True(t, collided)
	assert.InDelta(t, -2.0, ball.Velocity.Z, 1e-9, "paddle hit negates velocity.z")
	assert.InDelta(t, 4.0/9.1*1.8, ball.Velocity.X, 1e-9)
	assert.LessOrEqual(t, ball.Velocity.X, setting.BallSpeed)
	assert.GreaterOrEqual(t, ball.Velocity.X, -setting.BallSpeed)
}

func TestBallMissesPaddleOutsideSpan(t *testing.T) {
	setting := testSettings()
	p1 := pong.NewPlayer(pong.Vector{Z: 80}, setting)
	p2 := pong.NewPlayer(pong.Vector{Z: -80}, setting)

	ball := pong.NewBall(pong.Vector{Z: 2}, setting)
	ball.Position = pong.Vector{X: 10, Z: 79}

	collided := ball.Frame(1, p1, p2)

	assert.False(t, collided, "ball one unit past the paddle edge is a miss")
	assert.InDelta(t, 2.0, ball.Velocity.Z, 1e-9)
}

func TestGameFrameRoundEndsOnMiss(t *testing.T) {
	game := pong.NewGame(testSettings(), rand.New(rand.NewSource(1)))
	game.Ball.Position = pong.Vector{X: 20, Z: -79}
	game.Ball.Velocity = pong.Vector{Z: -2}

	done := game.Frame(1)

	assert.True(t, done)
	assert.Equal(t, 1, game.Winner(), "player2 missed, player1 wins the round")
}

func TestGameFrameRallyContinuesOnPaddleHit(t *testing.T) {
	game := pong.NewGame(testSettings(), rand.New(rand.NewSource(1)))
	game.Ball.Position = pong.Vector{Z: -79}
	game.Ball.Velocity = pong.Vector{Z: -2}

	game.Frame(1)

	assert.Equal(t, 0, game.Winner())
	assert.Greater(t, game.Ball.Velocity.Z, 0.0, "ball reflected back toward player1")
}

func TestGameFrameSpeedsUpBall(t *testing.T) {
	game := pong.NewGame(testSettings(), rand.New(rand.NewSource(1)))
	game.Ball.Velocity = pong.Vector{Z: 1.8}

	game.Frame(1)

	assert.InDelta(t, 1.801, game.Ball.Velocity.Z, 1e-9)
}

func TestNewGameServe(t *testing.T) {
	game := pong.NewGame(testSettings(), rand.New(rand.NewSource(42)))

	assert.InDelta(t, 0.0, game.Ball.Velocity.X, 1e-9, "serve is straight")
	assert.InDelta(t, 1.8, abs(game.Ball.Velocity.Z), 1e-9)
	assert.InDelta(t, 80.0, game.Player(1).Position.Z, 1e-9)
	assert.InDelta(t, -80.0, game.Player(2).Position.Z, 1e-9)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
