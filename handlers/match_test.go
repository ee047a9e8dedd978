package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pongarena/pongarena-backend/config"
	"github.com/pongarena/pongarena-backend/fanout"
	"github.com/pongarena/pongarena-backend/game"
	"github.com/pongarena/pongarena-backend/handlers"
	"github.com/pongarena/pongarena-backend/models"
	"github.com/pongarena/pongarena-backend/rendezvous"
	"github.com/pongarena/pongarena-backend/repository"
)

const testSecret = "test-secret"

type testEnv struct {
	server  *httptest.Server
	rooms   *repository.MemoryRoomStore
	workers *game.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		JWTSecret: testSecret,
		Game: config.Game{
			FieldWidth:    120,
			FieldDepth:    160,
			PaddleWidth:   18,
			BallSpeed:     1.8,
			WinThreshold:  5,
			TickRate:      60,
			PreRoundDelay: 0.05,
		},
	}

	rooms := repository.NewMemoryRoomStore()
	bus := fanout.NewMemoryBus()
	coordinator := rendezvous.New(rendezvous.NewMemoryMarkerStore(), rooms)
	workers := game.NewRegistry(cfg.Game, rooms, bus)

	server := httptest.NewServer(handlers.NewServer(cfg, rooms, bus, coordinator, workers).Router())
	t.Cleanup(server.Close)

	return &testEnv{server: server, rooms: rooms, workers: workers}
}

func makeToken(t *testing.T, username string) string {
	t.Helper()
	claims := models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		ID:       "1",
		Username: username,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func postNewGame(t *testing.T, env *testEnv, token, user1, user2 string) (*http.Response, models.ApiResponse) {
	t.Helper()

	form := "user1=" + user1 + "&user2=" + user2
	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/game", strings.NewReader(form))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body models.ApiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestNewGameCreatesRoom(t *testing.T) {
	env := newTestEnv(t)

	resp, body := postNewGame(t, env, makeToken(t, "alice"), "bob", "alice")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, body.Success)

	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice", data["username"])

	roomID, _ := data["room_uuid"].(string)
	require.NotEmpty(t, roomID)

	room, err := env.rooms.Room(context.Background(), roomID)
	require.NoError(t, err)
	// Participants are stored in sorted order.
	assert.Equal(t, "alice", room.User1)
	assert.Equal(t, "bob", room.User2)
	assert.Equal(t, models.StatusCreated, room.Status)
}

func TestNewGameReusesOpenRoom(t *testing.T) {
	env := newTestEnv(t)

	_, first := postNewGame(t, env, makeToken(t, "alice"), "alice", "bob")
	_, second := postNewGame(t, env, makeToken(t, "bob"), "alice", "bob")

	firstData := first.Data.(map[string]interface{})
	secondData := second.Data.(map[string]interface{})
	assert.Equal(t, firstData["room_uuid"], secondData["room_uuid"])
}

func TestNewGameValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name           string
		token          string
		user1, user2   string
		expectedStatus int
	}{
		{
			name:           "missing token",
			token:          "",
			user1:          "alice",
			user2:          "bob",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "same user twice",
			token:          makeToken(t, "alice"),
			user1:          "alice",
			user2:          "alice",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing participant",
			token:          makeToken(t, "alice"),
			user1:          "alice",
			user2:          "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "requester not a participant",
			token:          makeToken(t, "carol"),
			user1:          "alice",
			user2:          "bob",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postNewGame(t, env, tt.token, tt.user1, tt.user2)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Error)
			assert.Nil(t, body.Data)
		})
	}
}

func TestFetchRoom(t *testing.T) {
	env := newTestEnv(t)
	room, err := env.rooms.FindOrCreate(context.Background(), "alice", "bob")
	require.NoError(t, err)

	fetch := func(token, roomID string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/room/"+roomID, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := env.server.Client().Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := fetch(makeToken(t, "alice"), room.ID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body models.ApiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	data := body.Data.(map[string]interface{})
	assert.Equal(t, string(models.StatusCreated), data["status"])

	resp = fetch(makeToken(t, "carol"), room.ID)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = fetch(makeToken(t, "alice"), "does-not-exist")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
