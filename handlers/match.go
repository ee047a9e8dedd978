package handlers

import (
	"errors"
	"log"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/pongarena/pongarena-backend/middleware"
	"github.com/pongarena/pongarena-backend/models"
	"github.com/pongarena/pongarena-backend/repository"
	"github.com/pongarena/pongarena-backend/responses"
	"github.com/pongarena/pongarena-backend/utils"
)

// NewGame allocates a room for two named players and returns its id.
// The caller then connects both clients to /ws/{roomID}/{token}.
func (s *Server) NewGame(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Authentication error."})
		return
	}

	user1 := r.PostFormValue("user1")
	user2 := r.PostFormValue("user2")
	if user1 == "" || user2 == "" || user1 == user2 {
		utils.HandleError(w, responses.BadRequestError{Msg: "Missing user parameters."})
		return
	}

	// The requester has to be one of the game participants.
	if claims.Username != user1 && claims.Username != user2 {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Authenticated user must be one of the game participants."})
		return
	}

	// Sort the usernames so each pair maps to one open room.
	users := []string{user1, user2}
	sort.Strings(users)

	room, err := s.rooms.FindOrCreate(r.Context(), users[0], users[1])
	if err != nil {
		log.Println(err)
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to create game room."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{
		"username":  claims.Username,
		"room_uuid": room.ID,
	}))
}

// FetchRoom returns the room record for one of its participants.
func (s *Server) FetchRoom(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Authentication error."})
		return
	}

	roomID := mux.Vars(r)["roomID"]
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

	if !room.HasParticipant(claims.Username) {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "You are not a participant of this room."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(room))
}
