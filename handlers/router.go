package handlers

import (
	"github.com/gorilla/mux"

	"github.com/pongarena/pongarena-backend/config"
	"github.com/pongarena/pongarena-backend/fanout"
	"github.com/pongarena/pongarena-backend/game"
	"github.com/pongarena/pongarena-backend/middleware"
	"github.com/pongarena/pongarena-backend/rendezvous"
	"github.com/pongarena/pongarena-backend/repository"
)

// Server wires the HTTP and websocket handlers to their collaborators.
type Server struct {
	cfg        *config.Config
	rooms      repository.RoomStore
	bus        fanout.Bus
	rendezvous *rendezvous.Coordinator
	workers    *game.Registry
}

func NewServer(cfg *config.Config, rooms repository.RoomStore, bus fanout.Bus, coordinator *rendezvous.Coordinator, workers *game.Registry) *Server {
	return &Server{
		cfg:        cfg,
		rooms:      rooms,
		bus:        bus,
		rendezvous: coordinator,
		workers:    workers,
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/ws/{roomID}/{token}", s.WsHandler)

	// Secured routes
	secured := r.PathPrefix("/api").Subrouter()
	secured.Use(middleware.JWTValidationMiddleware(s.cfg.JWTSecret))
	secured.HandleFunc("/game", s.NewGame).Methods("POST")
	secured.HandleFunc("/room/{roomID}", s.FetchRoom).Methods("GET")

	return r
}
