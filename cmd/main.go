package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/pongarena/pongarena-backend/config"
	"github.com/pongarena/pongarena-backend/fanout"
	"github.com/pongarena/pongarena-backend/game"
	"github.com/pongarena/pongarena-backend/handlers"
	"github.com/pongarena/pongarena-backend/rendezvous"
	"github.com/pongarena/pongarena-backend/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.LoadConfig()

	db := repository.ConnectToPostgreSQL(cfg)
	rooms := repository.NewPostgresRoomStore(db)

	// With redis the join rendezvous works across processes; without it
	// markers live in process memory.
	var markers rendezvous.MarkerStore = rendezvous.NewMemoryMarkerStore()
	if cfg.RedisAddr != "" {
		markers = rendezvous.NewRedisMarkerStore(repository.ConnectToRedis(cfg))
	}

	bus := fanout.NewMemoryBus()
	coordinator := rendezvous.New(markers, rooms)
	workers := game.NewRegistry(cfg.Game, rooms, bus)

	srv := handlers.NewServer(cfg, rooms, bus, coordinator, workers)

	log.Println("Server running on http://localhost:8000")
	if err := http.ListenAndServe(":8000", srv.Router()); err != nil {
		log.Fatal(err)
	}
}
