package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/pongarena/pongarena-backend/models"
)

var ErrRoomNotFound = errors.New("room not found")

// RoomStore persists the per-match room records. Room identifiers and
// participant assignment come from the matchmaking endpoint; the game
// core only reads rooms and advances their status.
type RoomStore interface {
	Room(ctx context.Context, id string) (*models.Room, error)
	// FindOrCreate returns the open room for the given pair, creating
	// one in the CREATED state if none exists. user1 and user2 are
	// expected in sorted order so the pair has one canonical record.
	FindOrCreate(ctx context.Context, user1, user2 string) (*models.Room, error)
	UpdateStatus(ctx context.Context, id string, status models.RoomStatus) error
}

// PostgresRoomStore backs RoomStore with the rooms table:
//
//	CREATE TABLE rooms (
//	    id UUID PRIMARY KEY,
//	    user1 VARCHAR(150) NOT NULL,
//	    user2 VARCHAR(150) NOT NULL,
//	    status VARCHAR(2) NOT NULL
//	);
type PostgresRoomStore struct {
	db *sql.DB
}

func NewPostgresRoomStore(db *sql.DB) *PostgresRoomStore {
	return &PostgresRoomStore{db: db}
}

func (s *PostgresRoomStore) Room(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user1, user2, status FROM rooms WHERE id = $1", id).
		Scan(&room.ID, &room.User1, &room.User2, &room.Status)
	if err == sql.ErrNoRows {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *PostgresRoomStore) FindOrCreate(ctx context.Context, user1, user2 string) (*models.Room, error) {
	var room models.Room
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user1, user2, status FROM rooms WHERE user1 = $1 AND user2 = $2 AND status = $3",
		user1, user2, models.StatusCreated).
		Scan(&room.ID, &room.User1, &room.User2, &room.Status)
	if err == nil {
		return &room, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	room = models.Room{
		ID:     uuid.New().String(),
		User1:  user1,
		User2:  user2,
		Status: models.StatusCreated,
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO rooms (id, user1, user2, status) VALUES ($1, $2, $3, $4)",
		room.ID, room.User1, room.User2, room.Status)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *PostgresRoomStore) UpdateStatus(ctx context.Context, id string, status models.RoomStatus) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE rooms SET status = $2 WHERE id = $1", id, status)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrRoomNotFound
	}
	return nil
}
