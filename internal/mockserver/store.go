package mockserver

import (
	"context"
	"errors"

	"github.com/miroq/mau"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Store is the persistence layer behind the mock API. Handlers enforce the
// room and game rules; the store only reads and writes rows.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash string) (mau.User, error)
	UserByID(ctx context.Context, id string) (mau.User, error)
	UserByUsername(ctx context.Context, username string) (mau.User, error)
	Credentials(ctx context.Context, username string) (userID, passwordHash string, err error)
	ListUsers(ctx context.Context) ([]mau.User, error)
	UpdateUser(ctx context.Context, id string, edit mau.UserEdit) (mau.User, error)
	SetPassword(ctx context.Context, id, passwordHash string) error

	CreateSession(ctx context.Context, userID string) (token string, err error)
	UserFromToken(ctx context.Context, token string) (mau.User, error)

	Leaderboard(ctx context.Context, category mau.LeaderboardCategory) ([]mau.User, error)
	Rank(ctx context.Context, username string, category mau.LeaderboardCategory) (int, error)

	ListRooms(ctx context.Context) ([]mau.Room, error)
	RandomRoom(ctx context.Context) (mau.Room, error)
	Room(ctx context.Context, id string) (mau.Room, error)
	RoomOf(ctx context.Context, userID string) (mau.Room, error)
	CreateRoom(ctx context.Context, owner mau.User) (mau.Room, error)
	UpdateRoom(ctx context.Context, id string, edit mau.RoomEdit) (mau.Room, error)
	DeleteRoom(ctx context.Context, id string) error
	AddPlayer(ctx context.Context, roomID, userID string) error
	RemovePlayer(ctx context.Context, roomID, userID string) error
	SetOwner(ctx context.Context, roomID, userID string) error

	StartGame(ctx context.Context, roomID, ownerID string) (mau.Game, error)
	// CloseRoom finishes the running game, if any, and marks the room ended.
	CloseRoom(ctx context.Context, roomID string) error
	CurrentGame(ctx context.Context, roomID string) (mau.Game, error)
}
