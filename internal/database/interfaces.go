package database

import (
	"context"

	"chat-server/internal/models"
)

// UserStore covers the user lookups needed by the HTTP auth endpoints.
type UserStore interface {
	CreateUser(ctx context.Context, userID, passwordHash string) error
	UserByID(ctx context.Context, userID string) (*models.User, error)
}

// Handle is one acquired database connection scoped to a single request.
// Release must be called exactly once on every exit path; it is safe to call
// more than once.
type Handle interface {
	Release()

	UserRooms(ctx context.Context, userID string) ([]models.UserRoom, error)
	Room(ctx context.Context, roomID int64) (*models.Room, error)
	RoomMembers(ctx context.Context, roomID int64) ([]models.Member, error)
	IsMember(ctx context.Context, userID string, roomID int64) (bool, error)

	LastMessage(ctx context.Context, roomID int64) (*models.Message, error)
	Messages(ctx context.Context, roomID int64, beforeID *int64, limit *int) ([]models.Message, error)
	InsertMessage(ctx context.Context, roomID int64, userID, msgType string, answerTo *int64, content string) (*models.Message, error)

	ExistingUsers(ctx context.Context, userIDs []string) ([]string, error)
	CreateRoom(ctx context.Context, displayName *string) (int64, error)
	Enroll(ctx context.Context, roomID int64, userIDs []string, lastRead int64) (int64, error)
	AddableUsers(ctx context.Context, roomID int64, candidates []string) ([]string, error)
	MarkRead(ctx context.Context, roomID int64, userID string, messageID int64) (int64, error)
}

// Store is the persistence gateway. Action handlers acquire a Handle per
// request; the HTTP auth endpoints use the UserStore methods directly.
type Store interface {
	UserStore
	Acquire(ctx context.Context) (Handle, error)
	Close()
}
