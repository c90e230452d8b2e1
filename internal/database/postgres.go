package database

import (
	"context"
	"fmt"

	"chat-server/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type PostgresStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewPostgresStore(ctx context.Context, databaseURL string, log zerolog.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("connected to database")
	return &PostgresStore{pool: pool, log: log}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id       VARCHAR(30) PRIMARY KEY,
	password_hash TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS rooms (
	room_id      BIGSERIAL PRIMARY KEY,
	display_name VARCHAR(200)
);
CREATE TABLE IF NOT EXISTS room_members (
	room_id           BIGINT NOT NULL REFERENCES rooms(room_id),
	user_id           VARCHAR(30) NOT NULL REFERENCES users(user_id),
	last_message_read BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (room_id, user_id)
);
CREATE TABLE IF NOT EXISTS messages (
	message_id           BIGSERIAL PRIMARY KEY,
	room_id              BIGINT NOT NULL REFERENCES rooms(room_id),
	user_id              VARCHAR(30) NOT NULL,
	type                 VARCHAR(20) NOT NULL,
	answer_to_message_id BIGINT,
	content              TEXT NOT NULL,
	send_on              TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS messages_room_idx ON messages (room_id, message_id DESC);
`

// EnsureSchema creates the tables if they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// User store implementation, used by the HTTP auth endpoints.

func (s *PostgresStore) CreateUser(ctx context.Context, userID, passwordHash string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (user_id, password_hash) VALUES ($1, $2)`,
		userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) UserByID(ctx context.Context, userID string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, password_hash FROM users WHERE user_id = $1`,
		userID).Scan(&user.UserID, &user.PasswordHash)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Acquire checks one connection out of the pool. The returned handle must be
// released by the caller; release is idempotent.
func (s *PostgresStore) Acquire(ctx context.Context) (Handle, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to acquire a connection from the pool")
		return nil, err
	}
	return &pgHandle{conn: conn, log: s.log}, nil
}

type pgHandle struct {
	conn     *pgxpool.Conn
	log      zerolog.Logger
	released bool
}

func (h *pgHandle) Release() {
	if h.released {
		return
	}
	h.released = true
	h.conn.Release()
}

// fail logs a query failure, distinguishing lost connections from statements
// the server rejected, and returns the error unchanged.
func (h *pgHandle) fail(op string, err error) error {
	if IsFatal(err) {
		h.log.Error().Err(err).Str("op", op).Msg("database connection terminated before performing query")
	} else {
		h.log.Warn().Err(err).Str("op", op).Msg("error while performing query")
	}
	return err
}

func (h *pgHandle) UserRooms(ctx context.Context, userID string) ([]models.UserRoom, error) {
	rows, err := h.conn.Query(ctx,
		`SELECT room_id, last_message_read FROM room_members WHERE user_id = $1 ORDER BY room_id`,
		userID)
	if err != nil {
		return nil, h.fail("UserRooms", err)
	}
	defer rows.Close()

	var result []models.UserRoom
	for rows.Next() {
		var ur models.UserRoom
		if err := rows.Scan(&ur.RoomID, &ur.LastMessageRead); err != nil {
			return nil, h.fail("UserRooms", err)
		}
		result = append(result, ur)
	}
	return result, rows.Err()
}

func (h *pgHandle) Room(ctx context.Context, roomID int64) (*models.Room, error) {
	room := &models.Room{}
	err := h.conn.QueryRow(ctx,
		`SELECT room_id, display_name FROM rooms WHERE room_id = $1`,
		roomID).Scan(&room.RoomID, &room.DisplayName)
	if err != nil {
		return nil, h.fail("Room", err)
	}
	return room, nil
}

func (h *pgHandle) RoomMembers(ctx context.Context, roomID int64) ([]models.Member, error) {
	rows, err := h.conn.Query(ctx,
		`SELECT user_id, last_message_read FROM room_members WHERE room_id = $1 ORDER BY user_id`,
		roomID)
	if err != nil {
		return nil, h.fail("RoomMembers", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.UserID, &m.LastMessageRead); err != nil {
			return nil, h.fail("RoomMembers", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (h *pgHandle) IsMember(ctx context.Context, userID string, roomID int64) (bool, error) {
	var exists bool
	err := h.conn.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM room_members WHERE user_id = $1 AND room_id = $2)`,
		userID, roomID).Scan(&exists)
	if err != nil {
		return false, h.fail("IsMember", err)
	}
	return exists, nil
}

const messageColumns = `message_id, room_id, user_id, type, answer_to_message_id, content, send_on`

func scanMessage(row pgx.Row) (*models.Message, error) {
	msg := &models.Message{}
	err := row.Scan(&msg.MessageID, &msg.RoomID, &msg.UserID, &msg.Type,
		&msg.AnswerToMessageID, &msg.Content, &msg.SendOn)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (h *pgHandle) LastMessage(ctx context.Context, roomID int64) (*models.Message, error) {
	row := h.conn.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE room_id = $1 ORDER BY message_id DESC LIMIT 1`,
		roomID)
	msg, err := scanMessage(row)
	if err != nil {
		return nil, h.fail("LastMessage", err)
	}
	return msg, nil
}

// Messages returns the room's log newest first, optionally only messages with
// an ID strictly below beforeID and capped at limit entries.
func (h *pgHandle) Messages(ctx context.Context, roomID int64, beforeID *int64, limit *int) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE room_id = $1`
	args := []any{roomID}
	if beforeID != nil {
		args = append(args, *beforeID)
		query += fmt.Sprintf(` AND message_id < $%d`, len(args))
	}
	query += ` ORDER BY message_id DESC`
	if limit != nil && *limit > 0 {
		args = append(args, *limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := h.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, h.fail("Messages", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, h.fail("Messages", err)
		}
		messages = append(messages, *msg)
	}
	return messages, rows.Err()
}

func (h *pgHandle) InsertMessage(ctx context.Context, roomID int64, userID, msgType string, answerTo *int64, content string) (*models.Message, error) {
	msg := &models.Message{
		RoomID:            roomID,
		UserID:            userID,
		Type:              msgType,
		AnswerToMessageID: answerTo,
		Content:           content,
	}
	err := h.conn.QueryRow(ctx,
		`INSERT INTO messages (room_id, user_id, type, answer_to_message_id, content)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING message_id, send_on`,
		roomID, userID, msgType, answerTo, content).Scan(&msg.MessageID, &msg.SendOn)
	if err != nil {
		return nil, h.fail("InsertMessage", err)
	}
	return msg, nil
}

// ExistingUsers filters the given IDs down to those present in users.
func (h *pgHandle) ExistingUsers(ctx context.Context, userIDs []string) ([]string, error) {
	rows, err := h.conn.Query(ctx,
		`SELECT user_id FROM users WHERE user_id = ANY($1)`,
		userIDs)
	if err != nil {
		return nil, h.fail("ExistingUsers", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}

func (h *pgHandle) CreateRoom(ctx context.Context, displayName *string) (int64, error) {
	var roomID int64
	err := h.conn.QueryRow(ctx,
		`INSERT INTO rooms (display_name) VALUES ($1) RETURNING room_id`,
		displayName).Scan(&roomID)
	if err != nil {
		return 0, h.fail("CreateRoom", err)
	}
	return roomID, nil
}

func (h *pgHandle) Enroll(ctx context.Context, roomID int64, userIDs []string, lastRead int64) (int64, error) {
	tag, err := h.conn.Exec(ctx,
		`INSERT INTO room_members (room_id, user_id, last_message_read)
		 SELECT $1, unnest($2::varchar[]), $3
		 ON CONFLICT (room_id, user_id) DO NOTHING`,
		roomID, userIDs, lastRead)
	if err != nil {
		return 0, h.fail("Enroll", err)
	}
	return tag.RowsAffected(), nil
}

// AddableUsers returns the candidates that exist and are not yet members of
// the room.
func (h *pgHandle) AddableUsers(ctx context.Context, roomID int64, candidates []string) ([]string, error) {
	rows, err := h.conn.Query(ctx,
		`SELECT user_id FROM users
		 WHERE user_id = ANY($2)
		   AND user_id NOT IN (SELECT user_id FROM room_members WHERE room_id = $1)`,
		roomID, candidates)
	if err != nil {
		return nil, h.fail("AddableUsers", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}

func (h *pgHandle) MarkRead(ctx context.Context, roomID int64, userID string, messageID int64) (int64, error) {
	tag, err := h.conn.Exec(ctx,
		`UPDATE room_members SET last_message_read = $3 WHERE room_id = $1 AND user_id = $2`,
		roomID, userID, messageID)
	if err != nil {
		return 0, h.fail("MarkRead", err)
	}
	return tag.RowsAffected(), nil
}

func collectIDs(rows pgx.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
