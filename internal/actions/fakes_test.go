package actions

import (
	"context"
	"time"

	"chat-server/internal/database"
	"chat-server/internal/models"

	"github.com/jackc/pgx/v5"
)

// fakeHandle is an in-memory stand-in for one acquired database connection.
// failOn forces an error for a named method to exercise failure paths.
type fakeHandle struct {
	releases int
	users    []string
	rooms    map[int64]*models.Room
	members  map[int64][]models.Member
	messages map[int64][]models.Message
	nextID   int64
	failOn   map[string]error
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{
		rooms:    make(map[int64]*models.Room),
		members:  make(map[int64][]models.Member),
		messages: make(map[int64][]models.Message),
		failOn:   make(map[string]error),
	}
}

func (h *fakeHandle) addRoom(roomID int64, displayName *string, members ...models.Member) {
	h.rooms[roomID] = &models.Room{RoomID: roomID, DisplayName: displayName}
	h.members[roomID] = append([]models.Member{}, members...)
}

func (h *fakeHandle) addMessage(roomID int64, userID, msgType, content string) models.Message {
	h.nextID++
	msg := models.Message{
		MessageID: h.nextID,
		RoomID:    roomID,
		UserID:    userID,
		Type:      msgType,
		Content:   content,
		SendOn:    time.Now(),
	}
	h.messages[roomID] = append(h.messages[roomID], msg)
	return msg
}

func (h *fakeHandle) Release() { h.releases++ }

func (h *fakeHandle) UserRooms(_ context.Context, userID string) ([]models.UserRoom, error) {
	if err := h.failOn["UserRooms"]; err != nil {
		return nil, err
	}
	var result []models.UserRoom
	for roomID := range h.rooms {
		for _, m := range h.members[roomID] {
			if m.UserID == userID {
				result = append(result, models.UserRoom{RoomID: roomID, LastMessageRead: m.LastMessageRead})
			}
		}
	}
	return result, nil
}

func (h *fakeHandle) Room(_ context.Context, roomID int64) (*models.Room, error) {
	if err := h.failOn["Room"]; err != nil {
		return nil, err
	}
	room, ok := h.rooms[roomID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return room, nil
}

func (h *fakeHandle) RoomMembers(_ context.Context, roomID int64) ([]models.Member, error) {
	if err := h.failOn["RoomMembers"]; err != nil {
		return nil, err
	}
	return append([]models.Member{}, h.members[roomID]...), nil
}

func (h *fakeHandle) IsMember(_ context.Context, userID string, roomID int64) (bool, error) {
	if err := h.failOn["IsMember"]; err != nil {
		return false, err
	}
	for _, m := range h.members[roomID] {
		if m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (h *fakeHandle) LastMessage(_ context.Context, roomID int64) (*models.Message, error) {
	if err := h.failOn["LastMessage"]; err != nil {
		return nil, err
	}
	msgs := h.messages[roomID]
	if len(msgs) == 0 {
		return nil, pgx.ErrNoRows
	}
	last := msgs[len(msgs)-1]
	return &last, nil
}

func (h *fakeHandle) Messages(_ context.Context, roomID int64, beforeID *int64, limit *int) ([]models.Message, error) {
	if err := h.failOn["Messages"]; err != nil {
		return nil, err
	}
	var result []models.Message
	msgs := h.messages[roomID]
	for i := len(msgs) - 1; i >= 0; i-- {
		if beforeID != nil && msgs[i].MessageID >= *beforeID {
			continue
		}
		result = append(result, msgs[i])
		if limit != nil && *limit > 0 && len(result) == *limit {
			break
		}
	}
	return result, nil
}

func (h *fakeHandle) InsertMessage(_ context.Context, roomID int64, userID, msgType string, answerTo *int64, content string) (*models.Message, error) {
	if err := h.failOn["InsertMessage"]; err != nil {
		return nil, err
	}
	msg := h.addMessage(roomID, userID, msgType, content)
	msg.AnswerToMessageID = answerTo
	h.messages[roomID][len(h.messages[roomID])-1] = msg
	return &msg, nil
}

func (h *fakeHandle) ExistingUsers(_ context.Context, userIDs []string) ([]string, error) {
	if err := h.failOn["ExistingUsers"]; err != nil {
		return nil, err
	}
	var existing []string
	seen := make(map[string]struct{})
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		for _, u := range h.users {
			if u == id {
				existing = append(existing, id)
				seen[id] = struct{}{}
				break
			}
		}
	}
	return existing, nil
}

func (h *fakeHandle) CreateRoom(_ context.Context, displayName *string) (int64, error) {
	if err := h.failOn["CreateRoom"]; err != nil {
		return 0, err
	}
	roomID := int64(len(h.rooms) + 1)
	for h.rooms[roomID] != nil {
		roomID++
	}
	h.addRoom(roomID, displayName)
	return roomID, nil
}

func (h *fakeHandle) Enroll(_ context.Context, roomID int64, userIDs []string, lastRead int64) (int64, error) {
	if err := h.failOn["Enroll"]; err != nil {
		return 0, err
	}
	var added int64
	for _, id := range userIDs {
		if member, _ := h.IsMember(context.Background(), id, roomID); member {
			continue
		}
		h.members[roomID] = append(h.members[roomID], models.Member{UserID: id, LastMessageRead: lastRead})
		added++
	}
	return added, nil
}

func (h *fakeHandle) AddableUsers(_ context.Context, roomID int64, candidates []string) ([]string, error) {
	if err := h.failOn["AddableUsers"]; err != nil {
		return nil, err
	}
	existing, err := h.ExistingUsers(context.Background(), candidates)
	if err != nil {
		return nil, err
	}
	var addable []string
	for _, id := range existing {
		if member, _ := h.IsMember(context.Background(), id, roomID); !member {
			addable = append(addable, id)
		}
	}
	return addable, nil
}

func (h *fakeHandle) MarkRead(_ context.Context, roomID int64, userID string, messageID int64) (int64, error) {
	if err := h.failOn["MarkRead"]; err != nil {
		return 0, err
	}
	for i, m := range h.members[roomID] {
		if m.UserID == userID {
			h.members[roomID][i].LastMessageRead = messageID
			return 1, nil
		}
	}
	return 0, nil
}

type fakeStore struct {
	handle     *fakeHandle
	acquireErr error
}

func (s *fakeStore) CreateUser(context.Context, string, string) error { return nil }
func (s *fakeStore) UserByID(context.Context, string) (*models.User, error) {
	return nil, pgx.ErrNoRows
}
func (s *fakeStore) Close() {}
func (s *fakeStore) Acquire(context.Context) (database.Handle, error) {
	if s.acquireErr != nil {
		return nil, s.acquireErr
	}
	return s.handle, nil
}

type fakeResponder struct {
	frames []any
}

func (r *fakeResponder) Send(v any) { r.frames = append(r.frames, v) }

type broadcastCall struct {
	users   []string
	payload any
}

type fakeBroadcaster struct {
	calls  []broadcastCall
	onCall func()
}

func (b *fakeBroadcaster) Broadcast(users []string, payload any) {
	if b.onCall != nil {
		b.onCall()
	}
	b.calls = append(b.calls, broadcastCall{users: users, payload: payload})
}
