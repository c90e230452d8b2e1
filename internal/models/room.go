package models

import "time"

// Message content types.
const (
	MessageTypeMessage = "message"
	MessageTypePicture = "picture"
	MessageTypeAnswer  = "answer"
	MessageTypeSystem  = "system"
)

// Room types derived from the display name: rooms without one are private.
const (
	RoomTypePrivate = "private"
	RoomTypePublic  = "public"
)

type Room struct {
	RoomID      int64   `json:"roomID"`
	DisplayName *string `json:"displayName"`
}

func (r *Room) IsPrivate() bool {
	return r.DisplayName == nil
}

// Message is one entry of a room's append-only log. MessageID is assigned by
// the database and increases monotonically within a room.
type Message struct {
	MessageID         int64     `json:"messageID"`
	UserID            string    `json:"userID"`
	Type              string    `json:"type"`
	AnswerToMessageID *int64    `json:"answerToMessageID,omitempty"`
	Content           string    `json:"content"`
	SendOn            time.Time `json:"sendOn"`

	RoomID int64 `json:"-"`
}

// UserRoom is one room a user belongs to together with that user's read pointer.
type UserRoom struct {
	RoomID          int64
	LastMessageRead int64
}

// Member is one (room, user) membership with its read pointer.
type Member struct {
	UserID          string `json:"userID"`
	LastMessageRead int64  `json:"lastMessageRead"`
}

// RoomOverview is one element of a getRooms response. RoomName is the display
// name for public rooms and the other participant's user ID for private ones.
type RoomOverview struct {
	RoomID          int64    `json:"roomID"`
	RoomType        string   `json:"roomType"`
	RoomName        string   `json:"roomName,omitempty"`
	LastReadMessage int64    `json:"lastReadMessage"`
	Members         []Member `json:"members"`
	LastMessage     *Message `json:"lastMessage,omitempty"`
}
