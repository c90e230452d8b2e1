package models

import "encoding/json"

// Room creation / member addition statuses.
const (
	StatusOK        = "ok"
	StatusPartial   = "partially added users"
	StatusInvalid   = "invalid"
	MessageStatusOK = "ok"
)

type RoomsResponse struct {
	Action string         `json:"action"`
	Rooms  []RoomOverview `json:"rooms"`
}

type MessagesResponse struct {
	Action   string    `json:"action"`
	Messages []Message `json:"messages"`
}

type SendMessageResponse struct {
	Action        string          `json:"action"`
	RequestID     json.RawMessage `json:"requestID,omitempty"`
	MessageStatus string          `json:"messageStatus"`
}

type CreateRoomResponse struct {
	Action       string          `json:"action"`
	RequestID    json.RawMessage `json:"requestID,omitempty"`
	RoomID       int64           `json:"roomID,omitempty"`
	RoomStatus   string          `json:"roomStatus"`
	InvalidUsers []string        `json:"invalidUsers"`
	ErrorMsg     string          `json:"errorMsg,omitempty"`
}

type AddPersonResponse struct {
	Action       string   `json:"action"`
	RoomID       int64    `json:"roomID"`
	RoomStatus   string   `json:"roomStatus"`
	InvalidUsers []string `json:"invalidUsers"`
}

// RoomMessages groups new messages by room inside a newMessages broadcast.
type RoomMessages struct {
	RoomID   int64     `json:"roomID"`
	Messages []Message `json:"messages"`
}

// NewMessagesEvent is pushed to every member of a room when its log grows.
type NewMessagesEvent struct {
	Action string         `json:"action"`
	Data   []RoomMessages `json:"data"`
}

// NewMessages wraps a single created message into the broadcast event form.
func NewMessages(roomID int64, msgs ...Message) *NewMessagesEvent {
	return &NewMessagesEvent{
		Action: ActionNewMessages,
		Data:   []RoomMessages{{RoomID: roomID, Messages: msgs}},
	}
}
