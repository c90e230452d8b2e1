package models

import "encoding/json"

// Action names accepted on the wire.
const (
	ActionGetRooms        = "getRooms"
	ActionGetMessages     = "getMessages"
	ActionSendMessage     = "sendMessage"
	ActionCreateRoom      = "createRoom"
	ActionAddPersonToRoom = "addPersonToRoom"
	ActionReadRoom        = "readRoom"
	ActionNewMessages     = "newMessages"
)

// Request is a parsed inbound websocket frame. Every action carries the token
// and the action name; the remaining fields are action specific. RequestID is
// an opaque correlation value echoed back unchanged.
type Request struct {
	Token     string          `json:"token,omitempty"`
	Action    string          `json:"action"`
	RequestID json.RawMessage `json:"requestID,omitempty"`

	// getMessages / sendMessage
	Room        int64  `json:"room,omitempty"`
	StartFromID *int64 `json:"startFromID,omitempty"`
	MaxCount    *int   `json:"maxCount,omitempty"`

	// sendMessage
	Type              string  `json:"type,omitempty"`
	AnswerToMessageID *int64  `json:"answerToMessageID,omitempty"`
	Content           *string `json:"content,omitempty"`

	// createRoom; Invite is a single user ID for private rooms and an
	// array of user IDs for public rooms.
	RoomName *string         `json:"roomName,omitempty"`
	RoomType string          `json:"roomType,omitempty"`
	Invite   json.RawMessage `json:"invite,omitempty"`

	// addPersonToRoom / readRoom
	RoomID    int64    `json:"roomID,omitempty"`
	Users     []string `json:"users,omitempty"`
	MessageID int64    `json:"messageID,omitempty"`

	// UserID is the identity resolved from Token by the dispatcher.
	UserID string `json:"-"`
}

// ParseRequest decodes an inbound text frame.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Redacted returns a copy of the request safe to echo back to the client.
func (r *Request) Redacted() *Request {
	cp := *r
	cp.Token = ""
	return &cp
}
