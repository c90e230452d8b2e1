package actions

import (
	"context"

	"chat-server/internal/models"
)

// SendMessage appends a message to a room the requester belongs to, answers
// with the request's correlation ID and broadcasts the created message to
// every member of the room, the sender included, so other devices of the same
// user stay in sync.
func (a *Actions) SendMessage(ctx context.Context, rw Responder, bc Broadcaster, req *models.Request) {
	switch req.Type {
	case models.MessageTypeMessage, models.MessageTypePicture, models.MessageTypeAnswer:
	default:
		rw.Send(models.MissingData(req.Action, "No valid type provided"))
		return
	}
	if req.Type == models.MessageTypeAnswer && (req.AnswerToMessageID == nil || *req.AnswerToMessageID < 0) {
		rw.Send(models.MissingData(req.Action, "Answer needs answer to MessageID"))
		return
	}
	if req.Content == nil {
		rw.Send(models.MissingData(req.Action, "No content provided"))
		return
	}

	h, err := a.store.Acquire(ctx)
	if err != nil {
		rw.Send(models.InternalError(req.Action, req))
		return
	}
	defer h.Release()

	members, err := h.RoomMembers(ctx, req.Room)
	if err != nil {
		a.log.Error().Err(err).Msg("error while sending message")
		rw.Send(models.InternalError(req.Action, req))
		return
	}
	recipients := memberIDs(members)
	if !contains(recipients, req.UserID) {
		rw.Send(models.MissingData(req.Action, "User not in Room"))
		return
	}

	msg, err := h.InsertMessage(ctx, req.Room, req.UserID, req.Type, req.AnswerToMessageID, *req.Content)
	if err != nil {
		a.log.Error().Err(err).Msg("error while sending message")
		rw.Send(models.InternalError(req.Action, req))
		return
	}

	rw.Send(&models.SendMessageResponse{
		Action:        req.Action,
		RequestID:     req.RequestID,
		MessageStatus: models.MessageStatusOK,
	})

	// The handle must not be held across the fan-out.
	h.Release()
	bc.Broadcast(recipients, models.NewMessages(req.Room, *msg))
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
