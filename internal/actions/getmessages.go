package actions

import (
	"context"

	"chat-server/internal/models"
)

// GetMessages returns a room's log to a member, newest-first internally but
// delivered in chronological order. startFromID restricts the result to
// messages with a strictly smaller ID; maxCount caps the number returned.
func (a *Actions) GetMessages(ctx context.Context, rw Responder, req *models.Request) {
	h, err := a.store.Acquire(ctx)
	if err != nil {
		rw.Send(models.InternalError(req.Action, req))
		return
	}
	defer h.Release()

	isMember, err := h.IsMember(ctx, req.UserID, req.Room)
	if err != nil {
		a.log.Error().Err(err).Msg("error while retrieving room data")
		rw.Send(models.InternalError(req.Action, req))
		return
	}
	if !isMember {
		rw.Send(models.MissingData(req.Action, "User not in Room"))
		return
	}

	messages, err := h.Messages(ctx, req.Room, req.StartFromID, req.MaxCount)
	if err != nil {
		a.log.Error().Err(err).Msg("error while retrieving room data")
		rw.Send(models.InternalError(req.Action, req))
		return
	}

	// The database returns newest first; the client expects oldest first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	rw.Send(&models.MessagesResponse{Action: req.Action, Messages: messages})
}
