package actions

import (
	"context"

	"chat-server/internal/models"
)

// ReadRoom moves the requester's read pointer in a room to the given message
// ID. Exactly one membership row must be affected; none means the user is not
// in the room. Successful reads are not answered and nothing is broadcast.
func (a *Actions) ReadRoom(ctx context.Context, rw Responder, req *models.Request) {
	h, err := a.store.Acquire(ctx)
	if err != nil {
		rw.Send(models.InternalError(req.Action, req))
		return
	}
	defer h.Release()

	affected, err := h.MarkRead(ctx, req.RoomID, req.UserID, req.MessageID)
	if err != nil {
		a.log.Error().Err(err).Msg("error while marking room as read")
		rw.Send(models.InternalError(req.Action, req))
		return
	}
	if affected != 1 {
		rw.Send(models.InvalidRequest(req.Action, "User not in specified room.", req))
	}
}
