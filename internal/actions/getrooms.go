package actions

import (
	"context"

	"chat-server/internal/database"
	"chat-server/internal/models"
)

// GetRooms answers with every room the requester belongs to: room type,
// display name (for private rooms, the other participant's ID), the full
// membership list with read pointers and the most recent message. A failed
// fetch for any single room fails the whole request; no partial lists.
func (a *Actions) GetRooms(ctx context.Context, rw Responder, req *models.Request) {
	h, err := a.store.Acquire(ctx)
	if err != nil {
		rw.Send(models.InternalError(req.Action, req))
		return
	}
	defer h.Release()

	userRooms, err := h.UserRooms(ctx, req.UserID)
	if err != nil {
		a.log.Error().Err(err).Str("user", req.UserID).Msg("error while fetching room data")
		rw.Send(models.InternalError(req.Action, req))
		return
	}

	// A user that is in no rooms receives an empty answer.
	rooms := make([]models.RoomOverview, 0, len(userRooms))
	for _, ur := range userRooms {
		overview, err := a.roomOverview(ctx, h, ur, req.UserID)
		if err != nil {
			a.log.Error().Err(err).Int64("room", ur.RoomID).Msg("error while fetching room data")
			rw.Send(models.InternalError(req.Action, req))
			return
		}
		rooms = append(rooms, *overview)
	}

	rw.Send(&models.RoomsResponse{Action: req.Action, Rooms: rooms})
}

func (a *Actions) roomOverview(ctx context.Context, h database.Handle, ur models.UserRoom, userID string) (*models.RoomOverview, error) {
	room, err := h.Room(ctx, ur.RoomID)
	if err != nil {
		return nil, err
	}
	members, err := h.RoomMembers(ctx, ur.RoomID)
	if err != nil {
		return nil, err
	}
	// Every room holds at least its creation system message.
	last, err := h.LastMessage(ctx, ur.RoomID)
	if err != nil {
		return nil, err
	}

	overview := &models.RoomOverview{
		RoomID:          ur.RoomID,
		LastReadMessage: ur.LastMessageRead,
		Members:         members,
		LastMessage:     last,
	}
	if room.IsPrivate() {
		overview.RoomType = models.RoomTypePrivate
		for _, m := range members {
			if m.UserID != userID {
				overview.RoomName = m.UserID
				break
			}
		}
	} else {
		overview.RoomType = models.RoomTypePublic
		overview.RoomName = *room.DisplayName
	}
	return overview, nil
}
