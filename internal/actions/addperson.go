package actions

import (
	"context"

	"chat-server/internal/database"
	"chat-server/internal/models"
)

const usersAddedNotice = "Users were added to the room"

// AddPersonToRoom enrolls new members into a public room. The requester must
// already be a member; private rooms reject additions. Candidates are
// filtered to users that exist and are not members yet; those join with their
// read pointer set to the room's latest message so nothing shows as unread
// backlog. A system message announces the addition to old and new members.
func (a *Actions) AddPersonToRoom(ctx context.Context, rw Responder, bc Broadcaster, req *models.Request) {
	if len(req.Users) == 0 {
		rw.Send(models.MissingData(req.Action, "To add users they need to be specified in an array."))
		return
	}

	h, err := a.store.Acquire(ctx)
	if err != nil {
		rw.Send(models.InternalError(req.Action, req))
		return
	}
	defer h.Release()

	room, err := h.Room(ctx, req.RoomID)
	if err != nil {
		if database.IsNotFound(err) {
			rw.Send(models.InvalidRequest(req.Action, "User can't add persons to a room he isn't in himself.", req))
		} else {
			a.log.Error().Err(err).Msg("error while adding user to room")
			rw.Send(models.InternalError(req.Action, req))
		}
		return
	}

	isMember, err := h.IsMember(ctx, req.UserID, req.RoomID)
	if err != nil {
		a.log.Error().Err(err).Msg("error while adding user to room")
		rw.Send(models.InternalError(req.Action, req))
		return
	}
	if !isMember {
		rw.Send(models.InvalidRequest(req.Action, "User can't add persons to a room he isn't in himself.", req))
		return
	}
	if room.IsPrivate() {
		rw.Send(models.InvalidRequest(req.Action, "Can't add user to private room.", req))
		return
	}

	membersBefore, err := h.RoomMembers(ctx, req.RoomID)
	if err != nil {
		a.log.Error().Err(err).Msg("error while adding user to room")
		rw.Send(models.InternalError(req.Action, req))
		return
	}

	usersToAdd, err := h.AddableUsers(ctx, req.RoomID, req.Users)
	if err != nil {
		a.log.Error().Err(err).Msg("error while adding user to room")
		rw.Send(models.InternalError(req.Action, req))
		return
	}
	if len(usersToAdd) == 0 {
		rw.Send(models.MissingData(req.Action, "No valid users to add"))
		return
	}
	usersNotAdded := setDiff(req.Users, usersToAdd)

	last, err := h.LastMessage(ctx, req.RoomID)
	if err != nil {
		a.log.Error().Err(err).Msg("error while adding user to room")
		rw.Send(models.InternalError(req.Action, req))
		return
	}

	if _, err := h.Enroll(ctx, req.RoomID, usersToAdd, last.MessageID); err != nil {
		a.log.Error().Err(err).Msg("error while adding user to room")
		rw.Send(&models.AddPersonResponse{
			Action:       req.Action,
			RoomID:       req.RoomID,
			RoomStatus:   models.StatusInvalid,
			InvalidUsers: req.Users,
		})
		return
	}

	sysMsg, err := h.InsertMessage(ctx, req.RoomID, req.UserID, models.MessageTypeSystem, nil, usersAddedNotice)
	if err != nil {
		a.log.Error().Err(err).Msg("error while adding user to room")
		rw.Send(models.InternalError(req.Action, req))
		return
	}

	status := models.StatusOK
	if len(usersNotAdded) > 0 {
		status = models.StatusPartial
	}
	rw.Send(&models.AddPersonResponse{
		Action:       req.Action,
		RoomID:       req.RoomID,
		RoomStatus:   status,
		InvalidUsers: usersNotAdded,
	})

	h.Release()
	recipients := append(memberIDs(membersBefore), usersToAdd...)
	bc.Broadcast(recipients, models.NewMessages(req.RoomID, *sysMsg))
}
