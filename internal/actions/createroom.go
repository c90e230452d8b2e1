package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"chat-server/internal/models"
)

const privateRoomWelcome = "Hello in your private chat room"

// CreateRoom creates a private room (the requester plus exactly one invitee)
// or a public room (named, at least one resolved invitee). Invitees that do
// not resolve to existing users are reported back as invalidUsers without
// blocking creation, as long as enough valid members remain. All enrolled
// members start with a zero read pointer and receive the creation system
// message as a broadcast.
func (a *Actions) CreateRoom(ctx context.Context, rw Responder, bc Broadcaster, req *models.Request) {
	private := req.RoomType == models.RoomTypePrivate
	if !private && (req.RoomName == nil || *req.RoomName == "") {
		rw.Send(models.MissingData(req.Action, "roomName must be set."))
		return
	}

	candidates, ok := parseInvite(req, private)
	if !ok {
		rw.Send(models.MissingData(req.Action, "invite must be set."))
		return
	}

	h, err := a.store.Acquire(ctx)
	if err != nil {
		rw.Send(models.InternalError(req.Action, req))
		return
	}
	defer h.Release()

	existing, err := h.ExistingUsers(ctx, candidates)
	if err != nil {
		a.log.Error().Err(err).Msg("error while creating room")
		rw.Send(models.InternalError(req.Action, req))
		return
	}
	invalidUsers := setDiff(candidates, existing)

	if private && len(existing) != 2 {
		rw.Send(&models.CreateRoomResponse{
			Action:       req.Action,
			RequestID:    req.RequestID,
			RoomStatus:   models.StatusInvalid,
			InvalidUsers: invalidUsers,
			ErrorMsg:     "Private room needs exactly two users.",
		})
		return
	}
	if !private && len(existing) == 0 {
		rw.Send(&models.CreateRoomResponse{
			Action:       req.Action,
			RequestID:    req.RequestID,
			RoomStatus:   models.StatusInvalid,
			InvalidUsers: invalidUsers,
			ErrorMsg:     "Public room needs at least 1 person to be added.",
		})
		return
	}

	var displayName *string
	creationNotice := privateRoomWelcome
	if !private {
		displayName = req.RoomName
		creationNotice = fmt.Sprintf("Room was created by %s with name %s.", req.UserID, *req.RoomName)
	}

	roomID, err := h.CreateRoom(ctx, displayName)
	if err != nil {
		a.log.Error().Err(err).Msg("error while creating room")
		rw.Send(models.InternalError(req.Action, req))
		return
	}

	sysMsg, err := h.InsertMessage(ctx, roomID, req.UserID, models.MessageTypeSystem, nil, creationNotice)
	if err != nil {
		a.log.Error().Err(err).Msg("error while creating room")
		rw.Send(models.InternalError(req.Action, req))
		return
	}

	enrolled, err := h.Enroll(ctx, roomID, existing, 0)
	if err != nil {
		a.log.Error().Err(err).Msg("error while creating room")
		rw.Send(models.InternalError(req.Action, req))
		return
	}
	if enrolled != int64(len(existing)) {
		a.log.Error().Int64("enrolled", enrolled).Int("expected", len(existing)).
			Int64("room", roomID).Msg("not every user was added to the created room")
	}

	status := models.StatusOK
	if len(invalidUsers) > 0 {
		status = models.StatusPartial
	}
	rw.Send(&models.CreateRoomResponse{
		Action:       req.Action,
		RequestID:    req.RequestID,
		RoomID:       roomID,
		RoomStatus:   status,
		InvalidUsers: invalidUsers,
	})

	h.Release()
	bc.Broadcast(existing, models.NewMessages(roomID, *sysMsg))
}

// parseInvite extracts the users to enroll. For private rooms invite is a
// single user ID and the requester is added implicitly; for public rooms it
// is an array of user IDs.
func parseInvite(req *models.Request, private bool) ([]string, bool) {
	if len(req.Invite) == 0 {
		return nil, false
	}
	if private {
		var invitee string
		if err := json.Unmarshal(req.Invite, &invitee); err != nil || invitee == "" {
			return nil, false
		}
		return []string{invitee, req.UserID}, true
	}
	var invitees []string
	if err := json.Unmarshal(req.Invite, &invitees); err != nil || len(invitees) == 0 {
		return nil, false
	}
	return invitees, true
}
