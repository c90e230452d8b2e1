// Package websocket contains the connection registry and the frame
// dispatcher: every inbound frame is parsed, authenticated against its token,
// bound in the registry and routed to its action handler. Frames of one
// connection are handled strictly in order; connections are independent.
package websocket

import (
	"context"
	"fmt"

	"chat-server/internal/actions"
	"chat-server/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Verifier validates a credential string and resolves it to a user identity.
type Verifier interface {
	Verify(token string) (string, error)
}

// action is the closed set of supported operations. The wire accepts free
// form strings; everything outside this set takes the unknown-action path.
type action int

const (
	actionUnknown action = iota
	actionGetRooms
	actionGetMessages
	actionSendMessage
	actionCreateRoom
	actionAddPersonToRoom
	actionReadRoom
)

func parseAction(name string) action {
	switch name {
	case models.ActionGetRooms:
		return actionGetRooms
	case models.ActionGetMessages:
		return actionGetMessages
	case models.ActionSendMessage:
		return actionSendMessage
	case models.ActionCreateRoom:
		return actionCreateRoom
	case models.ActionAddPersonToRoom:
		return actionAddPersonToRoom
	case models.ActionReadRoom:
		return actionReadRoom
	default:
		return actionUnknown
	}
}

// Dispatcher authenticates and routes inbound frames.
type Dispatcher struct {
	verifier Verifier
	registry *Registry
	actions  *actions.Actions
	log      zerolog.Logger
}

func NewDispatcher(verifier Verifier, registry *Registry, acts *actions.Actions, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		verifier: verifier,
		registry: registry,
		actions:  acts,
		log:      log,
	}
}

// Dispatch handles one inbound frame end to end. Protocol and validation
// failures keep the connection open; only an invalid credential closes it.
// A handler panic is contained here and answered with an internal error so a
// single connection's failure never takes the process down.
func (d *Dispatcher) Dispatch(ctx context.Context, c *Client, messageType int, data []byte) {
	if messageType != websocket.TextMessage {
		c.Send(models.ProtocolError("Binary data is not accepted"))
		return
	}

	req, err := models.ParseRequest(data)
	if err != nil {
		c.Send(models.ProtocolError("Data is not in json format: " + string(data)))
		return
	}

	userID, err := d.verifier.Verify(req.Token)
	if err != nil {
		d.log.Info().Err(err).Str("remote", c.remoteAddr).Msg("closing connection, invalid token")
		c.CloseWithCode(CloseInvalidToken, fmt.Sprintf("Invalid token '%s' provided", req.Token))
		return
	}
	req.UserID = userID

	d.registry.Bind(userID, c)

	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Str("action", req.Action).Msg("handler panicked")
			c.Send(models.InternalError(req.Action, req))
		}
	}()

	switch parseAction(req.Action) {
	case actionGetRooms:
		d.actions.GetRooms(ctx, c, req)
	case actionGetMessages:
		d.actions.GetMessages(ctx, c, req)
	case actionSendMessage:
		d.actions.SendMessage(ctx, c, d.registry, req)
	case actionCreateRoom:
		d.actions.CreateRoom(ctx, c, d.registry, req)
	case actionAddPersonToRoom:
		d.actions.AddPersonToRoom(ctx, c, d.registry, req)
	case actionReadRoom:
		d.actions.ReadRoom(ctx, c, req)
	case actionUnknown:
		c.Send(models.UnknownAction(req.Action))
	}
}
