// Package actions implements the websocket action handlers. Each handler
// receives an authenticated request, acquires a database handle for the
// duration of the request, writes its own response frames through a Responder
// and notifies affected users through a Broadcaster.
package actions

import (
	"chat-server/internal/database"
	"chat-server/internal/models"

	"github.com/rs/zerolog"
)

// Responder writes response frames back to the requesting connection.
type Responder interface {
	Send(v any)
}

// Broadcaster pushes a payload to every listed user with a live connection.
// Delivery is best effort and never returns an error.
type Broadcaster interface {
	Broadcast(users []string, payload any)
}

// Actions bundles the handler dependencies.
type Actions struct {
	store database.Store
	log   zerolog.Logger
}

func New(store database.Store, log zerolog.Logger) *Actions {
	return &Actions{store: store, log: log}
}

func memberIDs(members []models.Member) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// setDiff returns the elements of a that are not in b, deduplicated and in
// a's order.
func setDiff(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, v := range b {
		inB[v] = struct{}{}
	}

	diff := []string{}
	seen := make(map[string]struct{}, len(a))
	for _, v := range a {
		if _, ok := inB[v]; ok {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		diff = append(diff, v)
	}
	return diff
}
