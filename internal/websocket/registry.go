package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Registry owns the live mapping from user identity to its single current
// connection. At most one client is mapped per identity at any instant; a
// newer connection authenticating as the same user supersedes the older one.
// All mutations go through the registry mutex.
type Registry struct {
	mu      sync.Mutex
	clients map[string]*Client
	log     zerolog.Logger
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		log:     log,
	}
}

// Bind maps userID to c, forcibly closing any other live connection that
// currently holds the identity. If c was previously bound to a different
// identity, that older mapping is removed first.
func (r *Registry) Bind(userID string, c *Client) {
	var superseded *Client

	r.mu.Lock()
	if old := c.Identity(); old != "" && old != userID && r.clients[old] == c {
		delete(r.clients, old)
	}
	if cur, ok := r.clients[userID]; ok && cur != c {
		superseded = cur
	}
	r.clients[userID] = c
	c.setIdentity(userID)
	r.mu.Unlock()

	if superseded != nil {
		r.log.Info().Str("user", userID).Str("session", superseded.sessionID).
			Msg("closing superseded connection")
		superseded.CloseWithCode(CloseSuperseded, SupersededReason)
	}
}

// Remove unbinds c from its identity, but only if the mapping still points at
// c. A stale close arriving after the identity was rebound to a newer
// connection must not evict that newer mapping. Idempotent.
func (r *Registry) Remove(c *Client) {
	userID := c.Identity()
	if userID == "" {
		return
	}

	r.mu.Lock()
	if r.clients[userID] == c {
		delete(r.clients, userID)
	}
	r.mu.Unlock()
}

// Connection returns the live client for userID, or nil.
func (r *Registry) Connection(userID string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clients[userID]
}

// Len returns the number of live mappings.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Broadcast delivers payload to every listed user with a live connection.
// Delivery is best effort: a failure for one recipient is logged and never
// aborts the others or reaches the caller.
func (r *Registry) Broadcast(users []string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to marshal broadcast payload")
		return
	}

	r.mu.Lock()
	targets := make([]*Client, 0, len(users))
	for _, u := range users {
		if c, ok := r.clients[u]; ok {
			targets = append(targets, c)
		}
	}
	r.mu.Unlock()

	for _, c := range targets {
		if err := c.enqueue(data); err != nil {
			r.log.Warn().Err(err).Str("user", c.Identity()).
				Msg("failed to deliver broadcast frame")
		}
	}
}
