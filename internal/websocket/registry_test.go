package websocket

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"chat-server/internal/models"
	"chat-server/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(nil, nil, nil, logger.New("test"))
}

func isClosed(c *Client) bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func receiveFrame(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.send:
		return data
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected a frame but none arrived")
		return nil
	}
}

func TestBindKeepsSingleEntryPerIdentity(t *testing.T) {
	r := NewRegistry(logger.New("test"))
	first := newTestClient(t)
	second := newTestClient(t)

	r.Bind("alice", first)
	require.Same(t, first, r.Connection("alice"))

	r.Bind("alice", second)

	assert.Same(t, second, r.Connection("alice"))
	assert.Equal(t, 1, r.Len())
	assert.True(t, isClosed(first), "superseded connection must be closed")
	assert.False(t, isClosed(second))
}

func TestBindSameClientTwiceIsNoop(t *testing.T) {
	r := NewRegistry(logger.New("test"))
	c := newTestClient(t)

	r.Bind("alice", c)
	r.Bind("alice", c)

	assert.Same(t, c, r.Connection("alice"))
	assert.Equal(t, 1, r.Len())
	assert.False(t, isClosed(c))
}

func TestBindNewIdentityRemovesOldMapping(t *testing.T) {
	r := NewRegistry(logger.New("test"))
	c := newTestClient(t)

	r.Bind("alice", c)
	r.Bind("bob", c)

	assert.Nil(t, r.Connection("alice"))
	assert.Same(t, c, r.Connection("bob"))
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, "bob", c.Identity())
}

func TestStaleCloseDoesNotEvictNewerMapping(t *testing.T) {
	r := NewRegistry(logger.New("test"))
	old := newTestClient(t)
	newer := newTestClient(t)

	r.Bind("alice", old)
	r.Bind("alice", newer)

	// The superseded connection's read loop reports the close late.
	r.Remove(old)

	assert.Same(t, newer, r.Connection("alice"))

	// Removing twice must stay harmless.
	r.Remove(old)
	assert.Same(t, newer, r.Connection("alice"))
}

func TestRemoveUnboundClientIsNoop(t *testing.T) {
	r := NewRegistry(logger.New("test"))
	c := newTestClient(t)

	r.Remove(c)
	assert.Equal(t, 0, r.Len())
}

func TestConcurrentBindSameIdentity(t *testing.T) {
	r := NewRegistry(logger.New("test"))
	first := newTestClient(t)
	second := newTestClient(t)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.Bind("alice", first)
	}()
	go func() {
		defer wg.Done()
		r.Bind("alice", second)
	}()
	wg.Wait()

	winner := r.Connection("alice")
	require.NotNil(t, winner)
	assert.Equal(t, 1, r.Len())

	loser := first
	if winner == first {
		loser = second
	}
	assert.True(t, isClosed(loser), "exactly one connection survives, the other is closed")
	assert.False(t, isClosed(winner))
}

func TestBroadcastDeliversToAllLiveMembers(t *testing.T) {
	r := NewRegistry(logger.New("test"))
	alice := newTestClient(t)
	bob := newTestClient(t)
	r.Bind("alice", alice)
	r.Bind("bob", bob)

	payload := models.NewMessages(7, models.Message{MessageID: 3, UserID: "alice", Type: "message", Content: "hi"})
	r.Broadcast([]string{"alice", "bob", "carol"}, payload)

	for _, c := range []*Client{alice, bob} {
		var event models.NewMessagesEvent
		require.NoError(t, json.Unmarshal(receiveFrame(t, c), &event))
		assert.Equal(t, models.ActionNewMessages, event.Action)
		require.Len(t, event.Data, 1)
		assert.Equal(t, int64(7), event.Data[0].RoomID)
	}
}

func TestBroadcastSurvivesClosedMember(t *testing.T) {
	r := NewRegistry(logger.New("test"))
	alice := newTestClient(t)
	bob := newTestClient(t)
	r.Bind("alice", alice)
	r.Bind("bob", bob)

	// bob's transport died mid-broadcast without the registry noticing yet.
	bob.Close()

	r.Broadcast([]string{"bob", "alice"}, models.NewMessages(1, models.Message{MessageID: 1}))

	receiveFrame(t, alice)
}

func TestBroadcastSkipsOfflineUsers(t *testing.T) {
	r := NewRegistry(logger.New("test"))
	alice := newTestClient(t)
	r.Bind("alice", alice)

	r.Broadcast([]string{"nobody"}, models.NewMessages(1, models.Message{MessageID: 1}))

	select {
	case <-alice.send:
		t.Fatal("alice is not a recipient and must not receive the frame")
	case <-time.After(20 * time.Millisecond):
	}
}
