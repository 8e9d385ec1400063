package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/event"
)

func drainOne(t *testing.T, c *Client) event.Envelope {
	t.Helper()
	select {
	case raw := <-c.Send:
		var env event.Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return event.Envelope{}
	}
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	h := New()
	a := NewClient("conn-a", "user-a")
	b := NewClient("conn-b", "user-b")
	h.Register(a)
	h.Register(b)

	env := event.Envelope{
		Channel:   event.EntityChannel(event.EntityJobs, event.LifecycleCreated),
		Payload:   json.RawMessage(`{"id":"job-1"}`),
		CreatedAt: time.Now().UTC(),
	}
	h.Broadcast(env)

	assert.Equal(t, env.Channel, drainOne(t, a).Channel)
	assert.Equal(t, env.Channel, drainOne(t, b).Channel)
}

func TestBroadcastRoomScopedToMembers(t *testing.T) {
	h := New()
	member := NewClient("conn-a", "user-a")
	outsider := NewClient("conn-b", "user-b")
	sender := NewClient("conn-c", "user-c")
	h.Register(member)
	h.Register(outsider)
	h.Register(sender)
	h.JoinRoom(member, "room-1")
	h.JoinRoom(sender, "room-1")

	env := event.Envelope{Channel: event.ChannelTyping, Payload: json.RawMessage(`{"room_id":"room-1","user_id":"user-c"}`)}
	h.BroadcastRoom("room-1", env, sender.ID)

	got := drainOne(t, member)
	assert.Equal(t, event.ChannelTyping, got.Channel)

	select {
	case <-outsider.Send:
		t.Fatal("outsider received a room event")
	default:
	}
	select {
	case <-sender.Send:
		t.Fatal("sender received its own typing event")
	default:
	}
}

func TestUnregisterClosesSendOnce(t *testing.T) {
	h := New()
	c := NewClient("conn-a", "user-a")
	h.Register(c)
	h.Unregister(c)
	h.Unregister(c)

	_, open := <-c.Send
	assert.False(t, open)
	assert.Equal(t, 0, h.ClientCount())
}

func TestSlowClientDoesNotBlockBroadcast(t *testing.T) {
	h := New()
	slow := NewClient("conn-slow", "user-a")
	h.Register(slow)

	env := event.Envelope{Channel: event.EntityChannel(event.EntityBlogs, event.LifecycleUpdated)}
	for i := 0; i < cap(slow.Send)+5; i++ {
		h.Broadcast(env)
	}
	assert.Equal(t, cap(slow.Send), len(slow.Send))
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	h := New()
	c := NewClient("conn-a", "user-a")
	h.Register(c)
	h.JoinRoom(c, "room-1")
	h.LeaveRoom(c, "room-1")

	h.BroadcastRoom("room-1", event.Envelope{Channel: event.ChannelNewMessage}, "")
	select {
	case <-c.Send:
		t.Fatal("received event after leaving room")
	default:
	}
}
