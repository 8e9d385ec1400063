// Package event defines the wire contract of the realtime relay: the closed
// set of entity lifecycle channels, the fixed chat channels, and the JSON
// envelope carried over the socket. Channel strings are composed and parsed
// here only, so an unknown entity name fails at the boundary instead of
// producing a dead channel.
package event

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Entity string

const (
	EntityAnnouncements      Entity = "announcements"
	EntityBlogs              Entity = "blogs"
	EntityJobs               Entity = "jobs"
	EntityWorkshops          Entity = "workshops"
	EntityUsers              Entity = "users"
	EntityFeedback           Entity = "feedback"
	EntityMentorships        Entity = "mentorships"
	EntityMentorshipPrograms Entity = "mentorship-programs"
)

var entities = map[Entity]bool{
	EntityAnnouncements:      true,
	EntityBlogs:              true,
	EntityJobs:               true,
	EntityWorkshops:          true,
	EntityUsers:              true,
	EntityFeedback:           true,
	EntityMentorships:        true,
	EntityMentorshipPrograms: true,
}

type Lifecycle string

const (
	LifecycleCreated Lifecycle = "created"
	LifecycleUpdated Lifecycle = "updated"
	LifecycleDeleted Lifecycle = "deleted"
)

var lifecycles = map[Lifecycle]bool{
	LifecycleCreated: true,
	LifecycleUpdated: true,
	LifecycleDeleted: true,
}

// Channel is a named stream of one event type within the relay.
type Channel string

// Chat channels, server to client.
const (
	ChannelNewMessage  Channel = "new-message"
	ChannelTyping      Channel = "user-typing"
	ChannelStopTyping  Channel = "user-stop-typing"
	ChannelMessageRead Channel = "messages-read"
)

// EntityChannel builds the "<entity>:<lifecycle>" channel name.
func EntityChannel(entity Entity, lifecycle Lifecycle) Channel {
	return Channel(string(entity) + ":" + string(lifecycle))
}

// ParseChannel splits an entity lifecycle channel back into its parts.
// Chat channels and unknown names return ok=false.
func ParseChannel(ch Channel) (Entity, Lifecycle, bool) {
	name, suffix, found := strings.Cut(string(ch), ":")
	if !found {
		return "", "", false
	}
	entity, lifecycle := Entity(name), Lifecycle(suffix)
	if !entities[entity] || !lifecycles[lifecycle] {
		return "", "", false
	}
	return entity, lifecycle, true
}

// Envelope is the server-to-client frame.
type Envelope struct {
	Channel   Channel         `json:"channel"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// EntityPayload is the body of a lifecycle event: subscribers refetch, so the
// record id is all that travels.
type EntityPayload struct {
	ID string `json:"id"`
}

// Client-to-server chat actions.
const (
	ActionJoinChat    = "join-chat"
	ActionLeaveChat   = "leave-chat"
	ActionSendMessage = "send-message"
	ActionTypingStart = "typing-start"
	ActionTypingStop  = "typing-stop"
	ActionMarkRead    = "mark-read"
)

// ClientMessage is the client-to-server frame.
type ClientMessage struct {
	Action string `json:"action"`
	RoomID string `json:"room_id,omitempty"`
	Body   string `json:"body,omitempty"`
}

// ParseClientMessage decodes and validates a client frame.
func ParseClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("decode client message: %w", err)
	}
	switch msg.Action {
	case ActionJoinChat, ActionLeaveChat, ActionSendMessage, ActionTypingStart, ActionTypingStop, ActionMarkRead:
	default:
		return ClientMessage{}, fmt.Errorf("unknown action %q", msg.Action)
	}
	if msg.RoomID == "" {
		return ClientMessage{}, fmt.Errorf("action %s requires room_id", msg.Action)
	}
	if msg.Action == ActionSendMessage && strings.TrimSpace(msg.Body) == "" {
		return ClientMessage{}, fmt.Errorf("send-message requires body")
	}
	return msg, nil
}
