package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/event"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/models"
)

// RoomActivity is the payload of typing and read-receipt events.
type RoomActivity struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
}

// Relay is the realtime client. Construct one per application and pass it
// where it is needed; it holds no global state. Callbacks are dispatched from
// the read loop, so they must not block.
type Relay struct {
	wsURL  string
	dialer *websocket.Dialer

	mu     sync.Mutex
	conn   *websocket.Conn
	subs   map[event.Channel]map[int]func(event.Envelope)
	nextID int
}

// NewRelay takes the server's base HTTP URL and targets its raw websocket
// endpoint under /realtime.
func NewRelay(baseURL string) *Relay {
	ws := strings.TrimRight(baseURL, "/")
	ws = strings.Replace(ws, "https://", "wss://", 1)
	ws = strings.Replace(ws, "http://", "ws://", 1)
	return &Relay{
		wsURL:  ws + "/realtime/websocket",
		dialer: websocket.DefaultDialer,
		subs:   make(map[event.Channel]map[int]func(event.Envelope)),
	}
}

// Connect dials the relay and starts the read loop. Calling it while a
// connection is live is a no-op returning nil.
func (r *Relay) Connect(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		return nil
	}

	u := r.wsURL + "?token=" + url.QueryEscape(token)
	conn, _, err := r.dialer.DialContext(ctx, u, http.Header{})
	if err != nil {
		return err
	}
	r.conn = conn
	go r.readLoop(conn)
	return nil
}

// Disconnect closes the connection and drops every subscription. This is the
// only path that clears callbacks; a transport failure keeps them so a later
// Connect resumes dispatch.
func (r *Relay) Disconnect() {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.subs = make(map[event.Channel]map[int]func(event.Envelope))
	r.mu.Unlock()

	if conn != nil {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}
}

func (r *Relay) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn != nil
}

// Subscription cancels one callback without touching the channel's others.
type Subscription struct {
	relay   *Relay
	channel event.Channel
	id      int
}

func (s *Subscription) Cancel() {
	s.relay.mu.Lock()
	defer s.relay.mu.Unlock()
	if callbacks, ok := s.relay.subs[s.channel]; ok {
		delete(callbacks, s.id)
		if len(callbacks) == 0 {
			delete(s.relay.subs, s.channel)
		}
	}
}

func (r *Relay) subscribe(ch event.Channel, fn func(event.Envelope)) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subs[ch] == nil {
		r.subs[ch] = make(map[int]func(event.Envelope))
	}
	r.nextID++
	r.subs[ch][r.nextID] = fn
	return &Subscription{relay: r, channel: ch, id: r.nextID}
}

// Unsubscribe drops all callbacks registered on a channel.
func (r *Relay) Unsubscribe(ch event.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, ch)
}

func (r *Relay) subscribeEntity(entity event.Entity, lifecycle event.Lifecycle, fn func(event.EntityPayload)) *Subscription {
	return r.subscribe(event.EntityChannel(entity, lifecycle), func(env event.Envelope) {
		var payload event.EntityPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			log.Warn().Err(err).Str("channel", string(env.Channel)).Msg("bad entity payload")
			return
		}
		fn(payload)
	})
}

func (r *Relay) SubscribeEntityCreated(entity event.Entity, fn func(event.EntityPayload)) *Subscription {
	return r.subscribeEntity(entity, event.LifecycleCreated, fn)
}

func (r *Relay) SubscribeEntityUpdated(entity event.Entity, fn func(event.EntityPayload)) *Subscription {
	return r.subscribeEntity(entity, event.LifecycleUpdated, fn)
}

func (r *Relay) SubscribeEntityDeleted(entity event.Entity, fn func(event.EntityPayload)) *Subscription {
	return r.subscribeEntity(entity, event.LifecycleDeleted, fn)
}

func (r *Relay) SubscribeChatMessage(fn func(models.ChatMessage)) *Subscription {
	return r.subscribe(event.ChannelNewMessage, func(env event.Envelope) {
		var msg models.ChatMessage
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			log.Warn().Err(err).Msg("bad chat message payload")
			return
		}
		fn(msg)
	})
}

func (r *Relay) SubscribeTypingStart(fn func(RoomActivity)) *Subscription {
	return r.subscribeActivity(event.ChannelTyping, fn)
}

func (r *Relay) SubscribeTypingStop(fn func(RoomActivity)) *Subscription {
	return r.subscribeActivity(event.ChannelStopTyping, fn)
}

func (r *Relay) SubscribeMessagesRead(fn func(RoomActivity)) *Subscription {
	return r.subscribeActivity(event.ChannelMessageRead, fn)
}

func (r *Relay) subscribeActivity(ch event.Channel, fn func(RoomActivity)) *Subscription {
	return r.subscribe(ch, func(env event.Envelope) {
		var activity RoomActivity
		if err := json.Unmarshal(env.Payload, &activity); err != nil {
			log.Warn().Err(err).Str("channel", string(ch)).Msg("bad activity payload")
			return
		}
		fn(activity)
	})
}

func (r *Relay) JoinChat(roomID string) {
	r.emit(event.ClientMessage{Action: event.ActionJoinChat, RoomID: roomID})
}

func (r *Relay) LeaveChat(roomID string) {
	r.emit(event.ClientMessage{Action: event.ActionLeaveChat, RoomID: roomID})
}

func (r *Relay) EmitChatMessage(roomID, body string) {
	r.emit(event.ClientMessage{Action: event.ActionSendMessage, RoomID: roomID, Body: body})
}

func (r *Relay) EmitTypingStart(roomID string) {
	r.emit(event.ClientMessage{Action: event.ActionTypingStart, RoomID: roomID})
}

func (r *Relay) EmitTypingStop(roomID string) {
	r.emit(event.ClientMessage{Action: event.ActionTypingStop, RoomID: roomID})
}

func (r *Relay) EmitMarkRead(roomID string) {
	r.emit(event.ClientMessage{Action: event.ActionMarkRead, RoomID: roomID})
}

// emit is a silent no-op when no connection is live.
func (r *Relay) emit(msg event.ClientMessage) {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil {
		return
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		log.Warn().Err(err).Str("action", msg.Action).Msg("emit failed")
	}
}

func (r *Relay) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			r.mu.Lock()
			if r.conn == conn {
				r.conn = nil
				log.Warn().Err(err).Msg("relay connection lost")
			}
			r.mu.Unlock()
			return
		}
		var env event.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Warn().Err(err).Msg("bad relay frame")
			continue
		}
		r.dispatch(env)
	}
}

func (r *Relay) dispatch(env event.Envelope) {
	r.mu.Lock()
	callbacks := make([]func(event.Envelope), 0, len(r.subs[env.Channel]))
	for _, fn := range r.subs[env.Channel] {
		callbacks = append(callbacks, fn)
	}
	r.mu.Unlock()

	for _, fn := range callbacks {
		fn(env)
	}
}
