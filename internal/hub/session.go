package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/igm/sockjs-go/sockjs"
	"github.com/rs/zerolog/log"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/event"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/store"
)

const (
	closeMissingToken = 4001
	closeInvalidToken = 4002
	closeNotApproved  = 4003
)

type chatPayload struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
}

// SessionHandler authenticates the transport handshake with the bearer
// credential and runs the per-connection read loop for chat actions.
func SessionHandler(h *Hub, auth store.AuthStore, chat store.ChatStore) func(sockjs.Session) {
	return func(session sockjs.Session) {
		token := tokenFromRequest(session.Request())
		if token == "" {
			_ = session.Close(closeMissingToken, "missing token")
			return
		}
		_, user, err := auth.GetSession(context.Background(), token)
		if err != nil {
			_ = session.Close(closeInvalidToken, "invalid token")
			return
		}
		// the relay honors the same approval gate as the REST surface
		if !user.Approved {
			_ = session.Close(closeNotApproved, "account pending approval")
			return
		}

		client := NewClient(uuid.NewString(), user.UserID)
		h.Register(client)
		defer h.Unregister(client)
		log.Info().Str("user_id", user.UserID).Int("clients", h.ClientCount()).Msg("relay client connected")

		go func() {
			for payload := range client.Send {
				_ = session.Send(string(payload))
			}
		}()

		for {
			raw, err := session.Recv()
			if err != nil {
				log.Info().Str("user_id", user.UserID).Msg("relay client disconnected")
				return
			}
			msg, err := event.ParseClientMessage([]byte(raw))
			if err != nil {
				log.Warn().Err(err).Str("user_id", user.UserID).Msg("bad relay frame")
				continue
			}
			handleChatAction(h, chat, client, msg)
		}
	}
}

func handleChatAction(h *Hub, chat store.ChatStore, client *Client, msg event.ClientMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch msg.Action {
	case event.ActionJoinChat:
		member, err := chat.IsRoomMember(ctx, msg.RoomID, client.UserID)
		if err != nil {
			log.Error().Err(err).Str("room_id", msg.RoomID).Msg("membership lookup failed")
			return
		}
		if !member {
			log.Warn().Str("room_id", msg.RoomID).Str("user_id", client.UserID).Msg("join denied")
			return
		}
		h.JoinRoom(client, msg.RoomID)

	case event.ActionLeaveChat:
		h.LeaveRoom(client, msg.RoomID)

	case event.ActionSendMessage:
		if !client.inRoom(msg.RoomID) {
			return
		}
		message, err := chat.CreateMessage(ctx, store.CreateMessageInput{
			RoomID:   msg.RoomID,
			SenderID: client.UserID,
			Body:     msg.Body,
		})
		if err != nil {
			log.Error().Err(err).Str("room_id", msg.RoomID).Msg("persist message failed")
			return
		}
		h.BroadcastRoom(msg.RoomID, envelope(event.ChannelNewMessage, message), "")

	case event.ActionTypingStart:
		if !client.inRoom(msg.RoomID) {
			return
		}
		h.BroadcastRoom(msg.RoomID, envelope(event.ChannelTyping, chatPayload{RoomID: msg.RoomID, UserID: client.UserID}), client.ID)

	case event.ActionTypingStop:
		if !client.inRoom(msg.RoomID) {
			return
		}
		h.BroadcastRoom(msg.RoomID, envelope(event.ChannelStopTyping, chatPayload{RoomID: msg.RoomID, UserID: client.UserID}), client.ID)

	case event.ActionMarkRead:
		if !client.inRoom(msg.RoomID) {
			return
		}
		if err := chat.MarkRead(ctx, msg.RoomID, client.UserID, time.Now().UTC()); err != nil {
			log.Error().Err(err).Str("room_id", msg.RoomID).Msg("mark read failed")
			return
		}
		h.BroadcastRoom(msg.RoomID, envelope(event.ChannelMessageRead, chatPayload{RoomID: msg.RoomID, UserID: client.UserID}), client.ID)
	}
}

func envelope(channel event.Channel, payload any) event.Envelope {
	data, _ := json.Marshal(payload)
	return event.Envelope{Channel: channel, Payload: data, CreatedAt: time.Now().UTC()}
}

func tokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if token := bearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
