package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/store"
)

func (h *Handler) chatRoutes(r chi.Router) {
	r.Route("/api/chat/rooms", func(r chi.Router) {
		r.Get("/", h.handleListRooms)
		r.Post("/", h.handleCreateRoom)
		r.Get("/{roomID}/messages", h.handleListMessages)
	})
}

type createRoomRequest struct {
	Name      string   `json:"name" validate:"required,max=200"`
	MemberIDs []string `json:"member_ids" validate:"required,min=1,dive,uuid"`
}

func (h *Handler) handleListRooms(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r)
	if !ok {
		return
	}
	rooms, err := h.chat.ListRooms(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (h *Handler) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r)
	if !ok {
		return
	}
	var req createRoomRequest
	if !h.decode(w, r, &req) {
		return
	}
	members := req.MemberIDs
	if !containsID(members, identity.UserID) {
		members = append(members, identity.UserID)
	}
	room, err := h.chat.CreateRoom(r.Context(), store.CreateRoomInput{
		Name:      strings.TrimSpace(req.Name),
		MemberIDs: members,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r)
	if !ok {
		return
	}
	roomID := chi.URLParam(r, "roomID")
	member, err := h.chat.IsRoomMember(r.Context(), roomID, identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if !member {
		writeError(w, http.StatusForbidden, "forbidden", "not a member of this room")
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			writeError(w, http.StatusBadRequest, "validation_error", "limit must be between 1 and 200")
			return
		}
		limit = n
	}
	messages, err := h.chat.ListMessages(r.Context(), roomID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
