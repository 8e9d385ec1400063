package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/models"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/store"
)

type Handler struct {
	auth       store.AuthStore
	community  store.CommunityStore
	chat       store.ChatStore
	sessionTTL time.Duration
	validate   *validator.Validate
}

type Options struct {
	SessionTTL time.Duration
}

func NewHandler(st store.Store, options Options) *Handler {
	return &Handler{
		auth:       st,
		community:  st,
		chat:       st,
		sessionTTL: options.SessionTTL,
		validate:   validator.New(),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/api/auth/register", h.handleRegister)
	r.Post("/api/auth/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware)
		r.Get("/api/auth/me", h.handleMe)
		r.Patch("/api/auth/profile", h.handleUpdateProfile)
		r.Post("/api/auth/logout", h.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireApproved)
			h.communityRoutes(r)
			h.chatRoutes(r)
		})
	})

	return r
}

type registerRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=120"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8,max=72"`
	Role           string `json:"role" validate:"required,oneof=student alumni"`
	GraduationYear int    `json:"graduation_year" validate:"omitempty,gte=1950,lte=2100"`
}

type authResponse struct {
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expires_at"`
	User      models.User `json:"user"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.auth.Register(r.Context(), store.RegisterInput{
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.TrimSpace(req.Email),
		Password:       req.Password,
		Role:           req.Role,
		GraduationYear: req.GraduationYear,
		SessionTTL:     h.sessionTTL,
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email_taken", "email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, authResult(result))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), store.LoginInput{
		Email:      strings.TrimSpace(req.Email),
		Password:   req.Password,
		SessionTTL: h.sessionTTL,
	})
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, authResult(result))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}
	session, user, err := h.auth.GetSession(r.Context(), identity.Token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired session")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		User:      user,
	})
}

type updateProfileRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=120"`
	GraduationYear int    `json:"graduation_year" validate:"omitempty,gte=1950,lte=2100"`
	Company        string `json:"company" validate:"max=200"`
	Bio            string `json:"bio" validate:"max=2000"`
	AvatarURL      string `json:"avatar_url" validate:"omitempty,url"`
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}
	var req updateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), store.UpdateProfileInput{
		UserID:         identity.UserID,
		Name:           strings.TrimSpace(req.Name),
		GraduationYear: req.GraduationYear,
		Company:        strings.TrimSpace(req.Company),
		Bio:            req.Bio,
		AvatarURL:      strings.TrimSpace(req.AvatarURL),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}
	if err := h.auth.DeleteSession(r.Context(), identity.Token); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func authResult(result store.AuthResult) authResponse {
	return authResponse{
		Token:     result.Session.Token,
		ExpiresAt: result.Session.ExpiresAt.Format(time.RFC3339),
		User:      result.User,
	}
}

// decode unmarshals and validates a JSON request body, writing the error
// response itself on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			writeError(w, http.StatusBadRequest, "validation_error", "invalid field: "+strings.ToLower(fieldErrs[0].Field()))
			return false
		}
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request")
		return false
	}
	return true
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: responseError{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
