package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/models"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/store"
)

type identityContextKey struct{}

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID   string
	Name     string
	Role     string
	Approved bool
	Token    string
}

// AuthMiddleware resolves the bearer token to a session and attaches the
// caller identity. Requests without a valid session get 401.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		_, user, err := h.auth.GetSession(r.Context(), token)
		if err != nil {
			if errors.Is(err, store.ErrSessionNotFound) {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired session")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		identity := Identity{
			UserID:   user.UserID,
			Name:     user.Name,
			Role:     user.Role,
			Approved: user.Approved,
			Token:    token,
		}
		ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireApproved blocks unapproved identities from everything beyond the
// auth surface. They stay authenticated but restricted.
func (h *Handler) RequireApproved(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing session")
			return
		}
		if !identity.Approved {
			writeError(w, http.StatusForbidden, "approval_pending", "account pending approval")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func identityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	return identity, ok
}

// requireRole writes 403 and returns false unless the caller holds one of
// the roles. An empty role list admits any authenticated identity.
func requireRole(w http.ResponseWriter, r *http.Request, roles ...string) (Identity, bool) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return Identity{}, false
	}
	if len(roles) == 0 {
		return identity, true
	}
	for _, role := range roles {
		if identity.Role == role {
			return identity, true
		}
	}
	writeError(w, http.StatusForbidden, "access_denied", "role not permitted")
	return Identity{}, false
}

// requireOwnerOrAdmin admits the record owner and admins.
func requireOwnerOrAdmin(w http.ResponseWriter, r *http.Request, ownerID string) (Identity, bool) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return Identity{}, false
	}
	if identity.UserID != ownerID && identity.Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "access_denied", "not the owner")
		return Identity{}, false
	}
	return identity, true
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
