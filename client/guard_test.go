package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sessionWith(t *testing.T, token string, user Identity) *Session {
	t.Helper()
	s := NewSession("http://localhost:0", NewCache(t.TempDir()))
	s.token = token
	s.user = user
	return s
}

func TestGuardOrdering(t *testing.T) {
	cases := []struct {
		name  string
		token string
		user  Identity
		roles []string
		want  DecisionKind
	}{
		{"anonymous goes to sign-in", "", Identity{}, nil, DecisionSignIn},
		{"anonymous outranks role check", "", Identity{}, []string{"admin"}, DecisionSignIn},
		{"unapproved before role", "token-1", Identity{Role: "student", Approved: false}, []string{"admin"}, DecisionPendingApproval},
		{"unapproved even with matching role", "token-1", Identity{Role: "student", Approved: false}, []string{"student"}, DecisionPendingApproval},
		{"alumni denied admin view", "token-1", Identity{Role: "alumni", Approved: true}, []string{"admin"}, DecisionDenied},
		{"approved wrong role denied", "token-1", Identity{Role: "student", Approved: true}, []string{"admin"}, DecisionDenied},
		{"approved matching role allowed", "token-1", Identity{Role: "admin", Approved: true}, []string{"admin"}, DecisionAllow},
		{"approved any role allowed", "token-1", Identity{Role: "alumni", Approved: true}, nil, DecisionAllow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := sessionWith(t, tc.token, tc.user)
			got := s.Guard("/protected", tc.roles...)
			assert.Equal(t, tc.want, got.Kind)
		})
	}
}

func TestGuardCarriesRequestedLocation(t *testing.T) {
	s := sessionWith(t, "", Identity{})
	d := s.Guard("/jobs/42")
	assert.Equal(t, DecisionSignIn, d.Kind)
	assert.Equal(t, "/jobs/42", d.Location)

	s = sessionWith(t, "token-1", Identity{Role: "student", Approved: true})
	d = s.Guard("/jobs/42")
	assert.Equal(t, DecisionAllow, d.Kind)
	assert.Equal(t, "", d.Location)
}
