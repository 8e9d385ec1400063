package client

// DecisionKind orders the access-guard outcomes: an unauthenticated caller is
// sent to sign-in before approval is considered, and approval before role.
type DecisionKind int

const (
	DecisionAllow DecisionKind = iota
	DecisionSignIn
	DecisionPendingApproval
	DecisionDenied
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionAllow:
		return "allow"
	case DecisionSignIn:
		return "sign_in"
	case DecisionPendingApproval:
		return "pending_approval"
	case DecisionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Decision is the guard verdict for a protected location. Location is set
// only for sign-in so the caller can return there after authenticating.
type Decision struct {
	Kind     DecisionKind
	Location string
}

// Guard evaluates access to location for the current session. An empty role
// list admits any approved, authenticated user.
func (s *Session) Guard(location string, allowedRoles ...string) Decision {
	if s.Token() == "" {
		return Decision{Kind: DecisionSignIn, Location: location}
	}
	if !s.IsApproved() {
		return Decision{Kind: DecisionPendingApproval}
	}
	if !s.Authorize(allowedRoles...) {
		return Decision{Kind: DecisionDenied}
	}
	return Decision{Kind: DecisionAllow}
}
