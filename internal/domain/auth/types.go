package auth

// Package auth contains domain-level types for client identity, session state and
// deferred user intents. It is pure and free of framework/adapter concerns.

// Identity represents the authenticated principal reported by the identity boundary.
// It is opaque beyond these fields.
type Identity struct {
	ID          string `json:"user_id"`
	DisplayName string `json:"name"`
	Email       string `json:"email"`
}

// FirstName returns the first word of the display name, used for greetings.
func (i Identity) FirstName() string {
	for idx, r := range i.DisplayName {
		if r == ' ' {
			return i.DisplayName[:idx]
		}
	}
	return i.DisplayName
}

// SessionStatus is the tag of the SessionState variant.
type SessionStatus string

const (
	// StatusUnresolved is the initial state, before the first identity check completes.
	StatusUnresolved SessionStatus = "unresolved"
	// StatusAnonymous means no proof of identity is held.
	StatusAnonymous SessionStatus = "anonymous"
	// StatusAuthenticated means an Identity is held.
	StatusAuthenticated SessionStatus = "authenticated"
)

// SessionState is a tagged variant: Unresolved | Anonymous | Authenticated(Identity).
// Identity is only meaningful when Status is StatusAuthenticated.
type SessionState struct {
	Status   SessionStatus
	Identity Identity
}

// Unresolved returns the initial session state.
func Unresolved() SessionState { return SessionState{Status: StatusUnresolved} }

// Anonymous returns the state for a visitor without identity.
func Anonymous() SessionState { return SessionState{Status: StatusAnonymous} }

// Authenticated returns the state holding id.
func Authenticated(id Identity) SessionState {
	return SessionState{Status: StatusAuthenticated, Identity: id}
}

// IsResolved reports whether the state is final (anonymous or authenticated).
func (s SessionState) IsResolved() bool { return s.Status != StatusUnresolved }

// IsAuthenticated reports whether an identity is held.
func (s SessionState) IsAuthenticated() bool { return s.Status == StatusAuthenticated }

func (s SessionState) String() string {
	if s.IsAuthenticated() {
		return string(s.Status) + "(" + s.Identity.Email + ")"
	}
	return string(s.Status)
}

// ActionKind identifies the type of a deferred, auth-gated user intent.
type ActionKind string

const (
	// ActionViewReport opens a stored report.
	ActionViewReport ActionKind = "viewReport"
)

// PendingAction is a deferred user intent that requires authentication.
type PendingAction struct {
	Kind     ActionKind `json:"kind"`
	ReportID string     `json:"report_id,omitempty"`
}

// ViewReport builds the pending action for opening report id.
func ViewReport(id string) PendingAction {
	return PendingAction{Kind: ActionViewReport, ReportID: id}
}

// Valid reports whether the action names a known kind with its required fields.
func (a PendingAction) Valid() bool {
	switch a.Kind {
	case ActionViewReport:
		return a.ReportID != ""
	default:
		return false
	}
}
