package domain

// SessionStatus is the published authentication state.
type SessionStatus string

const (
	SessionLoading         SessionStatus = "loading"
	SessionAuthenticated   SessionStatus = "authenticated"
	SessionUnauthenticated SessionStatus = "unauthenticated"
)

// Session is the state consumers observe. Token and User are either both set
// (authenticated) or both empty.
type Session struct {
	Status SessionStatus `json:"status"`
	User   *UserProfile  `json:"user,omitempty"`
	Token  string        `json:"-"`
}

// Authenticated reports whether the session carries a full credential.
func (s Session) Authenticated() bool {
	return s.Status == SessionAuthenticated && s.User != nil && s.Token != ""
}

// Role returns the user's role, or "" for guests.
func (s Session) Role() Role {
	if !s.Authenticated() {
		return ""
	}
	return s.User.Role
}

// Guest is the unauthenticated session.
func Guest() Session {
	return Session{Status: SessionUnauthenticated}
}

// SignedIn builds an authenticated session from a credential.
func SignedIn(c Credential) Session {
	u := c.User
	return Session{Status: SessionAuthenticated, User: &u, Token: c.Token}
}
