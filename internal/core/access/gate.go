// Package access decides whether a session may open a guarded view. Decide is
// the only place role-based authorization is evaluated.
package access

import (
	"net/url"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

// SignInPath is where unauthenticated visitors are sent.
const SignInPath = "/signin"

// ReturnParam carries the originally requested path on the sign-in redirect.
const ReturnParam = "from"

// Decision is the outcome of Decide. When Allow is false RedirectTo is set.
type Decision struct {
	Allow      bool
	RedirectTo string
	// ReturnTo is the path to resume after signing in; set only for sign-in
	// redirects.
	ReturnTo string
}

// Location renders the redirect target, appending ReturnTo as ?from=.
func (d Decision) Location() string {
	if d.ReturnTo == "" {
		return d.RedirectTo
	}
	return d.RedirectTo + "?" + url.Values{ReturnParam: {d.ReturnTo}}.Encode()
}

// DashboardPath is the landing page canonically associated with role.
func DashboardPath(role domain.Role) string {
	switch role {
	case domain.RoleSeller:
		return "/seller/dashboard"
	case domain.RoleAdmin:
		return "/admin/dashboard"
	default:
		return "/user/dashboard"
	}
}

// Decide authorizes a request for path. An empty required set admits any
// authenticated role. A session still loading is treated as unauthenticated;
// callers wait for boot before deciding.
func Decide(s domain.Session, required []domain.Role, path string) Decision {
	if !s.Authenticated() {
		return Decision{RedirectTo: SignInPath, ReturnTo: path}
	}
	if len(required) == 0 {
		return Decision{Allow: true}
	}
	role := s.User.Role
	for _, r := range required {
		if r == role {
			return Decision{Allow: true}
		}
	}
	return Decision{RedirectTo: DashboardPath(role)}
}
