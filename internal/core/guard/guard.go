// Package guard decides, for every navigation, whether a page may render.
package guard

import "github.com/carddemo/terminal/internal/core/domain"

// Access is the requirement a page places on the Session.
type Access int

const (
	// None marks pages for anonymous users, i.e. the sign-on screen.
	// Authenticated users are sent to their landing menu instead.
	None Access = iota
	Authenticated
	AdminOnly
)

func (a Access) String() string {
	switch a {
	case None:
		return "none"
	case Authenticated:
		return "authenticated"
	case AdminOnly:
		return "admin-only"
	}
	return "unknown"
}

// Outcome is what the guard tells the router to do.
type Outcome int

const (
	Render Outcome = iota
	RedirectLogin
	RedirectLanding
)

// Decision is the result of Decide. Location is set for redirects.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Decide evaluates s against access. It has no side effects and must be
// called again on every navigation.
func Decide(s *domain.Session, access Access) Decision {
	switch access {
	case None:
		if s != nil {
			return Decision{Outcome: RedirectLanding, Location: s.LandingPath()}
		}
		return Decision{Outcome: Render}
	case Authenticated:
		if s == nil {
			return Decision{Outcome: RedirectLogin, Location: domain.PathLogin}
		}
		return Decision{Outcome: Render}
	case AdminOnly:
		if s == nil {
			return Decision{Outcome: RedirectLogin, Location: domain.PathLogin}
		}
		if !s.IsAdmin() {
			return Decision{Outcome: RedirectLanding, Location: s.LandingPath()}
		}
		return Decision{Outcome: Render}
	}
	return Decision{Outcome: RedirectLogin, Location: domain.PathLogin}
}

// Fallback is where an unmatched route sends the caller.
func Fallback(s *domain.Session) string {
	if s == nil {
		return domain.PathLogin
	}
	return s.LandingPath()
}
