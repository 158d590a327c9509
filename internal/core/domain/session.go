package domain

import "time"

// Role is the authorization role derived from the user type at sign-on.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleBackOffice Role = "back-office"
)

// Landing routes per role.
const (
	PathLogin     = "/login"
	PathMainMenu  = "/menu/main"
	PathAdminMenu = "/menu/admin"
)

// RoleFromUserType maps the backend userType field to a Role: "A" is admin,
// anything else is back-office.
func RoleFromUserType(userType string) Role {
	if userType == UserTypeAdmin {
		return RoleAdmin
	}
	return RoleBackOffice
}

// Session is the authenticated identity of one browser session. It is created
// at login and destroyed at logout; Role never changes in between.
type Session struct {
	UserID       string    `json:"userId"`
	FullName     string    `json:"fullName"`
	Role         Role      `json:"role"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// IsAdmin reports whether the session carries the admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// LandingPath is the default menu for the session's role.
func (s *Session) LandingPath() string {
	if s.IsAdmin() {
		return PathAdminMenu
	}
	return PathMainMenu
}

// ExpiresWithin reports whether the access token expires before now+d.
func (s *Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	return !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(now.Add(d))
}

// AuthResult is what a successful sign-on produces on the backend side.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	User         *User
}
