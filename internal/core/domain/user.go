package domain

import (
	"strings"
	"time"
)

// User types as stored in the legacy user security file.
const (
	UserTypeAdmin   = "A"
	UserTypeRegular = "U"
)

// User models a sign-on identity of the CardDemo system.
type User struct {
	UserID       string    `json:"userId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"-"`
	UserType     string    `json:"userType"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FullName joins first and last name the way the sign-on screen greets the user.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsAdmin reports whether the user carries the admin user type.
func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}

// NormalizeUserID upper-cases and trims a user id; ids are case-insensitive on the terminal.
func NormalizeUserID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
