package gamenews

import "time"

// Role is the permission level of an account.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

// User is an account that can sign in to the admin panel.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	LastLoginAt  time.Time // zero until the first login
	CreatedAt    time.Time
}

// Principal identifies the signed-in user for the duration of a request.
type Principal struct {
	UserID   string
	Username string
	Role     Role
}

// Notice is a one-shot message shown on the next rendered page.
type Notice struct {
	Kind    string // "success" or "error"
	Message string
}
