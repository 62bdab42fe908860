package model

import "time"

// User is an account as stored by the development API.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Identity is the display identity of the signed-in user.
// It is a UI hint only and never an authorization decision.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

// Identity returns the display identity of a stored user.
func (u *User) Identity() Identity {
	return Identity{Email: u.Email, Name: u.Name, Role: NormalizeRole(u.Role)}
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// NormalizeRole maps an empty or unknown role to RoleUser.
func NormalizeRole(role string) string {
	if role == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin: 2,
		RoleUser:  1,
	}
	return levels[role] > 0 && levels[role] >= levels[minimum]
}

// AuthResult is what a successful login or registration returns.
// User is nil when the server only sent a token.
type AuthResult struct {
	Token string    `json:"token"`
	User  *Identity `json:"user,omitempty"`
}
