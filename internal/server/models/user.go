package models

import "time"

// Role is an opaque claim carried through tokens; the server only knows the
// two built-in values.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the identity record held by the user directory. Email is unique
// and stored lowercase. PasswordHash never leaves the server: it is excluded
// from every response shape.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}
