package model

import "time"

// User mirrors the 'users' table. Role is OWNER for accounts that manage
// restaurants and STAFF for order-taking accounts. Orders may reference a
// user as the seated customer, but guest orders carry no user at all.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name,omitempty"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
