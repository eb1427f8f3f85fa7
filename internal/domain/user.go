package domain

import (
	"errors"
	"fmt"
	"time"
)

// Role decides what an account of the planning API may do. Planners run and edit plans,
// admins additionally manage the roster.
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePlanner Role = "planner"
)

var ErrInvalidRole = errors.New("invalid role")

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RolePlanner:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q, use %q or %q", ErrInvalidRole, s, RoleAdmin, RolePlanner)
	}
}

// User is an account of the planning API, not an employee being planned.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
