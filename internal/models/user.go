package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Roles recognized by the platform.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	bun.BaseModel `bun:"table:users"`

	UserID       string    `bun:"user_id,pk" json:"user_id"`
	Email        string    `bun:"email,unique" json:"email"`
	PasswordHash string    `bun:"password_hash" json:"-"`
	Role         string    `bun:"role" json:"role"`
	Name         string    `bun:"name" json:"name"`
	Phone        string    `bun:"phone" json:"phone,omitempty"`
	Address      string    `bun:"address" json:"address,omitempty"`
	Active       bool      `bun:"active" json:"active"`
	CreatedAt    time.Time `bun:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
