package model

import (
	"time"

	"diary-backend/internal/shared/auth"
)

// User is an account. PasswordHash is only loaded by the queries that
// need it and is never cached.
type User struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Role              auth.Role  `json:"role"`
	Bio               *string    `json:"bio"`
	IsActive          bool       `json:"is_active"`
	LastProfileUpdate *time.Time `json:"last_profile_update"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// SearchHit is a search match with its live public entry count.
type SearchHit struct {
	User
	PublicDiariesCount int64
}

