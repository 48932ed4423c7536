package auth

import (
	"time"

	"github.com/google/uuid"

	"uia-atlas/atlas-portal/pkg/catalog"
)

// User is a back-office account allowed to review submissions.
type User struct {
	ID           uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string       `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"size:255;not null" json:"-"`
	Role         catalog.Role `gorm:"size:32;not null;default:'reviewer'" json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user"`
}
