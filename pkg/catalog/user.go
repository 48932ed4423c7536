package catalog

import (
	"encoding/json"
	"time"
)

// User is a back-office account as seen by clients.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Credentials returned by a successful login.
type Credentials struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	User        User   `json:"user"`

	Extra map[string]json.RawMessage `json:"-"`
}
