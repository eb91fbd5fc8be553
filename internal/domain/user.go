package domain

import "time"

type User struct {
	ID              string     `json:"id"`
	Name            string     `json:"name,omitempty"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	AuthProvider    string     `json:"auth_provider,omitempty"`
	AuthSubject     string     `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
}
