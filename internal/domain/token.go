package domain

import "time"

// VerificationToken es un secreto de un solo uso ligado a un email, no al id del usuario.
type VerificationToken struct {
	Identifier string    `json:"identifier"`
	Token      string    `json:"-"`
	ExpiresAt  time.Time `json:"expires_at"`
}
