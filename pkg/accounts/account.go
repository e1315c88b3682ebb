// Package accounts defines the persisted user identity and the pure input
// validation applied at registration.
package accounts

import "time"

// Account is the persisted user identity. PasswordHash and RefreshToken are
// secrets: they never serialize and are stripped by Redacted before an
// account is handed to any caller.
type Account struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullname"`
	Avatar       string    `json:"avatar"`
	CoverImage   string    `json:"coverImage,omitempty"`
	PasswordHash string    `json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Redacted returns a copy with the secret fields cleared. Handlers and the
// auth middleware only ever expose redacted accounts.
func (a *Account) Redacted() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	clone.PasswordHash = ""
	clone.RefreshToken = ""
	return &clone
}
