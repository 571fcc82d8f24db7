package users

import (
	"strings"
	"time"
)

// User is a signed-in account. IDs are "<provider>:<subject>", for example
// "google:1234" or "dev:alice".
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PictureURL   string    `json:"pictureUrl,omitempty"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"createdAt"`
	LastSignInAt time.Time `json:"lastSignInAt"`
}

// ProviderOf returns the part of id before the first colon.
func ProviderOf(id string) string {
	provider, _, ok := strings.Cut(id, ":")
	if !ok {
		return ""
	}
	return provider
}
