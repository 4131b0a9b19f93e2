// Package models holds the client-side view of API resources as decoded
// from the server's JSON envelope.
package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Tokens is the credential pair a session carries. It is also the on-disk
// shape used by FileTokenStore.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Empty reports whether no credential is held.
func (t Tokens) Empty() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

// VaultEntry as listed by the server. Password is always the mask.
type VaultEntry struct {
	ID         string    `json:"id"`
	Website    string    `json:"website"`
	Username   string    `json:"username"`
	Password   string    `json:"password"`
	CategoryID string    `json:"categoryId"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// VaultEntryInput is the create/update payload. A nil Password on update
// keeps the stored secret.
type VaultEntryInput struct {
	Website    string  `json:"website"`
	Username   string  `json:"username"`
	Password   *string `json:"password,omitempty"`
	CategoryID string  `json:"categoryId"`
	Notes      string  `json:"notes"`
}

type ExportLink struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	Entries   int       `json:"entries"`
}
