package models

import "time"

// VaultEntry is a stored credential. EncryptedSecret is always ciphertext.
type VaultEntry struct {
	ID              string
	UserID          string
	Website         string
	Username        string
	EncryptedSecret string
	CategoryID      string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	IsDeleted       bool
}
