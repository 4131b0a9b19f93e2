package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/common"
)

// CategoryKind is the closed set of things a category can group.
type CategoryKind string

const (
	CategoryKindTransaction CategoryKind = "transaction"
	CategoryKindVault       CategoryKind = "vault"
)

// ParseCategoryKind validates a kind coming from a request.
func ParseCategoryKind(s string) (CategoryKind, error) {
	switch k := CategoryKind(strings.ToLower(strings.TrimSpace(s))); k {
	case CategoryKindTransaction, CategoryKindVault:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown category kind %q", common.ErrorValidation, s)
	}
}

type Category struct {
	ID        string
	UserID    string
	Name      string
	Kind      CategoryKind
	IsDefault bool
	CreatedAt time.Time
	IsDeleted bool
}

// DefaultCategories are created for every new account.
var DefaultCategories = []struct {
	Name string
	Kind CategoryKind
}{
	{"Salary", CategoryKindTransaction},
	{"Food & Dining", CategoryKindTransaction},
	{"Transportation", CategoryKindTransaction},
	{"Shopping", CategoryKindTransaction},
	{"Bills & Utilities", CategoryKindTransaction},
	{"Entertainment", CategoryKindTransaction},
	{"Healthcare", CategoryKindTransaction},
	{"Other", CategoryKindTransaction},
	{"Social Media", CategoryKindVault},
	{"Email", CategoryKindVault},
	{"Banking", CategoryKindVault},
	{"Work", CategoryKindVault},
	{"Shopping", CategoryKindVault},
	{"Other", CategoryKindVault},
}
