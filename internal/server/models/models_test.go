package models

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestParseCategoryKind(t *testing.T) {
	k, err := ParseCategoryKind(" Vault ")
	assert.NoError(t, err)
	assert.Equal(t, CategoryKindVault, k)

	k, err = ParseCategoryKind("transaction")
	assert.NoError(t, err)
	assert.Equal(t, CategoryKindTransaction, k)

	_, err = ParseCategoryKind("task")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestDefaultCategories_CoverBothKinds(t *testing.T) {
	seen := map[CategoryKind]int{}
	names := map[string]bool{}
	for _, c := range DefaultCategories {
		seen[c.Kind]++
		key := string(c.Kind) + "/" + c.Name
		assert.False(t, names[key], "duplicate default %s", key)
		names[key] = true
	}
	assert.Positive(t, seen[CategoryKindTransaction])
	assert.Positive(t, seen[CategoryKindVault])
}

func TestRefreshToken_Expired(t *testing.T) {
	now := time.Now()
	assert.True(t, (&RefreshToken{ExpiresAt: now}).Expired(now))
	assert.True(t, (&RefreshToken{ExpiresAt: now.Add(-time.Second)}).Expired(now))
	assert.False(t, (&RefreshToken{ExpiresAt: now.Add(time.Second)}).Expired(now))
}
