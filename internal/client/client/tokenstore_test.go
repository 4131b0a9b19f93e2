package client

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/dmitrijs2005/lifedesk/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenStore(t *testing.T) {
	s := NewMemoryTokenStore()

	got, err := s.Get()
	require.NoError(t, err)
	assert.True(t, got.Empty())

	want := models.Tokens{AccessToken: "a", RefreshToken: "r"}
	require.NoError(t, s.Set(want))
	got, _ = s.Get()
	assert.Equal(t, want, got)

	require.NoError(t, s.Clear())
	got, _ = s.Get()
	assert.True(t, got.Empty())
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifedesk", "tokens.json")
	s := NewFileTokenStore(path)

	got, err := s.Get()
	require.NoError(t, err, "missing file reads as empty")
	assert.True(t, got.Empty())

	want := models.Tokens{AccessToken: "a", RefreshToken: "r"}
	require.NoError(t, s.Set(want))

	got, err = NewFileTokenStore(path).Get()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}

	require.NoError(t, s.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, s.Clear(), "clearing twice is fine")
}

func TestFileTokenStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileTokenStore(path).Get()
	assert.Error(t, err)
}
