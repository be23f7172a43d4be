package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fs := NewFileStorage(path)

	p, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)

	want := Persisted{Token: "t1", Identity: domain.Identity{UserID: 12, Email: "a@b.com"}}
	require.NoError(t, fs.Save(ctx, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	p, err = fs.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, want, *p)

	require.NoError(t, fs.Clear(ctx))
	require.NoError(t, fs.Clear(ctx), "clearing twice is fine")
	p, err = fs.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestFileStorage_Corrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStorage(path).Load(context.Background())
	assert.Error(t, err)
}

func TestMemoryStorage_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage()
	require.NoError(t, m.Save(ctx, Persisted{Token: "t1"}))

	p, _ := m.Load(ctx)
	p.Token = "changed"

	again, _ := m.Load(ctx)
	assert.Equal(t, "t1", again.Token)
}
