package filestore_test

import (
	"context"
	"os"
	"testing"

	"github.com/jrsteele09/catalog-console/internal/errors"
	"github.com/jrsteele09/catalog-console/session"
	"github.com/jrsteele09/catalog-console/session/filestore"
	"github.com/jrsteele09/catalog-console/users"
	"github.com/stretchr/testify/require"
)

func testSession() session.Session {
	return session.Session{
		Token: "token-1",
		User:  &users.User{ID: "u1", Name: "Sam", Email: "sam@example.com", Role: users.RoleUser, ProfilePicture: "profiles/sam.png"},
	}
}

func TestFileRepo(t *testing.T) {
	ctx := context.Background()

	for _, secret := range []string{"", "s3cret"} {
		name := "plain"
		if secret != "" {
			name = "sealed"
		}
		t.Run(name, func(t *testing.T) {
			repo, err := filestore.New(t.TempDir(), "persist", session.NewCodec(secret))
			require.NoError(t, err)

			_, err = repo.Load(ctx)
			require.ErrorIs(t, err, errors.ErrSessionNotFound)

			require.NoError(t, repo.Save(ctx, testSession()))
			got, err := repo.Load(ctx)
			require.NoError(t, err)
			require.True(t, got.Equal(testSession()))

			info, err := os.Stat(repo.Path())
			require.NoError(t, err)
			require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

			require.NoError(t, repo.Clear(ctx))
			require.NoError(t, repo.Clear(ctx))
			_, err = repo.Load(ctx)
			require.ErrorIs(t, err, errors.ErrSessionNotFound)
		})
	}
}

func TestFileRepo_CorruptFileRestoresEmptySession(t *testing.T) {
	ctx := context.Background()
	repo, err := filestore.New(t.TempDir(), "persist", session.NewCodec(""))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(repo.Path(), []byte("\x00garbage"), 0o600))

	_, err = repo.Load(ctx)
	require.ErrorIs(t, err, errors.ErrSessionCorrupt)

	store := session.NewStore(ctx, repo)
	require.True(t, store.Snapshot().Empty())
}

func TestFileRepo_SurvivesReload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := filestore.New(dir, "persist", session.NewCodec("k"))
	require.NoError(t, err)
	require.NoError(t, session.NewStore(ctx, repo).Login(ctx, testSession()))

	reopened, err := filestore.New(dir, "persist", session.NewCodec("k"))
	require.NoError(t, err)
	require.True(t, session.NewStore(ctx, reopened).Snapshot().Equal(testSession()))
}

func TestNew_RequiresNamespace(t *testing.T) {
	_, err := filestore.New(t.TempDir(), "", session.NewCodec(""))
	require.Error(t, err)
}
