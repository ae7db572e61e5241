package redisstore_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/catalog-console/internal/errors"
	"github.com/jrsteele09/catalog-console/session"
	"github.com/jrsteele09/catalog-console/session/redisstore"
	"github.com/jrsteele09/catalog-console/users"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func testSession() session.Session {
	return session.Session{
		Token: "token-1",
		User:  &users.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: users.RoleAdmin},
	}
}

func TestRedisRepo(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	repo := redisstore.New(rdb, "persist", session.NewCodec(""))
	require.Equal(t, "persist:auth", repo.Key())

	_, err := repo.Load(ctx)
	require.ErrorIs(t, err, errors.ErrSessionNotFound)

	require.NoError(t, repo.Save(ctx, testSession()))
	require.True(t, mr.Exists("persist:auth"))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, got.Equal(testSession()))

	require.NoError(t, repo.Clear(ctx))
	require.False(t, mr.Exists("persist:auth"))
	require.NoError(t, repo.Clear(ctx))
}

func TestRedisRepo_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)

	first := session.NewStore(ctx, redisstore.New(rdb, "console", session.NewCodec("shared-secret")))
	require.NoError(t, first.Login(ctx, testSession()))

	restarted := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = restarted.Close() })
	second := session.NewStore(ctx, redisstore.New(restarted, "console", session.NewCodec("shared-secret")))
	require.True(t, second.Snapshot().Equal(testSession()))

	require.NoError(t, second.Logout(ctx))
	require.False(t, mr.Exists("console:auth"))
}

func TestRedisRepo_EndSessionAfterClientGone(t *testing.T) {
	mr, rdb := newRedis(t)
	store := session.NewStore(context.Background(), redisstore.New(rdb, "console", session.NewCodec("")))
	require.NoError(t, store.Login(context.Background(), testSession()))
	require.True(t, mr.Exists("console:auth"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store.EndSession(ctx)

	require.True(t, store.Snapshot().Empty())
	require.False(t, mr.Exists("console:auth"))
}

func TestRedisRepo_CorruptValue(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	require.NoError(t, mr.Set("persist:auth", "nope"))

	repo := redisstore.New(rdb, "persist", session.NewCodec(""))
	_, err := repo.Load(ctx)
	require.ErrorIs(t, err, errors.ErrSessionCorrupt)
	require.True(t, session.NewStore(ctx, repo).Snapshot().Empty())
}
