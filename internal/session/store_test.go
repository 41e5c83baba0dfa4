package session

import (
	"context"
	"testing"
	"time"

	"report_portal/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, ttl), mr
}

func TestRedisStore_CreateGet(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()
	user := &domain.SessionUser{ID: 2, Username: "acme", Role: domain.RoleClient}

	sess, err := store.Create(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	assert.True(t, mr.Exists("session:"+sess.ID))
	assert.Equal(t, time.Hour, mr.TTL("session:"+sess.ID))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.True(t, got.Authenticated())
	assert.Equal(t, *user, *got.User)
	assert.Equal(t, sess.ID, got.ID)
}

func TestRedisStore_DistinctIDs(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()
	user := &domain.SessionUser{ID: 1, Username: "admin", Role: domain.RoleAdmin}

	a, err := store.Create(ctx, user)
	require.NoError(t, err)
	b, err := store.Create(ctx, user)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRedisStore_GetUnknownOrMalformed(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	got, err := store.Get(ctx, "not-a-uuid")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.Get(ctx, "6f1c2b9e-4f3a-4b8e-9d21-0b7a1c2d3e4f")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	sess, err := store.Create(ctx, &domain.SessionUser{ID: 2, Username: "acme", Role: domain.RoleClient})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_DestroyPreventsReuse(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx, &domain.SessionUser{ID: 2, Username: "acme", Role: domain.RoleClient})
	require.NoError(t, err)
	require.NoError(t, store.Destroy(ctx, sess.ID))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_Unavailable(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()
	sess, err := store.Create(ctx, &domain.SessionUser{ID: 2, Username: "acme", Role: domain.RoleClient})
	require.NoError(t, err)

	mr.Close()
	err = store.Destroy(ctx, sess.ID)
	assert.ErrorIs(t, err, domain.ErrSessionStore)
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, domain.ErrSessionStore)
}
