package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	setNXKeys []string
	setNXResp bool
	delKeys   []string
}

func (f *fakeStore) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Set(_ context.Context, _ string, _ any, _ time.Duration) *redis.StatusCmd {
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStore) Get(_ context.Context, _ string) *redis.StringCmd {
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) *redis.BoolCmd {
	f.setNXKeys = append(f.setNXKeys, key)
	return redis.NewBoolResult(f.setNXResp, nil)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.delKeys = append(f.delKeys, keys...)
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestAcquireLock(t *testing.T) {
	store := &fakeStore{setNXResp: true}
	client := &Client{store: store}

	ok, err := client.AcquireLock(context.Background(), "distribution", "startup-1:2024-03", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, store.setNXKeys, 1)
	assert.Equal(t, "rs:lock:distribution:startup-1:2024-03", store.setNXKeys[0])
}

func TestAcquireLockHeldElsewhere(t *testing.T) {
	store := &fakeStore{setNXResp: false}
	client := &Client{store: store}

	ok, err := client.AcquireLock(context.Background(), "distribution", "startup-1:2024-03", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAcquireLockValidation(t *testing.T) {
	client := &Client{store: &fakeStore{}}

	_, err := client.AcquireLock(context.Background(), "", "id", time.Minute)
	assert.Error(t, err)

	_, err = client.AcquireLock(context.Background(), "scope", "", time.Minute)
	assert.Error(t, err)
}

func TestReleaseLock(t *testing.T) {
	store := &fakeStore{}
	client := &Client{store: store}

	require.NoError(t, client.ReleaseLock(context.Background(), "distribution", "startup-1:2024-03"))
	require.Len(t, store.delKeys, 1)
	assert.Equal(t, "rs:lock:distribution:startup-1:2024-03", store.delKeys[0])
}
