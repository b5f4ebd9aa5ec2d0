package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemind-go/internal/config"
)

func exerciseKV(t *testing.T, kv KVStore) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "history")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, kv.Set(ctx, "history", []byte(`{"mode":"Codebase"}`)))
	got, err := kv.Get(ctx, "history")
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"Codebase"}`, string(got))

	require.NoError(t, kv.Set(ctx, "history", []byte(`{"mode":"Support Tickets"}`)))
	got, err = kv.Get(ctx, "history")
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"Support Tickets"}`, string(got))

	require.NoError(t, kv.Delete(ctx, "history"))
	require.NoError(t, kv.Delete(ctx, "history"))
	_, err = kv.Get(ctx, "history")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV(0)
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestMemoryKV_Expiry(t *testing.T) {
	kv := NewMemoryKV(20 * time.Millisecond)
	require.NoError(t, kv.Set(context.Background(), "k", []byte("1")))
	time.Sleep(40 * time.Millisecond)
	_, err := kv.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFileKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	kv, err := NewFileKV(path)
	require.NoError(t, err)
	exerciseKV(t, kv)
}

func TestFileKV_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	kv, err := NewFileKV(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), "history", []byte(`[1,2,3]`)))

	reopened, err := NewFileKV(path)
	require.NoError(t, err)
	got, err := reopened.Get(context.Background(), "history")
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,3]`, string(got))
}

func TestFileKV_RejectsInvalidJSON(t *testing.T) {
	kv, err := NewFileKV(filepath.Join(t.TempDir(), "s.json"))
	require.NoError(t, err)
	assert.Error(t, kv.Set(context.Background(), "k", []byte("{oops")))
}

func TestNewKVStore(t *testing.T) {
	ctx := context.Background()

	kv, err := NewKVStore(ctx, config.SessionConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryKV{}, kv)

	kv, err = NewKVStore(ctx, config.SessionConfig{Backend: "file", FilePath: filepath.Join(t.TempDir(), "s.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileKV{}, kv)

	_, err = NewKVStore(ctx, config.SessionConfig{Backend: "etcd"})
	assert.Error(t, err)
}

func TestRedisKV(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	kv, err := NewRedisKV(context.Background(), config.SessionConfig{RedisAddr: addr, RedisDB: 15})
	require.NoError(t, err)
	defer kv.Close()
	exerciseKV(t, kv)
}
