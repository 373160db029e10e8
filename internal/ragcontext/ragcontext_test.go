package ragcontext

import (
	"context"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreDefaultsToEmpty(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	text, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", text)

	has, err := s.Has(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMemoryStoreHas(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty string", "", false},
		{"single character", "x", true},
		{"document", "Seoul is the capital of Korea.", true},
		{"whitespace only", " ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemoryStore()
			ctx := context.Background()
			require.NoError(t, s.Set(ctx, tt.text))

			has, err := s.Has(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, has)
		})
	}
}

func TestMemoryStoreSetReplaces(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "first"))
	require.NoError(t, s.Set(ctx, "second"))
	text, _ := s.Get(ctx)
	assert.Equal(t, "second", text)

	// Clearing with an empty string is an ordinary replace.
	require.NoError(t, s.Set(ctx, ""))
	text, _ = s.Get(ctx)
	assert.Equal(t, "", text)
	has, _ := s.Has(ctx)
	assert.False(t, has)
}

func TestMemoryStoreConcurrentReaders(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "shared"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := s.Get(ctx)
			assert.NoError(t, err)
			assert.Equal(t, "shared", text)
		}()
	}
	wg.Wait()
}

func TestNewRedisStoreConnectionFailure(t *testing.T) {
	_, err := NewRedisStore("127.0.0.1:1", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis connection failed")
}

func TestRedisStoreDefaultKey(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	s := newRedisStore(client, "")
	assert.Equal(t, "rag:context", s.key)

	s = newRedisStore(client, "translator:ctx")
	assert.Equal(t, "translator:ctx", s.key)
}

func TestPostgresStoreQuotesTable(t *testing.T) {
	s := newPostgresStore(nil, "")
	assert.Equal(t, `"context_imports"`, s.table)

	s = newPostgresStore(nil, `imports"; DROP TABLE x; --`)
	assert.Equal(t, `"imports""; DROP TABLE x; --"`, s.table)
}
