package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserKey(t *testing.T) {
	assert.Equal(t, "u:system:crops:list:default", UserKey(SystemScope, "crops", "list", "default"))
	assert.Equal(t, "u:abc:plots:farm:f1", UserKey("abc", "plots", "farm", "f1"))
}

func TestQueryHashStable(t *testing.T) {
	a := QueryHash(map[string]interface{}{"skip": 0, "limit": 100, "group": "vegetable"})
	b := QueryHash(map[string]interface{}{"group": "vegetable", "limit": 100, "skip": 0})
	assert.Equal(t, a, b)
	assert.Len(t, a, 8)

	assert.Equal(t, "default", QueryHash(nil))
	assert.NotEqual(t, a, QueryHash(map[string]interface{}{"skip": 10, "limit": 100, "group": "vegetable"}))
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_, ok := s.Get(ctx, "missing")
	assert.False(t, ok)

	s.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := s.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	s.Set(ctx, "k", []byte("v"), -time.Second)
	_, ok := s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestDeletePattern(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	s.Set(ctx, "u:system:crops:list:default", []byte("1"), time.Minute)
	s.Set(ctx, "u:system:crops:list:ab12cd34", []byte("2"), time.Minute)
	s.Set(ctx, "u:system:animal_types:list:default", []byte("3"), time.Minute)

	assert.NoError(t, s.DeletePattern(ctx, "u:system:crops:*"))

	_, ok := s.Get(ctx, "u:system:crops:list:default")
	assert.False(t, ok)
	_, ok = s.Get(ctx, "u:system:crops:list:ab12cd34")
	assert.False(t, ok)
	_, ok = s.Get(ctx, "u:system:animal_types:list:default")
	assert.True(t, ok)
}

func TestMatchPattern(t *testing.T) {
	assert.True(t, matchPattern("u:a:plots:farm:f1:*", "u:a:plots:farm:f1:list:default"))
	assert.False(t, matchPattern("u:a:plots:farm:f1:*", "u:a:plots:farm:f2:list:default"))
	assert.True(t, matchPattern("exact", "exact"))
	assert.False(t, matchPattern("exact", "exact:more"))
	assert.True(t, matchPattern("u:*:stats", "u:anyone:stats"))
}

func TestInvalidateUsesDefault(t *testing.T) {
	ctx := context.Background()
	old := Default
	Default = NewMemory()
	defer func() { Default = old }()

	Default.Set(ctx, "u:system:crops:list:default", []byte("1"), time.Minute)
	Invalidate(ctx, SystemScope, "crops:*")
	_, ok := Default.Get(ctx, "u:system:crops:list:default")
	assert.False(t, ok)
}
