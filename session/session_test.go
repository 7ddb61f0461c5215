package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/rankcheck/models"
	"github.com/use-agent/rankcheck/tracker"
)

type nopLooker struct{}

func (nopLooker) Lookup(ctx context.Context, req models.LookupRequest) (*models.RankLookupResult, error) {
	return &models.RankLookupResult{Results: []models.OrganicResult{}}, nil
}

func newTestRegistry(capacity int, ttl time.Duration) *Registry {
	return NewRegistry(capacity, ttl, func(id, callbackURL string) *tracker.Tracker {
		return tracker.New(nopLooker{})
	})
}

func TestRegistry_CreateGetDelete(t *testing.T) {
	r := newTestRegistry(10, time.Hour)
	defer r.Close()

	s := r.Create("https://hooks.example/cb")
	require.NotEmpty(t, s.ID)
	assert.Equal(t, "https://hooks.example/cb", s.CallbackURL)
	assert.Equal(t, models.StatusIdle, s.Tracker.Snapshot().Status)

	got, ok := r.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())

	assert.True(t, r.Delete(s.ID))
	assert.False(t, r.Delete(s.ID))
	_, ok = r.Get(s.ID)
	assert.False(t, ok)
}

func TestRegistry_EvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	r := newTestRegistry(2, time.Hour)
	defer r.Close()

	a := r.Create("")
	time.Sleep(2 * time.Millisecond)
	b := r.Create("")
	time.Sleep(2 * time.Millisecond)
	_, _ = r.Get(a.ID)

	c := r.Create("")
	assert.Equal(t, 2, r.Len())

	_, ok := r.Get(b.ID)
	assert.False(t, ok, "b was least recently used")
	_, ok = r.Get(a.ID)
	assert.True(t, ok)
	_, ok = r.Get(c.ID)
	assert.True(t, ok)
}

func TestRegistry_EvictExpired(t *testing.T) {
	r := newTestRegistry(10, time.Minute)
	defer r.Close()

	s := r.Create("")
	assert.Empty(t, r.evictExpired(time.Now()))

	expired := r.evictExpired(time.Now().Add(2 * time.Minute))
	require.Len(t, expired, 1)
	assert.Equal(t, s.ID, expired[0].ID)
	assert.Equal(t, 0, r.Len())
}
