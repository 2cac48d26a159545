package cart

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"storefront/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddIsIdempotent(t *testing.T) {
	s := Reduce(State{}, Add(Item{ID: 1, Name: "Alpha", Price: 500}))
	again := Reduce(s, Add(Item{ID: 1, Name: "Alpha", Price: 500}))

	assert.Equal(t, 1, again.Count())
	assert.Equal(t, s.Items(), again.Items())
}

func TestCountIsDistinctIDs(t *testing.T) {
	var s State
	for _, id := range []uint{1, 2, 1, 3, 2} {
		s = Reduce(s, Add(Item{ID: id}))
	}
	assert.Equal(t, 3, s.Count())

	s = Reduce(s, Remove(2))
	assert.Equal(t, 2, s.Count())
	assert.False(t, s.Contains(2))

	s = Reduce(s, Remove(42))
	assert.Equal(t, 2, s.Count())

	assert.Zero(t, Reduce(s, Clear()).Count())
}

func TestTotals(t *testing.T) {
	s := Reduce(State{}, Add(Item{ID: 1, Price: 500}))
	s = Reduce(s, Add(Item{ID: 2, Price: 300}))

	got := s.Totals()
	assert.InDelta(t, 800, got.Subtotal, 1e-9)
	assert.InDelta(t, 80, got.Tax, 1e-9)
	assert.InDelta(t, 880, got.Total, 1e-9)

	assert.Equal(t, Totals{}, State{}.Totals())
}

func TestReduceDoesNotMutatePreviousState(t *testing.T) {
	first := Reduce(State{}, Add(Item{ID: 1}))
	second := Reduce(first, Add(Item{ID: 2}))
	_ = Reduce(second, Remove(1))

	assert.Equal(t, []Item{{ID: 1}}, first.Items())
	assert.Equal(t, []Item{{ID: 1}, {ID: 2}}, second.Items())

	items := second.Items()
	items[0].Name = "changed"
	assert.Empty(t, second.Items()[0].Name)
}

func TestItemFromListing(t *testing.T) {
	l := &models.Listing{ID: 7, Name: "Beta", Price: 12.5}
	assert.Equal(t, Item{ID: 7, Name: "Beta", Price: 12.5}, ItemFromListing(l))

	l.SetMediaList([]models.MediaObject{{Key: "a", URL: "https://cdn.test/a"}, {Key: "b", URL: "https://cdn.test/b"}})
	assert.Equal(t, "https://cdn.test/a", ItemFromListing(l).CoverURL)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := NewSessions()
	a, b := NewID(), NewID()
	require.NotEqual(t, a, b)

	s.Dispatch(a, Add(Item{ID: 1, Price: 10}))
	assert.Equal(t, 1, s.Snapshot(a).Count())
	assert.Zero(t, s.Snapshot(b).Count())

	s.Dispatch(a, Clear())
	assert.Zero(t, s.Len())
}

func TestSessionsConcurrentDispatch(t *testing.T) {
	s := NewSessions()
	id := NewID()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Dispatch(id, Add(Item{ID: uint(i % 10), Name: fmt.Sprint(i)}))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, s.Snapshot(id).Count())
}

func TestSessionsEvictLeastRecentlyUsedAtCapacity(t *testing.T) {
	s := NewSessions(WithMaxSessions(2))
	clock := time.Unix(1700000000, 0)
	s.now = func() time.Time { return clock }

	s.Dispatch("a", Add(Item{ID: 1}))
	clock = clock.Add(time.Second)
	s.Dispatch("b", Add(Item{ID: 1}))
	clock = clock.Add(time.Second)
	s.Dispatch("a", Add(Item{ID: 2}))
	clock = clock.Add(time.Second)

	for i := 0; i < 100; i++ {
		s.Dispatch(NewID(), Add(Item{ID: 1}))
	}
	assert.Equal(t, 2, s.Len())
}

func TestSessionsKeepRecentlyUsedCart(t *testing.T) {
	s := NewSessions(WithMaxSessions(2))
	clock := time.Unix(1700000000, 0)
	s.now = func() time.Time { return clock }

	s.Dispatch("a", Add(Item{ID: 1}))
	clock = clock.Add(time.Second)
	s.Dispatch("b", Add(Item{ID: 1}))
	clock = clock.Add(time.Second)
	s.Dispatch("a", Add(Item{ID: 2}))
	clock = clock.Add(time.Second)
	s.Dispatch("c", Add(Item{ID: 1}))

	assert.Equal(t, 2, s.Snapshot("a").Count())
	assert.Zero(t, s.Snapshot("b").Count(), "least recently used cart is evicted")
	assert.Equal(t, 1, s.Snapshot("c").Count())
}

func TestSessionsExpireIdleCarts(t *testing.T) {
	s := NewSessions(WithIdleTTL(time.Hour))
	clock := time.Unix(1700000000, 0)
	s.now = func() time.Time { return clock }

	s.Dispatch("a", Add(Item{ID: 1}))
	s.Dispatch("b", Add(Item{ID: 1}))
	clock = clock.Add(30 * time.Minute)
	s.Dispatch("b", Add(Item{ID: 2}))

	clock = clock.Add(45 * time.Minute)
	assert.Zero(t, s.Snapshot("a").Count())
	assert.Equal(t, 2, s.Snapshot("b").Count())

	clock = clock.Add(2 * time.Hour)
	assert.Equal(t, 1, s.Prune())
	assert.Zero(t, s.Len())
}
