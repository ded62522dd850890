package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/recipe-ingest/internal/store"
	"github.com/jonathan/recipe-ingest/internal/store/memstore"
	"github.com/jonathan/recipe-ingest/internal/store/storetest"
	"github.com/jonathan/recipe-ingest/internal/types"
)

func TestSave_Idempotent(t *testing.T) {
	s := memstore.New()
	g := NewGateway(s, zerolog.Nop())
	ctx := context.Background()

	first := g.Save(ctx, storetest.Recipe("themealdb", "52772", "chicken"))
	second := g.Save(ctx, storetest.Recipe("themealdb", "52772", "chicken"))

	assert.Equal(t, Saved, first.Outcome)
	assert.Equal(t, SkippedDuplicate, second.Outcome)
	assert.Equal(t, first.ID, second.ID)
	assert.NoError(t, second.Err)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSave_ConcurrentSameKey(t *testing.T) {
	s := memstore.New()
	g := NewGateway(s, zerolog.Nop())
	ctx := context.Background()

	const workers = 20
	results := make([]Result, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = g.Save(ctx, storetest.Recipe("themealdb", "1", "rice"))
		}(i)
	}
	wg.Wait()

	saved := 0
	for _, r := range results {
		if r.Outcome == Saved {
			saved++
		} else {
			assert.Equal(t, SkippedDuplicate, r.Outcome)
		}
	}
	assert.Equal(t, 1, saved)

	n, _ := s.Count(ctx)
	assert.Equal(t, 1, n)
	assert.Empty(t, g.locks.locks, "locks are released")
}

// failingStore wraps a store and fails chosen operations.
type failingStore struct {
	store.Store
	findErr   error
	insertErr error
}

func (f *failingStore) FindByExternalID(ctx context.Context, source, id string) (*types.Recipe, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.Store.FindByExternalID(ctx, source, id)
}

func (f *failingStore) Insert(ctx context.Context, r *types.Recipe) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	return f.Store.Insert(ctx, r)
}

func TestSave_InsertFailure(t *testing.T) {
	cause := errors.New("connection reset")
	s := &failingStore{Store: memstore.New(), insertErr: cause}
	g := NewGateway(s, zerolog.Nop())

	res := g.Save(context.Background(), storetest.Recipe("themealdb", "9"))

	assert.Equal(t, Error, res.Outcome)
	var perr *PersistenceError
	require.True(t, errors.As(res.Err, &perr))
	assert.Equal(t, "themealdb/9", perr.Key)
	assert.ErrorIs(t, res.Err, cause)
}

func TestSave_LookupFailure(t *testing.T) {
	s := &failingStore{Store: memstore.New(), findErr: errors.New("timeout")}
	g := NewGateway(s, zerolog.Nop())

	res := g.Save(context.Background(), storetest.Recipe("themealdb", "9"))

	assert.Equal(t, Error, res.Outcome)
	assert.ErrorContains(t, res.Err, "lookup failed")
}

func TestSave_UniqueConstraintRace(t *testing.T) {
	s := &failingStore{Store: memstore.New(), insertErr: store.ErrDuplicate}
	g := NewGateway(s, zerolog.Nop())

	res := g.Save(context.Background(), storetest.Recipe("themealdb", "9"))

	assert.Equal(t, SkippedDuplicate, res.Outcome)
	assert.NoError(t, res.Err)
}

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	var k keyedMutex
	unlock := k.lock("a")

	acquired := make(chan struct{})
	go func() {
		release := k.lock("a")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock on the same key acquired while held")
	case <-time.After(50 * time.Millisecond):
	}

	other := k.lock("b")
	other()

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired")
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "saved", Saved.String())
	assert.Equal(t, "skipped_duplicate", SkippedDuplicate.String())
	assert.Equal(t, "error", Error.String())
}
