package sampler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_WalksToExhaustion(t *testing.T) {
	store := newMemStore()
	ids := store.add("Desamor", 3)
	sess := NewSession("Desamor")
	s := New(store)
	ctx := context.Background()

	got, err := sess.Next(ctx, s, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.False(t, sess.Exhausted())

	got, err = sess.Next(ctx, s, 2)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = sess.Next(ctx, s, 2)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.True(t, sess.Exhausted())
	assert.ElementsMatch(t, ids, sess.Seen())

	// 종료 상태에서는 store 를 호출하지 않는다.
	listHits, getHits := store.listHits, store.getHits
	got, err = sess.Next(ctx, s, 2)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, listHits, store.listHits)
	assert.Equal(t, getHits, store.getHits)
}

func TestSession_FailureLeavesStateUntouched(t *testing.T) {
	store := newMemStore()
	store.add("Amor", 3)
	store.getErr = errors.New("timeout")
	sess := NewSession("Amor")

	_, err := sess.Next(context.Background(), New(store), 2)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.Empty(t, sess.Seen())
	assert.False(t, sess.Exhausted())

	store.getErr = nil
	got, err := sess.Next(context.Background(), New(store), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSession_BusyWhileInFlight(t *testing.T) {
	store := newMemStore()
	store.add("Amor", 3)
	store.block = make(chan struct{})
	store.entered = make(chan struct{}, 1)
	sess := NewSession("Amor")
	s := New(store)

	done := make(chan error, 1)
	go func() {
		_, err := sess.Next(context.Background(), s, 1)
		done <- err
	}()
	<-store.entered

	_, err := sess.Next(context.Background(), s, 1)
	assert.ErrorIs(t, err, ErrSessionBusy)

	close(store.block)
	require.NoError(t, <-done)
}

func TestSession_IDCacheEnumeratesOnce(t *testing.T) {
	store := newMemStore()
	store.add("Amistad", 5)
	sess := NewSession("Amistad", WithIDCache())
	s := New(store)

	total := 0
	for {
		got, err := sess.Next(context.Background(), s, 2)
		require.NoError(t, err)
		if len(got) == 0 {
			break
		}
		total += len(got)
	}
	assert.Equal(t, 5, total)
	assert.Equal(t, 1, store.listHits)
	assert.True(t, sess.Exhausted())
}

func TestSession_WithSeenAndInvalidSize(t *testing.T) {
	store := newMemStore()
	ids := store.add("Amor", 2)
	sess := NewSession("Amor", WithSeen(ids[0]))

	_, err := sess.Next(context.Background(), New(store), 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	got, err := sess.Next(context.Background(), New(store), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[1]}, IDsOf(got))
}
