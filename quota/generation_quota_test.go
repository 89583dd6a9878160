package quota

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poemas-versos/config"
)

func TestWaitAndReserve_DailyLimit(t *testing.T) {
	l := NewGenerationLimiter(0, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.WaitAndReserve(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.WaitAndReserve(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, l.Remaining())
}

func TestWaitAndReserve_DayRollover(t *testing.T) {
	now := time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)
	l := NewGenerationLimiter(0, 1)
	l.now = func() time.Time { return now }

	ok, _ := l.WaitAndReserve(context.Background())
	assert.True(t, ok)
	ok, _ = l.WaitAndReserve(context.Background())
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, err := l.WaitAndReserve(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWaitAndReserve_ZeroMeansUnlimited(t *testing.T) {
	l := NewGenerationLimiterFromConfig(config.AppConfig{})
	for i := 0; i < 50; i++ {
		ok, err := l.WaitAndReserve(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, -1, l.Remaining())
}

func TestWaitAndReserve_CancelRefundsDailySlot(t *testing.T) {
	// 분당 1회: 두 번째 호출은 약 1분을 기다려야 한다.
	l := NewGenerationLimiter(1, 5)

	ok, err := l.WaitAndReserve(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ok, err = l.WaitAndReserve(ctx)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, 4, l.Remaining())
}

func TestSeedUsage(t *testing.T) {
	l := NewGenerationLimiter(0, 3)
	l.SeedUsage(2)
	assert.Equal(t, 1, l.Remaining())

	ok, err := l.WaitAndReserve(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = l.WaitAndReserve(context.Background())
	assert.False(t, ok)

	l.SeedUsage(-5)
	assert.Equal(t, 3, l.Remaining())
}
