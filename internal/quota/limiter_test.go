package quota

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowUpToLimit(t *testing.T) {
	l := NewLimiter(10, 24*time.Hour)
	now := time.Date(2024, 12, 15, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("1.2.3.4", now.Add(time.Duration(i)*time.Minute)), "admit %d should be allowed", i+1)
	}
	assert.False(t, l.Allow("1.2.3.4", now.Add(11*time.Minute)), "11th admit should be denied")
	assert.Equal(t, 0, l.Remaining("1.2.3.4", now.Add(11*time.Minute)))
}

func TestDeniedCallRecordsNothing(t *testing.T) {
	l := NewLimiter(2, time.Hour)
	now := time.Now().UTC()

	require.True(t, l.Allow("a", now))
	require.True(t, l.Allow("a", now))
	for i := 0; i < 5; i++ {
		require.False(t, l.Allow("a", now))
	}

	// Both admitted requests leave the window together; the denied calls must
	// not have extended it.
	later := now.Add(time.Hour + time.Second)
	assert.True(t, l.Allow("a", later))
}

func TestWindowSlides(t *testing.T) {
	l := NewLimiter(3, time.Hour)
	start := time.Date(2024, 12, 15, 9, 0, 0, 0, time.UTC)

	require.True(t, l.Allow("a", start))
	require.True(t, l.Allow("a", start.Add(30*time.Minute)))
	require.True(t, l.Allow("a", start.Add(45*time.Minute)))
	require.False(t, l.Allow("a", start.Add(50*time.Minute)))

	// The first request expires at start+1h; one slot frees up.
	assert.True(t, l.Allow("a", start.Add(time.Hour+time.Minute)))
	assert.False(t, l.Allow("a", start.Add(time.Hour+2*time.Minute)))
}

func TestRemaining(t *testing.T) {
	l := NewLimiter(10, 24*time.Hour)
	now := time.Now().UTC()

	assert.Equal(t, 10, l.Remaining("a", now))
	for i := 1; i <= 4; i++ {
		require.True(t, l.Allow("a", now))
		assert.Equal(t, 10-i, l.Remaining("a", now))
	}

	// Remaining is read-only: repeated calls do not consume the budget.
	for i := 0; i < 3; i++ {
		assert.Equal(t, 6, l.Remaining("a", now))
	}
}

func TestResetAt(t *testing.T) {
	l := NewLimiter(5, time.Hour)
	now := time.Date(2024, 12, 15, 9, 0, 0, 0, time.UTC)

	_, ok := l.ResetAt("a", now)
	assert.False(t, ok, "no live entries means no reset time")

	require.True(t, l.Allow("a", now))
	require.True(t, l.Allow("a", now.Add(10*time.Minute)))

	resetAt, ok := l.ResetAt("a", now.Add(20*time.Minute))
	require.True(t, ok)
	assert.Equal(t, now.Add(time.Hour), resetAt, "reset follows the oldest live entry")

	// Once the oldest entry falls out, the next one drives the reset time.
	resetAt, ok = l.ResetAt("a", now.Add(time.Hour+time.Minute))
	require.True(t, ok)
	assert.Equal(t, now.Add(10*time.Minute).Add(time.Hour), resetAt)
}

func TestIdentitiesAreIndependent(t *testing.T) {
	l := NewLimiter(1, time.Hour)
	now := time.Now().UTC()

	assert.True(t, l.Allow("a", now))
	assert.False(t, l.Allow("a", now))
	assert.True(t, l.Allow("b", now))
}

func TestConcurrentAllow(t *testing.T) {
	l := NewLimiter(50, time.Hour)
	now := time.Now().UTC()

	var wg sync.WaitGroup
	admitted := make(chan struct{}, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared", now) {
				admitted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(admitted)

	assert.Len(t, admitted, 50, "exactly the budget is admitted under contention")
}
