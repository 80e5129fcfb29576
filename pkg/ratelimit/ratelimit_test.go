package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLimiterBurstPerKey(t *testing.T) {
	l := New(1, 2)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))
}

func TestKeyedLimiterRefills(t *testing.T) {
	l := New(1, 1)
	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }

	assert.True(t, l.Allow("ip"))
	assert.False(t, l.Allow("ip"))
	current = current.Add(time.Second)
	assert.True(t, l.Allow("ip"))
}

func TestKeyedLimiterSweep(t *testing.T) {
	l := New(1, 1)
	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }

	l.Allow("a")
	current = current.Add(10 * time.Minute)
	l.Allow("b")

	assert.Equal(t, 1, l.Sweep())
	assert.Len(t, l.buckets, 1)
}
