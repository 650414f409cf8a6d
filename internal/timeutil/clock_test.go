package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockClockSleepAdvances(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMockClock(start)

	c.Sleep(time.Millisecond)
	c.Sleep(2 * time.Millisecond)

	assert.Equal(t, start.Add(3*time.Millisecond), c.Now())
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, c.Sleeps())
	assert.Equal(t, 3*time.Millisecond, c.Since(start))
}

func TestMockClockAdvance(t *testing.T) {
	start := time.Now()
	c := NewMockClock(start)

	c.Advance(time.Second)
	assert.Equal(t, start.Add(time.Second), c.Now())
	assert.Empty(t, c.Sleeps())
}
