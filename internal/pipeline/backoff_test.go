package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextBackoff(t *testing.T) {
	d := initialBackoff
	var seen []time.Duration
	for range 7 {
		seen = append(seen, d)
		d = nextBackoff(d, maxBackoff)
	}

	assert.Equal(t, []time.Duration{
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
		3200 * time.Millisecond,
		5 * time.Second,
		5 * time.Second,
	}, seen)
}

func TestSleepWithContext(t *testing.T) {
	assert.True(t, sleepWithContext(context.Background(), 0))
	assert.True(t, sleepWithContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleepWithContext(ctx, time.Hour))
}
