package jitter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration_WithinBounds(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 100; i++ {
		d := Duration(base, DefaultJitter)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/2)
	}
}

func TestExponentialBackoff_CapsAtMax(t *testing.T) {
	d := ExponentialBackoff(10*time.Millisecond, 50*time.Millisecond, 10, 0)
	assert.Equal(t, 50*time.Millisecond, d)

	d = ExponentialBackoff(10*time.Millisecond, time.Second, 2, 0)
	assert.Equal(t, 40*time.Millisecond, d)
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
