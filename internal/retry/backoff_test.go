package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff_GrowsAndCaps(t *testing.T) {
	b := NewExponentialBackoff(10,
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(1*time.Second),
		WithJitter(0),
	)

	assert.Equal(t, 100*time.Millisecond, b.NextDelay(0))
	assert.Equal(t, 200*time.Millisecond, b.NextDelay(1))
	assert.Equal(t, 400*time.Millisecond, b.NextDelay(2))
	assert.Equal(t, 800*time.Millisecond, b.NextDelay(3))
	assert.Equal(t, 1*time.Second, b.NextDelay(4))
	assert.Equal(t, 1*time.Second, b.NextDelay(20))
	assert.Equal(t, 10, b.MaxAttempts())
}

func TestExponentialBackoff_Multiplier(t *testing.T) {
	b := NewExponentialBackoff(3, WithInitialDelay(10*time.Millisecond), WithMultiplier(3), WithJitter(0))
	assert.Equal(t, 90*time.Millisecond, b.NextDelay(2))
}

func TestExponentialBackoff_JitterBounds(t *testing.T) {
	tests := []struct {
		name   string
		random float64
		want   time.Duration
	}{
		{"lowest", 0.0, 90 * time.Millisecond},
		{"middle", 0.5, 100 * time.Millisecond},
		{"high", 0.75, 105 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewExponentialBackoff(1,
				WithInitialDelay(100*time.Millisecond),
				WithJitter(0.1),
				WithJitterFunc(func() float64 { return tt.random }),
			)
			assert.Equal(t, tt.want, b.NextDelay(0))
		})
	}
}
