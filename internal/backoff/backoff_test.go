package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConstant(t *testing.T) {
	b := New(Constant(time.Second))
	for i := 0; i < 5; i++ {
		assert.Equal(t, time.Second, b.Next())
	}
}

func TestExponentialGrowsAndResets(t *testing.T) {
	b := New(Config{Initial: 100 * time.Millisecond, Max: 350 * time.Millisecond, Multiplier: 2})

	assert.Equal(t, 100*time.Millisecond, b.Next())
	assert.Equal(t, 200*time.Millisecond, b.Next())
	assert.Equal(t, 350*time.Millisecond, b.Next())
	assert.Equal(t, 350*time.Millisecond, b.Next())

	b.Reset()
	assert.Equal(t, 100*time.Millisecond, b.Next())
}

func TestJitterStaysInSpan(t *testing.T) {
	b := New(Config{Initial: time.Second, Max: time.Second, Multiplier: 1, Jitter: 0.2})
	for i := 0; i < 50; i++ {
		d := b.Next()
		assert.GreaterOrEqual(t, d, 800*time.Millisecond)
		assert.LessOrEqual(t, d, 1200*time.Millisecond)
	}
}

func TestDefaults(t *testing.T) {
	b := New(Config{})
	assert.Equal(t, 200*time.Millisecond, b.Next())
	assert.Equal(t, 400*time.Millisecond, b.Next())
}
