package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 20)

	assert.Nil(t, rl)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow())
	}
}

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3)

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())
}
