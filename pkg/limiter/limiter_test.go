package limiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDynamicRateLimiter_Allow(t *testing.T) {
	drl := NewDynamicRateLimiter(time.Hour, 2)

	assert.True(t, drl.Allow())
	assert.True(t, drl.Allow())
	assert.False(t, drl.Allow(), "burst spent, no refill within the hour")
}

func TestDynamicRateLimiter_Update(t *testing.T) {
	drl := NewDynamicRateLimiter(time.Hour, 1)

	assert.True(t, drl.Allow())
	assert.False(t, drl.Allow())

	drl.Update(time.Nanosecond, 1)
	time.Sleep(time.Millisecond)

	assert.True(t, drl.Allow(), "faster refill after the update")
}
