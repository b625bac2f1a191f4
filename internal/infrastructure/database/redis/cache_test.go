package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJitterTTL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Duration(0), jitterTTL(0))
	assert.Equal(t, time.Duration(0), jitterTTL(-time.Second))

	base := 10 * time.Minute
	for i := 0; i < 100; i++ {
		got := jitterTTL(base)
		assert.GreaterOrEqual(t, got, 9*time.Minute)
		assert.LessOrEqual(t, got, 11*time.Minute)
	}
}
