package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsInRange(t *testing.T) {
	assert.True(t, IsInRange(1, 1, 499))
	assert.True(t, IsInRange(1, 499, 499))
	assert.False(t, IsInRange(1, 0, 499))
	assert.False(t, IsInRange(1, 500, 499))
	assert.True(t, IsInRange("a", "b", "c"))
}
