package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("pw123", 4)
	assert.NoError(t, err)
	assert.NotEqual(t, "pw123", hash)

	assert.True(t, VerifyPassword(hash, "pw123"))
	assert.False(t, VerifyPassword(hash, "pw124"))
}
