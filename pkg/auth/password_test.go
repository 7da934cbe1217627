package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("test_test")
	assert.NoError(t, err)
	assert.NotEqual(t, "test_test", hash)

	assert.True(t, CheckPassword(hash, "test_test"))
	assert.False(t, CheckPassword(hash, "test"))
	assert.False(t, CheckPassword("not-a-hash", "test_test"))

	_, err = HashPassword(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
