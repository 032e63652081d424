package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_SaltedAndVerifiable(t *testing.T) {
	h1, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	h2, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "fresh salt per call")
	assert.NotContains(t, h1, "s3cret-pass")
	assert.True(t, CheckPassword(h1, "s3cret-pass"))
	assert.True(t, CheckPassword(h2, "s3cret-pass"))
}

func TestCheckPassword_Mismatch(t *testing.T) {
	h, err := HashPassword("right")
	require.NoError(t, err)

	assert.False(t, CheckPassword(h, "wrong"))
	assert.False(t, CheckPassword(h, ""))
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	for _, hash := range []string{"", "not-a-hash", "$2a$10$short"} {
		assert.False(t, CheckPassword(hash, "anything"), "hash %q", hash)
	}
}
