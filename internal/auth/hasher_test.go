package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher()

	digest, err := hasher.Hash("testpass123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$2a$"))
	assert.NotContains(t, digest, "testpass123")

	assert.True(t, hasher.Verify("testpass123", digest))
	assert.False(t, hasher.Verify("wrongpass123", digest))
	assert.False(t, hasher.Verify("", digest))
}

func TestPasswordHasher_SaltedDigests(t *testing.T) {
	hasher := NewPasswordHasher()

	first, err := hasher.Hash("testpass123")
	require.NoError(t, err)
	second, err := hasher.Hash("testpass123")
	require.NoError(t, err)

	// bcrypt salts every digest
	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("testpass123", first))
	assert.True(t, hasher.Verify("testpass123", second))
}

func TestPasswordHasher_MalformedDigest(t *testing.T) {
	hasher := NewPasswordHasher()

	assert.False(t, hasher.Verify("testpass123", ""))
	assert.False(t, hasher.Verify("testpass123", "not-a-bcrypt-digest"))
}
