package password

import (
	"strings"
	"testing"

	"github.com/go-api-authsession/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerify(t *testing.T) {
	digest, err := Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", digest)
	assert.True(t, Verify("secret1", digest))
	assert.False(t, Verify("secret2", digest))
}

func TestHash_Salted(t *testing.T) {
	a, err := Hash("secret1")
	require.NoError(t, err)
	b, err := Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify_MalformedDigest(t *testing.T) {
	assert.False(t, Verify("secret1", "not-a-bcrypt-digest"))
	assert.False(t, Verify("secret1", ""))
}

func TestHash_TooLong(t *testing.T) {
	_, err := Hash(string(make([]byte, 100)))
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	// 20 runes, 77 bytes
	_, err = Hash(strings.Repeat("😀", 19) + "1")
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = Hash(strings.Repeat("a", MaxBytes))
	assert.NoError(t, err)
}
