package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stridesync/internal/shared/errors"
)

func testKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func TestTokenCipher_RoundTrip(t *testing.T) {
	c, err := NewTokenCipher(testKey())
	require.NoError(t, err)

	for _, token := range []string{
		"a1b2c3d4e5f6",
		"",
		"refresh-token-with-dashes_and.dots",
		strings.Repeat("x", 512),
	} {
		enc, err := c.Encrypt(token)
		require.NoError(t, err)
		assert.Contains(t, enc, ":")
		assert.NotContains(t, enc, token)

		dec, err := c.Decrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, token, dec)
	}
}

func TestTokenCipher_NonceVariesPerCall(t *testing.T) {
	c, err := NewTokenCipher(testKey())
	require.NoError(t, err)

	first, err := c.Encrypt("same-token")
	require.NoError(t, err)
	second, err := c.Encrypt("same-token")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTokenCipher_DecryptMalformed(t *testing.T) {
	c, err := NewTokenCipher(testKey())
	require.NoError(t, err)

	cases := []string{
		"",
		"no-delimiter",
		"zzzz:abcd",
		"0102:abcd",
		"000000000000000000000000:not-hex",
	}
	for _, input := range cases {
		_, err := c.Decrypt(input)
		require.Error(t, err, "input %q", input)
		assert.True(t, errors.IsDecryptionError(err), "input %q", input)
	}
}

func TestTokenCipher_DecryptTampered(t *testing.T) {
	c, err := NewTokenCipher(testKey())
	require.NoError(t, err)

	enc, err := c.Encrypt("secret-token")
	require.NoError(t, err)

	// Flip the last ciphertext nibble
	tampered := enc[:len(enc)-1]
	if strings.HasSuffix(enc, "0") {
		tampered += "1"
	} else {
		tampered += "0"
	}

	_, err = c.Decrypt(tampered)
	require.Error(t, err)
	assert.True(t, errors.IsDecryptionError(err))
}

func TestTokenCipher_WrongKey(t *testing.T) {
	c1, err := NewTokenCipher(testKey())
	require.NoError(t, err)
	c2, err := NewTokenCipher([]byte("fedcba9876543210fedcba9876543210"))
	require.NoError(t, err)

	enc, err := c1.Encrypt("secret-token")
	require.NoError(t, err)

	_, err = c2.Decrypt(enc)
	require.Error(t, err)
	assert.True(t, errors.IsDecryptionError(err))
}

func TestNewTokenCipher_RejectsBadKeySize(t *testing.T) {
	_, err := NewTokenCipher([]byte("short"))
	assert.Error(t, err)
}
