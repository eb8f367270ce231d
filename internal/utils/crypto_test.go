// internal/utils/crypto_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomString(t *testing.T) {
	a, err := GenerateRandomString(9)
	require.NoError(t, err)
	assert.Len(t, a, 9)

	b, err := GenerateRandomString(9)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, SecureCompare("callback-secret", "callback-secret"))
	assert.False(t, SecureCompare("callback-secret", "callback-secreT"))
	assert.False(t, SecureCompare("callback-secret", ""))
	assert.True(t, SecureCompare("", ""))
}

func TestHashString(t *testing.T) {
	assert.Equal(t, HashString("igx"), HashString("igx"))
	assert.NotEqual(t, HashString("igx"), HashString("igy"))
	assert.Len(t, HashString("igx"), 64)
}
