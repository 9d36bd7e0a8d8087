package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_SHA256IsDeterministic(t *testing.T) {
	a, err := Hash(SchemeSHA256, "pw1")
	require.NoError(t, err)
	b, err := Hash(SchemeSHA256, "pw1")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	abc, err := Hash(SchemeSHA256, "abc")
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", abc)
}

func TestVerify(t *testing.T) {
	for _, scheme := range []string{SchemeSHA256, SchemeBcrypt} {
		t.Run(scheme, func(t *testing.T) {
			hash, err := Hash(scheme, "secret")
			require.NoError(t, err)

			assert.True(t, Verify("secret", hash))
			assert.False(t, Verify("Secret", hash))
			assert.False(t, Verify("", hash))
		})
	}
}

func TestHash_UnknownSchemeFallsBackToSHA256(t *testing.T) {
	a, err := Hash("md5", "x")
	require.NoError(t, err)
	b, err := Hash(SchemeSHA256, "x")
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestNewTemporary(t *testing.T) {
	a := NewTemporary()
	b := NewTemporary()

	assert.Len(t, a, TemporaryLength)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "-")
}
