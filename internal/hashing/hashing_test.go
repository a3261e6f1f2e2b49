package hashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHex(t *testing.T) {
	assert.Equal(t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		Hex("hello"),
	)
}

func TestVerify(t *testing.T) {
	for _, scheme := range []Scheme{SHA256, Bcrypt} {
		t.Run(string(scheme), func(t *testing.T) {
			hash, err := Hash(scheme, "hunter2")
			require.NoError(t, err)
			assert.True(t, Verify(hash, "hunter2"))
			assert.False(t, Verify(hash, "hunter3"))
			assert.False(t, Verify(hash, ""))
		})
	}
}

func TestVerifyUppercaseDigest(t *testing.T) {
	assert.True(t, Verify("2CF24DBA5FB0A30E26E83B2AC5B9E29E1B161E5C1FA7425E73043362938B9824", "hello"))
}

func TestVerifyEmptyHash(t *testing.T) {
	assert.False(t, Verify("", ""))
}

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme("")
	require.NoError(t, err)
	assert.Equal(t, SHA256, s)

	s, err = ParseScheme(" BCRYPT ")
	require.NoError(t, err)
	assert.Equal(t, Bcrypt, s)

	_, err = ParseScheme("md5")
	assert.ErrorIs(t, err, ErrUnknownScheme)
}
