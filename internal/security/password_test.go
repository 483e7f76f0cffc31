package security

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/argon2"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

// Builds the encoded form by hand so a regression in splitting the
// dollar-delimited segments cannot hide behind HashPassword.
func TestVerifyPassword_ParsesEncodedForm(t *testing.T) {
	t.Parallel()

	salt := []byte("0123456789abcdef")
	hash := argon2.IDKey([]byte("secret"), salt, 3, 64*1024, 2, 32)
	encoded := fmt.Sprintf("$argon2id$v=19$t=3,m=65536,p=2$%s$%s",
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(hash))

	ok, err := VerifyPassword("secret", []byte(encoded))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	_, err := VerifyPassword("anything", []byte("not-an-argon2-hash"))
	assert.Error(t, err)

	_, err = VerifyPassword("anything", []byte("$argon2i$v=19$t=3,m=65536,p=2$c2FsdA==$aGFzaA=="))
	assert.Error(t, err)
}
