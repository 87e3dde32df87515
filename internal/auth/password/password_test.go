package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, Verify("correct horse battery staple", hash))
	assert.False(t, Verify("wrong password", hash))
}

func TestHash_RandomSaltPerCall(t *testing.T) {
	first, err := Hash("pw123")
	require.NoError(t, err)
	second, err := Hash("pw123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "identical passwords must hash differently")
	assert.True(t, Verify("pw123", first))
	assert.True(t, Verify("pw123", second))
}

func TestVerify_AbsentHashAlwaysFails(t *testing.T) {
	// Third-party provider users have no stored hash.
	assert.False(t, Verify("anything", ""))
}

func TestVerify_MalformedHashFailsWithoutPanic(t *testing.T) {
	for _, malformed := range []string{
		"plaintext",
		"$argon2id$v=19$m=65536,t=3,p=1$only-four-parts",
		"$bcrypt$v=19$m=65536,t=3,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=bad,t=3,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=3,p=1$!!!$a2V5",
		"$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$!!!",
	} {
		assert.False(t, Verify("anything", malformed), "hash %q", malformed)
	}
}
