package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestArgon2Hasher_RoundTrip verifies hash-then-verify
func TestArgon2Hasher_RoundTrip(t *testing.T) {
	hasher := NewArgon2Hasher()

	encoded, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, hasher.Verify("correct horse battery staple", encoded))
	assert.False(t, hasher.Verify("wrong password", encoded))
}

// TestArgon2Hasher_Encoding verifies the self-describing hash format
func TestArgon2Hasher_Encoding(t *testing.T) {
	hasher := NewArgon2Hasher()

	encoded, err := hasher.Hash("secret")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=65536,t=1,p=4$"), encoded)
	assert.NotContains(t, encoded, "secret")

	parts := strings.Split(encoded, "$")
	require.Len(t, parts, 6)
	assert.NotEmpty(t, parts[4]) // salt
	assert.NotEmpty(t, parts[5]) // hash
}

// TestArgon2Hasher_UniqueSalts verifies two hashes of the same input differ
func TestArgon2Hasher_UniqueSalts(t *testing.T) {
	hasher := NewArgon2Hasher()

	a, err := hasher.Hash("same input")
	require.NoError(t, err)
	b, err := hasher.Hash("same input")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, hasher.Verify("same input", a))
	assert.True(t, hasher.Verify("same input", b))
}

// TestArgon2Hasher_MalformedHashes verifies garbage never verifies
func TestArgon2Hasher_MalformedHashes(t *testing.T) {
	hasher := NewArgon2Hasher()

	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"not a hash", "plaintext"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"missing sections", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA"},
		{"bad version", "$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"bad parameters", "$argon2id$v=19$m=abc,t=1,p=4$c2FsdA$aGFzaA"},
		{"bad salt base64", "$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA"},
		{"bad hash base64", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, hasher.Verify("anything", tt.encoded))
		})
	}
}

// TestArgon2Hasher_EmptyPassword verifies the empty string still round-trips
// (the service rejects it before hashing; the hasher itself is total)
func TestArgon2Hasher_EmptyPassword(t *testing.T) {
	hasher := NewArgon2Hasher()

	encoded, err := hasher.Hash("")
	require.NoError(t, err)
	assert.True(t, hasher.Verify("", encoded))
	assert.False(t, hasher.Verify("x", encoded))
}
