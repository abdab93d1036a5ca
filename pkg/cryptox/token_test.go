package cryptox

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"16 bytes", 16},
		{"32 bytes", SecretSize},
		{"custom size", 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret, err := GenerateSecret(tt.size)
			require.NoError(t, err)
			require.Len(t, secret, tt.size*2)

			_, err = hex.DecodeString(secret)
			require.NoError(t, err, "secret should be hex")

			secret2, err := GenerateSecret(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, secret, secret2, "secrets should be unique")
		})
	}
}

func TestGenerateSecret_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		secret, err := GenerateSecret(size)
		require.Error(t, err)
		require.Empty(t, secret)
	}
}

func TestIssueOpaqueSecret(t *testing.T) {
	secret, err := IssueOpaqueSecret()
	require.NoError(t, err)
	require.Len(t, secret, 64)
	require.NotEmpty(t, MustIssueOpaqueSecret())
}

func TestDigest(t *testing.T) {
	secret := MustIssueOpaqueSecret()

	d1 := Digest(secret)
	d2 := Digest(secret)
	require.Equal(t, d1, d2, "digest should be deterministic")
	require.Len(t, d1, 64, "SHA-256 hex should be 64 chars")
	require.NotEqual(t, secret, d1, "digest must not equal the secret")
	require.NotEqual(t, d1, Digest(MustIssueOpaqueSecret()))

	// Known vector.
	require.Equal(t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		Digest("hello"))
}

func TestIssueOpaqueSecret_Entropy(t *testing.T) {
	const count = 100
	seen := make(map[string]bool, count)

	for range count {
		secret, err := IssueOpaqueSecret()
		require.NoError(t, err)
		require.NotContains(t, seen, secret, "duplicate secret generated")
		seen[secret] = true
	}
}
