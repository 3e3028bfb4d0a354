package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatID_UUIDPassthrough(t *testing.T) {
	cases := []string{
		"550e8400-e29b-41d4-a716-446655440000",
		"c9bf9e57-1685-4c89-bafb-ff5af830be8a",
		"C9BF9E57-1685-4C89-BAFB-FF5AF830BE8A", // uppercase is still canonical
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8", // v1 is accepted
	}
	for _, u := range cases {
		assert.Equal(t, u, FormatID(u), "canonical UUID must pass through unchanged")
	}
}

func TestFormatID_Deterministic(t *testing.T) {
	inputs := []string{"", "42", "legacy-user-17", "café au lait", "someverylongidentifierthatkeepsgoingandgoing"}
	for _, in := range inputs {
		first := FormatID(in)
		for i := 0; i < 5; i++ {
			require.Equal(t, first, FormatID(in), "FormatID(%q) must be stable", in)
		}
	}
}

func TestFormatID_Shape(t *testing.T) {
	inputs := []string{"", "x", "42", "legacy-user-17", "not-a-uuid-at-all-but-quite-long-indeed"}
	for _, in := range inputs {
		id := FormatID(in)
		require.Len(t, id, 36, "FormatID(%q)", in)
		for _, pos := range []int{8, 13, 18, 23} {
			assert.Equal(t, byte('-'), id[pos], "hyphen at %d in FormatID(%q)", pos, in)
		}
	}
}

func TestFormatID_Synthesis(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"numeric key padded", "42", "42000000-0000-0000-0000-000000000000"},
		{"punctuation stripped", "user-17!", "user1700-0000-0000-0000-000000000000"},
		{"empty uses fallback seed", "", "id000000-0000-0000-0000-000000000000"},
		{"whitespace only uses fallback seed", "  \t ", "id000000-0000-0000-0000-000000000000"},
		{"long input truncated", "abcdefghijklmnopqrstuvwxyz0123456789", "abcdefgh-ijkl-mnop-qrst-uvwxyz012345"},
		{"non uuid hyphenated value resynthesized", "123e4567-e89b-62d3-a456-426614174000", "123e4567-e89b-62d3-a456-426614174000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatID(tt.in))
		})
	}
}

func TestFormatIDWithPrefix(t *testing.T) {
	assert.Equal(t, "pillar42-0000-0000-0000-000000000000", FormatIDWithPrefix("pillar", "42"))

	// Prefix capped at 10 alphanumerics.
	assert.Equal(t, "verylong-pr42-0000-0000-000000000000", FormatIDWithPrefix("very-long-prefix!", "42"))

	// Canonical UUID candidates skip prefixing entirely.
	u := "550e8400-e29b-41d4-a716-446655440000"
	assert.Equal(t, u, FormatIDWithPrefix("pillar", u))
}

func TestSanitizePrefix(t *testing.T) {
	assert.Equal(t, "pillar", SanitizePrefix("pillar"))
	assert.Equal(t, "userrecord", SanitizePrefix("user_record_2024"))
	assert.Equal(t, "", SanitizePrefix("!!!"))
}

func TestIsUUID_RejectsBadVersionAndVariant(t *testing.T) {
	assert.False(t, IsUUID("550e8400-e29b-01d4-a716-446655440000"), "version 0")
	assert.False(t, IsUUID("550e8400-e29b-61d4-a716-446655440000"), "version 6")
	assert.False(t, IsUUID("550e8400-e29b-41d4-c716-446655440000"), "variant c")
	assert.False(t, IsUUID("550e8400e29b41d4a716446655440000"), "missing hyphens")
}

func TestNewRunToken_Shape(t *testing.T) {
	tok := NewRunToken()
	parsed, err := uuid.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, tok, NewRunToken(), "tokens must be unique per run")
}
