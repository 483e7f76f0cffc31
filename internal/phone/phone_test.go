package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain local", "01712345678", "01712345678"},
		{"country code no symbols", "8801712345678", "01712345678"},
		{"formatted with plus and dash", "+88 01712-345678", "01712345678"},
		{"spaces and parens", "(017) 1234 5678", "01712345678"},
		{"88 not stripped at exactly 10 digits", "8801712345", "8801712345"},
		{"leading 1 length 11 untouched", "12345678901", "12345678901"},
		{"empty", "", ""},
		{"letters only", "n/a", ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	k, err := Key("+88 01712-345678")
	require.NoError(t, err)
	assert.Equal(t, "01712345678", k)

	_, err = Key("12345")
	assert.ErrorIs(t, err, ErrPhoneTooShort)
}

func TestMatch(t *testing.T) {
	t.Parallel()

	ok, err := Match("+88 01712-345678", "8801712345678")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Match("8801712345678", "01712345678")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Match("01712345678", "01812345678")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Match("12345", "01712345678")
	assert.ErrorIs(t, err, ErrPhoneTooShort)
}
