package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	hashed, err := HashPassword("Kamkam123!")
	require.NoError(t, err)
	require.NotEqual(t, "Kamkam123!", hashed)

	require.True(t, CheckPassword(hashed, "Kamkam123!"))
	require.False(t, CheckPassword(hashed, "kamkam123!"))
	require.False(t, CheckPassword("", "Kamkam123!"))
}

func TestHashesAreSalted(t *testing.T) {
	first, err := HashPassword("same-password")
	require.NoError(t, err)
	second, err := HashPassword("same-password")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}
