package utils

import (
	"strings"
	"testing"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomEmployee(t *testing.T) {
	for i := 0; i < 50; i++ {
		emp := GenerateRandomEmployee("example.com")

		require.NoError(t, ValidateEmployee(emp))
		require.True(t, strings.HasSuffix(emp.Email, "@example.com"))
		require.NotContains(t, emp.Email, "ü")
		require.GreaterOrEqual(t, emp.DaysPerWeek, int32(1))
		require.NotEmpty(t, emp.PreferredDays)
		require.Contains(t, domain.FederalStates, emp.Region())
	}
}

func TestGenerateRandomSubset(t *testing.T) {
	arr := []int32{1, 2, 3}
	for i := 0; i < 20; i++ {
		subset := GenerateRandomSubset(arr)

		require.NotEmpty(t, subset)
		require.LessOrEqual(t, len(subset), 3)
		require.NoError(t, ValidatePreferredDays(subset))
	}
	require.Equal(t, []int32{1, 2, 3}, arr)
}

func TestGenerateRandomPassword(t *testing.T) {
	require.Len(t, []rune(GenerateRandomPassword(16)), 16)
}
