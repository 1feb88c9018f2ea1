package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unirp/records-api/internal/models"
	appErrors "github.com/unirp/records-api/pkg/errors"
)

func standardBoundaries() []models.GradeBoundary {
	return []models.GradeBoundary{
		{Letter: "O", MinTotal: 90},
		{Letter: "A+", MinTotal: 80},
		{Letter: "A", MinTotal: 70},
		{Letter: "B+", MinTotal: 60},
		{Letter: "B", MinTotal: 50},
		{Letter: "C", MinTotal: 40},
	}
}

func TestComputeGradePicksHighestQualifyingBoundary(t *testing.T) {
	cases := []struct {
		total float64
		want  string
	}{
		{95, "O"},
		{90, "O"},
		{89.5, "A+"},
		{80, "A+"},
		{70, "A"},
		{65, "B+"},
		{50, "B"},
		{40, "C"},
		{39.99, models.GradeFail},
		{35, models.GradeFail},
		{0, models.GradeFail},
	}
	for _, tc := range cases {
		grade, err := ComputeGrade(tc.total, standardBoundaries())
		require.NoError(t, err)
		assert.Equal(t, tc.want, grade, "total %v", tc.total)
	}
}

func TestComputeGradeIsDeterministic(t *testing.T) {
	first, err := ComputeGrade(72.5, standardBoundaries())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := ComputeGrade(72.5, standardBoundaries())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComputeGradeRejectsBadTotals(t *testing.T) {
	for _, total := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := ComputeGrade(total, standardBoundaries())
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestComputeGradeRejectsBadBoundaries(t *testing.T) {
	_, err := ComputeGrade(50, nil)
	require.Error(t, err)

	unsorted := []models.GradeBoundary{
		{Letter: "A", MinTotal: 70},
		{Letter: "O", MinTotal: 90},
	}
	_, err = ComputeGrade(50, unsorted)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	duplicated := []models.GradeBoundary{
		{Letter: "A", MinTotal: 70},
		{Letter: "B", MinTotal: 70},
	}
	_, err = ComputeGrade(50, duplicated)
	require.Error(t, err)
}

func TestValidateBoundaries(t *testing.T) {
	require.NoError(t, ValidateBoundaries(standardBoundaries()))

	require.Error(t, ValidateBoundaries(nil))
	require.Error(t, ValidateBoundaries([]models.GradeBoundary{{Letter: "", MinTotal: 50}}))
	require.Error(t, ValidateBoundaries([]models.GradeBoundary{{Letter: "A", MinTotal: 120}}))
	require.Error(t, ValidateBoundaries([]models.GradeBoundary{{Letter: "A", MinTotal: -5}}))
	require.Error(t, ValidateBoundaries([]models.GradeBoundary{{Letter: "A", MinTotal: math.NaN()}}))
}
