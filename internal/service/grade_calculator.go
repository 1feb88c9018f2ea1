package service

import (
	"fmt"
	"math"

	"github.com/unirp/records-api/internal/models"
	appErrors "github.com/unirp/records-api/pkg/errors"
)

// ComputeGrade maps a total to the letter of the highest boundary whose
// MinTotal is at or below it. Totals below every boundary earn the FAIL
// sentinel. The boundary table must be non-empty and strictly descending
// by MinTotal; no clamping is applied to the total.
func ComputeGrade(total float64, boundaries []models.GradeBoundary) (string, error) {
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return "", appErrors.Clone(appErrors.ErrValidation, "total marks must be a finite number")
	}
	if total < 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "total marks must not be negative")
	}
	if err := ValidateBoundaries(boundaries); err != nil {
		return "", err
	}
	for _, b := range boundaries {
		if total >= b.MinTotal {
			return b.Letter, nil
		}
	}
	return models.GradeFail, nil
}

// ValidateBoundaries checks the boundary table invariant: non-empty,
// letters present, each MinTotal finite, on the 0-100 scale, and strictly
// less than its predecessor.
func ValidateBoundaries(boundaries []models.GradeBoundary) error {
	if len(boundaries) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "grade boundaries required")
	}
	prev := math.Inf(1)
	for i, b := range boundaries {
		if b.Letter == "" {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("boundary %d missing letter", i))
		}
		if math.IsNaN(b.MinTotal) || math.IsInf(b.MinTotal, 0) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("boundary %s has non-finite minimum", b.Letter))
		}
		if b.MinTotal < 0 || b.MinTotal > 100 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("boundary %s outside the 0-100 scale", b.Letter))
		}
		if b.MinTotal >= prev {
			return appErrors.Clone(appErrors.ErrValidation, "grade boundaries must be strictly descending")
		}
		prev = b.MinTotal
	}
	return nil
}
