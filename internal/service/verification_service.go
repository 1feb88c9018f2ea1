package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unirp/records-api/internal/models"
	appErrors "github.com/unirp/records-api/pkg/errors"
)

const pendingCacheKey = "enrollments:pending"

type verificationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ListByState(ctx context.Context, state models.VerificationState) ([]models.EnrollmentDetail, error)
	Verify(ctx context.Context, id, verifierID string, decision models.VerificationState, comments string) (bool, error)
}

type reviewCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// VerifyRequest carries the reviewer's one-shot decision.
type VerifyRequest struct {
	Decision models.VerificationState `json:"decision" validate:"required,oneof=VERIFIED REJECTED"`
	Comments string                   `json:"comments" validate:"max=1000"`
}

// VerificationService is the adjudication step: it moves pending records
// to a terminal state and freezes them against further edits.
type VerificationService struct {
	repo      verificationRepository
	cache     reviewCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewVerificationService constructs VerificationService.
func NewVerificationService(repo verificationRepository, cache reviewCache, validate *validator.Validate, logger *zap.Logger) *VerificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// ListPending returns the review queue, served from the bounded-TTL cache
// when warm.
func (s *VerificationService) ListPending(ctx context.Context) ([]models.EnrollmentDetail, error) {
	if s.cache != nil {
		var cached []models.EnrollmentDetail
		hit, err := s.cache.Get(ctx, pendingCacheKey, &cached)
		if err == nil && hit {
			return cached, nil
		}
	}
	enrollments, err := s.repo.ListByState(ctx, models.VerificationPending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending enrollments")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, pendingCacheKey, enrollments, 0); err != nil {
			s.logger.Warn("pending cache set failed", zap.Error(err))
		}
	}
	return enrollments, nil
}

// Verify applies the reviewer's decision. The PENDING precondition and the
// credit-transfer snapshot ride in one conditional statement, so a repeat
// call or a racing reviewer always observes a state conflict with the
// first decision intact.
func (s *VerificationService) Verify(ctx context.Context, id, verifierID string, req VerifyRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification payload")
	}
	ok, err := s.repo.Verify(ctx, id, verifierID, req.Decision, req.Comments)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify enrollment")
	}
	if !ok {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
		}
		return nil, appErrors.Clone(appErrors.ErrStateConflict, "enrollment already adjudicated")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, fmt.Sprintf("%s*", pendingCacheKey)); err != nil {
			s.logger.Warn("pending cache invalidation failed", zap.Error(err))
		}
	}
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}
