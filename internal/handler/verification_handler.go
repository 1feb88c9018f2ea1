package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unirp/records-api/internal/models"
	"github.com/unirp/records-api/internal/service"
	appErrors "github.com/unirp/records-api/pkg/errors"
	"github.com/unirp/records-api/pkg/response"
)

type verificationService interface {
	ListPending(ctx context.Context) ([]models.EnrollmentDetail, error)
	Verify(ctx context.Context, id, verifierID string, req service.VerifyRequest) (*models.Enrollment, error)
}

type exportService interface {
	Generate(ctx context.Context, state models.VerificationState, format service.ExportFormat) (*service.ExportResult, error)
}

// VerificationHandler exposes the reviewer endpoints. The export service
// is optional; a nil value turns the export endpoint off.
type VerificationHandler struct {
	verification verificationService
	exports      exportService
}

// NewVerificationHandler constructs VerificationHandler.
func NewVerificationHandler(verification verificationService, exports exportService) *VerificationHandler {
	return &VerificationHandler{verification: verification, exports: exports}
}

// ListPending godoc
// @Summary List enrollments awaiting verification
// @Tags Verification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /verifications/pending [get]
func (h *VerificationHandler) ListPending(c *gin.Context) {
	enrollments, err := h.verification.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments)
}

// Verify godoc
// @Summary Adjudicate a pending enrollment
// @Tags Verification
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.VerifyRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Router /verifications/{id} [post]
func (h *VerificationHandler) Verify(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.verification.Verify(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}

// Export godoc
// @Summary Export verification records as CSV or PDF
// @Tags Verification
// @Produce text/csv
// @Produce application/pdf
// @Param state query string false "Verification state" default(PENDING)
// @Param format query string false "csv or pdf" default(csv)
// @Router /verifications/export [get]
func (h *VerificationHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports disabled"))
		return
	}
	state := models.VerificationState(strings.ToUpper(c.DefaultQuery("state", string(models.VerificationPending))))
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))

	result, err := h.exports.Generate(c.Request.Context(), state, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
