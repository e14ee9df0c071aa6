package aggregation

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	httperr "github.com/vitalink/vitalink-core/internal/core/errors"
)

// maxRecomputeRange bounds one manual replay request.
const maxRecomputeRange = 31 * 24 * time.Hour

// RecomputeRequest is the body of POST /v1/admin/recompute.
type RecomputeRequest struct {
	PatientID string    `json:"patient_id" binding:"required"`
	Metric    string    `json:"metric" binding:"required"`
	Start     time.Time `json:"start" binding:"required"`
	End       time.Time `json:"end" binding:"required"`
}

// RecomputeResponse reports how many windows were replayed.
type RecomputeResponse struct {
	PatientID string    `json:"patient_id"`
	Metric    v1.Metric `json:"metric"`
	Hours     int       `json:"hours"`
	Days      int       `json:"days"`
}

// RegisterRoutes registers the admin replay route.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/admin/recompute", s.HandleRecompute)
}

// HandleRecompute handles POST /v1/admin/recompute
func (s *Service) HandleRecompute(c *gin.Context) {
	var req RecomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid recompute request",
			Details:   err.Error(),
		})
		return
	}

	metric, err := v1.ParseMetric(req.Metric)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   err.Error(),
		})
		return
	}
	if !req.End.After(req.Start) || req.End.Sub(req.Start) > maxRecomputeRange {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "end must be after start and the range at most 31 days",
		})
		return
	}

	hours, days, err := s.RecomputeRange(c.Request.Context(), req.PatientID, metric, req.Start.UTC(), req.End.UTC())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
			ErrorType: httperr.HttpUnavailableError,
			Message:   "Recompute failed; buckets unchanged for failed windows",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, RecomputeResponse{
		PatientID: req.PatientID,
		Metric:    metric,
		Hours:     hours,
		Days:      days,
	})
}
