package projection

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	httperr "github.com/vitalink/vitalink-core/internal/core/errors"
)

// RegisterRoutes registers all projection API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/summary", s.HandleSummary)
	r.GET("/v1/patients/:patient_id/latest", s.HandleLatest)
	r.GET("/v1/patients/:patient_id/history", s.HandleHistory)
}

// HandleSummary handles GET /v1/summary
func (s *Service) HandleSummary(c *gin.Context) {
	resp, err := s.Summary(c.Request.Context())
	if err != nil {
		writeQueryError(c, err, "Failed to build summary")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleLatest handles GET /v1/patients/:patient_id/latest
func (s *Service) HandleLatest(c *gin.Context) {
	resp, err := s.Latest(c.Request.Context(), c.Param("patient_id"))
	if err != nil {
		writeQueryError(c, err, "Failed to read patient summary")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleHistory handles GET /v1/patients/:patient_id/history
// Query parameters: metric, granularity, start, end
func (s *Service) HandleHistory(c *gin.Context) {
	var query struct {
		Metric      string    `form:"metric" binding:"required"`
		Granularity string    `form:"granularity"`
		Start       time.Time `form:"start" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
		End         time.Time `form:"end" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	}

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	resp, err := s.History(c.Request.Context(), HistoryQuery{
		PatientID:   c.Param("patient_id"),
		Metric:      v1.Metric(query.Metric),
		Granularity: query.Granularity,
		Start:       query.Start,
		End:         query.End,
	})
	if err != nil {
		writeQueryError(c, err, "Failed to read history")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func writeQueryError(c *gin.Context, err error, internalMsg string) {
	switch {
	case errors.Is(err, ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid query",
			Details:   err.Error(),
		})
	case errors.Is(err, ErrPatientNotFound):
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpNotFoundError,
			Message:   "Patient not found",
			Details:   err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   internalMsg,
			Details:   err.Error(),
		})
	}
}
