package ingestion_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	httperr "github.com/vitalink/vitalink-core/internal/core/errors"
	"github.com/vitalink/vitalink-core/internal/core/storage/memory"
	"github.com/vitalink/vitalink-core/internal/dedup"
	"github.com/vitalink/vitalink-core/internal/ingestion"
)

func newRouter(t *testing.T, c *ingestion.Coordinator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ingestion.NewHandler(c, 1).RegisterRoutes(r)
	return r
}

func post(r *gin.Engine, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/ingest", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestIngestHandler_Success(t *testing.T) {
	r := newRouter(t, newPipeline(t).coordinator)

	body := `{
		"patient_id": "patient-1",
		"device_id": "watch-1",
		"samples": [
			{"metric": "steps", "sample_time": "2026-03-02T10:05:00Z", "value": 120},
			{"metric": "heart_rate", "sample_time": "2026-03-02T10:06:00Z", "value": "400"}
		]
	}`
	resp := post(r, []byte(body))
	require.Equal(t, http.StatusOK, resp.Code)

	var result v1.IngestResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.NotEmpty(t, result.BatchID)
	assert.Equal(t, 1, result.Accepted)
	assert.Equal(t, 1, result.Rejected)
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, v1.OutcomeAccepted, result.Outcomes[0].Status)
	assert.Equal(t, httperr.ReasonValueOutOfRange, result.Outcomes[1].Reason)
}

func TestIngestHandler_InvalidJSON(t *testing.T) {
	r := newRouter(t, newPipeline(t).coordinator)

	resp := post(r, []byte(`{"patient_id": "patient-1", "samples": [`))
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	assert.Equal(t, httperr.HttpInvalidJsonError, errResp.ErrorType)
}

func TestIngestHandler_EmptyEnvelope(t *testing.T) {
	r := newRouter(t, newPipeline(t).coordinator)

	resp := post(r, []byte(`{"patient_id": "patient-1", "device_id": "watch-1", "samples": []}`))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "samples must not be empty")
}

func TestIngestHandler_BodySizeLimit(t *testing.T) {
	r := newRouter(t, newPipeline(t).coordinator)

	body := `{"patient_id": "` + strings.Repeat("x", 2*1024*1024) + `"}`
	resp := post(r, []byte(body))
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	assert.Equal(t, httperr.HttpPayloadTooLargeError, errResp.ErrorType)
}

func TestIngestHandler_BatchTooLarge(t *testing.T) {
	r := newRouter(t, newPipeline(t).coordinator)

	samples := make([]map[string]interface{}, 11)
	for i := range samples {
		samples[i] = map[string]interface{}{"metric": "steps", "sample_time": "2026-03-02T10:05:00Z", "value": i}
	}
	body, err := json.Marshal(map[string]interface{}{"patient_id": "patient-1", "device_id": "watch-1", "samples": samples})
	require.NoError(t, err)

	resp := post(r, body)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	assert.Contains(t, resp.Body.String(), "max_batch_size")
}

func TestIngestHandler_RegistryUnavailable(t *testing.T) {
	c := ingestion.NewCoordinator(brokenRegistry{}, dedup.New(memory.NewStore(), nil), &stubAggregator{}, nil, ingestion.Parameter{Now: clock})
	r := newRouter(t, c)

	resp := post(r, []byte(`{"patient_id": "patient-1", "device_id": "watch-1", "samples": [{"metric": "steps", "sample_time": "2026-03-02T10:05:00Z", "value": 1}]}`))
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, resp.Body.String(), httperr.HttpUnavailableError)
}
