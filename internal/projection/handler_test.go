package projection

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/johnmartel/AisCoverage/internal/calculator"
	"github.com/johnmartel/AisCoverage/internal/core/coverage"
	httperr "github.com/johnmartel/AisCoverage/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	newTestService(t).RegisterRoutes(r)
	return r
}

func TestService_Handlers_StatusMapping(t *testing.T) {
	r := newTestRouter(t)
	start := base.UnixMilli()
	end := base.Add(2 * time.Hour).UnixMilli()

	tests := []struct {
		name           string
		url            string
		expectedStatus int
		expectedError  string
	}{
		{name: "status", url: "/v1/status", expectedStatus: http.StatusOK},
		{name: "sources", url: "/v1/sources", expectedStatus: http.StatusOK},
		{name: "coverage", url: "/v1/coverage?sources=2190047&multiplication_factor=2", expectedStatus: http.StatusOK},
		{name: "coverage bad area", url: "/v1/coverage?area=1,2,3", expectedStatus: http.StatusBadRequest, expectedError: httperr.HttpInvalidQueryError},
		{name: "coverage bad factor", url: "/v1/coverage?multiplication_factor=-1", expectedStatus: http.StatusBadRequest, expectedError: httperr.HttpInvalidQueryError},
		{name: "coverage inverted window", url: fmt.Sprintf("/v1/coverage?start=%d&end=%d", end, start), expectedStatus: http.StatusBadRequest},
		{name: "satellite spans", url: "/v1/satellite/spans", expectedStatus: http.StatusOK},
		{name: "fixed spans", url: fmt.Sprintf("/v1/satellite/fixed-spans?start=%d&end=%d&granularity=total", start, end), expectedStatus: http.StatusOK},
		{name: "fixed spans missing window", url: "/v1/satellite/fixed-spans", expectedStatus: http.StatusBadRequest},
		{name: "ship track", url: "/v1/ships/219000001/track", expectedStatus: http.StatusOK},
		{name: "unknown ship", url: "/v1/ships/999/track", expectedStatus: http.StatusNotFound, expectedError: httperr.HttpNotFoundError},
		{name: "non numeric mmsi", url: "/v1/ships/abc/track", expectedStatus: http.StatusBadRequest},
		{name: "export unknown type", url: "/v1/export?type=pdf", expectedStatus: http.StatusBadRequest},
		{name: "export unknown data type", url: "/v1/export?type=kml&data_type=heat", expectedStatus: http.StatusBadRequest},
		{name: "export missing type", url: "/v1/export", expectedStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)

			if resp.Code != tc.expectedStatus {
				t.Logf("unexpected response body: %s", resp.Body.String())
			}
			require.Equal(t, tc.expectedStatus, resp.Code)

			if tc.expectedError != "" {
				var body httperr.ErrorResponse
				require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
				assert.Equal(t, tc.expectedError, body.ErrorType)
			}
		})
	}
}

func TestService_HandleCoverage_Body(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/coverage?sources=2190047", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Sources []struct {
			ID    string `json:"id"`
			Cells []struct {
				Received           int    `json:"received"`
				Missing            int    `json:"missing"`
				CoveragePercentage string `json:"coverage_percentage"`
			} `json:"cells"`
		} `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Sources, 1)
	require.Len(t, body.Sources[0].Cells, 1)
	assert.Equal(t, "50", body.Sources[0].Cells[0].CoveragePercentage)
}

func TestService_HandleExport(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		query       string
		contentType string
		prefix      string
	}{
		{query: "type=csv", contentType: "text/csv", prefix: "latstart,longstart"},
		{query: "type=kml&data_type=signal_strength", contentType: "application/vnd.google-earth.kml+xml", prefix: "<?xml"},
		{query: "type=XML", contentType: "application/xml", prefix: "<?xml"},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/export?"+tc.query, nil)
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)

			require.Equal(t, http.StatusOK, resp.Code)
			assert.Equal(t, tc.contentType, resp.Header().Get("Content-Type"))
			assert.True(t, strings.HasPrefix(resp.Header().Get("Content-Disposition"), "attachment; filename=aiscoverage-"))
			assert.True(t, strings.HasPrefix(resp.Body.String(), tc.prefix))
		})
	}
}

func TestService_HandleStatus(t *testing.T) {
	emptyStore := coverage.NewStore(coverage.DefaultGridSpec, coverage.NewClock(), nil)
	empty := NewService(emptyStore, calculator.NewPipeline(emptyStore, 0))
	empty.nowFn = func() time.Time { return base.Add(2*time.Hour + 30*time.Minute) }

	tests := []struct {
		name        string
		svc         *Service
		wantFirst   int64
		wantLast    int64
		wantStarted bool
	}{
		{
			name:      "no messages yet",
			svc:       empty,
			wantFirst: base.Add(2 * time.Hour).UnixMilli(),
			wantLast:  base.Add(2 * time.Hour).UnixMilli(),
		},
		{
			name:        "messages received",
			svc:         newTestService(t),
			wantFirst:   base.Add(5 * time.Minute).UnixMilli(),
			wantLast:    base.Add(12 * time.Minute).UnixMilli(),
			wantStarted: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			tc.svc.RegisterRoutes(r)

			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
			require.Equal(t, http.StatusOK, resp.Code)

			var body StatusResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.Equal(t, "Running", body.AnalysisStatus)
			assert.Equal(t, tc.wantFirst, body.FirstMessage)
			assert.Equal(t, tc.wantLast, body.LastMessage)
			if tc.wantStarted {
				require.NotNil(t, body.AnalysisStarted)
				assert.Equal(t, base.UnixMilli(), *body.AnalysisStarted)
			} else {
				assert.Nil(t, body.AnalysisStarted)
				assert.NotContains(t, resp.Body.String(), "analysis_started")
			}
		})
	}
}
