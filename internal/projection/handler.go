package projection

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/johnmartel/AisCoverage/internal/calculator"
	httperr "github.com/johnmartel/AisCoverage/internal/core/errors"
)

// RegisterRoutes registers all query API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/status", s.HandleStatus)
	r.GET("/v1/sources", s.HandleSources)
	r.GET("/v1/coverage", s.HandleCoverage)
	r.GET("/v1/satellite/spans", s.HandleSatelliteSpans)
	r.GET("/v1/satellite/fixed-spans", s.HandleFixedSpans)
	r.GET("/v1/ships/:mmsi/track", s.HandleShipTrack)
	r.GET("/v1/export", s.HandleExport)
}

// HandleStatus handles GET /v1/status
func (s *Service) HandleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.Status())
}

// HandleSources handles GET /v1/sources
func (s *Service) HandleSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sources": s.Sources()})
}

// HandleCoverage handles GET /v1/coverage
// Query parameters: sources, area, start, end, multiplication_factor
func (s *Service) HandleCoverage(c *gin.Context) {
	var query struct {
		Sources              string `form:"sources"`
		Area                 string `form:"area"`
		Start                int64  `form:"start"`
		End                  int64  `form:"end"`
		MultiplicationFactor int    `form:"multiplication_factor" binding:"omitempty,min=1"`
	}
	if !bindQuery(c, &query) {
		return
	}

	resp, err := s.Coverage(CoverageRequest{
		Sources:              parseSources(query.Sources),
		Area:                 query.Area,
		Start:                fromMillis(query.Start),
		End:                  fromMillis(query.End),
		MultiplicationFactor: query.MultiplicationFactor,
	})
	if err != nil {
		writeQueryError(c, err, "Failed to build coverage")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleSatelliteSpans handles GET /v1/satellite/spans
// Query parameters: area, start, end (all optional)
func (s *Service) HandleSatelliteSpans(c *gin.Context) {
	var query struct {
		Area  string `form:"area"`
		Start int64  `form:"start"`
		End   int64  `form:"end"`
	}
	if !bindQuery(c, &query) {
		return
	}

	resp, err := s.SatelliteSpans(SpanRequest{
		Area:  query.Area,
		Start: fromMillis(query.Start),
		End:   fromMillis(query.End),
	})
	if err != nil {
		writeQueryError(c, err, "Failed to query satellite spans")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleFixedSpans handles GET /v1/satellite/fixed-spans
// Query parameters: area, start, end, granularity
func (s *Service) HandleFixedSpans(c *gin.Context) {
	var query struct {
		Area        string `form:"area"`
		Start       int64  `form:"start" binding:"required"`
		End         int64  `form:"end" binding:"required"`
		Granularity string `form:"granularity"`
	}
	if !bindQuery(c, &query) {
		return
	}

	resp, err := s.FixedSpans(SpanRequest{
		Area:        query.Area,
		Start:       fromMillis(query.Start),
		End:         fromMillis(query.End),
		Granularity: query.Granularity,
	})
	if err != nil {
		writeQueryError(c, err, "Failed to query fixed spans")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleShipTrack handles GET /v1/ships/:mmsi/track
// Query parameters: start, end
func (s *Service) HandleShipTrack(c *gin.Context) {
	var uri struct {
		MMSI int `uri:"mmsi" binding:"required"`
	}
	var query struct {
		Start int64 `form:"start"`
		End   int64 `form:"end"`
	}

	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid path parameters",
			Details:   err.Error(),
		})
		return
	}
	if !bindQuery(c, &query) {
		return
	}

	resp, err := s.ShipTrack(uri.MMSI, fromMillis(query.Start), fromMillis(query.End))
	if err != nil {
		writeQueryError(c, err, "Failed to query ship track")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleExport handles GET /v1/export
// Query parameters: type (csv|kml|xml), data_type, sources, start, end, multiplication_factor
func (s *Service) HandleExport(c *gin.Context) {
	var query struct {
		Type                 string `form:"type" binding:"required"`
		DataType             string `form:"data_type"`
		Sources              string `form:"sources"`
		Start                int64  `form:"start"`
		End                  int64  `form:"end"`
		MultiplicationFactor int    `form:"multiplication_factor" binding:"omitempty,min=1"`
	}
	if !bindQuery(c, &query) {
		return
	}

	var buf bytes.Buffer
	err := s.Export(&buf, ExportRequest{
		Format:               query.Type,
		DataType:             query.DataType,
		Sources:              parseSources(query.Sources),
		Start:                fromMillis(query.Start),
		End:                  fromMillis(query.End),
		MultiplicationFactor: query.MultiplicationFactor,
	})
	if err != nil {
		writeQueryError(c, err, "Failed to export coverage")
		return
	}

	contentType := "text/csv"
	switch strings.ToLower(query.Type) {
	case "kml":
		contentType = "application/vnd.google-earth.kml+xml"
	case "xml":
		contentType = "application/xml"
	}
	c.Header("Content-Disposition", "attachment; filename="+s.ExportFileName(query.Type, query.MultiplicationFactor))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return false
	}
	return true
}

func writeQueryError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, calculator.ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   message,
			Details:   err.Error(),
		})
	case errors.Is(err, calculator.ErrShipNotFound):
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpNotFoundError,
			Message:   message,
			Details:   err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   message,
			Details:   err.Error(),
		})
	}
}
