package ingestion

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	httperr "github.com/johnmartel/AisCoverage/internal/core/errors"
	"github.com/stretchr/testify/require"
)

type stubReceiver struct {
	accept  bool
	packets [][]byte
}

func (r *stubReceiver) ReceiveUnfiltered(packet []byte) bool {
	r.packets = append(r.packets, packet)
	return r.accept
}

func serve(t *testing.T, svc *Service, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/v1/packets", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestIngestHandler_Accepted(t *testing.T) {
	recv := &stubReceiver{accept: true}
	resp := serve(t, NewService(recv, 0), packet(219000001, 0, "r1"))

	require.Equal(t, http.StatusAccepted, resp.Code)
	require.Len(t, recv.packets, 1)
	require.JSONEq(t, string(packet(219000001, 0, "r1")), string(recv.packets[0]))
}

func TestIngestHandler_InvalidJSON(t *testing.T) {
	recv := &stubReceiver{accept: true}
	resp := serve(t, NewService(recv, 0), []byte(`{"mmsi":`))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	var body httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, httperr.HttpInvalidJsonError, body.ErrorType)
	require.Empty(t, recv.packets)
}

func TestIngestHandler_BodyTooLarge(t *testing.T) {
	recv := &stubReceiver{accept: true}
	big := `{"pad":"` + strings.Repeat("x", 2048) + `"}`
	resp := serve(t, NewService(recv, 1), []byte(big))

	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	require.Empty(t, recv.packets)
}

func TestIngestHandler_Overloaded(t *testing.T) {
	resp := serve(t, NewService(&stubReceiver{accept: false}, 0), packet(1, 0))

	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	var body httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, httperr.HttpOverloadedError, body.ErrorType)
}
