package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-maps-harvester/internal/service"
	"github.com/pribylovaa/go-maps-harvester/internal/storage"
)

func TestToHTTP_Mapping(t *testing.T) {
	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
	}{
		{"invalid_argument", fmt.Errorf("op: %w", service.ErrInvalidArgument), http.StatusBadRequest, "invalid_argument"},
		{"invalid_cursor", fmt.Errorf("op: %w", service.ErrInvalidCursor), http.StatusBadRequest, "invalid_cursor"},
		{"not_found", fmt.Errorf("op: %w", service.ErrNotFound), http.StatusNotFound, "not_found"},
		{"conflict", fmt.Errorf("op: %w", storage.ErrConflict), http.StatusConflict, "already_exists"},
		{"upstream", fmt.Errorf("op: %w: boom", service.ErrUpstream), http.StatusBadGateway, "upstream"},
		{"deadline", fmt.Errorf("op: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "deadline_exceeded"},
		{"canceled", context.Canceled, StatusClientClosedRequest, "canceled"},
		{"internal", fmt.Errorf("something"), http.StatusInternalServerError, "internal"},
		{"nil", nil, http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			gotStatus, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, gotStatus)
			require.Equal(t, tc.wantCode, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestWriteError_SetsHeadersAndRequestID(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/listings/x", nil)
	req.Header.Set("X-Request-Id", "rid-1")

	WriteError(rr, req, fmt.Errorf("wrap: %w", service.ErrNotFound))

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var env ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "not_found", env.Error.Code)
	require.Equal(t, "rid-1", env.Error.RequestID)
}
