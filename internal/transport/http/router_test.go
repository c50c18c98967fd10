package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-maps-harvester/internal/metrics"
	"github.com/pribylovaa/go-maps-harvester/internal/models"
	"github.com/pribylovaa/go-maps-harvester/internal/service"
)

// fakeService — управляемая реализация handlers.Service.
type fakeService struct {
	runReq   models.HarvestRequest
	runErr   error
	listOpts models.ListOptions
	listErr  error
	deadline bool
	readyErr error
}

var runID = uuid.MustParse("3c0c9a0e-3a3b-4b7a-8f5e-21b6f0d7c111")

func (f *fakeService) Run(ctx context.Context, req models.HarvestRequest) (*models.RunReport, error) {
	_, f.deadline = ctx.Deadline()
	f.runReq = req
	if f.runErr != nil {
		return nil, f.runErr
	}
	return &models.RunReport{
		Run:      models.Run{ID: runID, Query: req.Query, Listings: 1},
		Listings: []models.Listing{{ID: "0x1:0x2", Name: "Cafe"}},
	}, nil
}

func (f *fakeService) RunByID(_ context.Context, id string) (*models.Run, error) {
	if id != runID.String() {
		return nil, fmt.Errorf("svc: %w", service.ErrNotFound)
	}
	return &models.Run{ID: runID, Query: "coffee"}, nil
}

func (f *fakeService) ListListings(ctx context.Context, opts models.ListOptions) (*models.Page, error) {
	_, f.deadline = ctx.Deadline()
	f.listOpts = opts
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &models.Page{}, nil
}

func (f *fakeService) ListingByID(_ context.Context, id string) (*models.StoredListing, error) {
	if id != "0x1:0x2" {
		return nil, service.ErrNotFound
	}
	return &models.StoredListing{Listing: models.Listing{ID: id, Name: "Cafe"}}, nil
}

func (f *fakeService) Ready(context.Context) error { return f.readyErr }

func newTestRouter(svc *fakeService, m *metrics.Metrics, reg prometheus.Gatherer) http.Handler {
	return NewRouter(svc, Options{Timeout: time.Second, Metrics: m, Gatherer: reg})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rdr)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCreateHarvest_OK(t *testing.T) {
	svc := &fakeService{}
	h := newTestRouter(svc, nil, prometheus.NewRegistry())

	rr := do(t, h, http.MethodPost, "/harvests", `{"query":"coffee in Lisbon","max_results":45,"min_rating":4}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "/harvests/"+runID.String(), rr.Header().Get("Location"))
	require.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	require.Equal(t, models.HarvestRequest{Query: "coffee in Lisbon", MaxResults: 45, MinRating: 4}, svc.runReq)
	require.False(t, svc.deadline, "harvest must not inherit the read timeout")

	var rep models.RunReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	require.Equal(t, runID, rep.Run.ID)
	require.Len(t, rep.Listings, 1)
}

func TestCreateHarvest_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{name: "unknown_field", body: `{"query":"x","extra":1}`, status: http.StatusBadRequest, code: "invalid_argument"},
		{name: "broken_json", body: `{`, status: http.StatusBadRequest, code: "invalid_argument"},
		{name: "service_invalid", body: `{"query":""}`, err: service.ErrInvalidArgument, status: http.StatusBadRequest, code: "invalid_argument"},
		{name: "upstream", body: `{"query":"x"}`, err: fmt.Errorf("run: %w: %w", service.ErrUpstream, errors.New("relay")), status: http.StatusBadGateway, code: "upstream"},
		{name: "deadline", body: `{"query":"x"}`, err: context.DeadlineExceeded, status: http.StatusGatewayTimeout, code: "deadline_exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&fakeService{runErr: tt.err}, nil, prometheus.NewRegistry())

			rr := do(t, h, http.MethodPost, "/harvests", tt.body)
			require.Equal(t, tt.status, rr.Code)

			var env struct {
				Error struct {
					Code      string `json:"code"`
					RequestID string `json:"request_id"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
			require.Equal(t, tt.code, env.Error.Code)
			require.Equal(t, rr.Header().Get("X-Request-Id"), env.Error.RequestID)
		})
	}
}

func TestGetHarvest(t *testing.T) {
	h := newTestRouter(&fakeService{}, nil, prometheus.NewRegistry())

	rr := do(t, h, http.MethodGet, "/harvests/"+runID.String(), "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/harvests/"+uuid.NewString(), "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListListings(t *testing.T) {
	svc := &fakeService{}
	h := newTestRouter(svc, nil, prometheus.NewRegistry())

	rr := do(t, h, http.MethodGet, "/listings?limit=5&page_token=abc", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, models.ListOptions{Limit: 5, PageToken: "abc"}, svc.listOpts)
	require.True(t, svc.deadline, "reads run under the router timeout")
	require.JSONEq(t, `{"items":[]}`, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/listings?limit=abc", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	svc.listErr = service.ErrInvalidCursor
	rr = do(t, h, http.MethodGet, "/listings?page_token=bad", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "invalid_cursor")
}

func TestGetListing(t *testing.T) {
	h := newTestRouter(&fakeService{}, nil, prometheus.NewRegistry())

	rr := do(t, h, http.MethodGet, "/listings/0x1:0x2", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"name":"Cafe"`)

	rr = do(t, h, http.MethodGet, "/listings/missing", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealth(t *testing.T) {
	svc := &fakeService{}
	h := newTestRouter(svc, nil, prometheus.NewRegistry())

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/livez", "").Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/readyz", "").Code)

	svc.readyErr = errors.New("db down")
	require.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/readyz", "").Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/livez", "").Code)
}

func TestMetricsEndpoint_And_RouteLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	h := newTestRouter(&fakeService{}, m, reg)

	_ = do(t, h, http.MethodGet, "/listings/0x1:0x2", "")
	_ = do(t, h, http.MethodGet, "/listings/missing", "")

	require.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/listings/{id}", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/listings/{id}", "404")))

	rr := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.Contains(rr.Body.String(), "harvester_http_requests_total"))
}

func TestBasePath(t *testing.T) {
	h := NewRouter(&fakeService{}, Options{BasePath: "/api", Gatherer: prometheus.NewRegistry()})

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/listings", "").Code)
	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/listings", "").Code)
}
