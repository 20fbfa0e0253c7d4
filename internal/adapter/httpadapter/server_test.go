package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/couchcryptid/music-event-insights/internal/adapter/httpadapter"
	"github.com/couchcryptid/music-event-insights/internal/domain"
	"github.com/couchcryptid/music-event-insights/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	ds *domain.Dataset
}

func (m *mockSource) Dataset() *domain.Dataset { return m.ds }

func (m *mockSource) CheckReadiness(_ context.Context) error {
	if m.ds == nil {
		return errors.New("dataset not loaded")
	}
	return nil
}

func attrs(pop, income int64) *domain.Attributes {
	return &domain.Attributes{Population: pop, Income: decimal.NewFromInt(income)}
}

func rec(event, city, state, iata string, cityPop int64) domain.Record {
	r := domain.Record{
		EventID:    event,
		City:       city,
		State:      state,
		IATA:       iata,
		StateAttrs: attrs(3_000_000, 70000),
	}
	if cityPop > 0 {
		r.CityAttrs = attrs(cityPop, 60000)
	}
	return r
}

func testDataset() *domain.Dataset {
	return domain.NewDataset(domain.NewTable([]domain.Record{
		rec("E1", "Reno", "NV", "RNO", 264165),
		rec("E1", "Reno", "NV", "RNO", 264165),
		rec("E2", "Reno", "NV", "RNO", 264165),
		rec("E3", "Las Vegas", "NV", "LAS", 660929),
		rec("E4", "Las Vegas", "NV", "VGT", 660929),
		rec("E5", "Eau Claire", "WI", "", 69421),
		rec("E6", "Madison", "WI", "MSN", 269840),
		rec("E1", "Madison", "WI", "MSN", 269840),
		rec("E7", "Elko", "NV", "EKO", 0),
	}))
}

type testServer struct {
	*httpadapter.Server
	metrics *observability.Metrics
}

func newTestServer(ds *domain.Dataset) testServer {
	m := observability.NewMetricsForTesting()
	return testServer{
		Server:  httpadapter.NewServer(":0", &mockSource{ds: ds}, m, slog.Default()),
		metrics: m,
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	assert.Equal(t, http.StatusOK, get(t, newTestServer(testDataset()), "/readyz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, newTestServer(nil), "/readyz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAPI_NotLoaded(t *testing.T) {
	rec := get(t, newTestServer(nil), "/api/overview")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", decode[map[string]string](t, rec)["kind"])
}

func TestAPI_Overview(t *testing.T) {
	rec := get(t, newTestServer(testDataset()), "/api/overview")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.InDelta(t, 9, body["rows"], 0)
	assert.InDelta(t, 7, body["events"], 0)
	assert.InDelta(t, 5, body["airports"], 0)
	assert.Contains(t, body, "loaded_at")
}

func TestAPI_StatesAndCities(t *testing.T) {
	srv := newTestServer(testDataset())

	states := decode[map[string][]string](t, get(t, srv, "/api/states"))
	assert.Equal(t, []string{"NV", "WI"}, states["states"])

	rec := get(t, srv, "/api/states/Nevada/cities")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		State  string   `json:"state"`
		Cities []string `json:"cities"`
	}](t, rec)
	assert.Equal(t, "NV", body.State)
	assert.Equal(t, []string{"Elko", "Las Vegas", "Reno"}, body.Cities)

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/states/TX/cities").Code)
}

func TestAPI_LookupCity(t *testing.T) {
	srv := newTestServer(testDataset())

	rec := get(t, srv, "/api/lookup/city/WI/Eau%20Claire")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"geo": {"level": "city", "city": "Eau Claire", "state": "WI"},
		"event_count": 1,
		"airport_count": 0,
		"population": 69421,
		"median_household_income": "60000"
	}`, rec.Body.String())

	assert.InDelta(t, 1, testutil.ToFloat64(srv.metrics.Lookups.WithLabelValues("city", "found")), 0)
}

func TestAPI_LookupState(t *testing.T) {
	rec := get(t, newTestServer(testDataset()), "/api/lookup/state/nv")

	require.Equal(t, http.StatusOK, rec.Code)
	var result domain.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 5, result.EventCount)
	assert.Equal(t, 4, result.AirportCount)
	assert.Equal(t, int64(3_000_000), result.Population)
}

func TestAPI_LookupErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		status  int
		kind    string
		outcome string
	}{
		{"unknown city", "/api/lookup/city/NV/Boise", http.StatusNotFound, "unknown_geo", "unknown"},
		{"unknown state", "/api/lookup/state/TX", http.StatusNotFound, "unknown_geo", "unknown"},
		{"missing census figures", "/api/lookup/city/NV/Elko", http.StatusInternalServerError, "missing_static_attribute", "missing_static_attribute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(testDataset())
			rec := get(t, srv, tt.path)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.kind, decode[map[string]string](t, rec)["kind"])

			var total float64
			for _, level := range []string{"state", "city"} {
				total += testutil.ToFloat64(srv.metrics.Lookups.WithLabelValues(level, tt.outcome))
			}
			assert.InDelta(t, 1, total, 0)
		})
	}
}

func TestAPI_Rankings(t *testing.T) {
	srv := newTestServer(testDataset())

	rec := get(t, srv, "/api/rankings/city?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Level    string `json:"level"`
		Rankings []struct {
			Rank   int           `json:"rank"`
			Geo    domain.GeoKey `json:"geo"`
			Events int           `json:"events"`
		} `json:"rankings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "city", body.Level)
	require.Len(t, body.Rankings, 2)
	assert.Equal(t, "Las Vegas", body.Rankings[0].Geo.City)
	assert.Equal(t, 2, body.Rankings[0].Events)
	assert.Equal(t, "Reno", body.Rankings[1].Geo.City)

	for _, path := range []string{"/api/rankings/county", "/api/rankings/state?limit=-1", "/api/rankings/state?limit=ten"} {
		t.Run(path, func(t *testing.T) {
			rec := get(t, srv, path)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid_argument", decode[map[string]string](t, rec)["kind"])
		})
	}
}

func TestAPI_Regression(t *testing.T) {
	srv := newTestServer(testDataset())

	rec := get(t, srv, "/api/regressions/city/population")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "city", body["level"])
	assert.Equal(t, "population", body["factor"])
	assert.InDelta(t, 4, body["n"], 0)
	assert.Contains(t, body, "slope_p_value")

	rec = get(t, srv, "/api/regressions/state/income")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "insufficient_data", decode[map[string]string](t, rec)["kind"])

	rec = get(t, srv, "/api/regressions/city/weather")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
