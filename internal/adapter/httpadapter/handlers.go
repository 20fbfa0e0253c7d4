package httpadapter

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/music-event-insights/internal/analysis"
	"github.com/couchcryptid/music-event-insights/internal/domain"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// badRequestError marks a malformed path or query parameter.
type badRequestError struct{ err error }

func (e badRequestError) Error() string { return e.err.Error() }
func (e badRequestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return badRequestError{err: fmt.Errorf(format, args...)}
}

type overviewResponse struct {
	domain.Overview
	LoadedAt time.Time `json:"loaded_at"`
}

func (s *Server) handleOverview(w http.ResponseWriter, _ *http.Request, ds *domain.Dataset) {
	writeJSON(w, http.StatusOK, overviewResponse{Overview: ds.Overview(), LoadedAt: ds.LoadedAt})
}

func (s *Server) handleStates(w http.ResponseWriter, _ *http.Request, ds *domain.Dataset) {
	writeJSON(w, http.StatusOK, map[string][]string{"states": ds.States()})
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request, ds *domain.Dataset) {
	cities, err := ds.Cities(r.PathValue("state"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state":  domain.NormalizeState(r.PathValue("state")),
		"cities": cities,
	})
}

func (s *Server) handleLookupState(w http.ResponseWriter, r *http.Request, ds *domain.Dataset) {
	s.lookup(w, r, ds, domain.StateKey(r.PathValue("state")))
}

func (s *Server) handleLookupCity(w http.ResponseWriter, r *http.Request, ds *domain.Dataset) {
	s.lookup(w, r, ds, domain.CityKey(r.PathValue("city"), r.PathValue("state")))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request, ds *domain.Dataset, geo domain.GeoKey) {
	result, err := ds.Lookup(geo)
	s.metrics.Lookups.WithLabelValues(geo.Level.String(), lookupOutcome(err)).Inc()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request, ds *domain.Dataset) {
	level, err := domain.ParseLevel(r.PathValue("level"))
	if err != nil {
		s.writeError(w, r, badRequest("%w", err))
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			s.writeError(w, r, badRequest("invalid limit %q", v))
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"level":    level,
		"rankings": analysis.Rank(ds, level, limit),
	})
}

func (s *Server) handleRegression(w http.ResponseWriter, r *http.Request, ds *domain.Dataset) {
	level, err := domain.ParseLevel(r.PathValue("level"))
	if err != nil {
		s.writeError(w, r, badRequest("%w", err))
		return
	}
	factor, err := analysis.ParseFactor(r.PathValue("factor"))
	if err != nil {
		s.writeError(w, r, badRequest("%w", err))
		return
	}

	reg, err := analysis.Regress(ds, level, factor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

func lookupOutcome(err error) string {
	var unknown *domain.UnknownGeoKeyError
	var missing *domain.MissingStaticAttributeError
	switch {
	case err == nil:
		return "found"
	case errors.As(err, &unknown):
		return "unknown"
	case errors.As(err, &missing):
		return "missing_static_attribute"
	default:
		return "invalid"
	}
}

// writeError maps domain and analysis errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		unknown *domain.UnknownGeoKeyError
		missing *domain.MissingStaticAttributeError
		bad     badRequestError
	)

	switch {
	case errors.As(err, &bad):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Kind: "invalid_argument"})
	case errors.As(err, &unknown):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Kind: "unknown_geo"})
	case errors.Is(err, analysis.ErrInsufficientData):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error(), Kind: "insufficient_data"})
	case errors.As(err, &missing):
		s.logger.Error("dataset integrity error", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error(), Kind: "missing_static_attribute"})
	default:
		s.logger.Error("request failed", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error", Kind: "internal"})
	}
}
