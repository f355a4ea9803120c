package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/seawise/seawise/pkg/fouling"
	"github.com/seawise/seawise/pkg/types"
	"github.com/seawise/seawise/server/internal/alerts"
	"github.com/seawise/seawise/server/internal/store"
)

// maxPredictBody bounds POST /api/v1/predict request bodies.
const maxPredictBody = 1 << 20

// AlertLister exposes current alerts. *alerts.Engine satisfies it.
type AlertLister interface {
	Active() []*alerts.Alert
}

// HistoryReader reads persisted snapshots. *history.History satisfies it.
type HistoryReader interface {
	Query(ctx context.Context, vesselID string, from, to time.Time, limit int) ([]*types.PredictionSnapshot, error)
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads vessel state from the snapshot store and returns JSON responses.
type Handler struct {
	store   *store.Store
	alerts  AlertLister   // nil when alerting is disabled
	history HistoryReader // nil when history is disabled
	mux     *http.ServeMux
	now     func() time.Time
}

// New creates a Handler and registers all routes. al and hist may be nil.
func New(st *store.Store, al AlertLister, hist HistoryReader) *Handler {
	h := &Handler{store: st, alerts: al, history: hist, mux: http.NewServeMux(), now: time.Now}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/vessels", h.listVessels)
	h.mux.HandleFunc("/api/v1/vessels/", h.vesselSubtree) // {id} and {id}/history
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)
	h.mux.HandleFunc("/api/v1/certs", h.certs)
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)
	h.mux.HandleFunc("/api/v1/predict", h.predict)
	h.mux.HandleFunc("/api/v1/variants", h.variants)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health: fleet-wide class counts and averages.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	jsonResp(w, http.StatusOK, h.Health())
}

// Health computes the fleet summary served by /api/v1/health.
func (h *Handler) Health() HealthResponse {
	entries := h.store.List()
	resp := HealthResponse{VesselCount: len(entries), State: types.StateUnknown}
	if h.alerts != nil {
		for _, a := range h.alerts.Active() {
			if a.State == alerts.StateFiring {
				resp.AlertCount++
			}
		}
	}

	var total float64
	var predicted int
	worst := -1
	for _, e := range entries {
		snap := e.Snapshot
		switch snap.State {
		case types.StateClean:
			resp.CleanCount++
		case types.StateLow:
			resp.LowCount++
		case types.StateMedium:
			resp.MediumCount++
		case types.StateHigh:
			resp.HighCount++
		default:
			resp.UnknownCount++
			continue
		}
		predicted++
		total += snap.Prediction.FoulingPercent
		if snap.Prediction.RecommendedCleaning {
			resp.CleaningDueCount++
		}
		if rank := classRank[snap.State]; rank > worst {
			worst = rank
			resp.State = snap.State
		}
	}
	if predicted > 0 {
		resp.MeanFoulingPct = fouling.Round2(total / float64(predicted))
	}
	return resp
}

// classRank orders fouling states from best to worst.
var classRank = map[string]int{
	types.StateClean:  0,
	types.StateLow:    1,
	types.StateMedium: 2,
	types.StateHigh:   3,
}

// listVessels returns GET /api/v1/vessels: all live vessels.
func (h *Handler) listVessels(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	jsonResp(w, http.StatusOK, h.vessels())
}

// vesselSubtree routes /api/v1/vessels/{id} and /api/v1/vessels/{id}/history.
func (h *Handler) vesselSubtree(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/vessels/"), "/")
	switch {
	case rest == "":
		h.listVessels(w, r)
	case strings.HasSuffix(rest, "/history"):
		h.vesselHistory(w, r, strings.TrimSuffix(rest, "/history"))
	case strings.Contains(rest, "/"):
		jsonErr(w, http.StatusNotFound, "not found")
	default:
		e, ok := h.store.Get(rest)
		if !ok {
			jsonErr(w, http.StatusNotFound, "vessel not found")
			return
		}
		jsonResp(w, http.StatusOK, toVesselResponse(e))
	}
}

// vesselHistory returns GET /api/v1/vessels/{id}/history?from=&to=&limit=.
// from and to accept RFC3339 or unix seconds.
func (h *Handler) vesselHistory(w http.ResponseWriter, r *http.Request, id string) {
	if h.history == nil {
		jsonErr(w, http.StatusServiceUnavailable, "history storage is disabled")
		return
	}

	q := r.URL.Query()
	from, err := parseTime(q.Get("from"))
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid from: "+err.Error())
		return
	}
	to, err := parseTime(q.Get("to"))
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid to: "+err.Error())
		return
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		jsonErr(w, http.StatusBadRequest, "to is before from")
		return
	}
	limit := 0
	if s := q.Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 0 {
			jsonErr(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	snaps, err := h.history.Query(r.Context(), id, from, to, limit)
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, "history query failed")
		return
	}

	resp := HistoryResponse{VesselID: id, Points: make([]HistoryPoint, 0, len(snaps))}
	for _, s := range snaps {
		resp.Points = append(resp.Points, HistoryPoint{
			Timestamp:         s.Timestamp().Format(time.RFC3339),
			State:             s.State,
			FoulingPct:        s.Prediction.FoulingPercent,
			FuelPenaltyPct:    s.Prediction.FuelPenaltyPercent,
			SpeedReductionPct: s.Prediction.SpeedReductionPercent,
			DailyGrowthPct:    s.Prediction.DailyGrowthRatePercent,
			DaysSinceClean:    s.Reading.DaysSinceClean,
		})
	}
	jsonResp(w, http.StatusOK, resp)
}

// listAlerts returns GET /api/v1/alerts: firing and recently resolved alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	out := []*alerts.Alert{}
	if h.alerts != nil {
		out = append(out, h.alerts.Active()...)
	}
	jsonResp(w, http.StatusOK, out)
}

// certs returns GET /api/v1/certs: sensor certificate status per vessel.
func (h *Handler) certs(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	out := make([]CertResponse, 0)
	for _, e := range h.store.List() {
		for _, c := range e.Snapshot.Certs {
			out = append(out, CertResponse{VesselID: e.Snapshot.VesselID, CertStatus: c})
		}
	}
	jsonResp(w, http.StatusOK, out)
}

// snapshot returns GET /api/v1/snapshot: full JSON dump of all live vessels.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	jsonResp(w, http.StatusOK, h.Snapshot())
}

// Snapshot builds the payload served by /api/v1/snapshot and pushed over
// the WebSocket hub.
func (h *Handler) Snapshot() SnapshotResponse {
	return SnapshotResponse{
		Vessels:     h.vessels(),
		GeneratedAt: h.now().UTC().Format(time.RFC3339),
	}
}

// predict returns POST /api/v1/predict[?variant=]: an on-demand estimate
// for a reading posted as JSON. Absent optional fields take their defaults.
func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	est, err := fouling.Lookup(r.URL.Query().Get("variant"))
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	var p fouling.Partial
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPredictBody))
	if err := dec.Decode(&p); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if p.DaysSinceClean != nil && *p.DaysSinceClean < 0 {
		jsonErr(w, http.StatusBadRequest, "days_since_clean must not be negative")
		return
	}

	reading, err := p.Resolve()
	if err != nil {
		var missing *fouling.MissingFieldError
		if errors.As(err, &missing) {
			jsonErr(w, http.StatusBadRequest, missing.Field+" is required")
			return
		}
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	jsonResp(w, http.StatusOK, PredictResponse{
		Variant:    est.Name(),
		Reading:    reading,
		Prediction: est.Estimate(reading),
	})
}

// variants returns GET /api/v1/variants: the estimator names predict accepts.
func (h *Handler) variants(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	jsonResp(w, http.StatusOK, fouling.Variants())
}

// --- helpers ----------------------------------------------------------------

func (h *Handler) vessels() []VesselResponse {
	entries := h.store.List()
	out := make([]VesselResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toVesselResponse(e))
	}
	return out
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// parseTime accepts RFC3339 or unix seconds; empty means unbounded.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}

// toVesselResponse maps a store.Entry to its JSON representation.
func toVesselResponse(e *store.Entry) VesselResponse {
	snap := e.Snapshot
	out := VesselResponse{
		VesselID:     snap.VesselID,
		VesselName:   snap.VesselName,
		SourceType:   snap.SourceType,
		Variant:      snap.Variant,
		State:        snap.State,
		UptimePct:    snap.UptimePct,
		ErrorMessage: snap.ErrorMessage,
		MissingField: snap.MissingField,
		Certs:        snap.Certs,
		Hints:        computeHints(snap),
		SampledAt:    snap.Timestamp().Format(time.RFC3339),
		LastSeen:     e.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if out.Certs == nil {
		out.Certs = []types.CertStatus{}
	}
	if snap.State != types.StateUnknown {
		reading, pred := snap.Reading, snap.Prediction
		out.Reading = &reading
		out.Prediction = &pred
	}
	return out
}
