package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/five82/skytrack/internal/flight"
	"github.com/five82/skytrack/internal/logger"
	"github.com/five82/skytrack/internal/refresh"
	"github.com/five82/skytrack/internal/state"
)

// Controller is the part of the refresh scheduler the API drives.
type Controller interface {
	StartWatching(flight.Region)
	StopWatching()
	Suspend()
	Resume()
	Refresh()
	SetSelectedCountry(string)
	State() (refresh.State, flight.Region)
	Interval() time.Duration
}

// Viewer exposes the current flight state.
type Viewer interface {
	Snapshot() state.View
}

// Handler serves the API endpoints.
type Handler struct {
	ctl    Controller
	view   Viewer
	logger *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(ctl Controller, view Viewer, log *logger.Logger) *Handler {
	return &Handler{ctl: ctl, view: view, logger: log.Named("api")}
}

type flightsResponse struct {
	Flights  []flight.Record `json:"flights"`
	Count    int             `json:"count"`
	Source   string          `json:"source"`
	DataTime int64           `json:"time"`
}

type countriesResponse struct {
	Countries []string `json:"countries"`
	Selected  string   `json:"selected"`
}

type statusResponse struct {
	State               string         `json:"state"`
	Region              *flight.Region `json:"region,omitempty"`
	Interval            string         `json:"interval"`
	Loading             bool           `json:"loading"`
	Error               string         `json:"error,omitempty"`
	Source              string         `json:"source"`
	UpdatedAt           *time.Time     `json:"updated_at,omitempty"`
	Flights             int            `json:"flights"`
	Visible             int            `json:"visible"`
	ConsecutiveFailures int            `json:"consecutive_failures"`
}

// errorResponse mirrors the upstream API's error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GetFlights returns every flight in the current snapshot.
func (h *Handler) GetFlights(w http.ResponseWriter, r *http.Request) {
	v := h.view.Snapshot()
	h.writeJSON(w, http.StatusOK, flightsResponse{
		Flights: v.Flights, Count: len(v.Flights), Source: v.Source.String(), DataTime: v.DataTime,
	})
}

// GetVisibleFlights returns airborne flights that pass the country filter.
func (h *Handler) GetVisibleFlights(w http.ResponseWriter, r *http.Request) {
	v := h.view.Snapshot()
	h.writeJSON(w, http.StatusOK, flightsResponse{
		Flights: v.Visible, Count: len(v.Visible), Source: v.Source.String(), DataTime: v.DataTime,
	})
}

func (h *Handler) GetCountries(w http.ResponseWriter, r *http.Request) {
	v := h.view.Snapshot()
	h.writeJSON(w, http.StatusOK, countriesResponse{Countries: v.Countries, Selected: v.SelectedCountry})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	st, region := h.ctl.State()
	v := h.view.Snapshot()

	resp := statusResponse{
		State:               st.String(),
		Interval:            h.ctl.Interval().String(),
		Loading:             v.Loading,
		Error:               v.Err,
		Source:              v.Source.String(),
		Flights:             len(v.Flights),
		Visible:             len(v.Visible),
		ConsecutiveFailures: v.ConsecutiveFailures,
	}
	if st != refresh.Idle {
		resp.Region = &region
	}
	if !v.UpdatedAt.IsZero() {
		resp.UpdatedAt = &v.UpdatedAt
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// regionRequest accepts either a bounding box or a center and span.
type regionRequest struct {
	MinLat *float64 `json:"lamin"`
	MinLon *float64 `json:"lomin"`
	MaxLat *float64 `json:"lamax"`
	MaxLon *float64 `json:"lomax"`

	CenterLat *float64 `json:"center_lat"`
	CenterLon *float64 `json:"center_lon"`
	SpanLat   *float64 `json:"span_lat"`
	SpanLon   *float64 `json:"span_lon"`
}

func (req regionRequest) region() (flight.Region, error) {
	switch {
	case req.CenterLat != nil && req.CenterLon != nil && req.SpanLat != nil && req.SpanLon != nil:
		return flight.Viewport{
			CenterLat: *req.CenterLat, CenterLon: *req.CenterLon,
			SpanLat: *req.SpanLat, SpanLon: *req.SpanLon,
		}.Region(), nil
	case req.MinLat != nil && req.MinLon != nil && req.MaxLat != nil && req.MaxLon != nil:
		return flight.Region{MinLat: *req.MinLat, MinLon: *req.MinLon, MaxLat: *req.MaxLat, MaxLon: *req.MaxLon}, nil
	default:
		return flight.Region{}, errors.New("need lamin/lomin/lamax/lomax or center_lat/center_lon/span_lat/span_lon")
	}
}

// PutRegion starts watching the posted region.
func (h *Handler) PutRegion(w http.ResponseWriter, r *http.Request) {
	var req regionRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	region, err := req.region()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if !region.Valid() {
		h.writeError(w, http.StatusUnprocessableEntity, "invalid_region", "region "+region.String()+" is not on the globe")
		return
	}

	h.logger.Info("watch requested", logger.Stringer("region", region))
	h.ctl.StartWatching(region)
	h.GetStatus(w, r)
}

func (h *Handler) DeleteRegion(w http.ResponseWriter, r *http.Request) {
	h.ctl.StopWatching()
	w.WriteHeader(http.StatusNoContent)
}

// PutCountry sets or clears the country filter.
func (h *Handler) PutCountry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Country *string `json:"country"`
	}
	if err := decodeBody(r, &req); err != nil || req.Country == nil {
		h.writeError(w, http.StatusBadRequest, "bad_request", `body must be {"country": "<name>"}`)
		return
	}
	h.ctl.SetSelectedCountry(strings.TrimSpace(*req.Country))
	h.GetCountries(w, r)
}

func (h *Handler) PostSuspend(w http.ResponseWriter, r *http.Request) {
	h.ctl.Suspend()
	h.GetStatus(w, r)
}

func (h *Handler) PostResume(w http.ResponseWriter, r *http.Request) {
	h.ctl.Resume()
	h.GetStatus(w, r)
}

func (h *Handler) PostRefresh(w http.ResponseWriter, r *http.Request) {
	if st, _ := h.ctl.State(); st != refresh.Watching {
		h.writeError(w, http.StatusConflict, "not_watching", "no region is being watched")
		return
	}
	h.ctl.Refresh()
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func decodeBody(r *http.Request, dest any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("encode response failed", logger.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, errorResponse{Code: code, Message: message})
}
