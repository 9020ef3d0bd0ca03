package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/lintang-b-s/routetracker/pkg/datastructure"
	"github.com/lintang-b-s/routetracker/pkg/guidance"
	"github.com/lintang-b-s/routetracker/pkg/kv"
	"github.com/lintang-b-s/routetracker/pkg/server/rest/service"
	"github.com/lintang-b-s/routetracker/pkg/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type NavigationService interface {
	CreateSession(ctx context.Context, routerID, name, profile string,
		leg guidance.Leg, absentCountries []string) (service.RouteSummary, error)
	UpdateLocation(ctx context.Context, sessionID string,
		fix datastructure.GPSLocation) (service.NavigationStatus, error)
	Reroute(ctx context.Context, sessionID string, leg guidance.Leg) (service.RouteSummary, error)
	Segments(ctx context.Context, sessionID string) ([]datastructure.SegmentInfo, error)
	Overview(ctx context.Context, sessionID string) (service.Overview, error)
	CloseSession(ctx context.Context, sessionID string) error
	TracesNear(ctx context.Context, lat, lon float64) ([]kv.ArchivedTrace, error)
	ExportTrace(ctx context.Context, sessionID string) ([]byte, error)
}

type NavigationHandler struct {
	svc NavigationService
}

func NavigationRouter(r *chi.Mux, svc NavigationService) {
	handler := &NavigationHandler{svc}

	r.Group(func(r chi.Router) {
		r.Route("/api/navigation", func(r chi.Router) {
			r.Post("/sessions", handler.CreateSession)
			r.Post("/sessions/{sessionID}/location", handler.UpdateLocation)
			r.Post("/sessions/{sessionID}/reroute", handler.Reroute)
			r.Get("/sessions/{sessionID}/segments", handler.Segments)
			r.Get("/sessions/{sessionID}/overview", handler.Overview)
			r.Delete("/sessions/{sessionID}", handler.CloseSession)
			r.Get("/traces/near", handler.TracesNear)
			r.Get("/traces/{sessionID}/export", handler.ExportTrace)
		})
	})
}

// Coord model info
//
//	@Description	geographic coordinate
type Coord struct {
	Lat float64 `json:"lat" validate:"required,lt=90,gt=-90"`
	Lon float64 `json:"lon" validate:"required,lt=180,gt=-180"`
}

// LegEdgeModel model info
//
//	@Description	one leg edge annotation
type LegEdgeModel struct {
	StreetName string  `json:"street_name"`
	SpeedKmH   float64 `json:"speed_kmh" validate:"required,gt=0"`
	Traffic    *uint8  `json:"traffic,omitempty" validate:"omitempty,lte=7"`
}

// LegModel model info
//
//	@Description	computed leg: points plus per-edge annotations
type LegModel struct {
	Points    []Coord        `json:"points" validate:"required,min=2,dive"`
	Edges     []LegEdgeModel `json:"edges" validate:"required,min=1,dive"`
	Altitudes []int16        `json:"altitudes,omitempty"`
}

func (m LegModel) toLeg() guidance.Leg {
	leg := guidance.Leg{
		Points:    make([]datastructure.Coordinate, 0, len(m.Points)),
		Edges:     make([]guidance.LegEdge, 0, len(m.Edges)),
		Altitudes: m.Altitudes,
	}
	for _, p := range m.Points {
		leg.Points = append(leg.Points, datastructure.NewCoordinate(p.Lat, p.Lon))
	}
	for _, e := range m.Edges {
		edge := guidance.LegEdge{
			StreetName: e.StreetName,
			SpeedKmH:   e.SpeedKmH,
		}
		if e.Traffic != nil {
			edge.Traffic = datastructure.SpeedGroup(*e.Traffic)
			edge.HasTraffic = true
		}
		leg.Edges = append(leg.Edges, edge)
	}
	return leg
}

// CreateSessionRequest model info
//
//	@Description	request body to start tracking a computed route
type CreateSessionRequest struct {
	RouterID        string   `json:"router_id" validate:"required"`
	Name            string   `json:"name"`
	Profile         string   `json:"profile" validate:"omitempty,oneof=car pedestrian"`
	Leg             LegModel `json:"leg" validate:"required"`
	AbsentCountries []string `json:"absent_countries,omitempty"`
}

func (s *CreateSessionRequest) Bind(r *http.Request) error {
	if len(s.Leg.Points) == 0 {
		return errors.New("invalid request")
	}
	return nil
}

// RouteSummaryResponse model info
//
//	@Description	static route description after create/reroute
type RouteSummaryResponse struct {
	SessionID      string    `json:"session_id"`
	Polyline       string    `json:"polyline"`
	TotalDistanceM float64   `json:"total_distance_meters"`
	TotalTimeSec   float64   `json:"total_time_sec"`
	TurnsDistances []float64 `json:"turns_distances"`
}

func RenderRouteSummary(sum service.RouteSummary) *RouteSummaryResponse {
	return &RouteSummaryResponse{
		SessionID:      sum.SessionID,
		Polyline:       sum.Polyline,
		TotalDistanceM: util.RoundFloat(sum.TotalDistanceM, 2),
		TotalTimeSec:   util.RoundFloat(sum.TotalTimeSec, 2),
		TurnsDistances: sum.TurnsDistances,
	}
}

// CreateSession
//
//	@Summary		start tracking a computed route
//	@Description	creates a navigation session from a computed leg and returns the route summary
//	@Tags			navigation
//	@Param			body	body	CreateSessionRequest	true	"computed leg plus routing profile"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/navigation/sessions [post]
//	@Success		200	{object}	RouteSummaryResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *NavigationHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	data := &CreateSessionRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	sum, err := h.svc.CreateSession(r.Context(), data.RouterID, data.Name, data.Profile,
		data.Leg.toLeg(), data.AbsentCountries)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderRouteSummary(sum))
}

// UpdateLocationRequest model info
//
//	@Description	one GPS fix
type UpdateLocationRequest struct {
	Lat                float64  `json:"lat" validate:"required,lt=90,gt=-90"`
	Lon                float64  `json:"lon" validate:"required,lt=180,gt=-180"`
	Speed              *float64 `json:"speed,omitempty"`
	Timestamp          float64  `json:"timestamp" validate:"required,gt=0"`
	HorizontalAccuracy float64  `json:"horizontal_accuracy" validate:"gte=0"`
}

func (s *UpdateLocationRequest) Bind(r *http.Request) error {
	if s.Timestamp == 0 {
		return errors.New("invalid request")
	}
	return nil
}

// NavigationStatusResponse model info
//
//	@Description	tracking state after matching one GPS fix
type NavigationStatusResponse struct {
	Location           Coord                        `json:"location"`
	Bearing            float64                      `json:"bearing"`
	Matched            bool                         `json:"matched"`
	CurrentStreet      string                       `json:"current_street,omitempty"`
	LookAheadStreet    string                       `json:"look_ahead_street,omitempty"`
	Turns              []datastructure.TurnItemDist `json:"turns,omitempty"`
	TurnDescriptions   []string                     `json:"turn_descriptions,omitempty"`
	DistanceToEndM     float64                      `json:"distance_to_end_meters"`
	DistanceFromBeginM float64                      `json:"distance_from_begin_meters"`
	TimeToEndSec       float64                      `json:"time_to_end_sec"`
	OnEnd              bool                         `json:"on_end"`
	DirectionPoint     *Coord                       `json:"direction_point,omitempty"`
}

func RenderNavigationStatus(st service.NavigationStatus) *NavigationStatusResponse {
	resp := &NavigationStatusResponse{
		Location:           Coord{Lat: st.Location.Lat, Lon: st.Location.Lon},
		Bearing:            util.RoundFloat(st.Location.Bearing, 2),
		Matched:            st.Matched,
		CurrentStreet:      st.CurrentStreet,
		LookAheadStreet:    st.LookAheadStreet,
		Turns:              st.Turns,
		DistanceToEndM:     util.RoundFloat(st.DistanceToEndM, 2),
		DistanceFromBeginM: util.RoundFloat(st.DistanceFromBeginM, 2),
		TimeToEndSec:       util.RoundFloat(st.TimeToEndSec, 2),
		OnEnd:              st.OnEnd,
	}
	for _, t := range st.Turns {
		resp.TurnDescriptions = append(resp.TurnDescriptions, t.Turn.Description())
	}
	if st.HasDirectionPoint {
		resp.DirectionPoint = &Coord{Lat: st.DirectionPoint.Lat, Lon: st.DirectionPoint.Lon}
	}
	return resp
}

// UpdateLocation
//
//	@Summary		match one GPS fix against the session route
//	@Description	moves the route cursor, snaps the fix onto the path and returns the tracking state
//	@Tags			navigation
//	@Param			body	body	UpdateLocationRequest	true	"raw GPS fix"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/navigation/sessions/{sessionID}/location [post]
//	@Success		200	{object}	NavigationStatusResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *NavigationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	data := &UpdateLocationRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	fix := datastructure.GPSLocation{
		Lat:                data.Lat,
		Lon:                data.Lon,
		Timestamp:          data.Timestamp,
		HorizontalAccuracy: data.HorizontalAccuracy,
	}
	if data.Speed != nil {
		fix.Speed = *data.Speed
		fix.HasSpeed = true
	}

	st, err := h.svc.UpdateLocation(r.Context(), chi.URLParam(r, "sessionID"), fix)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderNavigationStatus(st))
}

// RerouteRequest model info
//
//	@Description	continuation leg computed after a re-route
type RerouteRequest struct {
	Leg LegModel `json:"leg" validate:"required"`
}

func (s *RerouteRequest) Bind(r *http.Request) error {
	if len(s.Leg.Points) == 0 {
		return errors.New("invalid request")
	}
	return nil
}

// Reroute
//
//	@Summary		stitch a continuation leg onto the session route
//	@Tags			navigation
//	@Param			body	body	RerouteRequest	true	"continuation leg"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/navigation/sessions/{sessionID}/reroute [post]
//	@Success		200	{object}	RouteSummaryResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *NavigationHandler) Reroute(w http.ResponseWriter, r *http.Request) {
	data := &RerouteRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	sum, err := h.svc.Reroute(r.Context(), chi.URLParam(r, "sessionID"), data.Leg.toLeg())
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderRouteSummary(sum))
}

// SegmentsResponse model info
//
//	@Description	per-edge records of the session route
type SegmentsResponse struct {
	Segments []datastructure.SegmentInfo `json:"segments"`
}

// Segments
//
//	@Summary		per-edge segment records of the session route
//	@Tags			navigation
//	@Produce		application/json
//	@Router			/navigation/sessions/{sessionID}/segments [get]
//	@Success		200	{object}	SegmentsResponse
//	@Failure		404	{object}	ErrResponse
func (h *NavigationHandler) Segments(w http.ResponseWriter, r *http.Request) {
	segments, err := h.svc.Segments(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &SegmentsResponse{Segments: segments})
}

// OverviewResponse model info
//
//	@Description	route-level summary for the overview screen
type OverviewResponse struct {
	Polyline        string    `json:"polyline"`
	TotalDistanceM  float64   `json:"total_distance_meters"`
	TotalTimeSec    float64   `json:"total_time_sec"`
	TurnsDistances  []float64 `json:"turns_distances"`
	AbsentCountries []string  `json:"absent_countries,omitempty"`
	SubrouteCount   int       `json:"subroute_count"`
	SubrouteUid     uint64    `json:"subroute_uid"`
	Router          string    `json:"router"`
}

// Overview
//
//	@Summary		route overview of a session
//	@Tags			navigation
//	@Produce		application/json
//	@Router			/navigation/sessions/{sessionID}/overview [get]
//	@Success		200	{object}	OverviewResponse
//	@Failure		404	{object}	ErrResponse
func (h *NavigationHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.svc.Overview(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &OverviewResponse{
		Polyline:        ov.Polyline,
		TotalDistanceM:  util.RoundFloat(ov.TotalDistanceM, 2),
		TotalTimeSec:    util.RoundFloat(ov.TotalTimeSec, 2),
		TurnsDistances:  ov.TurnsDistances,
		AbsentCountries: ov.AbsentCountries,
		SubrouteCount:   ov.SubrouteCount,
		SubrouteUid:     ov.Subroute.Uid,
		Router:          ov.Subroute.Router,
	})
}

// CloseSession
//
//	@Summary		finish a session and archive its trace
//	@Tags			navigation
//	@Produce		application/json
//	@Router			/navigation/sessions/{sessionID} [delete]
//	@Success		204
//	@Failure		404	{object}	ErrResponse
func (h *NavigationHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CloseSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}

// TracesNearResponse model info
//
//	@Description	archived traces whose destination lies near the query point
type TracesNearResponse struct {
	Traces []TraceModel `json:"traces"`
}

type TraceModel struct {
	SessionID      string  `json:"session_id"`
	RouterID       string  `json:"router_id"`
	Name           string  `json:"name"`
	Polyline       string  `json:"polyline"`
	Destination    Coord   `json:"destination"`
	TotalDistanceM float64 `json:"total_distance_meters"`
	TotalTimeSec   float64 `json:"total_time_sec"`
	FinishedAtUnix int64   `json:"finished_at"`
}

// TracesNear
//
//	@Summary		archived traces with a destination near the query point
//	@Tags			navigation
//	@Param			lat	query	number	true	"latitude"
//	@Param			lon	query	number	true	"longitude"
//	@Produce		application/json
//	@Router			/navigation/traces/near [get]
//	@Success		200	{object}	TracesNearResponse
//	@Failure		404	{object}	ErrResponse
func (h *NavigationHandler) TracesNear(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := parseLatLonQuery(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	traces, err := h.svc.TracesNear(r.Context(), lat, lon)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	resp := &TracesNearResponse{Traces: make([]TraceModel, 0, len(traces))}
	for _, tr := range traces {
		resp.Traces = append(resp.Traces, TraceModel{
			SessionID:      tr.SessionID,
			RouterID:       tr.RouterID,
			Name:           tr.Name,
			Polyline:       datastructure.CreatePolyline(tr.Points),
			Destination:    Coord{Lat: tr.Destination.Lat, Lon: tr.Destination.Lon},
			TotalDistanceM: util.RoundFloat(tr.TotalDistanceM, 2),
			TotalTimeSec:   util.RoundFloat(tr.TotalTimeSec, 2),
			FinishedAtUnix: tr.FinishedAtUnix,
		})
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// ExportTrace
//
//	@Summary		download one archived trace as a zstd-compressed json blob
//	@Tags			navigation
//	@Produce		application/octet-stream
//	@Router			/navigation/traces/{sessionID}/export [get]
//	@Success		200
//	@Failure		404	{object}	ErrResponse
func (h *NavigationHandler) ExportTrace(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	blob, err := h.svc.ExportTrace(r.Context(), sessionID)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "trace-"+sessionID+".json.zst"))
	w.WriteHeader(http.StatusOK)
	w.Write(blob)
}

func parseLatLonQuery(r *http.Request) (float64, float64, error) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		return 0, 0, errors.New("invalid lat query param")
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		return 0, 0, errors.New("invalid lon query param")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, errors.New("lat/lon out of range")
	}
	return lat, lon, nil
}

func renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, kv.ErrTraceNotFound):
		render.Render(w, r, ErrNotFoundRend(err))
	case errors.Is(err, service.ErrUnknownProfile):
		render.Render(w, r, ErrInvalidRequest(err))
	default:
		render.Render(w, r, ErrInternalServerErrorRend(errors.New("internal server error")))
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

// ErrResponse model info
//
//	@Description	model for error response
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf(e.Translate(trans))
		errs = append(errs, translatedErr)
	}
	return errs
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrNotFoundRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 404,
		StatusText:     "Resource not found.",
		ErrorText:      err.Error(),
	}
}

func ErrInternalServerErrorRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 500,
		StatusText:     "Internal server error.",
		ErrorText:      err.Error(),
	}
}
