package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lintang-b-s/routetracker/pkg/datastructure"
	"github.com/lintang-b-s/routetracker/pkg/guidance"
	"github.com/lintang-b-s/routetracker/pkg/kv"
	"github.com/lintang-b-s/routetracker/pkg/route"

	"golang.org/x/exp/rand"
)

var (
	ErrSessionNotFound = errors.New("navigation session not found")
	ErrUnknownProfile  = errors.New("unknown routing profile")
)

// TraceStore archives finished navigation sessions.
type TraceStore interface {
	SaveTrace(ctx context.Context, tr kv.ArchivedTrace) error
	GetTrace(sessionID string) (kv.ArchivedTrace, error)
	GetTracesNear(lat, lon float64) ([]kv.ArchivedTrace, error)
}

// LegBuilder populates route annotation tables from a computed leg.
type LegBuilder interface {
	Apply(r *route.Route, leg guidance.Leg) error
}

type session struct {
	id           string
	route        *route.Route
	matchingInfo datastructure.RouteMatchingInfo
}

// NavigationService owns the live navigation sessions. Each route is a
// single-threaded object; the service mutex serializes every access to it.
type NavigationService struct {
	mu              sync.Mutex
	sessions        map[string]*session
	traces          TraceStore
	legBuilder      LegBuilder
	nextSubrouteUid uint64
}

func NewNavigationService(traces TraceStore, legBuilder LegBuilder) *NavigationService {
	return &NavigationService{
		sessions:   make(map[string]*session),
		traces:     traces,
		legBuilder: legBuilder,
	}
}

func settingsForProfile(profile string) (route.RoutingSettings, error) {
	switch profile {
	case "car", "":
		return route.CarRoutingSettings(), nil
	case "pedestrian":
		return route.PedestrianRoutingSettings(), nil
	default:
		return route.RoutingSettings{}, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}
}

// RouteSummary is the static description of a created session.
type RouteSummary struct {
	SessionID      string
	Polyline       string
	TotalDistanceM float64
	TotalTimeSec   float64
	TurnsDistances []float64
}

func (uc *NavigationService) CreateSession(ctx context.Context, routerID, name, profile string,
	leg guidance.Leg, absentCountries []string) (RouteSummary, error) {
	settings, err := settingsForProfile(profile)
	if err != nil {
		return RouteSummary{}, err
	}

	r := route.NewRoute(routerID, leg.Points, name, settings)
	if !r.IsValid() {
		return RouteSummary{}, fmt.Errorf("leg must have at least 2 points, got %d", len(leg.Points))
	}
	if err := uc.legBuilder.Apply(r, leg); err != nil {
		return RouteSummary{}, err
	}
	for _, country := range absentCountries {
		r.AddAbsentCountry(country)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.nextSubrouteUid++
	r.SetSubrouteUid(0, uc.nextSubrouteUid)

	s := &session{id: newSessionID(), route: r}
	uc.sessions[s.id] = s

	return RouteSummary{
		SessionID:      s.id,
		Polyline:       route.DebugPrint(r),
		TotalDistanceM: r.TotalDistanceM(),
		TotalTimeSec:   r.TotalTimeSec(),
		TurnsDistances: r.TurnsDistances(),
	}, nil
}

// NavigationStatus is the per-fix answer of the tracker: the possibly
// snapped location and everything the UI layer shows while following.
type NavigationStatus struct {
	Location           datastructure.GPSLocation
	Matched            bool
	MatchingInfo       datastructure.RouteMatchingInfo
	CurrentStreet      string
	LookAheadStreet    string
	Turns              []datastructure.TurnItemDist
	DistanceToEndM     float64
	DistanceFromBeginM float64
	TimeToEndSec       float64
	OnEnd              bool
	DirectionPoint     datastructure.Coordinate
	HasDirectionPoint  bool
}

func (uc *NavigationService) UpdateLocation(ctx context.Context, sessionID string,
	fix datastructure.GPSLocation) (NavigationStatus, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	s, ok := uc.sessions[sessionID]
	if !ok {
		return NavigationStatus{}, ErrSessionNotFound
	}
	r := s.route

	matched := r.MoveIterator(fix)
	if matched {
		r.MatchLocationToRoute(&fix, &s.matchingInfo)
	}

	status := NavigationStatus{
		Location:           fix,
		Matched:            matched,
		MatchingInfo:       s.matchingInfo,
		CurrentStreet:      r.CurrentStreetName(),
		DistanceToEndM:     r.DistanceToEndM(),
		DistanceFromBeginM: r.DistanceFromBeginM(),
		TimeToEndSec:       r.CurrentTimeToEndSec(),
		OnEnd:              r.IsCurrentOnEnd(),
	}
	if s.matchingInfo.HasRouteMatching() {
		status.LookAheadStreet = r.StreetNameAfterIdx(s.matchingInfo.VertexIndex)
	}
	if turns, ok := r.NextTurns(); ok {
		status.Turns = turns
	}
	if pt, ok := r.CurrentDirectionPoint(); ok {
		status.DirectionPoint = pt
		status.HasDirectionPoint = true
	}
	return status, nil
}

// Reroute stitches a newly computed continuation onto the session route.
func (uc *NavigationService) Reroute(ctx context.Context, sessionID string, leg guidance.Leg) (RouteSummary, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	s, ok := uc.sessions[sessionID]
	if !ok {
		return RouteSummary{}, ErrSessionNotFound
	}

	continuation := route.NewRoute(s.route.Router(), leg.Points, s.route.Name(), s.route.Settings())
	if !continuation.IsValid() {
		return RouteSummary{}, fmt.Errorf("continuation leg must have at least 2 points, got %d", len(leg.Points))
	}
	if err := uc.legBuilder.Apply(continuation, leg); err != nil {
		return RouteSummary{}, err
	}

	s.route.AppendRoute(continuation)
	return RouteSummary{
		SessionID:      s.id,
		Polyline:       route.DebugPrint(s.route),
		TotalDistanceM: s.route.TotalDistanceM(),
		TotalTimeSec:   s.route.TotalTimeSec(),
		TurnsDistances: s.route.TurnsDistances(),
	}, nil
}

func (uc *NavigationService) Segments(ctx context.Context, sessionID string) ([]datastructure.SegmentInfo, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	s, ok := uc.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.route.SubrouteCount() == 0 {
		return nil, fmt.Errorf("session %s has no valid route", sessionID)
	}
	return s.route.SubrouteInfo(0), nil
}

// Overview is the route-level summary for the overview screen.
type Overview struct {
	Polyline        string
	TotalDistanceM  float64
	TotalTimeSec    float64
	TurnsDistances  []float64
	AbsentCountries []string
	SubrouteCount   int
	Subroute        route.SubrouteSettings
}

func (uc *NavigationService) Overview(ctx context.Context, sessionID string) (Overview, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	s, ok := uc.sessions[sessionID]
	if !ok {
		return Overview{}, ErrSessionNotFound
	}
	r := s.route

	ov := Overview{
		Polyline:        route.DebugPrint(r),
		TotalDistanceM:  r.TotalDistanceM(),
		TotalTimeSec:    r.TotalTimeSec(),
		TurnsDistances:  r.TurnsDistances(),
		AbsentCountries: r.AbsentCountries(),
		SubrouteCount:   r.SubrouteCount(),
	}
	if ov.SubrouteCount > 0 {
		ov.Subroute = r.SubrouteSettings(0)
	}
	return ov, nil
}

// CloseSession archives the finished session trace and forgets the session.
func (uc *NavigationService) CloseSession(ctx context.Context, sessionID string) error {
	uc.mu.Lock()
	s, ok := uc.sessions[sessionID]
	if ok {
		delete(uc.sessions, sessionID)
	}
	uc.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	r := s.route
	points := r.Poly().Points()
	if len(points) == 0 {
		return nil
	}
	tr := kv.ArchivedTrace{
		SessionID:      s.id,
		RouterID:       r.Router(),
		Name:           r.Name(),
		Points:         points,
		Destination:    points[len(points)-1],
		TotalDistanceM: r.TotalDistanceM(),
		TotalTimeSec:   r.TotalTimeSec(),
		FinishedAtUnix: time.Now().Unix(),
	}
	return uc.traces.SaveTrace(ctx, tr)
}

func (uc *NavigationService) TracesNear(ctx context.Context, lat, lon float64) ([]kv.ArchivedTrace, error) {
	return uc.traces.GetTracesNear(lat, lon)
}

// ExportTrace returns one archived trace as a zstd-compressed json blob for
// download by analysis tooling.
func (uc *NavigationService) ExportTrace(ctx context.Context, sessionID string) ([]byte, error) {
	tr, err := uc.traces.GetTrace(sessionID)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(tr)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := datastructure.CompressTrace(raw, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const sessionIDAlphabet = "0123456789abcdef"

func newSessionID() string {
	id := make([]byte, 16)
	for i := range id {
		id[i] = sessionIDAlphabet[rand.Intn(len(sessionIDAlphabet))]
	}
	return string(id)
}
