package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/lintang-b-s/routetracker/pkg/datastructure"
	"github.com/lintang-b-s/routetracker/pkg/guidance"
	"github.com/lintang-b-s/routetracker/pkg/kv"

	"github.com/stretchr/testify/assert"
)

type stubTraceStore struct {
	saved []kv.ArchivedTrace
}

func (s *stubTraceStore) SaveTrace(ctx context.Context, tr kv.ArchivedTrace) error {
	s.saved = append(s.saved, tr)
	return nil
}

func (s *stubTraceStore) GetTrace(sessionID string) (kv.ArchivedTrace, error) {
	for _, tr := range s.saved {
		if tr.SessionID == sessionID {
			return tr, nil
		}
	}
	return kv.ArchivedTrace{}, kv.ErrTraceNotFound
}

func (s *stubTraceStore) GetTracesNear(lat, lon float64) ([]kv.ArchivedTrace, error) {
	if len(s.saved) == 0 {
		return nil, kv.ErrTraceNotFound
	}
	return s.saved, nil
}

func buildServiceLeg() guidance.Leg {
	points := make([]datastructure.Coordinate, 0, 5)
	for i := 0; i < 5; i++ {
		points = append(points, datastructure.NewCoordinate(0.0, float64(i)*0.001))
	}
	edges := make([]guidance.LegEdge, 0, 4)
	for i := 0; i < 4; i++ {
		edges = append(edges, guidance.LegEdge{StreetName: "Main St", SpeedKmH: 36.0})
	}
	return guidance.Leg{Points: points, Edges: edges}
}

func newTestService() (*NavigationService, *stubTraceStore) {
	store := &stubTraceStore{}
	return NewNavigationService(store, guidance.NewLegBuilder()), store
}

func TestCreateSession(t *testing.T) {
	svc, _ := newTestService()

	sum, err := svc.CreateSession(context.Background(), "vehicle", "commute", "car",
		buildServiceLeg(), []string{"Wonderland"})
	assert.NoError(t, err)
	assert.NotEmpty(t, sum.SessionID)
	assert.NotEmpty(t, sum.Polyline)
	assert.Greater(t, sum.TotalDistanceM, 0.0)
	assert.Greater(t, sum.TotalTimeSec, 0.0)
}

func TestCreateSessionUnknownProfile(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateSession(context.Background(), "vehicle", "commute", "submarine",
		buildServiceLeg(), nil)
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestUpdateLocationFlow(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	leg := buildServiceLeg()
	sum, err := svc.CreateSession(ctx, "vehicle", "commute", "car", leg, nil)
	assert.NoError(t, err)

	// a fix right on the second vertex snaps and reports progress
	st, err := svc.UpdateLocation(ctx, sum.SessionID, datastructure.GPSLocation{
		Lat: 0.0, Lon: 0.001, Timestamp: 100.0,
	})
	assert.NoError(t, err)
	assert.True(t, st.Matched)
	assert.True(t, st.MatchingInfo.HasRouteMatching())
	assert.Equal(t, "Main St", st.CurrentStreet)
	assert.Greater(t, st.DistanceFromBeginM, 0.0)
	assert.Greater(t, st.TimeToEndSec, 0.0)
	assert.False(t, st.OnEnd)
	assert.True(t, st.HasDirectionPoint)

	// reaching the destination flips the end flag
	st, err = svc.UpdateLocation(ctx, sum.SessionID, datastructure.GPSLocation{
		Lat: 0.0, Lon: 0.004, Timestamp: 140.0,
	})
	assert.NoError(t, err)
	assert.True(t, st.OnEnd)
	assert.InDelta(t, 0.0, st.DistanceToEndM, 1.0)
}

func TestUpdateLocationUnknownSession(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateLocation(context.Background(), "missing", datastructure.GPSLocation{
		Lat: 0.0, Lon: 0.0, Timestamp: 1.0,
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRerouteExtendsRoute(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	leg := buildServiceLeg()
	sum, err := svc.CreateSession(ctx, "vehicle", "commute", "car", leg, nil)
	assert.NoError(t, err)

	continuation := guidance.Leg{
		Points: []datastructure.Coordinate{
			datastructure.NewCoordinate(0.0, 0.004),
			datastructure.NewCoordinate(0.0, 0.005),
			datastructure.NewCoordinate(0.0, 0.006),
		},
		Edges: []guidance.LegEdge{
			{StreetName: "Main St", SpeedKmH: 36.0},
			{StreetName: "New St", SpeedKmH: 36.0},
		},
	}

	merged, err := svc.Reroute(ctx, sum.SessionID, continuation)
	assert.NoError(t, err)
	assert.Greater(t, merged.TotalDistanceM, sum.TotalDistanceM)
	assert.Greater(t, merged.TotalTimeSec, sum.TotalTimeSec)

	segments, err := svc.Segments(ctx, sum.SessionID)
	assert.NoError(t, err)
	assert.Equal(t, 6, len(segments))
	assert.True(t, segments[len(segments)-1].HasTurn)
	assert.True(t, segments[len(segments)-1].Turn.IsDestination())
}

func TestOverview(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	sum, err := svc.CreateSession(ctx, "vehicle", "commute", "car",
		buildServiceLeg(), []string{"Atlantis"})
	assert.NoError(t, err)

	ov, err := svc.Overview(ctx, sum.SessionID)
	assert.NoError(t, err)
	assert.Equal(t, 1, ov.SubrouteCount)
	assert.Equal(t, "vehicle", ov.Subroute.Router)
	assert.NotZero(t, ov.Subroute.Uid)
	assert.Equal(t, []string{"Atlantis"}, ov.AbsentCountries)
}

func TestCloseSessionArchivesTrace(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	sum, err := svc.CreateSession(ctx, "vehicle", "commute", "car", buildServiceLeg(), nil)
	assert.NoError(t, err)

	assert.NoError(t, svc.CloseSession(ctx, sum.SessionID))
	assert.Equal(t, 1, len(store.saved))
	assert.Equal(t, sum.SessionID, store.saved[0].SessionID)
	assert.Equal(t, "vehicle", store.saved[0].RouterID)

	// the session is gone afterwards
	assert.ErrorIs(t, svc.CloseSession(ctx, sum.SessionID), ErrSessionNotFound)
}

func TestExportTraceRoundTrip(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	sum, err := svc.CreateSession(ctx, "vehicle", "commute", "car", buildServiceLeg(), nil)
	assert.NoError(t, err)
	assert.NoError(t, svc.CloseSession(ctx, sum.SessionID))

	blob, err := svc.ExportTrace(ctx, sum.SessionID)
	assert.NoError(t, err)
	assert.NotEmpty(t, blob)

	var raw bytes.Buffer
	assert.NoError(t, datastructure.DecompressTrace(blob, &raw))

	var tr kv.ArchivedTrace
	assert.NoError(t, json.Unmarshal(raw.Bytes(), &tr))
	assert.Equal(t, sum.SessionID, tr.SessionID)

	_, err = svc.ExportTrace(ctx, "missing")
	assert.ErrorIs(t, err, kv.ErrTraceNotFound)
}

func TestSubrouteUidsAreUnique(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateSession(ctx, "vehicle", "a", "car", buildServiceLeg(), nil)
	assert.NoError(t, err)
	second, err := svc.CreateSession(ctx, "vehicle", "b", "car", buildServiceLeg(), nil)
	assert.NoError(t, err)

	ovFirst, err := svc.Overview(ctx, first.SessionID)
	assert.NoError(t, err)
	ovSecond, err := svc.Overview(ctx, second.SessionID)
	assert.NoError(t, err)
	assert.NotEqual(t, ovFirst.Subroute.Uid, ovSecond.Subroute.Uid)
}
