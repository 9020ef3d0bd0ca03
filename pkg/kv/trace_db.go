package kv

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/lintang-b-s/routetracker/pkg/datastructure"

	"github.com/dgraph-io/badger/v4"
	"github.com/uber/h3-go/v4"
)

const (
	destCellResolution = 9
	tracePrefix        = "trace:"
	destPrefix         = "dest:"
)

var (
	ErrTraceNotFound = errors.New("trace not found")
)

// ArchivedTrace is the persisted record of one finished navigation session.
type ArchivedTrace struct {
	SessionID      string
	RouterID       string
	Name           string
	Points         []datastructure.Coordinate
	Destination    datastructure.Coordinate
	TotalDistanceM float64
	TotalTimeSec   float64
	FinishedAtUnix int64
}

// TraceRef is the destination-cell index entry pointing at a stored trace.
type TraceRef struct {
	SessionID   string
	Destination datastructure.Coordinate
}

// TraceDB archives finished navigation traces in badger, destination-indexed
// by H3 cell for nearby lookups.
type TraceDB struct {
	db *badger.DB
}

func NewTraceDB(db *badger.DB) *TraceDB {
	return &TraceDB{db}
}

// SaveTrace stores the trace and links it under its destination H3 cell.
func (k *TraceDB) SaveTrace(ctx context.Context, tr ArchivedTrace) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled")
	default:
	}

	val, err := encodeTrace(tr)
	if err != nil {
		return err
	}

	cell := h3.LatLngToCell(h3.NewLatLng(tr.Destination.Lat, tr.Destination.Lon), destCellResolution)
	cellKey := []byte(destPrefix + cell.String())

	err = k.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(tracePrefix+tr.SessionID), val); err != nil {
			return err
		}

		refs := []TraceRef{}
		item, err := txn.Get(cellKey)
		if err == nil {
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if refs, err = decodeRefs(raw); err != nil {
				return err
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		refs = append(refs, TraceRef{SessionID: tr.SessionID, Destination: tr.Destination})
		encodedRefs, err := encodeRefs(refs)
		if err != nil {
			return err
		}
		return txn.Set(cellKey, encodedRefs)
	})
	if err != nil {
		log.Printf("error saving trace %s: %v", tr.SessionID, err)
		return err
	}
	return nil
}

func (k *TraceDB) get(key []byte) ([]byte, error) {
	var val []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	return val, err
}

// GetTrace loads one archived trace by session id.
func (k *TraceDB) GetTrace(sessionID string) (ArchivedTrace, error) {
	val, err := k.get([]byte(tracePrefix + sessionID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ArchivedTrace{}, ErrTraceNotFound
	}
	if err != nil {
		return ArchivedTrace{}, err
	}
	return decodeTrace(val)
}

// GetTracesNear returns archived traces whose destination lies in the H3
// cell of (lat, lon), widening the disk ring by ring while nothing is found.
func (k *TraceDB) GetTracesNear(lat, lon float64) ([]ArchivedTrace, error) {
	origin := h3.LatLngToCell(h3.NewLatLng(lat, lon), destCellResolution)

	refs := []TraceRef{}
	for lev := 0; lev <= 3; lev++ {
		cells := h3.GridDisk(origin, lev)
		for _, cell := range cells {
			raw, err := k.get([]byte(destPrefix + cell.String()))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			cellRefs, err := decodeRefs(raw)
			if err != nil {
				return nil, err
			}
			refs = append(refs, cellRefs...)
		}
		if len(refs) != 0 {
			break
		}
	}

	if len(refs) == 0 {
		return nil, ErrTraceNotFound
	}

	traces := make([]ArchivedTrace, 0, len(refs))
	for _, ref := range refs {
		tr, err := k.GetTrace(ref.SessionID)
		if err != nil {
			return nil, err
		}
		traces = append(traces, tr)
	}
	return traces, nil
}

func (k *TraceDB) Close() {
	k.db.Close()
}
