// Package traject derives trajectory-level aggregates from persisted
// signal sequences: geodesic path length, duration, wall-clock bounds and
// start/end spatial cells.
package traject

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/openvehiclelab/evedb/pkg/concurrent"
	"github.com/openvehiclelab/evedb/pkg/eveddb"
	"github.com/openvehiclelab/evedb/pkg/geo"
	"github.com/openvehiclelab/evedb/pkg/spatialindex"
	"github.com/openvehiclelab/evedb/pkg/storage"
	"github.com/openvehiclelab/evedb/pkg/util"
	"go.uber.org/zap"
)

// The extract's day numbers are offsets from this anchor, local to the
// collection area.
const (
	epochAnchorYear  = 2017
	epochAnchorMonth = time.November
	epochAnchorDay   = 1
	anchorTimezone   = "America/Detroit"
)

// maxWorkers caps the read+compute worker pool.
const maxWorkers = 8

// timestampLayout is how dt_ini/dt_end are persisted.
const timestampLayout = "2006-01-02 15:04:05.000000-07:00"

// Properties are the aggregates written back onto one trajectory row.
type Properties struct {
	TrajID    int64
	LengthM   float64
	DurationS float64
	DtIni     time.Time
	DtEnd     time.Time
	CellIni   int64
	CellEnd   int64
}

type Aggregator struct {
	db        SignalStore
	log       *zap.Logger
	batchSize int
	anchor    time.Time
}

func NewAggregator(db SignalStore, log *zap.Logger, batchSize int) (*Aggregator, error) {
	if batchSize <= 0 {
		batchSize = storage.DefaultBatchSize
	}
	loc, err := time.LoadLocation(anchorTimezone)
	if err != nil {
		return nil, fmt.Errorf("traject: load timezone: %w", err)
	}
	return &Aggregator{
		db:        db,
		log:       log,
		batchSize: batchSize,
		anchor:    time.Date(epochAnchorYear, epochAnchorMonth, epochAnchorDay, 0, 0, 0, 0, loc),
	}, nil
}

// Run creates the trajectory table from the signal store and populates the
// aggregates. Skipped entirely when the table already exists.
//
// The read+compute phase is parallel across trajectories; the write phase
// is one sequential batched UPDATE after all workers join. A trajectory
// whose computation fails is logged and excluded from the batch.
func (a *Aggregator) Run(ctx context.Context) error {
	exists, err := a.db.TableExists(ctx, "trajectory")
	if err != nil {
		return err
	}
	if exists {
		a.log.Info("trajectory table exists, skipping aggregation")
		return nil
	}
	if err := a.db.CreateTrajectories(ctx); err != nil {
		return err
	}

	ids, err := a.db.TrajectoryIDs(ctx)
	if err != nil {
		return err
	}

	type outcome struct {
		props Properties
		err   error
		id    int64
	}

	workers := util.MinInt(runtime.GOMAXPROCS(0), maxWorkers)
	// Queue and result buffers hold the full job set so the producer can
	// enqueue everything before draining.
	pool := concurrent.NewWorkerPool[int64, outcome](workers, len(ids))
	pool.Start(func(id int64) outcome {
		props, err := a.aggregateOne(ctx, id)
		return outcome{props: props, err: err, id: id}
	})
	for _, id := range ids {
		pool.AddJob(id)
	}
	pool.Close()
	pool.Wait()

	rows := make([][]any, 0, len(ids))
	for out := range pool.CollectResults() {
		if out.err != nil {
			a.log.Warn("trajectory aggregation failed",
				zap.Int64("traj_id", out.id), zap.Error(out.err))
			continue
		}
		rows = append(rows, []any{
			out.props.LengthM,
			out.props.DurationS,
			out.props.DtIni.Format(timestampLayout),
			out.props.DtEnd.Format(timestampLayout),
			out.props.CellIni,
			out.props.CellEnd,
			out.props.TrajID,
		})
	}

	a.log.Info("aggregated trajectories",
		zap.Int("total", len(ids)), zap.Int("updated", len(rows)))
	return a.db.UpdateTrajectories(ctx, rows, a.batchSize)
}

func (a *Aggregator) aggregateOne(ctx context.Context, trajID int64) (Properties, error) {
	signals, err := a.db.TrajectorySignals(ctx, trajID)
	if err != nil {
		return Properties{}, err
	}
	return a.Aggregate(trajID, signals), nil
}

// Aggregate computes the derived properties from a trajectory's
// timestamp-ordered signal rows. Zero or one usable point yields zero
// length and zero duration.
func (a *Aggregator) Aggregate(trajID int64, signals []eveddb.SignalPoint) Properties {
	props := Properties{
		TrajID:  trajID,
		CellIni: spatialindex.MissingCell,
		CellEnd: spatialindex.MissingCell,
	}
	if len(signals) == 0 {
		props.DtIni = a.anchor
		props.DtEnd = a.anchor
		return props
	}

	first, last := signals[0], signals[len(signals)-1]
	props.DtIni = a.wallClock(first.DayNum, first.TimeStamp)
	props.DtEnd = a.wallClock(last.DayNum, last.TimeStamp)
	props.DurationS = props.DtEnd.Sub(props.DtIni).Seconds()
	props.CellIni = spatialindex.CellID(first.MatchLat, first.MatchLon)
	props.CellEnd = spatialindex.CellID(last.MatchLat, last.MatchLon)

	// Distinct matched points only: repeated fixes at the same coordinate
	// add no distance, and missing coordinates are skipped, not fatal.
	var path []geo.Coordinate
	for _, s := range signals {
		if math.IsNaN(s.MatchLat) || math.IsNaN(s.MatchLon) {
			continue
		}
		if n := len(path); n > 0 && path[n-1].Lat == s.MatchLat && path[n-1].Lon == s.MatchLon {
			continue
		}
		path = append(path, geo.NewCoordinate(s.MatchLat, s.MatchLon))
	}
	props.LengthM = geo.PathLength(path)
	return props
}

// wallClock resolves a day-number offset plus millisecond offset against
// the anchor date. Day numbers are 1-based and fractional.
func (a *Aggregator) wallClock(dayNum float64, timestampMS int64) time.Time {
	days := time.Duration((dayNum - 1) * 24 * float64(time.Hour))
	return a.anchor.Add(days).Add(time.Duration(timestampMS) * time.Millisecond)
}
