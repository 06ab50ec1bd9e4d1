// Package match runs the map-matching stage: each trajectory's raw fixes
// are submitted to the external oracle and the matched geometry is
// persisted as node rows, or a single error marker when matching fails.
package match

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/openvehiclelab/evedb/pkg/eveddb"
	"github.com/openvehiclelab/evedb/pkg/match/valhalla"
	"github.com/openvehiclelab/evedb/pkg/polyline"
	"github.com/openvehiclelab/evedb/pkg/spatialindex"
	"github.com/openvehiclelab/evedb/pkg/storage"
	"go.uber.org/zap"
)

// matchFailure wraps failures that belong to one trajectory: oracle
// rejections, transport errors, undecodable geometry. They are recorded,
// never propagated. Storage errors are not matchFailures and abort the run.
type matchFailure struct {
	err error
}

func (f *matchFailure) Error() string { return f.err.Error() }
func (f *matchFailure) Unwrap() error { return f.err }

type Matcher struct {
	db        *eveddb.Db
	oracle    valhalla.Matcher
	log       *zap.Logger
	batchSize int

	// trimEdges drops the first and last decoded point, which the oracle
	// pads with boundary snaps under this pipeline's request parameters.
	trimEdges bool
}

type Option func(*Matcher)

// WithoutEdgeTrim keeps the first and last decoded points.
func WithoutEdgeTrim() Option {
	return func(m *Matcher) { m.trimEdges = false }
}

func NewMatcher(db *eveddb.Db, oracle valhalla.Matcher, log *zap.Logger, batchSize int, opts ...Option) *Matcher {
	if batchSize <= 0 {
		batchSize = storage.DefaultBatchSize
	}
	m := &Matcher{
		db:        db,
		oracle:    oracle,
		log:       log,
		batchSize: batchSize,
		trimEdges: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run map-matches every trajectory. Unlike signal ingestion this stage is
// idempotent by full rebuild: an existing node table is truncated, never
// topped up. A single trajectory's failure is recorded as its error node
// and never aborts the run.
func (m *Matcher) Run(ctx context.Context) error {
	exists, err := m.db.TableExists(ctx, "node")
	if err != nil {
		return err
	}
	if exists {
		m.log.Info("node table exists, truncating for rebuild")
		if err := m.db.TruncateNodes(ctx); err != nil {
			return err
		}
	} else if err := m.db.CreateNodeTable(ctx); err != nil {
		return err
	}

	ids, err := m.db.TrajectoryIDs(ctx)
	if err != nil {
		return err
	}

	var matched, failed int
	for _, trajID := range ids {
		if err := m.matchOne(ctx, trajID); err != nil {
			var failure *matchFailure
			if !errors.As(err, &failure) {
				return err
			}
			failed++
			m.log.Warn("map matching failed",
				zap.Int64("traj_id", trajID), zap.Error(failure.err))
			if err := m.db.InsertNodeError(ctx, trajID, failure.err.Error()); err != nil {
				return err
			}
			continue
		}
		matched++
	}

	m.log.Info("map matching finished",
		zap.Int("matched", matched), zap.Int("failed", failed))
	return nil
}

func (m *Matcher) matchOne(ctx context.Context, trajID int64) error {
	points, err := m.db.TracePoints(ctx, trajID)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return &matchFailure{err: fmt.Errorf("trajectory %d has no trace points", trajID)}
	}

	shape := make([]valhalla.ShapePoint, len(points))
	for i, p := range points {
		shape[i] = valhalla.ShapePoint{Lat: p.Lat, Lon: p.Lon, Time: p.Time}
	}

	geometry, err := m.oracle.TraceRoute(ctx, shape)
	if err != nil {
		return &matchFailure{err: err}
	}

	decoded, err := polyline.Decode(geometry)
	if err != nil {
		return &matchFailure{err: err}
	}
	// Boundary snaps pad both ends; one or two decoded points are nothing
	// but padding and trim away entirely.
	if m.trimEdges {
		if len(decoded) <= 2 {
			decoded = decoded[:0]
		} else {
			decoded = decoded[1 : len(decoded)-1]
		}
	}

	nodes := make([]eveddb.Node, 0, len(decoded))
	for _, p := range decoded {
		if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
			continue
		}
		nodes = append(nodes, eveddb.Node{
			TrajID: trajID,
			Lat:    p.Lat,
			Lon:    p.Lon,
			Cell:   spatialindex.CellID(p.Lat, p.Lon),
		})
	}
	return m.db.InsertNodes(ctx, nodes, m.batchSize)
}
