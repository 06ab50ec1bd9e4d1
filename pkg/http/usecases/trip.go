package usecases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/openvehiclelab/evedb/pkg/eveddb"
	"github.com/openvehiclelab/evedb/pkg/geo"
	"github.com/openvehiclelab/evedb/pkg/util"
	"go.uber.org/zap"
)

type TripService struct {
	log *zap.Logger
	db  DatasetStore
}

func NewTripService(log *zap.Logger, db DatasetStore) *TripService {
	return &TripService{log: log, db: db}
}

func (ts *TripService) ListTrajectories(ctx context.Context) ([]eveddb.Trajectory, error) {
	return ts.db.Trajectories(ctx)
}

func (ts *TripService) TrajectoryDetail(ctx context.Context, trajID int64) (eveddb.Trajectory, error) {
	t, err := ts.db.Trajectory(ctx, trajID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return eveddb.Trajectory{}, util.WrapErrorf(err, util.ErrNotFound,
				"trajectory %d not found", trajID)
		}
		return eveddb.Trajectory{}, err
	}
	return t, nil
}

// TrajectoryGeometry returns the matched path of a trajectory as an
// encoded polyline plus the waypoint count. A trajectory whose matching
// failed surfaces its recorded error.
func (ts *TripService) TrajectoryGeometry(ctx context.Context, trajID int64) (string, int, error) {
	nodes, err := ts.db.TrajectoryNodes(ctx, trajID)
	if err != nil {
		return "", 0, err
	}
	if len(nodes) == 0 {
		return "", 0, util.WrapErrorf(nil, util.ErrNotFound,
			"trajectory %d has no matched nodes", trajID)
	}

	coords := make([]geo.Coordinate, 0, len(nodes))
	for _, n := range nodes {
		if n.MatchError.Valid {
			return "", 0, util.WrapErrorf(fmt.Errorf("%s", n.MatchError.String),
				util.ErrNotFound, "trajectory %d was not matched: %s", trajID, n.MatchError.String)
		}
		if math.IsNaN(n.Lat) || math.IsNaN(n.Lon) {
			continue
		}
		coords = append(coords, geo.NewCoordinate(n.Lat, n.Lon))
	}
	return geo.PolylineFromCoords(coords), len(coords), nil
}

func (ts *TripService) ListVehicles(ctx context.Context) ([]eveddb.Vehicle, error) {
	return ts.db.Vehicles(ctx)
}
