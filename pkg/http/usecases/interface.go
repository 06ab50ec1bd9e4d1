package usecases

import (
	"context"

	"github.com/openvehiclelab/evedb/pkg/eveddb"
)

// DatasetStore is the slice of the access layer the query API reads from.
type DatasetStore interface {
	Trajectories(ctx context.Context) ([]eveddb.Trajectory, error)
	Trajectory(ctx context.Context, trajID int64) (eveddb.Trajectory, error)
	TrajectoryNodes(ctx context.Context, trajID int64) ([]eveddb.Node, error)
	Vehicles(ctx context.Context) ([]eveddb.Vehicle, error)
}
