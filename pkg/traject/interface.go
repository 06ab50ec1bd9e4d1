package traject

import (
	"context"

	"github.com/openvehiclelab/evedb/pkg/eveddb"
)

// SignalStore is the slice of the access layer the aggregator reads from
// and writes back to.
type SignalStore interface {
	TableExists(ctx context.Context, name string) (bool, error)
	CreateTrajectories(ctx context.Context) error
	TrajectoryIDs(ctx context.Context) ([]int64, error)
	TrajectorySignals(ctx context.Context, trajID int64) ([]eveddb.SignalPoint, error)
	UpdateTrajectories(ctx context.Context, rows [][]any, batchSize int) error
}
