package controllers

import (
	"context"

	"github.com/openvehiclelab/evedb/pkg/eveddb"
)

type TripService interface {
	ListTrajectories(ctx context.Context) ([]eveddb.Trajectory, error)
	TrajectoryDetail(ctx context.Context, trajID int64) (eveddb.Trajectory, error)
	TrajectoryGeometry(ctx context.Context, trajID int64) (string, int, error)
	ListVehicles(ctx context.Context) ([]eveddb.Vehicle, error)
}
