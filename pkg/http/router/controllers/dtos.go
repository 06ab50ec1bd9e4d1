package controllers

import (
	"github.com/openvehiclelab/evedb/pkg/eveddb"
)

type trajectoryRequest struct {
	TrajID int64 `json:"traj_id" validate:"required,min=1"`
}

type trajectoryResponse struct {
	TrajID    int64    `json:"traj_id"`
	VehicleID int64    `json:"vehicle_id"`
	TripID    int64    `json:"trip_id"`
	LengthM   *float64 `json:"length_m"`
	DurationS *float64 `json:"duration_s"`
	DtIni     *string  `json:"dt_ini"`
	DtEnd     *string  `json:"dt_end"`
	Km        *float64 `json:"km"`
}

func newTrajectoryResponse(t eveddb.Trajectory) trajectoryResponse {
	resp := trajectoryResponse{
		TrajID:    t.TrajID,
		VehicleID: t.VehicleID,
		TripID:    t.TripID,
	}
	if t.LengthM.Valid {
		resp.LengthM = &t.LengthM.Float64
	}
	if t.DurationS.Valid {
		resp.DurationS = &t.DurationS.Float64
	}
	if t.DtIni.Valid {
		resp.DtIni = &t.DtIni.String
	}
	if t.DtEnd.Valid {
		resp.DtEnd = &t.DtEnd.String
	}
	if t.Km.Valid {
		resp.Km = &t.Km.Float64
	}
	return resp
}

func newTrajectoryResponses(trajectories []eveddb.Trajectory) []trajectoryResponse {
	out := make([]trajectoryResponse, len(trajectories))
	for i, t := range trajectories {
		out[i] = newTrajectoryResponse(t)
	}
	return out
}

type geometryResponse struct {
	TrajID   int64  `json:"traj_id"`
	Geometry string `json:"geometry"`
	Points   int    `json:"points"`
}

type vehicleResponse struct {
	VehicleID    int64    `json:"vehicle_id"`
	VehicleType  *string  `json:"vehicle_type"`
	VehicleClass *string  `json:"vehicle_class"`
	Engine       *string  `json:"engine"`
	Transmission *string  `json:"transmission"`
	DriveWheels  *string  `json:"drive_wheels"`
	Weight       *float64 `json:"weight"`
}

func newVehicleResponses(vehicles []eveddb.Vehicle) []vehicleResponse {
	out := make([]vehicleResponse, len(vehicles))
	for i, v := range vehicles {
		out[i] = vehicleResponse{VehicleID: v.VehicleID}
		if v.VehicleType.Valid {
			out[i].VehicleType = &v.VehicleType.String
		}
		if v.VehicleClass.Valid {
			out[i].VehicleClass = &v.VehicleClass.String
		}
		if v.Engine.Valid {
			out[i].Engine = &v.Engine.String
		}
		if v.Transmission.Valid {
			out[i].Transmission = &v.Transmission.String
		}
		if v.DriveWheels.Valid {
			out[i].DriveWheels = &v.DriveWheels.String
		}
		if v.Weight.Valid {
			out[i].Weight = &v.Weight.Float64
		}
	}
	return out
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
