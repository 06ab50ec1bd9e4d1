// Package eveddb is the typed access layer over the trajectory dataset:
// table DDL, bulk inserts and the query shapes the pipeline stages and the
// query API need.
package eveddb

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/openvehiclelab/evedb/pkg/storage"
)

type Db struct {
	store *storage.DB
}

func New(store *storage.DB) *Db {
	return &Db{store: store}
}

// Store exposes the underlying gateway for callers that need raw access.
func (d *Db) Store() *storage.DB {
	return d.store
}

func (d *Db) TableExists(ctx context.Context, name string) (bool, error) {
	return d.store.TableExists(ctx, name)
}

// Vehicle is one static-metadata record from the reference spreadsheets.
type Vehicle struct {
	VehicleID    int64           `json:"vehicle_id"`
	VehicleType  sql.NullString  `json:"vehicle_type"`
	VehicleClass sql.NullString  `json:"vehicle_class"`
	Engine       sql.NullString  `json:"engine"`
	Transmission sql.NullString  `json:"transmission"`
	DriveWheels  sql.NullString  `json:"drive_wheels"`
	Weight       sql.NullFloat64 `json:"weight"`
}

// Trajectory is one (vehicle, trip) unit of travel. Scalar aggregates are
// NULL until the aggregator has run.
type Trajectory struct {
	TrajID    int64           `json:"traj_id"`
	VehicleID int64           `json:"vehicle_id"`
	TripID    int64           `json:"trip_id"`
	LengthM   sql.NullFloat64 `json:"length_m"`
	DurationS sql.NullFloat64 `json:"duration_s"`
	DtIni     sql.NullString  `json:"dt_ini"`
	DtEnd     sql.NullString  `json:"dt_end"`
	Km        sql.NullFloat64 `json:"km"`
}

// SignalPoint is the slice of a signal row the aggregator needs. Missing
// matched coordinates surface as NaN so the cell index maps them to its
// sentinel.
type SignalPoint struct {
	SignalID  int64
	DayNum    float64
	TimeStamp int64
	Lat       float64
	Lon       float64
	MatchLat  float64
	MatchLon  float64
}

// TracePoint is one deduplicated raw GPS fix submitted to the oracle.
type TracePoint struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Time int64   `json:"time"`
}

// Node is one persisted map-matched waypoint, or an error marker when
// MatchError is set.
type Node struct {
	TrajID     int64          `json:"traj_id"`
	Lat        float64        `json:"latitude"`
	Lon        float64        `json:"longitude"`
	Cell       int64          `json:"h3_cell"`
	MatchError sql.NullString `json:"match_error"`
}

func (d *Db) CreateVehicleTable(ctx context.Context) error {
	return d.store.Execute(ctx, createVehicleTable)
}

func (d *Db) InsertVehicles(ctx context.Context, rows [][]any, batchSize int) error {
	return d.store.ExecuteMany(ctx, insertVehicleSQL, rows, batchSize)
}

func (d *Db) Vehicles(ctx context.Context) ([]Vehicle, error) {
	rows, err := d.store.QueryContext(ctx, `
		SELECT vehicle_id, vehicle_type, vehicle_class, engine, transmission, drive_wheels, weight
		FROM   vehicle
		ORDER  BY vehicle_id`)
	if err != nil {
		return nil, fmt.Errorf("eveddb: vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.VehicleID, &v.VehicleType, &v.VehicleClass,
			&v.Engine, &v.Transmission, &v.DriveWheels, &v.Weight); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (d *Db) CreateSignalTable(ctx context.Context) error {
	return d.store.Execute(ctx, createSignalTable)
}

func (d *Db) InsertSignals(ctx context.Context, rows [][]any, batchSize int) error {
	return d.store.ExecuteMany(ctx, insertSignalSQL, rows, batchSize)
}

func (d *Db) CreateSignalIndexes(ctx context.Context) error {
	for _, ddl := range signalIndexes {
		if err := d.store.Execute(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

// CreateTrajectories creates the trajectory table, derives one row per
// distinct (vehicle, trip) pair from signal and builds the indexes.
func (d *Db) CreateTrajectories(ctx context.Context) error {
	if err := d.store.Execute(ctx, createTrajectoryTable); err != nil {
		return err
	}
	if err := d.store.Execute(ctx, insertTrajectoriesSQL); err != nil {
		return err
	}
	for _, ddl := range trajectoryIndexes {
		if err := d.store.Execute(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

func (d *Db) TrajectoryIDs(ctx context.Context) ([]int64, error) {
	rows, err := d.store.QueryContext(ctx, "SELECT traj_id FROM trajectory ORDER BY traj_id")
	if err != nil {
		return nil, fmt.Errorf("eveddb: trajectory ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (d *Db) Trajectories(ctx context.Context) ([]Trajectory, error) {
	rows, err := d.store.QueryContext(ctx, `
		SELECT traj_id, vehicle_id, trip_id, length_m, duration_s, dt_ini, dt_end,
		       ROUND(length_m / 1000.0, 1) AS km
		FROM   trajectory
		ORDER  BY traj_id`)
	if err != nil {
		return nil, fmt.Errorf("eveddb: trajectories: %w", err)
	}
	defer rows.Close()

	var trajectories []Trajectory
	for rows.Next() {
		var t Trajectory
		if err := rows.Scan(&t.TrajID, &t.VehicleID, &t.TripID,
			&t.LengthM, &t.DurationS, &t.DtIni, &t.DtEnd, &t.Km); err != nil {
			return nil, err
		}
		trajectories = append(trajectories, t)
	}
	return trajectories, rows.Err()
}

func (d *Db) Trajectory(ctx context.Context, trajID int64) (Trajectory, error) {
	var t Trajectory
	err := d.store.QueryRowContext(ctx, `
		SELECT traj_id, vehicle_id, trip_id, length_m, duration_s, dt_ini, dt_end,
		       ROUND(length_m / 1000.0, 1) AS km
		FROM   trajectory
		WHERE  traj_id = ?`, trajID).
		Scan(&t.TrajID, &t.VehicleID, &t.TripID, &t.LengthM, &t.DurationS, &t.DtIni, &t.DtEnd, &t.Km)
	if err != nil {
		return Trajectory{}, fmt.Errorf("eveddb: trajectory %d: %w", trajID, err)
	}
	return t, nil
}

// TrajectorySignals loads a trajectory's signal rows ordered by timestamp.
func (d *Db) TrajectorySignals(ctx context.Context, trajID int64) ([]SignalPoint, error) {
	rows, err := d.store.QueryContext(ctx, `
		SELECT     s.signal_id, s.day_num, s.time_stamp,
		           s.latitude, s.longitude, s.match_latitude, s.match_longitude
		FROM       signal s
		INNER JOIN trajectory t ON s.vehicle_id = t.vehicle_id AND s.trip_id = t.trip_id
		WHERE      t.traj_id = ?
		ORDER      BY s.time_stamp`, trajID)
	if err != nil {
		return nil, fmt.Errorf("eveddb: trajectory %d signals: %w", trajID, err)
	}
	defer rows.Close()

	var points []SignalPoint
	for rows.Next() {
		var (
			p                  SignalPoint
			matchLat, matchLon sql.NullFloat64
		)
		if err := rows.Scan(&p.SignalID, &p.DayNum, &p.TimeStamp,
			&p.Lat, &p.Lon, &matchLat, &matchLon); err != nil {
			return nil, err
		}
		p.MatchLat = nullableToFloat(matchLat)
		p.MatchLon = nullableToFloat(matchLon)
		points = append(points, p)
	}
	return points, rows.Err()
}

// TracePoints loads the raw fixes for map matching: distinct coordinates
// with their earliest epoch-second timestamp, in time order.
func (d *Db) TracePoints(ctx context.Context, trajID int64) ([]TracePoint, error) {
	rows, err := d.store.QueryContext(ctx, `
		SELECT     s.latitude  AS lat,
		           s.longitude AS lon,
		           MIN(s.time_stamp) / 1000 AS time
		FROM       signal s
		INNER JOIN trajectory t ON s.vehicle_id = t.vehicle_id AND s.trip_id = t.trip_id
		WHERE      t.traj_id = ?
		GROUP      BY s.latitude, s.longitude
		ORDER      BY time`, trajID)
	if err != nil {
		return nil, fmt.Errorf("eveddb: trajectory %d trace points: %w", trajID, err)
	}
	defer rows.Close()

	var points []TracePoint
	for rows.Next() {
		var p TracePoint
		if err := rows.Scan(&p.Lat, &p.Lon, &p.Time); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// UpdateTrajectories applies aggregated properties in one batched call.
// Each row is (length_m, duration_s, dt_ini, dt_end, cell_ini, cell_end,
// traj_id).
func (d *Db) UpdateTrajectories(ctx context.Context, rows [][]any, batchSize int) error {
	return d.store.ExecuteMany(ctx, `
		UPDATE trajectory
		SET    length_m = ?, duration_s = ?, dt_ini = ?, dt_end = ?,
		       cell_ini = ?, cell_end = ?
		WHERE  traj_id = ?`, rows, batchSize)
}

func (d *Db) CreateNodeTable(ctx context.Context) error {
	if err := d.store.Execute(ctx, createNodeTable); err != nil {
		return err
	}
	for _, ddl := range nodeIndexes {
		if err := d.store.Execute(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

// TruncateNodes clears the node table for a full rebuild.
func (d *Db) TruncateNodes(ctx context.Context) error {
	return d.store.Execute(ctx, "DELETE FROM node")
}

// InsertNodes persists a trajectory's matched waypoints in one batch.
func (d *Db) InsertNodes(ctx context.Context, nodes []Node, batchSize int) error {
	rows := make([][]any, len(nodes))
	for i, n := range nodes {
		rows[i] = []any{n.TrajID, n.Lat, n.Lon, n.Cell}
	}
	return d.store.ExecuteMany(ctx,
		"INSERT INTO node (traj_id, latitude, longitude, h3_cell) VALUES (?, ?, ?, ?)",
		rows, batchSize)
}

// InsertNodeError records the single failure marker for a trajectory whose
// match attempt did not succeed.
func (d *Db) InsertNodeError(ctx context.Context, trajID int64, message string) error {
	return d.store.Execute(ctx,
		"INSERT INTO node (traj_id, match_error) VALUES (?, ?)", trajID, message)
}

// TrajectoryNodes returns a trajectory's waypoints (or its error marker)
// in insertion order.
func (d *Db) TrajectoryNodes(ctx context.Context, trajID int64) ([]Node, error) {
	rows, err := d.store.QueryContext(ctx, `
		SELECT traj_id, latitude, longitude, h3_cell, match_error
		FROM   node
		WHERE  traj_id = ?
		ORDER  BY node_id`, trajID)
	if err != nil {
		return nil, fmt.Errorf("eveddb: trajectory %d nodes: %w", trajID, err)
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		var (
			n        Node
			lat, lon sql.NullFloat64
			cell     sql.NullInt64
		)
		if err := rows.Scan(&n.TrajID, &lat, &lon, &cell, &n.MatchError); err != nil {
			return nil, err
		}
		n.Lat = nullableToFloat(lat)
		n.Lon = nullableToFloat(lon)
		n.Cell = cell.Int64
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func nullableToFloat(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
