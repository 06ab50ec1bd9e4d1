package eveddb

// Logical schema of the trajectory dataset. DDL is inlined here rather than
// shipped as script files so the builder binary is self-contained.

const createVehicleTable = `
CREATE TABLE vehicle (
    vehicle_id    INTEGER PRIMARY KEY,
    vehicle_type  TEXT,
    vehicle_class TEXT,
    engine        TEXT,
    transmission  TEXT,
    drive_wheels  TEXT,
    weight        REAL
)`

const createSignalTable = `
CREATE TABLE signal (
    signal_id          INTEGER PRIMARY KEY AUTOINCREMENT,
    day_num            REAL,
    vehicle_id         INTEGER,
    trip_id            INTEGER,
    time_stamp         INTEGER,
    latitude           REAL,
    longitude          REAL,
    speed              REAL,
    maf                REAL,
    rpm                REAL,
    abs_load           REAL,
    oat                REAL,
    fuel_rate          REAL,
    ac_power_kw        REAL,
    ac_power_w         REAL,
    heater_power_w     REAL,
    hv_bat_current     REAL,
    hv_bat_soc         REAL,
    hv_bat_voltage     REAL,
    st_ftb_1           REAL,
    st_ftb_2           REAL,
    lt_ftb_1           REAL,
    lt_ftb_2           REAL,
    elevation_raw      REAL,
    elevation_smooth   REAL,
    gradient           REAL,
    energy_consumption REAL,
    match_latitude     REAL,
    match_longitude    REAL,
    match_type         INTEGER,
    speed_limit_class  REAL,
    speed_limit        TEXT,
    speed_limit_dir    REAL,
    intersection       REAL,
    bus_stops          REAL,
    focus_points       TEXT,
    h3_cell            INTEGER
)`

const insertSignalSQL = `
INSERT INTO signal (
    day_num, vehicle_id, trip_id, time_stamp, latitude, longitude,
    speed, maf, rpm, abs_load, oat, fuel_rate,
    ac_power_kw, ac_power_w, heater_power_w,
    hv_bat_current, hv_bat_soc, hv_bat_voltage,
    st_ftb_1, st_ftb_2, lt_ftb_1, lt_ftb_2,
    elevation_raw, elevation_smooth, gradient, energy_consumption,
    match_latitude, match_longitude, match_type,
    speed_limit_class, speed_limit, speed_limit_dir,
    intersection, bus_stops, focus_points, h3_cell
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertVehicleSQL = `
INSERT INTO vehicle (vehicle_id, vehicle_type, vehicle_class, engine, transmission, drive_wheels, weight)
VALUES (?, ?, ?, ?, ?, ?, ?)`

const createTrajectoryTable = `
CREATE TABLE trajectory (
    traj_id    INTEGER PRIMARY KEY AUTOINCREMENT,
    vehicle_id INTEGER NOT NULL,
    trip_id    INTEGER NOT NULL,
    length_m   REAL,
    duration_s REAL,
    dt_ini     TEXT,
    dt_end     TEXT,
    cell_ini   INTEGER,
    cell_end   INTEGER
)`

// One trajectory per distinct (vehicle, trip) pair present in signal.
const insertTrajectoriesSQL = `
INSERT INTO trajectory (vehicle_id, trip_id)
SELECT DISTINCT vehicle_id, trip_id
FROM   signal
ORDER  BY vehicle_id, trip_id`

const createNodeTable = `
CREATE TABLE node (
    node_id     INTEGER PRIMARY KEY AUTOINCREMENT,
    traj_id     INTEGER NOT NULL,
    latitude    REAL,
    longitude   REAL,
    h3_cell     INTEGER,
    match_error TEXT
)`

var signalIndexes = []string{
	"CREATE INDEX IF NOT EXISTS ix_signal_vehicle_trip ON signal (vehicle_id, trip_id)",
	"CREATE INDEX IF NOT EXISTS ix_signal_h3_cell ON signal (h3_cell)",
}

var trajectoryIndexes = []string{
	"CREATE INDEX IF NOT EXISTS ix_trajectory_vehicle ON trajectory (vehicle_id, trip_id)",
	"CREATE INDEX IF NOT EXISTS ix_trajectory_cell_ini ON trajectory (cell_ini)",
	"CREATE INDEX IF NOT EXISTS ix_trajectory_cell_end ON trajectory (cell_end)",
}

var nodeIndexes = []string{
	"CREATE INDEX IF NOT EXISTS ix_node_traj_id ON node (traj_id)",
	"CREATE INDEX IF NOT EXISTS ix_node_h3_cell ON node (h3_cell)",
}
