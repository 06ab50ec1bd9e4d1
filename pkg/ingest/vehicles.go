package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/openvehiclelab/evedb/pkg/eveddb"
	"github.com/openvehiclelab/evedb/pkg/storage"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// noDataSentinel is how the reference spreadsheets spell an absent value.
const noDataSentinel = "NO DATA"

// vehicleColumnCount is the spreadsheet layout: VehId, vehicle type,
// vehicle class, engine, transmission, drive wheels, generalized weight.
const vehicleColumnCount = 7

type VehicleLoader struct {
	db  *eveddb.Db
	log *zap.Logger
}

func NewVehicleLoader(db *eveddb.Db, log *zap.Logger) *VehicleLoader {
	return &VehicleLoader{db: db, log: log}
}

// Run loads and concatenates the reference spreadsheets into the vehicle
// table. Skipped entirely when the table already exists.
func (v *VehicleLoader) Run(ctx context.Context, sheetPaths []string) error {
	exists, err := v.db.TableExists(ctx, "vehicle")
	if err != nil {
		return err
	}
	if exists {
		v.log.Info("vehicle table exists, skipping load")
		return nil
	}
	if err := v.db.CreateVehicleTable(ctx); err != nil {
		return err
	}

	var rows [][]any
	for _, path := range sheetPaths {
		sheetRows, err := readVehicleSheet(path)
		if err != nil {
			return err
		}
		rows = append(rows, sheetRows...)
	}

	if err := v.db.InsertVehicles(ctx, rows, storage.DefaultBatchSize); err != nil {
		return fmt.Errorf("ingest: insert vehicles: %w", err)
	}
	v.log.Info("loaded vehicles", zap.Int("count", len(rows)))
	return nil
}

func readVehicleSheet(path string) ([][]any, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("ingest: spreadsheet %s has no sheets", path)
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("ingest: read spreadsheet %s: %w", path, err)
	}
	if len(cells) < 2 {
		return nil, nil
	}

	var rows [][]any
	for line, record := range cells[1:] { // skip header
		row, err := vehicleRow(record)
		if err != nil {
			return nil, &ParseError{File: path, Line: line + 2, Err: err}
		}
		if row != nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// vehicleRow maps one spreadsheet record into an insert row, normalizing
// the NO DATA sentinel to NULL. Blank trailing rows return nil.
func vehicleRow(record []string) ([]any, error) {
	if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
		return nil, nil
	}
	// excelize omits trailing empty cells; pad back to the full layout.
	for len(record) < vehicleColumnCount {
		record = append(record, "")
	}

	vehicleID, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("vehicle id %q: %w", record[0], err)
	}

	row := []any{vehicleID}
	for i := 1; i < vehicleColumnCount-1; i++ {
		row = append(row, normalizeCell(record[i]))
	}

	weightCell := strings.TrimSpace(record[vehicleColumnCount-1])
	if weightCell == "" || weightCell == noDataSentinel {
		row = append(row, nil)
	} else {
		weight, err := strconv.ParseFloat(weightCell, 64)
		if err != nil {
			return nil, fmt.Errorf("vehicle weight %q: %w", weightCell, err)
		}
		row = append(row, weight)
	}
	return row, nil
}

func normalizeCell(cell string) any {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == noDataSentinel {
		return nil
	}
	return cell
}
