// Package ingest loads the raw eVED extract into the signal store: the
// per-vehicle CSV archive and the static vehicle spreadsheets.
package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/openvehiclelab/evedb/pkg/eveddb"
	"github.com/openvehiclelab/evedb/pkg/spatialindex"
	"github.com/openvehiclelab/evedb/pkg/storage"
	"go.uber.org/zap"
)

type SignalIngestor struct {
	db        *eveddb.Db
	log       *zap.Logger
	batchSize int
}

func NewSignalIngestor(db *eveddb.Db, log *zap.Logger, batchSize int) *SignalIngestor {
	if batchSize <= 0 {
		batchSize = storage.DefaultBatchSize
	}
	return &SignalIngestor{db: db, log: log, batchSize: batchSize}
}

// Run ingests every CSV member of the archive into the signal table, then
// builds the derived indexes. If the signal table already exists the whole
// stage is skipped: re-runs either fully skip or fully redo, never top up.
func (s *SignalIngestor) Run(ctx context.Context, archivePath string) error {
	exists, err := s.db.TableExists(ctx, "signal")
	if err != nil {
		return err
	}
	if exists {
		s.log.Info("signal table exists, skipping ingestion")
		return nil
	}
	if err := s.db.CreateSignalTable(ctx); err != nil {
		return err
	}

	archive, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("ingest: open archive %s: %w", archivePath, err)
	}
	defer archive.Close()

	for _, member := range archive.File {
		if member.FileInfo().IsDir() || !strings.HasSuffix(member.Name, ".csv") {
			continue
		}
		rows, err := s.parseMember(member)
		if err != nil {
			// Parse errors are data-integrity issues: fatal for the run.
			return err
		}
		if err := s.db.InsertSignals(ctx, rows, s.batchSize); err != nil {
			return fmt.Errorf("ingest: insert %s: %w", member.Name, err)
		}
		s.log.Info("ingested archive member",
			zap.String("member", member.Name), zap.Int("rows", len(rows)))
	}

	return s.db.CreateSignalIndexes(ctx)
}

// parseMember extracts one CSV member into database rows. The raw text is
// normalized first: the upstream export leaks stray semicolons that corrupt
// fields, so they are stripped before parsing.
func (s *SignalIngestor) parseMember(member *zip.File) ([][]any, error) {
	rc, err := member.Open()
	if err != nil {
		return nil, fmt.Errorf("ingest: open member %s: %w", member.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("ingest: read member %s: %w", member.Name, err)
	}
	data = bytes.ReplaceAll(data, []byte(";"), nil)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = len(signalColumns)

	header, err := reader.Read()
	if err != nil {
		return nil, &ParseError{File: member.Name, Line: 1, Err: err}
	}
	if err := validateHeader(header, member.Name); err != nil {
		return nil, err
	}

	var rows [][]any
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{File: member.Name, Line: line, Err: err}
		}

		row := make([]any, 0, len(signalColumns)+1)
		for i, col := range signalColumns {
			value, err := parseValue(record[i], col.kind)
			if err != nil {
				return nil, &ParseError{File: member.Name, Line: line, Column: col.name, Err: err}
			}
			row = append(row, value)
		}
		row = append(row, matchCell(record[colMatchLat], record[colMatchLon]))
		rows = append(rows, row)
	}
	return rows, nil
}

// matchCell computes the spatial cell from the matched coordinate fields;
// missing coordinates yield the sentinel.
func matchCell(latField, lonField string) int64 {
	lat := floatOrNaN(latField)
	lon := floatOrNaN(lonField)
	return spatialindex.CellID(lat, lon)
}

func floatOrNaN(field string) float64 {
	v, err := parseValue(field, kindFloat)
	if err != nil || v == nil {
		return math.NaN()
	}
	return v.(float64)
}
