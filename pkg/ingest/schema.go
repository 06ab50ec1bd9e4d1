package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// columnKind is the declared parse type of one CSV column.
type columnKind int

const (
	kindFloat columnKind = iota
	kindInt
	kindString
)

type column struct {
	name string
	kind columnKind
}

// signalColumns is the fixed eVED extract header, in file order. Parsing
// validates the header against this list; any deviation is a parse error
// for the whole file.
var signalColumns = []column{
	{"DayNum", kindFloat},
	{"VehId", kindInt},
	{"Trip", kindInt},
	{"Timestamp(ms)", kindInt},
	{"Latitude[deg]", kindFloat},
	{"Longitude[deg]", kindFloat},
	{"Vehicle Speed[km/h]", kindFloat},
	{"MAF[g/sec]", kindFloat},
	{"Engine RPM[RPM]", kindFloat},
	{"Absolute Load[%]", kindFloat},
	{"OAT[DegC]", kindFloat},
	{"Fuel Rate[L/hr]", kindFloat},
	{"Air Conditioning Power[kW]", kindFloat},
	{"Air Conditioning Power[Watts]", kindFloat},
	{"Heater Power[Watts]", kindFloat},
	{"HV Battery Current[A]", kindFloat},
	{"HV Battery SOC[%]", kindFloat},
	{"HV Battery Voltage[V]", kindFloat},
	{"Short Term Fuel Trim Bank 1[%]", kindFloat},
	{"Short Term Fuel Trim Bank 2[%]", kindFloat},
	{"Long Term Fuel Trim Bank 1[%]", kindFloat},
	{"Long Term Fuel Trim Bank 2[%]", kindFloat},
	{"Elevation Raw[m]", kindFloat},
	{"Elevation Smoothed[m]", kindFloat},
	{"Gradient", kindFloat},
	{"Energy_Consumption", kindFloat},
	{"Matchted Latitude[deg]", kindFloat}, // typo is in the upstream extract
	{"Matched Longitude[deg]", kindFloat},
	{"Match Type", kindInt},
	{"Class of Speed Limit", kindFloat},
	{"Speed Limit[km/h]", kindString},
	{"Speed Limit with Direction[km/h]", kindFloat},
	{"Intersection", kindFloat},
	{"Bus Stops", kindFloat},
	{"Focus Points", kindString},
}

// Positions of the columns the pipeline itself interprets.
const (
	colMatchLat = 26
	colMatchLon = 27
)

// ParseError is a row-level type mismatch: fatal for the file it occurred
// in, surfaced to the operator, never retried.
type ParseError struct {
	File   string
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ingest: %s line %d column %q: %v", e.File, e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// parseValue converts one CSV field per its declared kind. Empty fields
// become nil (NULL); a value that cannot be parsed as its declared type is
// an error.
func parseValue(field string, kind columnKind) (any, error) {
	field = strings.TrimSpace(field)
	if field == "" || field == "NaN" {
		return nil, nil
	}
	switch kind {
	case kindFloat:
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(v) {
			return nil, nil
		}
		return v, nil
	case kindInt:
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return field, nil
	}
}

func validateHeader(header []string, file string) error {
	if len(header) != len(signalColumns) {
		return &ParseError{File: file, Line: 1, Column: "",
			Err: fmt.Errorf("expected %d columns, got %d", len(signalColumns), len(header))}
	}
	for i, col := range signalColumns {
		if strings.TrimSpace(header[i]) != col.name {
			return &ParseError{File: file, Line: 1, Column: col.name,
				Err: fmt.Errorf("unexpected header %q", header[i])}
		}
	}
	return nil
}
