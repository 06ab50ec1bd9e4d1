// Package valhalla speaks the external map-matching oracle's trace_route
// contract. The oracle is a black box: this package only builds requests,
// moves them over one of two transports and extracts the matched geometry.
package valhalla

import (
	"context"
)

// ShapePoint is one raw GPS fix submitted for matching.
type ShapePoint struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Time int64   `json:"time"`
}

// TraceRequest is the fixed matching contract. Both transports must carry
// identical parameters, so the knobs live here, not in the transports.
type TraceRequest struct {
	UseTimestamps     bool              `json:"use_timestamps"`
	Shortest          bool              `json:"shortest"`
	ShapeMatch        string            `json:"shape_match"`
	Shape             []ShapePoint      `json:"shape"`
	Costing           string            `json:"costing"`
	Format            string            `json:"format"`
	DirectionsOptions DirectionsOptions `json:"directions_options"`
	TraceOptions      TraceOptions      `json:"trace_options"`
	CostingOptions    CostingOptions    `json:"costing_options"`
}

type DirectionsOptions struct {
	DirectionsType string `json:"directions_type"`
}

type TraceOptions struct {
	SearchRadius      float64 `json:"search_radius"`
	MaxSearchRadius   float64 `json:"max_search_radius"`
	GPSAccuracy       float64 `json:"gps_accuracy"`
	BreakageDistance  float64 `json:"breakage_distance"`
	TurnPenaltyFactor float64 `json:"turn_penalty_factor"`
}

type CostingOptions struct {
	Auto AutoCostingOptions `json:"auto"`
}

type AutoCostingOptions struct {
	CountryCrossingPenalty float64 `json:"country_crossing_penalty"`
	ManeuverPenalty        float64 `json:"maneuver_penalty"`
}

// NewTraceRequest wraps a shape in the pipeline's matching parameters.
func NewTraceRequest(shape []ShapePoint) TraceRequest {
	return TraceRequest{
		UseTimestamps: true,
		Shortest:      true,
		ShapeMatch:    "walk_or_snap",
		Shape:         shape,
		Costing:       "auto",
		Format:        "osrm",
		DirectionsOptions: DirectionsOptions{
			DirectionsType: "none",
		},
		TraceOptions: TraceOptions{
			SearchRadius:      50,
			MaxSearchRadius:   200,
			GPSAccuracy:       10,
			BreakageDistance:  2000,
			TurnPenaltyFactor: 1,
		},
		CostingOptions: CostingOptions{
			Auto: AutoCostingOptions{
				CountryCrossingPenalty: 2000.0,
				ManeuverPenalty:        30,
			},
		},
	}
}

// TraceResponse is the slice of the osrm-format response the pipeline
// consumes: the matched geometry as an encoded polyline.
type TraceResponse struct {
	Code      string     `json:"code"`
	Matchings []Matching `json:"matchings"`
}

type Matching struct {
	Geometry string `json:"geometry"`
}

// Matcher submits one trace and returns the matched polyline geometry. Any
// returned error is a match failure for that trajectory only.
type Matcher interface {
	TraceRoute(ctx context.Context, shape []ShapePoint) (string, error)
}
