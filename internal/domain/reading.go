package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidQuery marks caller-parameter failures so the HTTP layer can map
// them to 400 instead of 502.
var ErrInvalidQuery = errors.New("invalid query")

// StationReading is one station flattened out of the upstream /latest
// GeoJSON FeatureCollection.
type StationReading struct {
	StationID             string
	Name                  string
	Lon                   float64
	Lat                   float64
	DateObserved          time.Time
	Temperature           *float64
	RelativeHumidity      *float64
	Outdated              bool
	MeasurementsPlausible bool
}

// TimeseriesPoint is one time-indexed entry from the upstream /timeseries
// values array.
type TimeseriesPoint struct {
	DateObserved     time.Time
	Temperature      *float64
	RelativeHumidity *float64
}

// TimeseriesQuery holds validated parameters for a timeseries request.
// Zero TimeFrom/TimeTo mean the bound was not given and is not forwarded.
type TimeseriesQuery struct {
	StationID string
	TimeFrom  time.Time
	TimeTo    time.Time
}

// ParseTimeseriesQuery validates raw caller parameters. Time bounds are
// optional RFC 3339 timestamps; when both are present the range must not be
// inverted. All failures wrap ErrInvalidQuery.
func ParseTimeseriesQuery(stationID, timeFrom, timeTo string) (TimeseriesQuery, error) {
	if stationID == "" {
		return TimeseriesQuery{}, fmt.Errorf("%w: stationId is required", ErrInvalidQuery)
	}

	q := TimeseriesQuery{StationID: stationID}

	if timeFrom != "" {
		t, err := time.Parse(time.RFC3339, timeFrom)
		if err != nil {
			return TimeseriesQuery{}, fmt.Errorf("%w: malformed timeFrom %q", ErrInvalidQuery, timeFrom)
		}
		q.TimeFrom = t
	}

	if timeTo != "" {
		t, err := time.Parse(time.RFC3339, timeTo)
		if err != nil {
			return TimeseriesQuery{}, fmt.Errorf("%w: malformed timeTo %q", ErrInvalidQuery, timeTo)
		}
		q.TimeTo = t
	}

	if !q.TimeFrom.IsZero() && !q.TimeTo.IsZero() && q.TimeFrom.After(q.TimeTo) {
		return TimeseriesQuery{}, fmt.Errorf("%w: timeFrom %s is after timeTo %s", ErrInvalidQuery, timeFrom, timeTo)
	}

	return q, nil
}
