package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Fixed SensorThings vocabulary. Definitions pass through from the original
// converter unchanged; units are never converted.
const (
	encodingTypeGeoJSON = "application/vnd.geo+json"
	observationTypeOM   = "http://www.opengis.net/def/observationType/OGC-OM/2.0/OM_Measurement"
	ucumDefinition      = "http://unitsofmeasure.org/ucum.html#para-30"

	temperatureDefinition = "http://sensorthings.org/Temperature"
	humidityDefinition    = "http://sensorthings.org/Humidity"

	thingDescription    = "Sensor station measuring temperature and humidity"
	locationDescription = "Geographic location of the sensor"
)

// Upstream wire types, private to the parsing layer.

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Geometry   geometry          `json:"geometry"`
	Properties stationProperties `json:"properties"`
}

type geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type stationProperties struct {
	StationID             string   `json:"stationId"`
	Name                  string   `json:"name"`
	DateObserved          string   `json:"dateObserved"`
	Temperature           *float64 `json:"temperature"`
	RelativeHumidity      *float64 `json:"relativeHumidity"`
	Outdated              bool     `json:"outdated"`
	MeasurementsPlausible bool     `json:"measurementsPlausible"`
}

type timeseriesEntry struct {
	DateObserved     string   `json:"dateObserved"`
	Temperature      *float64 `json:"temperature"`
	RelativeHumidity *float64 `json:"relativeHumidity"`
}

// ParseLatest deserializes the /latest GeoJSON FeatureCollection into flat
// station readings. A feature missing its stationId, Point geometry, or
// observation timestamp fails the whole parse; no partial output is produced.
func ParseLatest(data []byte) ([]StationReading, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse latest payload: %w", err)
	}

	readings := make([]StationReading, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Properties.StationID == "" {
			return nil, fmt.Errorf("feature %d: missing stationId", i)
		}
		if f.Geometry.Type != "Point" || len(f.Geometry.Coordinates) != 2 {
			return nil, fmt.Errorf("feature %d (station %s): missing Point coordinates", i, f.Properties.StationID)
		}
		observed, err := time.Parse(time.RFC3339, f.Properties.DateObserved)
		if err != nil {
			return nil, fmt.Errorf("feature %d (station %s): parse dateObserved: %w", i, f.Properties.StationID, err)
		}

		readings = append(readings, StationReading{
			StationID:             f.Properties.StationID,
			Name:                  f.Properties.Name,
			Lon:                   f.Geometry.Coordinates[0],
			Lat:                   f.Geometry.Coordinates[1],
			DateObserved:          observed,
			Temperature:           f.Properties.Temperature,
			RelativeHumidity:      f.Properties.RelativeHumidity,
			Outdated:              f.Properties.Outdated,
			MeasurementsPlausible: f.Properties.MeasurementsPlausible,
		})
	}
	return readings, nil
}

// ParseTimeseries deserializes a /timeseries response. The current API wraps
// readings in {"values": [...]}; older deployments return a bare array, and
// both are accepted. An empty body (204 upstream) yields no points.
func ParseTimeseries(data []byte) ([]TimeseriesPoint, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var entries []timeseriesEntry
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("parse timeseries payload: %w", err)
		}
	} else {
		var wrapper struct {
			Values []timeseriesEntry `json:"values"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("parse timeseries payload: %w", err)
		}
		entries = wrapper.Values
	}

	points := make([]TimeseriesPoint, 0, len(entries))
	for i, e := range entries {
		observed, err := time.Parse(time.RFC3339, e.DateObserved)
		if err != nil {
			return nil, fmt.Errorf("timeseries entry %d: parse dateObserved: %w", i, err)
		}
		points = append(points, TimeseriesPoint{
			DateObserved:     observed,
			Temperature:      e.Temperature,
			RelativeHumidity: e.RelativeHumidity,
		})
	}
	return points, nil
}

// ConvertLatest maps station readings to the full SensorThings document: one
// Thing and Location per station, one Datastream per observed property, and
// one Observation per present measurement (temperature before humidity).
func ConvertLatest(readings []StationReading) (Document, error) {
	doc := Document{
		Things:       make([]Thing, 0, len(readings)),
		Locations:    make([]Location, 0, len(readings)),
		Datastreams:  make([]Datastream, 0, 2*len(readings)),
		Observations: make([]Observation, 0, 2*len(readings)),
	}

	for i, r := range readings {
		if r.StationID == "" {
			return Document{}, fmt.Errorf("reading %d: missing stationId", i)
		}
		if r.DateObserved.IsZero() {
			return Document{}, fmt.Errorf("reading %d (station %s): missing dateObserved", i, r.StationID)
		}

		doc.Things = append(doc.Things, Thing{
			ID:          r.StationID,
			Name:        r.Name,
			Description: thingDescription,
			Properties: ThingProperties{
				Outdated:              r.Outdated,
				MeasurementsPlausible: r.MeasurementsPlausible,
			},
		})

		doc.Locations = append(doc.Locations, Location{
			ID:           r.StationID,
			Name:         r.Name,
			Description:  locationDescription,
			EncodingType: encodingTypeGeoJSON,
			Location: GeoPoint{
				Type:        "Point",
				Coordinates: [2]float64{r.Lon, r.Lat},
			},
		})

		doc.Datastreams = append(doc.Datastreams,
			temperatureDatastream(r.StationID, r.Name),
			humidityDatastream(r.StationID, r.Name),
		)

		ts := r.DateObserved.Format(time.RFC3339)
		if r.Temperature != nil {
			doc.Observations = append(doc.Observations, newObservation(TemperatureDatastreamID(r.StationID), ts, *r.Temperature))
		}
		if r.RelativeHumidity != nil {
			doc.Observations = append(doc.Observations, newObservation(HumidityDatastreamID(r.StationID), ts, *r.RelativeHumidity))
		}
	}

	return doc, nil
}

// ConvertTimeseries maps time-indexed readings for one station to an ordered
// observation document. Input order is preserved; each entry contributes one
// Observation per present measurement, temperature before humidity.
func ConvertTimeseries(stationID string, points []TimeseriesPoint) (ObservationDocument, error) {
	if stationID == "" {
		return ObservationDocument{}, fmt.Errorf("%w: stationId is required", ErrInvalidQuery)
	}

	obs := make([]Observation, 0, 2*len(points))
	for i, p := range points {
		if p.DateObserved.IsZero() {
			return ObservationDocument{}, fmt.Errorf("point %d (station %s): missing dateObserved", i, stationID)
		}
		ts := p.DateObserved.Format(time.RFC3339)
		if p.Temperature != nil {
			obs = append(obs, newObservation(TemperatureDatastreamID(stationID), ts, *p.Temperature))
		}
		if p.RelativeHumidity != nil {
			obs = append(obs, newObservation(HumidityDatastreamID(stationID), ts, *p.RelativeHumidity))
		}
	}

	return ObservationDocument{Observations: obs}, nil
}

// TemperatureDatastreamID returns the fixed temperature stream ID for a station.
func TemperatureDatastreamID(stationID string) string {
	return stationID + "-temperature"
}

// HumidityDatastreamID returns the fixed humidity stream ID for a station.
func HumidityDatastreamID(stationID string) string {
	return stationID + "-humidity"
}

func temperatureDatastream(stationID, name string) Datastream {
	return Datastream{
		ID:          TemperatureDatastreamID(stationID),
		Name:        fmt.Sprintf("Temperature Datastream for %s", name),
		Description: "Temperature measurements",
		UnitOfMeasurement: UnitOfMeasurement{
			Symbol:     "°C",
			Name:       "Degree Celsius",
			Definition: ucumDefinition,
		},
		ObservationType:  observationTypeOM,
		Thing:            Ref{ID: stationID},
		ObservedProperty: ObservedProperty{Name: "Temperature", Definition: temperatureDefinition},
		Sensor:           SensorInfo{Name: "Temperature Sensor", Description: "Measures air temperature"},
	}
}

func humidityDatastream(stationID, name string) Datastream {
	return Datastream{
		ID:          HumidityDatastreamID(stationID),
		Name:        fmt.Sprintf("Humidity Datastream for %s", name),
		Description: "Humidity measurements",
		UnitOfMeasurement: UnitOfMeasurement{
			Symbol:     "%",
			Name:       "Percentage",
			Definition: ucumDefinition,
		},
		ObservationType:  observationTypeOM,
		Thing:            Ref{ID: stationID},
		ObservedProperty: ObservedProperty{Name: "Humidity", Definition: humidityDefinition},
		Sensor:           SensorInfo{Name: "Humidity Sensor", Description: "Measures relative humidity"},
	}
}

func newObservation(datastreamID, ts string, value float64) Observation {
	return Observation{
		Datastream:     Ref{ID: datastreamID},
		PhenomenonTime: ts,
		ResultTime:     ts,
		Result:         value,
	}
}
