// Package domain models Smart Urban Heat Map sensor readings and their
// OGC SensorThings representation.
//
// # Data Source
//
// Readings come from the Smart Urban Heat Map API
// (https://smart-urban-heat-map.ch/api/v2), a network of low-cost
// temperature/humidity loggers operated in and around Bern. Two endpoints
// are consumed:
//
//	/latest      GeoJSON FeatureCollection, one feature per station with the
//	             most recent reading in the feature properties.
//	/timeseries  JSON object {"values": [...]} with time-indexed readings for
//	             a single station; filtered by stationId, timeFrom, timeTo.
//	             Older deployments return a bare JSON array instead of the
//	             wrapped object, and both shapes are accepted.
//
// Station properties:
//
//	stationId              station identifier, e.g. "11117"
//	name                   human-readable station name
//	dateObserved           RFC 3339 timestamp of the reading
//	temperature            air temperature in °C (may be absent)
//	relativeHumidity       relative humidity in percent (may be absent)
//	outdated               true when the station has not reported recently
//	measurementsPlausible  upstream plausibility check result
//
// Geometries are WGS-84 GeoJSON Points in [lon, lat] order. A feature
// without a Point geometry or without a stationId is malformed input, not
// a station to skip.
//
// # SensorThings Mapping
//
// Each station maps to one Thing and one co-identified Location, plus two
// Datastreams with the fixed IDs "<stationId>-temperature" and
// "<stationId>-humidity". Units pass through unconverted (°C and %, UCUM
// definitions). Every reading yields one Observation per present
// measurement, with phenomenonTime and resultTime both set to
// dateObserved. Entity graphs are built fresh per conversion and never
// mutated afterwards.
package domain
