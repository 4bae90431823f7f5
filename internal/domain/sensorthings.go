package domain

// SensorThings entity types. Field names and fixed strings follow the OGC
// SensorThings API data model; only the subset this bridge emits is modeled.

// Ref is an @iot.id reference to another entity.
type Ref struct {
	ID string `json:"@iot.id"`
}

// ThingProperties carries the upstream quality flags through unchanged.
type ThingProperties struct {
	Outdated              bool `json:"outdated"`
	MeasurementsPlausible bool `json:"measurementsPlausible"`
}

// Thing represents one sensor station.
type Thing struct {
	ID          string          `json:"@iot.id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Properties  ThingProperties `json:"properties"`
}

// GeoPoint is a GeoJSON Point in [lon, lat] order.
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Location is the geographic position of a Thing, sharing its ID.
type Location struct {
	ID           string   `json:"@iot.id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	EncodingType string   `json:"encodingType"`
	Location     GeoPoint `json:"location"`
}

// UnitOfMeasurement describes the unit of a Datastream's results.
type UnitOfMeasurement struct {
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

// ObservedProperty names the phenomenon a Datastream measures.
type ObservedProperty struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

// SensorInfo describes the instrument producing a Datastream.
type SensorInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Datastream is one observed property (temperature or humidity) of one Thing.
type Datastream struct {
	ID                string            `json:"@iot.id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	UnitOfMeasurement UnitOfMeasurement `json:"unitOfMeasurement"`
	ObservationType   string            `json:"observationType"`
	Thing             Ref               `json:"Thing"`
	ObservedProperty  ObservedProperty  `json:"ObservedProperty"`
	Sensor            SensorInfo        `json:"Sensor"`
}

// Observation is a single measurement tied to a Datastream. Times are
// RFC 3339 strings; phenomenonTime and resultTime are always equal here
// because the upstream API reports one timestamp per reading.
type Observation struct {
	Datastream     Ref     `json:"Datastream"`
	PhenomenonTime string  `json:"phenomenonTime"`
	ResultTime     string  `json:"resultTime"`
	Result         float64 `json:"result"`
}

// Document is the full SensorThings payload for the latest flow. All four
// arrays are always present, empty rather than null.
type Document struct {
	Things       []Thing       `json:"Things"`
	Locations    []Location    `json:"Locations"`
	Datastreams  []Datastream  `json:"Datastreams"`
	Observations []Observation `json:"Observations"`
}

// ObservationDocument is the payload for the timeseries flow, which carries
// observations only.
type ObservationDocument struct {
	Observations []Observation `json:"Observations"`
}
