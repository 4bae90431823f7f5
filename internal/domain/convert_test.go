package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const latestFixture = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [7.4474, 46.9481]},
			"properties": {
				"stationId": "11117",
				"name": "Bundesplatz",
				"dateObserved": "2024-11-04T12:40:00Z",
				"temperature": 21.3,
				"relativeHumidity": 55,
				"outdated": false,
				"measurementsPlausible": true
			}
		},
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [7.4391, 46.9524]},
			"properties": {
				"stationId": "11118",
				"name": "Lorraine",
				"dateObserved": "2024-11-04T12:41:00Z",
				"temperature": 19.8,
				"outdated": true,
				"measurementsPlausible": false
			}
		}
	]
}`

func TestParseLatest(t *testing.T) {
	t.Run("full feature collection", func(t *testing.T) {
		readings, err := ParseLatest([]byte(latestFixture))
		require.NoError(t, err)
		require.Len(t, readings, 2)

		first := readings[0]
		assert.Equal(t, "11117", first.StationID)
		assert.Equal(t, "Bundesplatz", first.Name)
		assert.Equal(t, 7.4474, first.Lon)
		assert.Equal(t, 46.9481, first.Lat)
		assert.Equal(t, time.Date(2024, 11, 4, 12, 40, 0, 0, time.UTC), first.DateObserved)
		require.NotNil(t, first.Temperature)
		assert.Equal(t, 21.3, *first.Temperature)
		require.NotNil(t, first.RelativeHumidity)
		assert.Equal(t, 55.0, *first.RelativeHumidity)
		assert.False(t, first.Outdated)
		assert.True(t, first.MeasurementsPlausible)

		second := readings[1]
		assert.Nil(t, second.RelativeHumidity)
		assert.True(t, second.Outdated)
	})

	t.Run("missing stationId", func(t *testing.T) {
		data := []byte(`{"features":[{"geometry":{"type":"Point","coordinates":[7.44,46.94]},"properties":{"name":"x","dateObserved":"2024-11-04T12:40:00Z"}}]}`)
		_, err := ParseLatest(data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing stationId")
	})

	t.Run("missing coordinates", func(t *testing.T) {
		data := []byte(`{"features":[{"geometry":{"type":"Point","coordinates":[]},"properties":{"stationId":"11117","dateObserved":"2024-11-04T12:40:00Z"}}]}`)
		_, err := ParseLatest(data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Point coordinates")
		assert.Contains(t, err.Error(), "11117")
	})

	t.Run("non-point geometry", func(t *testing.T) {
		data := []byte(`{"features":[{"geometry":{"type":"Polygon","coordinates":[1,2]},"properties":{"stationId":"11117","dateObserved":"2024-11-04T12:40:00Z"}}]}`)
		_, err := ParseLatest(data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Point coordinates")
	})

	t.Run("malformed dateObserved", func(t *testing.T) {
		data := []byte(`{"features":[{"geometry":{"type":"Point","coordinates":[7.44,46.94]},"properties":{"stationId":"11117","dateObserved":"yesterday"}}]}`)
		_, err := ParseLatest(data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dateObserved")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseLatest([]byte("{not-geojson"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse latest payload")
	})

	t.Run("empty collection", func(t *testing.T) {
		readings, err := ParseLatest([]byte(`{"type":"FeatureCollection","features":[]}`))
		require.NoError(t, err)
		assert.Empty(t, readings)
	})
}

func TestParseTimeseries(t *testing.T) {
	t.Run("wrapped values object", func(t *testing.T) {
		data := []byte(`{"values":[
			{"dateObserved":"2024-11-01T00:00:00Z","temperature":12.1,"relativeHumidity":80},
			{"dateObserved":"2024-11-01T01:00:00Z","temperature":11.7}
		]}`)
		points, err := ParseTimeseries(data)
		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.Equal(t, time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), points[0].DateObserved)
		require.NotNil(t, points[0].Temperature)
		assert.Equal(t, 12.1, *points[0].Temperature)
		assert.Nil(t, points[1].RelativeHumidity)
	})

	t.Run("bare array", func(t *testing.T) {
		data := []byte(`[{"dateObserved":"2024-11-01T00:00:00Z","temperature":12.1}]`)
		points, err := ParseTimeseries(data)
		require.NoError(t, err)
		require.Len(t, points, 1)
	})

	t.Run("empty body", func(t *testing.T) {
		points, err := ParseTimeseries(nil)
		require.NoError(t, err)
		assert.Empty(t, points)

		points, err = ParseTimeseries([]byte("  \n"))
		require.NoError(t, err)
		assert.Empty(t, points)
	})

	t.Run("malformed entry timestamp", func(t *testing.T) {
		data := []byte(`{"values":[{"dateObserved":"not-a-time","temperature":12.1}]}`)
		_, err := ParseTimeseries(data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "entry 0")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseTimeseries([]byte(`{"values": [{]`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse timeseries payload")
	})
}

func TestConvertLatest(t *testing.T) {
	temp := 21.3
	hum := 55.0
	observed := time.Date(2024, 11, 4, 12, 40, 0, 0, time.UTC)

	reading := StationReading{
		StationID:             "11117",
		Name:                  "Bundesplatz",
		Lon:                   7.4474,
		Lat:                   46.9481,
		DateObserved:          observed,
		Temperature:           &temp,
		RelativeHumidity:      &hum,
		MeasurementsPlausible: true,
	}

	t.Run("one station produces full entity set", func(t *testing.T) {
		doc, err := ConvertLatest([]StationReading{reading})
		require.NoError(t, err)

		require.Len(t, doc.Things, 1)
		require.Len(t, doc.Locations, 1)
		require.Len(t, doc.Datastreams, 2)
		require.Len(t, doc.Observations, 2)

		thing := doc.Things[0]
		assert.Equal(t, "11117", thing.ID)
		assert.Equal(t, "Bundesplatz", thing.Name)
		assert.Equal(t, "Sensor station measuring temperature and humidity", thing.Description)
		assert.True(t, thing.Properties.MeasurementsPlausible)
		assert.False(t, thing.Properties.Outdated)

		loc := doc.Locations[0]
		assert.Equal(t, "11117", loc.ID)
		assert.Equal(t, "application/vnd.geo+json", loc.EncodingType)
		assert.Equal(t, "Point", loc.Location.Type)
		assert.Equal(t, [2]float64{7.4474, 46.9481}, loc.Location.Coordinates)

		ds := doc.Datastreams[0]
		assert.Equal(t, "11117-temperature", ds.ID)
		assert.Equal(t, "Temperature Datastream for Bundesplatz", ds.Name)
		assert.Equal(t, "°C", ds.UnitOfMeasurement.Symbol)
		assert.Equal(t, "Degree Celsius", ds.UnitOfMeasurement.Name)
		assert.Equal(t, "11117", ds.Thing.ID)
		assert.Equal(t, "Temperature", ds.ObservedProperty.Name)
		assert.Equal(t, "http://www.opengis.net/def/observationType/OGC-OM/2.0/OM_Measurement", ds.ObservationType)

		dsHum := doc.Datastreams[1]
		assert.Equal(t, "11117-humidity", dsHum.ID)
		assert.Equal(t, "%", dsHum.UnitOfMeasurement.Symbol)
		assert.Equal(t, "11117", dsHum.Thing.ID)
	})

	t.Run("observation values and times", func(t *testing.T) {
		doc, err := ConvertLatest([]StationReading{reading})
		require.NoError(t, err)

		obsTemp := doc.Observations[0]
		assert.Equal(t, "11117-temperature", obsTemp.Datastream.ID)
		assert.Equal(t, 21.3, obsTemp.Result)
		assert.Equal(t, "2024-11-04T12:40:00Z", obsTemp.PhenomenonTime)
		assert.Equal(t, obsTemp.PhenomenonTime, obsTemp.ResultTime)

		obsHum := doc.Observations[1]
		assert.Equal(t, "11117-humidity", obsHum.Datastream.ID)
		assert.Equal(t, 55.0, obsHum.Result)
	})

	t.Run("missing humidity yields single observation", func(t *testing.T) {
		partial := reading
		partial.RelativeHumidity = nil

		doc, err := ConvertLatest([]StationReading{partial})
		require.NoError(t, err)
		require.Len(t, doc.Observations, 1)
		assert.Equal(t, "11117-temperature", doc.Observations[0].Datastream.ID)
		// Datastreams describe the station's capabilities, not a single reading.
		assert.Len(t, doc.Datastreams, 2)
	})

	t.Run("missing stationId fails conversion", func(t *testing.T) {
		bad := reading
		bad.StationID = ""
		_, err := ConvertLatest([]StationReading{reading, bad})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading 1")
	})

	t.Run("missing dateObserved fails conversion", func(t *testing.T) {
		bad := reading
		bad.DateObserved = time.Time{}
		_, err := ConvertLatest([]StationReading{bad})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing dateObserved")
	})

	t.Run("empty input yields empty arrays, not nulls", func(t *testing.T) {
		doc, err := ConvertLatest(nil)
		require.NoError(t, err)
		assert.NotNil(t, doc.Things)
		assert.NotNil(t, doc.Locations)
		assert.NotNil(t, doc.Datastreams)
		assert.NotNil(t, doc.Observations)
	})

	t.Run("every datastream references an existing thing", func(t *testing.T) {
		second := reading
		second.StationID = "11118"
		second.Name = "Lorraine"

		doc, err := ConvertLatest([]StationReading{reading, second})
		require.NoError(t, err)

		things := map[string]bool{}
		for _, th := range doc.Things {
			things[th.ID] = true
		}
		for _, ds := range doc.Datastreams {
			assert.True(t, things[ds.Thing.ID], "datastream %s references unknown thing %s", ds.ID, ds.Thing.ID)
		}
		streams := map[string]bool{}
		for _, ds := range doc.Datastreams {
			streams[ds.ID] = true
		}
		for _, obs := range doc.Observations {
			assert.True(t, streams[obs.Datastream.ID], "observation references unknown datastream %s", obs.Datastream.ID)
		}
	})
}

func TestConvertTimeseries(t *testing.T) {
	v := func(f float64) *float64 { return &f }

	points := []TimeseriesPoint{
		{DateObserved: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), Temperature: v(12.1), RelativeHumidity: v(80)},
		{DateObserved: time.Date(2024, 11, 1, 1, 0, 0, 0, time.UTC), Temperature: v(11.7), RelativeHumidity: v(82)},
		{DateObserved: time.Date(2024, 11, 1, 2, 0, 0, 0, time.UTC), Temperature: v(11.2), RelativeHumidity: v(85)},
	}

	t.Run("one observation per present measurement, input order", func(t *testing.T) {
		doc, err := ConvertTimeseries("11117", points)
		require.NoError(t, err)
		require.Len(t, doc.Observations, 6)

		var tempObs []Observation
		for _, o := range doc.Observations {
			if o.Datastream.ID == "11117-temperature" {
				tempObs = append(tempObs, o)
			}
		}
		require.Len(t, tempObs, len(points))
		for i, o := range tempObs {
			assert.Equal(t, points[i].DateObserved.Format(time.RFC3339), o.PhenomenonTime)
			assert.Equal(t, *points[i].Temperature, o.Result)
		}
	})

	t.Run("temperature-only entries", func(t *testing.T) {
		doc, err := ConvertTimeseries("11117", []TimeseriesPoint{
			{DateObserved: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), Temperature: v(12.1)},
		})
		require.NoError(t, err)
		require.Len(t, doc.Observations, 1)
		assert.Equal(t, "11117-temperature", doc.Observations[0].Datastream.ID)
	})

	t.Run("no points yields empty array, not null", func(t *testing.T) {
		doc, err := ConvertTimeseries("11117", nil)
		require.NoError(t, err)
		assert.NotNil(t, doc.Observations)
		assert.Empty(t, doc.Observations)
	})

	t.Run("missing stationId", func(t *testing.T) {
		_, err := ConvertTimeseries("", points)
		require.ErrorIs(t, err, ErrInvalidQuery)
	})

	t.Run("missing dateObserved", func(t *testing.T) {
		_, err := ConvertTimeseries("11117", []TimeseriesPoint{{Temperature: v(12.1)}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing dateObserved")
	})
}

func TestParseTimeseriesQuery(t *testing.T) {
	t.Run("station only", func(t *testing.T) {
		q, err := ParseTimeseriesQuery("11117", "", "")
		require.NoError(t, err)
		assert.Equal(t, "11117", q.StationID)
		assert.True(t, q.TimeFrom.IsZero())
		assert.True(t, q.TimeTo.IsZero())
	})

	t.Run("full range", func(t *testing.T) {
		q, err := ParseTimeseriesQuery("11117", "2024-11-01T00:00:00Z", "2024-11-05T00:00:00Z")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), q.TimeFrom)
		assert.Equal(t, time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC), q.TimeTo)
	})

	t.Run("missing stationId", func(t *testing.T) {
		_, err := ParseTimeseriesQuery("", "", "")
		require.ErrorIs(t, err, ErrInvalidQuery)
		assert.Contains(t, err.Error(), "stationId")
	})

	t.Run("malformed timeFrom", func(t *testing.T) {
		_, err := ParseTimeseriesQuery("11117", "01.11.2024", "")
		require.ErrorIs(t, err, ErrInvalidQuery)
		assert.Contains(t, err.Error(), "timeFrom")
	})

	t.Run("malformed timeTo", func(t *testing.T) {
		_, err := ParseTimeseriesQuery("11117", "", "soon")
		require.ErrorIs(t, err, ErrInvalidQuery)
		assert.Contains(t, err.Error(), "timeTo")
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := ParseTimeseriesQuery("11117", "2024-11-05T00:00:00Z", "2024-11-01T00:00:00Z")
		require.ErrorIs(t, err, ErrInvalidQuery)
		assert.Contains(t, err.Error(), "after")
	})
}
