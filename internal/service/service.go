// Package service orchestrates the fetch-convert-publish flow behind small
// interfaces so transports stay swappable in tests.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/suhm-sensorthings-bridge/internal/domain"
	"github.com/couchcryptid/suhm-sensorthings-bridge/internal/observability"
)

// UpstreamClient fetches readings from the weather-sensor API.
type UpstreamClient interface {
	FetchLatest(ctx context.Context) ([]domain.StationReading, error)
	FetchTimeseries(ctx context.Context, q domain.TimeseriesQuery) ([]domain.TimeseriesPoint, error)
}

// ObservationPublisher forwards converted observations to a sink topic.
type ObservationPublisher interface {
	PublishObservations(ctx context.Context, obs []domain.Observation) error
}

// Service converts upstream readings to SensorThings documents on demand.
// Each call is synchronous and builds a fresh document; there is no shared
// mutable state beyond the readiness flag.
type Service struct {
	client    UpstreamClient
	publisher ObservationPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Service. Pass a nil publisher to disable Kafka publishing.
func New(client UpstreamClient, publisher ObservationPublisher, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		client:    client,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once the service has completed at least one
// successful upstream conversion.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no successful upstream conversion yet")
	}
	return nil
}

// Latest fetches the most recent reading per station and converts it to the
// full SensorThings document.
func (s *Service) Latest(ctx context.Context) (domain.Document, error) {
	readings, err := s.client.FetchLatest(ctx)
	if err != nil {
		s.metrics.ConversionsTotal.WithLabelValues("latest", "error").Inc()
		return domain.Document{}, fmt.Errorf("fetch latest: %w", err)
	}

	doc, err := domain.ConvertLatest(readings)
	if err != nil {
		s.metrics.ConversionsTotal.WithLabelValues("latest", "error").Inc()
		return domain.Document{}, fmt.Errorf("convert latest: %w", err)
	}

	s.metrics.ConversionsTotal.WithLabelValues("latest", "success").Inc()
	s.metrics.EntitiesBuilt.WithLabelValues("thing").Add(float64(len(doc.Things)))
	s.metrics.EntitiesBuilt.WithLabelValues("location").Add(float64(len(doc.Locations)))
	s.metrics.EntitiesBuilt.WithLabelValues("datastream").Add(float64(len(doc.Datastreams)))
	s.metrics.EntitiesBuilt.WithLabelValues("observation").Add(float64(len(doc.Observations)))
	s.ready.Store(true)

	s.publish(ctx, doc.Observations)
	return doc, nil
}

// Timeseries fetches readings for one station over an optional time range
// and converts them to an ordered observation document. The query must
// already be validated.
func (s *Service) Timeseries(ctx context.Context, q domain.TimeseriesQuery) (domain.ObservationDocument, error) {
	points, err := s.client.FetchTimeseries(ctx, q)
	if err != nil {
		s.metrics.ConversionsTotal.WithLabelValues("timeseries", "error").Inc()
		return domain.ObservationDocument{}, fmt.Errorf("fetch timeseries for station %s: %w", q.StationID, err)
	}

	doc, err := domain.ConvertTimeseries(q.StationID, points)
	if err != nil {
		s.metrics.ConversionsTotal.WithLabelValues("timeseries", "error").Inc()
		return domain.ObservationDocument{}, fmt.Errorf("convert timeseries for station %s: %w", q.StationID, err)
	}

	s.metrics.ConversionsTotal.WithLabelValues("timeseries", "success").Inc()
	s.metrics.EntitiesBuilt.WithLabelValues("observation").Add(float64(len(doc.Observations)))
	s.ready.Store(true)

	s.publish(ctx, doc.Observations)
	return doc, nil
}

// publish forwards observations to the sink topic when publishing is
// enabled. Failures degrade gracefully: the caller still gets its document.
func (s *Service) publish(ctx context.Context, obs []domain.Observation) {
	if s.publisher == nil || len(obs) == 0 {
		return
	}
	if err := s.publisher.PublishObservations(ctx, obs); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Warn("observation publish failed", "error", err, "count", len(obs))
		return
	}
	s.metrics.ObservationsPublished.Add(float64(len(obs)))
}
