// Package kafka publishes converted observations to a sink topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/suhm-sensorthings-bridge/internal/config"
	"github.com/couchcryptid/suhm-sensorthings-bridge/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces SensorThings observations to a Kafka topic.
// It implements service.ObservationPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishObservations serializes and publishes observations to the sink
// topic in a single WriteMessages call. Messages are keyed by datastream ID
// so one station's stream stays in partition order.
func (w *Writer) PublishObservations(ctx context.Context, obs []domain.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(obs))
	for i := range obs {
		msg, err := serializeToMessage(obs[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Observation into a Kafka message.
func serializeToMessage(obs domain.Observation) (kafkago.Message, error) {
	data, err := json.Marshal(obs)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(obs.Datastream.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "datastream", Value: []byte(obs.Datastream.ID)},
			{Key: "exported_at", Value: []byte(clock.Now().UTC().Format(time.RFC3339))},
		},
	}, nil
}
