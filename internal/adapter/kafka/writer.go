// Package kafka publishes resolved venue classifications to a Kafka topic for
// downstream consumers. The sink is optional; the resolver runs fine without it.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/venue-resolution/internal/config"
	"github.com/couchcryptid/venue-resolution/internal/domain"
)

// Writer produces venue classification events to a Kafka topic.
// It implements resolver.Sink.
type Writer struct {
	writer     *kafkago.Writer
	cellMeters float64
	logger     *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, cellMeters: cfg.GridCellMeters, logger: logger}
}

// Publish serializes one resolved venue and writes it to the sink topic,
// keyed by grid cell so a partition sees each cell's resolutions in order.
func (w *Writer) Publish(ctx context.Context, venue domain.VenueClass) error {
	msg, err := serializeToMessage(venue, w.cellMeters)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a VenueClass into a Kafka message.
func serializeToMessage(venue domain.VenueClass, cellMeters float64) (kafkago.Message, error) {
	data, err := json.Marshal(venue)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize venue class: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(domain.GridKey(venue.Lat, venue.Lng, cellMeters)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "venue_type", Value: []byte(venue.Type)},
			{Key: "provider", Value: []byte(venue.Provider)},
			{Key: "resolved_at", Value: []byte(venue.ResolvedAt.Format(time.RFC3339))},
		},
	}, nil
}
