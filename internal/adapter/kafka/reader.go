// Package kafka reads rainfall measurements from a Kafka topic and publishes
// them back to it.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/rainfall-dry-periods/internal/config"
	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Reader loads every measurement on the topic as it stands when Load is called.
// It does not join a consumer group and commits no offsets, so repeated loads
// see the same history plus anything appended since.
type Reader struct {
	brokers []string
	topic   string
	dialer  *kafkago.Dialer
	logger  *slog.Logger
}

// NewReader creates a reader for the configured measurement topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	return &Reader{
		brokers: cfg.KafkaBrokers,
		topic:   cfg.KafkaTopic,
		dialer:  kafkago.DefaultDialer,
		logger:  logger,
	}
}

// Name identifies the source in logs and metrics.
func (r *Reader) Name() string { return "kafka" }

// Load reads each partition from its first offset up to the high-water mark
// observed at the start of the call.
func (r *Reader) Load(ctx context.Context) (domain.RecordSet, error) {
	partitions, err := r.partitions(ctx)
	if err != nil {
		return nil, err
	}

	records := make(domain.RecordSet)
	for _, p := range partitions {
		n, err := r.readPartition(ctx, p, records)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("partition loaded", "topic", r.topic, "partition", p.ID, "messages", n)
	}
	return records, nil
}

func (r *Reader) partitions(ctx context.Context) ([]kafkago.Partition, error) {
	var errs []error
	for _, broker := range r.brokers {
		conn, err := r.dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		partitions, err := conn.ReadPartitions(r.topic)
		_ = conn.Close()
		if err != nil {
			return nil, fmt.Errorf("read partitions of %s: %w", r.topic, err)
		}
		return partitions, nil
	}
	return nil, fmt.Errorf("dial kafka brokers: %w", errors.Join(errs...))
}

func (r *Reader) readPartition(ctx context.Context, p kafkago.Partition, records domain.RecordSet) (int, error) {
	leader := fmt.Sprintf("%s:%d", p.Leader.Host, p.Leader.Port)
	conn, err := r.dialer.DialLeader(ctx, "tcp", leader, r.topic, p.ID)
	if err != nil {
		return 0, fmt.Errorf("dial leader for partition %d: %w", p.ID, err)
	}
	first, last, err := conn.ReadOffsets()
	_ = conn.Close()
	if err != nil {
		return 0, fmt.Errorf("read offsets of partition %d: %w", p.ID, err)
	}
	if last <= first {
		return 0, nil
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   r.brokers,
		Topic:     r.topic,
		Partition: p.ID,
		Dialer:    r.dialer,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	if err := reader.SetOffset(first); err != nil {
		return 0, fmt.Errorf("seek partition %d: %w", p.ID, err)
	}

	n := 0
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			return n, fmt.Errorf("read partition %d: %w", p.ID, err)
		}
		group, m, err := decodeMessage(msg)
		if err != nil {
			return n, err
		}
		records[group] = append(records[group], m)
		n++
		if msg.Offset >= last-1 {
			return n, nil
		}
	}
}

// Ping checks that at least one broker accepts connections.
func (r *Reader) Ping(ctx context.Context) error {
	_, err := r.partitions(ctx)
	return err
}
