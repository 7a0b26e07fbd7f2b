// Package events publishes aggregation run summaries to Kafka so downstream
// consumers (dashboards, freshness monitors) learn about new publications
// without polling the store. Delivery is best effort; a run that cannot be
// announced is still a completed run.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"worklens/internal/aggregation/models"
	platformstrings "worklens/pkg/platform/strings"
)

const produceTimeout = 10 * time.Second

// producer is the subset of the Kafka client the publisher needs.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// RunPublisher emits one record per completed aggregation run, keyed by the
// ISO week so re-runs of the same week land in the same partition.
type RunPublisher struct {
	client producer
	topic  string
	logger *slog.Logger
}

// NewRunPublisher connects to the brokers and ensures the topic exists.
// brokers is a comma-separated list.
func NewRunPublisher(ctx context.Context, brokers, topic string, logger *slog.Logger) (*RunPublisher, error) {
	seeds := platformstrings.DedupeAndTrim(strings.Split(brokers, ","))
	if len(seeds) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(seeds...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	return &RunPublisher{client: client, topic: topic, logger: logger}, nil
}

// ensureTopic creates the topic if missing. An existing topic is not an error.
func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %q: %w", topic, err)
	}
	for _, res := range resp.Sorted() {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %q: %w", topic, res.Err)
		}
	}
	return nil
}

// RunCompleted publishes the summary of a finished run.
func (p *RunPublisher) RunCompleted(ctx context.Context, summary models.RunSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, produceTimeout)
	defer cancel()

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(fmt.Sprintf("%d-W%02d", summary.ISOYear, summary.ISOWeek)),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce run summary: %w", err)
	}

	p.logger.InfoContext(ctx, "run summary published",
		"topic", p.topic,
		"iso_year", summary.ISOYear,
		"iso_week", summary.ISOWeek,
	)
	return nil
}

// Close flushes and releases the underlying client.
func (p *RunPublisher) Close() {
	p.client.Close()
}
