package messaging

import (
	"context"
	"fmt"
	"time"

	"vidasmart/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

const (
	producerService = "inventory-service"
	// EventTypeHeader позволяет фильтровать события без разбора JSON
	EventTypeHeader = "event_type"
)

type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaProducer: события одного товара попадают в одну партицию и читаются по порядку
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaProducer{writer: writer, topic: topic}
}

func (p *KafkaProducer) PublishEvent(ctx context.Context, productID, eventType string, payload []byte) error {
	start := time.Now()

	message := kafka.Message{
		Key:     []byte(productID),
		Value:   payload,
		Headers: []kafka.Header{{Key: EventTypeHeader, Value: []byte(eventType)}},
		Time:    start,
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		metrics.RecordKafkaError(producerService, p.topic, "produce")
		return fmt.Errorf("failed to publish %s for product %s: %w", eventType, productID, err)
	}

	metrics.RecordKafkaMessageProduced(producerService, p.topic, time.Since(start))
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
