package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vidasmart/inventory-worker/internal/app/worker/config"
	"vidasmart/inventory-worker/internal/app/worker/entity"
	"vidasmart/inventory-worker/internal/app/worker/service"
	"vidasmart/pkg/logger"
	"vidasmart/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

const (
	serviceName = "inventory-worker"

	// заголовок ставит inventory-service, JSON при этом может быть битым
	eventTypeHeader = "event_type"
)

var (
	// errMalformedMessage - сообщение нельзя разобрать; повтор не поможет, offset коммитится
	errMalformedMessage = errors.New("malformed inventory event")
	errConsumerStopped  = errors.New("kafka consumer stopped")
)

// KafkaConsumer читает топик inventory_events и пишет движения в журнал
type KafkaConsumer struct {
	reader     *kafka.Reader
	journalSvc service.JournalServiceInterface
	topic      string
	groupID    string
	stopChan   chan struct{}
	doneChan   chan struct{}
	retryMin   time.Duration
	retryMax   time.Duration
}

func NewKafkaConsumer(cfg config.KafkaConfig, journalSvc service.JournalServiceInterface) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
		// журнал должен видеть всю историю группы, поэтому новая группа читает с начала
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &KafkaConsumer{
		reader:     reader,
		journalSvc: journalSvc,
		topic:      cfg.Topic,
		groupID:    cfg.GroupID,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
		retryMin:   500 * time.Millisecond,
		retryMax:   30 * time.Second,
	}
}

// Start запускает чтение в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group", c.groupID).Msg("Starting Kafka consumer")
	go c.consume(ctx)
}

// Stop дожидается завершения цикла и закрывает reader
func (c *KafkaConsumer) Stop() {
	logger.Info().Msg("Stopping Kafka consumer")
	close(c.stopChan)
	<-c.doneChan
	if err := c.reader.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close Kafka reader")
	}
	logger.Info().Msg("Kafka consumer stopped")
}

func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if !errors.Is(err, context.DeadlineExceeded) {
					logger.Error().Err(err).Msg("Error fetching message")
					metrics.RecordKafkaError(serviceName, c.topic, "fetch")
					time.Sleep(time.Second)
				}
				continue
			}

			start := time.Now()
			err = c.processWithRetry(ctx, message)
			if err != nil && !errors.Is(err, errMalformedMessage) {
				// остановка во время повторов: offset не коммитим, после рестарта группа перечитает сообщение
				return
			}
			if err != nil {
				logger.Warn().Err(err).Int64("offset", message.Offset).Int("partition", message.Partition).
					Msg("Skipping malformed message")
			}

			if err := c.reader.CommitMessages(ctx, message); err != nil {
				logger.Error().Err(err).Msg("Error committing message")
				metrics.RecordKafkaError(serviceName, c.topic, "commit")
				continue
			}
			metrics.RecordKafkaMessageConsumed(serviceName, c.topic, c.groupID, time.Since(start))
		}
	}
}

// processWithRetry повторяет обработку одного сообщения, пока журнал не примет его.
// FetchMessage уже сдвинул позицию reader, поэтому пропуск сообщения означал бы его потерю:
// следующий CommitMessages закоммитил бы offset дальше него.
// Возвращает nil, errMalformedMessage или ошибку остановки.
func (c *KafkaConsumer) processWithRetry(ctx context.Context, message kafka.Message) error {
	backoff := c.retryMin
	for {
		err := c.processMessage(ctx, message)
		if err == nil || errors.Is(err, errMalformedMessage) {
			return err
		}

		logger.Error().Err(err).
			Int64("offset", message.Offset).
			Int("partition", message.Partition).
			Dur("retry_in", backoff).
			Msg("Error processing message, retrying")
		metrics.RecordKafkaError(serviceName, c.topic, "process")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-c.stopChan:
			timer.Stop()
			return errConsumerStopped
		case <-timer.C:
		}

		backoff *= 2
		if backoff > c.retryMax {
			backoff = c.retryMax
		}
	}
}

// processMessage разбирает событие и передаёт его в журнал
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.InventoryEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		metrics.RecordJournalEvent(headerValue(message, eventTypeHeader), "invalid")
		return fmt.Errorf("%w: failed to unmarshal inventory event: %v", errMalformedMessage, err)
	}

	logger.Debug().
		Str("event_type", event.EventType).
		Str("product_id", event.ProductID.String()).
		Int64("offset", message.Offset).
		Int("partition", message.Partition).
		Msg("Received inventory event")

	if err := c.journalSvc.RecordEvent(ctx, &event); err != nil {
		if errors.Is(err, service.ErrInvalidEvent) {
			return fmt.Errorf("%w: %v", errMalformedMessage, err)
		}
		return fmt.Errorf("failed to journal inventory event: %w", err)
	}

	return nil
}

// headerValue возвращает значение заголовка или "unknown"
func headerValue(message kafka.Message, key string) string {
	for _, h := range message.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return "unknown"
}

// GetStats возвращает статистику reader
func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
