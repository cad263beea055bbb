package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"

	kafkaconfig "fleetdesk/pkg/kafka/config"
	"fleetdesk/pkg/logger"
)

// Producer wraps a kafka-go writer for a single topic. Safe for
// concurrent use; Publish after Close returns ErrProducerClosed.
type Producer struct {
	writer *kafka.Writer
	topic  string
	log    *logger.Logger

	mu     sync.RWMutex
	closed bool
}

func NewProducer(cfg *kafkaconfig.Config, topic string, log *logger.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka producer: no brokers configured")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka producer: topic is required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.ProducerMaxAttempts,
		BatchTimeout: cfg.ProducerBatchTimeout,
		RequiredAcks: requiredAcks(cfg.ProducerRequireAcks),
		Compression:  compression(cfg.ProducerCompression),
		Async:        cfg.ProducerAsync,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
		log:    log,
	}, nil
}

func (p *Producer) Publish(ctx context.Context, msg Message) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrProducerClosed
	}
	p.mu.RUnlock()

	if msg.Key == "" {
		return ErrEmptyKey
	}
	if len(msg.Value) == 0 {
		return ErrEmptyValue
	}

	headers := make([]kafka.Header, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	kmsg := kafka.Message{
		Key:     []byte(msg.Key),
		Value:   msg.Value,
		Headers: headers,
		Time:    msg.Timestamp,
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, kmsg); err != nil {
		p.log.Error("failed to publish message",
			"topic", p.topic,
			"key", msg.Key,
			"error", err,
		)
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	p.log.Debug("message published",
		"topic", p.topic,
		"key", msg.Key,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

func requiredAcks(acks int) kafka.RequiredAcks {
	switch acks {
	case 0:
		return kafka.RequireNone
	case 1:
		return kafka.RequireOne
	default:
		return kafka.RequireAll
	}
}

func compression(codec string) kafka.Compression {
	switch codec {
	case "gzip":
		return kafka.Compression(compress.Gzip)
	case "lz4":
		return kafka.Compression(compress.Lz4)
	case "zstd":
		return kafka.Compression(compress.Zstd)
	case "none":
		return 0
	default:
		return kafka.Compression(compress.Snappy)
	}
}
