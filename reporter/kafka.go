package reporter

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/aalemi-dev/oboe/event"
	"github.com/aalemi-dev/oboe/logger"
	"github.com/aalemi-dev/oboe/metadata"
)

// MessageWriter is the part of *kafka.Writer the kafka reporter uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// kafkaTransport produces one message per event, keyed by task id, with the
// X-Trace id in a header.
type kafkaTransport struct {
	writer MessageWriter
}

func newKafkaTransport(cfg KafkaConfig, w MessageWriter, log logger.Logger) (*kafkaTransport, error) {
	if w != nil {
		return &kafkaTransport{writer: w}, nil
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("%w: kafka reporter needs brokers", ErrInvalidConfig)
	}

	kt := &kafka.Transport{}
	if cfg.TLS.Enabled {
		tlsConfig, err := createTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		kt.TLS = tlsConfig
	}
	if cfg.SASL.Enabled {
		mechanism, err := createSASLMechanism(cfg.SASL)
		if err != nil {
			return nil, fmt.Errorf("failed to create SASL mechanism: %w", err)
		}
		kt.SASL = mechanism
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  1, // a failed write is reported, not retried
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(*cfg.RequiredAcks),
		Async:        cfg.Async,
		Transport:    kt,
		ErrorLogger:  errorLogger(log),
	}

	switch cfg.Compression {
	case "":
	case "gzip":
		writer.Compression = kafka.Gzip
	case "snappy":
		writer.Compression = kafka.Snappy
	case "lz4":
		writer.Compression = kafka.Lz4
	case "zstd":
		writer.Compression = kafka.Zstd
	default:
		return nil, fmt.Errorf("%w: unknown compression %q", ErrInvalidConfig, cfg.Compression)
	}

	return &kafkaTransport{writer: writer}, nil
}

func (k *kafkaTransport) send(ctx context.Context, _ metadata.Metadata, e *event.Event, payload []byte) (int, error) {
	md := e.Metadata()
	msg := kafka.Message{
		Key:   []byte(md.TaskIDString()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: event.KeyXTrace, Value: []byte(md.String())},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return 0, err
	}
	return len(payload), nil
}

func (k *kafkaTransport) close() error {
	return k.writer.Close()
}

func errorLogger(log logger.Logger) kafka.LoggerFunc {
	return func(msg string, args ...interface{}) {
		if log == nil {
			return
		}
		log.Error("kafka writer error", nil, map[string]interface{}{
			"error": fmt.Sprintf(msg, args...),
		})
	}
}

func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert %s", cfg.CACertPath)
		}
		tlsConfig.RootCAs = pool
	}

	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

func createSASLMechanism(cfg SASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "PLAIN":
		return plain.Mechanism{Username: cfg.Username, Password: cfg.Password}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("%w: unsupported SASL mechanism %q", ErrInvalidConfig, cfg.Mechanism)
	}
}
