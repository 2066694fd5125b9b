package reporter

import (
	"fmt"
	"time"
)

// Reporter types accepted in Config.Type.
const (
	TypeUDP   = "udp"
	TypeFile  = "file"
	TypeKafka = "kafka"
	TypeMinio = "minio"
	TypeOTLP  = "otlp"
	TypeNoop  = "noop"
)

// File formats accepted in FileConfig.Format.
const (
	FormatBSON = "bson"
	FormatJSON = "json"
)

const (
	DefaultType              = TypeUDP
	DefaultUDPAddress        = "127.0.0.1:7831"
	DefaultKafkaWriteTimeout = 10 * time.Second
	DefaultKafkaBatchTimeout = time.Second
	DefaultKafkaBatchSize    = 100
	DefaultKafkaRequiredAcks = -1 // all in-sync replicas
	DefaultMinioPrefix       = "events"
	DefaultOTLPServiceName   = "oboe"
)

// Config selects and configures the reporter. Only the section matching
// Type is read.
type Config struct {
	// Type is one of "udp", "file", "kafka", "minio", "otlp" or "noop".
	// Empty means "udp".
	//
	// This setting can be configured via:
	//   - YAML configuration with the "type" key
	//   - Environment variable OBOE_REPORTER_TYPE
	Type string `yaml:"type" envconfig:"TYPE"`

	// Hostname is stamped on every event. Empty means os.Hostname.
	//
	// Fields named like common environment variables (Hostname, Path,
	// Username, Password) carry no envconfig tag: envconfig falls back to
	// the bare tag name when the prefixed variable is unset.
	Hostname string `yaml:"hostname"`

	UDP   UDPConfig   `yaml:"udp" envconfig:"UDP"`
	File  FileConfig  `yaml:"file" envconfig:"FILE"`
	Kafka KafkaConfig `yaml:"kafka" envconfig:"KAFKA"`
	Minio MinioConfig `yaml:"minio" envconfig:"MINIO"`
	OTLP  OTLPConfig  `yaml:"otlp" envconfig:"OTLP"`
}

// UDPConfig configures the datagram reporter.
type UDPConfig struct {
	// Address is the collector's host:port. Empty means DefaultUDPAddress.
	Address string `yaml:"address" envconfig:"ADDRESS"`

	// Connect dials the socket when the reporter is created instead of on
	// the first report.
	Connect bool `yaml:"connect" envconfig:"CONNECT"`
}

// FileConfig configures the file reporter.
type FileConfig struct {
	// Path is the file events are appended to. It is created if missing.
	Path string `yaml:"path"`

	// Format is "bson" for concatenated BSON documents (the default) or
	// "json" for one extended JSON document per line.
	Format string `yaml:"format" envconfig:"FORMAT"`
}

// KafkaConfig configures the Kafka reporter. Messages are keyed by task id
// so every event of a trace lands on the same partition.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" envconfig:"BROKERS"`
	Topic   string   `yaml:"topic" envconfig:"TOPIC"`

	// RequiredAcks is 0 (none), 1 (leader) or -1 (all in-sync replicas).
	RequiredAcks *int `yaml:"required_acks" envconfig:"REQUIRED_ACKS"`

	// Async batches writes in the background. Write errors are then only
	// logged.
	Async        bool          `yaml:"async" envconfig:"ASYNC"`
	BatchSize    int           `yaml:"batch_size" envconfig:"BATCH_SIZE"`
	BatchTimeout time.Duration `yaml:"batch_timeout" envconfig:"BATCH_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`

	// Compression is "", "gzip", "snappy", "lz4" or "zstd".
	Compression string `yaml:"compression" envconfig:"COMPRESSION"`

	TLS  TLSConfig  `yaml:"tls" envconfig:"TLS"`
	SASL SASLConfig `yaml:"sasl" envconfig:"SASL"`
}

// TLSConfig configures TLS towards the brokers.
type TLSConfig struct {
	Enabled            bool   `yaml:"enabled" envconfig:"ENABLED"`
	CACertPath         string `yaml:"ca_cert_path" envconfig:"CA_CERT_PATH"`
	ClientCertPath     string `yaml:"client_cert_path" envconfig:"CLIENT_CERT_PATH"`
	ClientKeyPath      string `yaml:"client_key_path" envconfig:"CLIENT_KEY_PATH"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify" envconfig:"INSECURE_SKIP_VERIFY"`
}

// SASLConfig configures broker authentication.
type SASLConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"ENABLED"`

	// Mechanism is "PLAIN", "SCRAM-SHA-256" or "SCRAM-SHA-512".
	Mechanism string `yaml:"mechanism" envconfig:"MECHANISM"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"` //nolint:gosec
}

// MinioConfig configures the object storage reporter, which writes one
// object per event at <prefix>/<task id>/<op id>.bson.
type MinioConfig struct {
	Endpoint        string `yaml:"endpoint" envconfig:"ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" envconfig:"ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" envconfig:"SECRET_ACCESS_KEY"` //nolint:gosec
	UseSSL          bool   `yaml:"use_ssl" envconfig:"USE_SSL"`
	Region          string `yaml:"region" envconfig:"REGION"`
	Bucket          string `yaml:"bucket" envconfig:"BUCKET"`

	// Prefix is the key prefix. Empty means DefaultMinioPrefix.
	Prefix string `yaml:"prefix" envconfig:"PREFIX"`

	// CreateBucket creates Bucket when it does not exist.
	CreateBucket bool `yaml:"create_bucket" envconfig:"CREATE_BUCKET"`
}

// OTLPConfig configures the OpenTelemetry bridge, which exports every event
// as a zero length span over OTLP/HTTP.
type OTLPConfig struct {
	// Endpoint is host:port of the collector. Empty means the exporter's
	// default, which also honors OTEL_EXPORTER_OTLP_* variables.
	Endpoint string            `yaml:"endpoint" envconfig:"ENDPOINT"`
	URLPath  string            `yaml:"url_path" envconfig:"URL_PATH"`
	Insecure bool              `yaml:"insecure" envconfig:"INSECURE"`
	Headers  map[string]string `yaml:"headers" envconfig:"HEADERS"`

	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment string `yaml:"environment" envconfig:"ENVIRONMENT"`
}

// Validate reports whether the section selected by Type is usable.
func (c Config) Validate() error {
	_, err := c.withDefaults()
	return err
}

// withDefaults fills unset fields and validates the section selected by
// Type.
func (c Config) withDefaults() (Config, error) {
	if c.Type == "" {
		c.Type = DefaultType
	}

	switch c.Type {
	case TypeUDP:
		if c.UDP.Address == "" {
			c.UDP.Address = DefaultUDPAddress
		}

	case TypeFile:
		if c.File.Path == "" {
			return c, fmt.Errorf("%w: file reporter needs a path", ErrInvalidConfig)
		}
		switch c.File.Format {
		case "":
			c.File.Format = FormatBSON
		case FormatBSON, FormatJSON:
		default:
			return c, fmt.Errorf("%w: unknown file format %q", ErrInvalidConfig, c.File.Format)
		}

	case TypeKafka:
		if c.Kafka.Topic == "" {
			return c, fmt.Errorf("%w: kafka reporter needs a topic", ErrInvalidConfig)
		}
		if c.Kafka.RequiredAcks == nil {
			acks := DefaultKafkaRequiredAcks
			c.Kafka.RequiredAcks = &acks
		}
		if c.Kafka.BatchSize == 0 {
			c.Kafka.BatchSize = DefaultKafkaBatchSize
		}
		if c.Kafka.BatchTimeout == 0 {
			c.Kafka.BatchTimeout = DefaultKafkaBatchTimeout
		}
		if c.Kafka.WriteTimeout == 0 {
			c.Kafka.WriteTimeout = DefaultKafkaWriteTimeout
		}

	case TypeMinio:
		if c.Minio.Bucket == "" {
			return c, fmt.Errorf("%w: minio reporter needs a bucket", ErrInvalidConfig)
		}
		if c.Minio.Prefix == "" {
			c.Minio.Prefix = DefaultMinioPrefix
		}

	case TypeOTLP:
		if c.OTLP.ServiceName == "" {
			c.OTLP.ServiceName = DefaultOTLPServiceName
		}

	case TypeNoop:

	default:
		return c, fmt.Errorf("%w: %q", ErrUnknownType, c.Type)
	}
	return c, nil
}
