package metrics

// Default listen addresses of the two metrics endpoints.
const (
	DefaultSystemMetricsAddress      = ":9090"
	DefaultApplicationMetricsAddress = ":9091"
)

// Config defines the metrics endpoints.
type Config struct {
	// SystemMetricsAddress serves Go runtime and process metrics.
	// nil means DefaultSystemMetricsAddress and "" disables the endpoint.
	//
	// This setting can be configured via:
	//   - YAML configuration with the "system_metrics_address" key
	//   - Environment variable OBOE_METRICS_SYSTEM_ADDRESS
	SystemMetricsAddress *string `yaml:"system_metrics_address" envconfig:"SYSTEM_ADDRESS"`

	// ApplicationMetricsAddress serves the oboe instruments.
	// nil means DefaultApplicationMetricsAddress and "" disables the
	// endpoint; the instruments are still recorded.
	//
	// This setting can be configured via:
	//   - YAML configuration with the "application_metrics_address" key
	//   - Environment variable OBOE_METRICS_APPLICATION_ADDRESS
	ApplicationMetricsAddress *string `yaml:"application_metrics_address" envconfig:"APPLICATION_ADDRESS"`

	// ServiceName is added as the "service" label of every metric.
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`
}

// Ptr returns a pointer to s, for the optional address fields.
func Ptr(s string) *string {
	return &s
}
