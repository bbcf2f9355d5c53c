package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Analytics AnalyticsConfig `yaml:"analytics"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	Auth struct {
		AdminJWTSecret string `yaml:"admin_jwt_secret"`
	} `yaml:"auth"`

	RateLimiting struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
		MaxConcurrent     int     `yaml:"max_concurrent"`
	} `yaml:"rate_limiting"`
}

// AnalyticsConfig is the surface the facade wires into every component.
// Gates default to enabled; absent or placeholder sink identifiers skip that
// sink at initialization instead of failing it.
type AnalyticsConfig struct {
	MeasurementID       string `yaml:"measurement_id"`
	MeasurementEndpoint string `yaml:"measurement_endpoint"`
	HeatmapID           string `yaml:"heatmap_id"`
	HeatmapEndpoint     string `yaml:"heatmap_endpoint"`

	HeatmapsEnabled              bool `yaml:"heatmaps_enabled"`
	ConversionTrackingEnabled    bool `yaml:"conversion_tracking_enabled"`
	PerformanceMonitoringEnabled bool `yaml:"performance_monitoring_enabled"`
	ABTestingEnabled             bool `yaml:"ab_testing_enabled"`
	Debug                        bool `yaml:"debug"`

	MemorySampleInterval time.Duration `yaml:"memory_sample_interval"`
	SinkTimeout          time.Duration `yaml:"sink_timeout"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Analytics
	if c.Analytics.MemorySampleInterval <= 0 {
		return fmt.Errorf("analytics.memory_sample_interval must be > 0")
	}
	if c.Analytics.SinkTimeout <= 0 {
		return fmt.Errorf("analytics.sink_timeout must be > 0")
	}

	// Monitoring
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort < 0 {
		return fmt.Errorf("monitoring.prometheus_port must be >= 0 when prometheus_enabled=true")
	}

	// Tracing
	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate <= 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be in (0, 1]")
		}
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address must not be empty when redis.enabled=true")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be > 0 when redis.enabled=true")
		}
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.Burst <= 0 {
			return fmt.Errorf("rate_limiting.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.max_concurrent must be >= 0 when rate limiting is enabled")
		}
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults. Tracking features
// are enabled by default; sink identifiers are intentionally empty so that a
// bare deployment initializes without any third-party sinks.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Analytics.MeasurementEndpoint = "https://www.google-analytics.com/mp/collect"
	cfg.Analytics.HeatmapEndpoint = "https://in.hotjar.com/api/v2/sites"
	cfg.Analytics.HeatmapsEnabled = true
	cfg.Analytics.ConversionTrackingEnabled = true
	cfg.Analytics.PerformanceMonitoringEnabled = true
	cfg.Analytics.ABTestingEnabled = true
	cfg.Analytics.Debug = false
	cfg.Analytics.MemorySampleInterval = 30 * time.Second
	cfg.Analytics.SinkTimeout = 5 * time.Second

	cfg.Monitoring.PrometheusEnabled = true
	cfg.Monitoring.PrometheusPort = 9090

	cfg.Tracing.Enabled = false
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Redis.Enabled = false
	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10

	cfg.Auth.AdminJWTSecret = "change-me-in-production"

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 50
	cfg.RateLimiting.Burst = 100
	cfg.RateLimiting.MaxConcurrent = 0

	return cfg
}

func (c *Config) applyEnvOverrides() {
	// Apply environment variable overrides
	if addr := os.Getenv("FUTURFOUNDER_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if level := os.Getenv("FUTURFOUNDER_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if id := os.Getenv("FUTURFOUNDER_MEASUREMENT_ID"); id != "" {
		c.Analytics.MeasurementID = id
	}
	if id := os.Getenv("FUTURFOUNDER_HEATMAP_ID"); id != "" {
		c.Analytics.HeatmapID = id
	}
	if secret := os.Getenv("FUTURFOUNDER_ADMIN_JWT_SECRET"); secret != "" {
		c.Auth.AdminJWTSecret = secret
	}
	if debug := os.Getenv("FUTURFOUNDER_DEBUG"); debug != "" {
		if v, err := strconv.ParseBool(debug); err == nil {
			c.Analytics.Debug = v
		}
	}
}
