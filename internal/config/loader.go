package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "swarm.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "SWARM_PORT")
	setDuration(&cfg.Server.RequestTimeout, "SWARM_REQUEST_TIMEOUT")
	setFloat64(&cfg.Server.RateLimitRPS, "SWARM_HTTP_RATE_RPS")
	setInt(&cfg.Server.RateLimitBurst, "SWARM_HTTP_RATE_BURST")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "SWARM_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "SWARM_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "SWARM_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "SWARM_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "SWARM_PG_HEALTH_CHECK")

	setString(&cfg.NATS.URL, "NATS_URL")

	setString(&cfg.Gateway.URL, "SWARM_GATEWAY_URL")
	setString(&cfg.Gateway.APIKey, "OPENAI_API_KEY")
	setString(&cfg.Gateway.Model, "SWARM_GATEWAY_MODEL")
	setString(&cfg.Gateway.SummaryModel, "SWARM_GATEWAY_SUMMARY_MODEL")
	setInt(&cfg.Gateway.MaxTokens, "SWARM_GATEWAY_MAX_TOKENS")
	setDuration(&cfg.Gateway.RequestTimeout, "SWARM_GATEWAY_TIMEOUT")

	setFloat64(&cfg.Rate.RequestsPerSecond, "SWARM_RATE_RPS")
	setInt(&cfg.Rate.Burst, "SWARM_RATE_BURST")
	setDuration(&cfg.Rate.CheckInterval, "SWARM_RATE_CHECK_INTERVAL")

	setInt(&cfg.Compaction.Threshold, "SWARM_COMPACTION_THRESHOLD")
	setInt(&cfg.Compaction.KeepLast, "SWARM_COMPACTION_KEEP_LAST")
	setInt(&cfg.Compaction.IncrementalOffset, "SWARM_COMPACTION_OFFSET")
	setInt(&cfg.Compaction.SummaryMaxTokens, "SWARM_COMPACTION_SUMMARY_TOKENS")

	setInt(&cfg.Turn.MaxNodeVisits, "SWARM_TURN_MAX_NODE_VISITS")
	setInt(&cfg.Turn.MaxRetries, "SWARM_TURN_MAX_RETRIES")

	setInt(&cfg.Booking.OpenHour, "SWARM_BOOKING_OPEN_HOUR")
	setInt(&cfg.Booking.CloseHour, "SWARM_BOOKING_CLOSE_HOUR")
	setInt(&cfg.Booking.SlotMinutes, "SWARM_BOOKING_SLOT_MINUTES")
	setInt(&cfg.Booking.MaxDaysAhead, "SWARM_BOOKING_MAX_DAYS_AHEAD")
	setString(&cfg.Booking.Timezone, "SWARM_BOOKING_TIMEZONE")

	setString(&cfg.WebSearch.URL, "SWARM_WEBSEARCH_URL")
	setString(&cfg.WebSearch.APIKey, "TAVILY_API_KEY")
	setInt(&cfg.WebSearch.MaxResults, "SWARM_WEBSEARCH_MAX_RESULTS")
	setInt64(&cfg.WebSearch.MaxConcurrent, "SWARM_WEBSEARCH_MAX_CONCURRENT")

	setInt64(&cfg.Cache.MaxSizeMB, "SWARM_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.DefaultTTL, "SWARM_CACHE_TTL")

	setString(&cfg.Logging.Level, "SWARM_LOG_LEVEL")
	setString(&cfg.Logging.Service, "SWARM_LOG_SERVICE")

	setInt(&cfg.Breaker.MaxFailures, "SWARM_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Cooldown, "SWARM_BREAKER_COOLDOWN")

	setBool(&cfg.Telemetry.Enabled, "SWARM_TELEMETRY_ENABLED")
	setString(&cfg.Telemetry.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.Telemetry.ServiceName, "SWARM_TELEMETRY_SERVICE")

	setBool(&cfg.MCP.Enabled, "SWARM_MCP_ENABLED")
	setString(&cfg.MCP.Port, "SWARM_MCP_PORT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if cfg.Gateway.URL == "" {
		return errors.New("gateway.url is required")
	}
	if cfg.Server.RateLimitRPS <= 0 {
		return errors.New("server.rate_limit_rps must be > 0")
	}
	if cfg.Server.RateLimitBurst < 1 {
		return errors.New("server.rate_limit_burst must be >= 1")
	}
	if cfg.Rate.Burst < 1 {
		return errors.New("rate.burst must be >= 1")
	}
	if cfg.Rate.RequestsPerSecond <= 0 {
		return errors.New("rate.requests_per_second must be > 0")
	}
	if cfg.Compaction.KeepLast < 1 {
		return errors.New("compaction.keep_last must be >= 1")
	}
	if cfg.Compaction.Threshold <= cfg.Compaction.KeepLast {
		return errors.New("compaction.threshold must exceed compaction.keep_last")
	}
	if cfg.Booking.OpenHour >= cfg.Booking.CloseHour {
		return errors.New("booking.open_hour must be before booking.close_hour")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
