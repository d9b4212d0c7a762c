package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: PROPINFO_[SECTION]_[KEY] (e.g., PROPINFO_OBSERVABILITY_METRICS_ADDR).
func ApplyEnvOverrides(cfg *Config) {
	// Sources
	setEnvList(&cfg.Sources.Paths, "PROPINFO_SOURCES_PATHS")
	setEnvList(&cfg.Sources.Languages, "PROPINFO_SOURCES_LANGUAGES")
	setEnvInt(&cfg.Sources.Workers, "PROPINFO_SOURCES_WORKERS")

	// OpenAPI
	setEnvList(&cfg.OpenAPI.Specs, "PROPINFO_OPENAPI_SPECS")
	setEnvFloat64(&cfg.OpenAPI.RequestsPerSecond, "PROPINFO_OPENAPI_REQUESTS_PER_SECOND")
	setEnvDuration(&cfg.OpenAPI.Timeout, "PROPINFO_OPENAPI_TIMEOUT")

	// Cache
	setEnvBoolPtr(&cfg.Cache.Enabled, "PROPINFO_CACHE_ENABLED")
	setEnvString(&cfg.Cache.Path, "PROPINFO_CACHE_PATH")
	setEnvInt(&cfg.Cache.MemoryEntries, "PROPINFO_CACHE_MEMORY_ENTRIES")

	// Watch
	setEnvBool(&cfg.Watch.Enabled, "PROPINFO_WATCH_ENABLED")
	setEnvDuration(&cfg.Watch.Debounce, "PROPINFO_WATCH_DEBOUNCE")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "PROPINFO_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "PROPINFO_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvString(&cfg.Observability.ServiceName, "PROPINFO_OBSERVABILITY_SERVICE_NAME")

	normalize(cfg)
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

// setEnvList splits a comma separated value.
func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = strings.Split(val, ",")
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvBoolPtr(target **bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = &b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
