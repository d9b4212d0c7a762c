package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"propinfo/internal/core/errors"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "config file not found"), errors.CtxPath, path)
		}
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "decode config"), errors.CtxPath, path)
	}

	applyDefaults(&cfg)
	normalize(&cfg)

	if err := Check(&cfg); err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if len(cfg.Sources.Paths) == 0 {
		cfg.Sources.Paths = []string{"."}
	}
	if cfg.Sources.ExcludeDirs == nil {
		cfg.Sources.ExcludeDirs = []string{".git", "node_modules", "vendor", "target", "__pycache__", ".venv"}
	}

	if cfg.OpenAPI.RequestsPerSecond <= 0 {
		cfg.OpenAPI.RequestsPerSecond = 2
	}
	if cfg.OpenAPI.Burst <= 0 {
		cfg.OpenAPI.Burst = 1
	}
	if cfg.OpenAPI.Timeout <= 0 {
		cfg.OpenAPI.Timeout = 10 * time.Second
	}

	if cfg.Chains.List == nil {
		cfg.Chains.List = []string{ExtractorSerializer, ExtractorSource, ExtractorOpenAPI, ExtractorReflection}
	}
	if cfg.Chains.Type == nil {
		cfg.Chains.Type = []string{ExtractorSource, ExtractorOpenAPI, ExtractorReflection}
	}
	if cfg.Chains.Description == nil {
		cfg.Chains.Description = []string{ExtractorSource, ExtractorOpenAPI}
	}
	if cfg.Chains.Access == nil {
		cfg.Chains.Access = []string{ExtractorSource, ExtractorOpenAPI, ExtractorReflection}
	}
	if cfg.Chains.Initializable == nil {
		cfg.Chains.Initializable = []string{ExtractorSource, ExtractorOpenAPI, ExtractorReflection}
	}

	if strings.TrimSpace(cfg.Cache.Path) == "" {
		cfg.Cache.Path = filepath.Join(".propinfo", "cache.db")
	}
	if cfg.Cache.MemoryEntries == 0 {
		cfg.Cache.MemoryEntries = 4096
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}

	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "propinfo"
	}
}

func normalize(cfg *Config) {
	cfg.Sources.Paths = trimAll(cfg.Sources.Paths)
	cfg.Sources.ExcludeDirs = trimAll(cfg.Sources.ExcludeDirs)
	cfg.Sources.ExcludeFiles = trimAll(cfg.Sources.ExcludeFiles)
	langs := trimAll(cfg.Sources.Languages)
	for i := range langs {
		langs[i] = strings.ToLower(langs[i])
	}
	cfg.Sources.Languages = langs

	cfg.OpenAPI.Specs = trimAll(cfg.OpenAPI.Specs)

	cfg.Chains.List = lowerAll(cfg.Chains.List)
	cfg.Chains.Type = lowerAll(cfg.Chains.Type)
	cfg.Chains.Description = lowerAll(cfg.Chains.Description)
	cfg.Chains.Access = lowerAll(cfg.Chains.Access)
	cfg.Chains.Initializable = lowerAll(cfg.Chains.Initializable)

	cfg.Cache.Path = strings.TrimSpace(cfg.Cache.Path)
	cfg.Observability.MetricsAddr = strings.TrimSpace(cfg.Observability.MetricsAddr)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)
	cfg.Observability.ServiceName = strings.TrimSpace(cfg.Observability.ServiceName)
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func lowerAll(values []string) []string {
	out := trimAll(values)
	for i := range out {
		out[i] = strings.ToLower(out[i])
	}
	return out
}
