package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"propinfo/internal/core/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version = 1

[sources]
paths = ["./src", "./lib"]
languages = ["Go", "python"]
exclude_dirs = [".git", "testdata"]
exclude_files = ["*_gen.go"]
workers = 4

[openapi]
specs = ["api/openapi.yaml", "https://example.com/openapi.json"]
requests_per_second = 5
burst = 2
timeout = "3s"

[chains]
list = ["source", "reflection"]
type = ["openapi", "source"]
description = ["source"]
access = ["reflection"]
initializable = ["source"]

[cache]
enabled = false
memory_entries = 128

[watch]
enabled = true
debounce = "1s"

[observability]
metrics_addr = "127.0.0.1:9090"

[context]
include_private = true
serializer_groups = ["public"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !reflect.DeepEqual(cfg.Sources.Paths, []string{"./src", "./lib"}) {
		t.Errorf("unexpected paths %v", cfg.Sources.Paths)
	}
	if !reflect.DeepEqual(cfg.Sources.Languages, []string{"go", "python"}) {
		t.Errorf("expected languages to be lower-cased, got %v", cfg.Sources.Languages)
	}
	if cfg.Sources.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Sources.Workers)
	}
	if cfg.OpenAPI.Timeout != 3*time.Second || cfg.OpenAPI.Burst != 2 || cfg.OpenAPI.RequestsPerSecond != 5 {
		t.Errorf("unexpected openapi section %+v", cfg.OpenAPI)
	}
	if !reflect.DeepEqual(cfg.Chains.Type, []string{"openapi", "source"}) {
		t.Errorf("unexpected type chain %v", cfg.Chains.Type)
	}
	if cfg.CacheEnabled() {
		t.Error("expected cache to be disabled")
	}
	if cfg.Cache.MemoryEntries != 128 {
		t.Errorf("expected 128 memory entries, got %d", cfg.Cache.MemoryEntries)
	}
	if !cfg.Watch.Enabled || cfg.Watch.Debounce != time.Second {
		t.Errorf("unexpected watch section %+v", cfg.Watch)
	}
	if cfg.Observability.MetricsAddr != "127.0.0.1:9090" || cfg.Observability.ServiceName != "propinfo" {
		t.Errorf("unexpected observability section %+v", cfg.Observability)
	}
	if cfg.Context["include_private"] != true {
		t.Errorf("expected context hints, got %v", cfg.Context)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "version = 1\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(cfg.Sources.Paths, []string{"."}) {
		t.Errorf("expected default path, got %v", cfg.Sources.Paths)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected default debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if !cfg.CacheEnabled() || cfg.Cache.Path != filepath.Join(".propinfo", "cache.db") {
		t.Errorf("unexpected cache defaults %+v", cfg.Cache)
	}
	want := []string{"serializer", "source", "openapi", "reflection"}
	if !reflect.DeepEqual(cfg.Chains.List, want) {
		t.Errorf("expected default list chain %v, got %v", want, cfg.Chains.List)
	}
	if !reflect.DeepEqual(DefaultConfig().Chains, cfg.Chains) {
		t.Error("expected DefaultConfig to match an empty file")
	}
}

func TestLoadError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := Load(writeConfig(t, "version = [")); !errors.IsCode(err, errors.CodeValidationError) {
		t.Errorf("expected decode failure to be a validation error, got %v", err)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"version", "version = 3", "unsupported config version 3"},
		{"unknown extractor", "[chains]\nlist = [\"magic\"]", `chains.list[0]: unknown extractor "magic"`},
		{"capability", "[chains]\ndescription = [\"reflection\"]", `extractor "reflection" cannot serve the description chain`},
		{"duplicate", "[chains]\ntype = [\"source\", \"source\"]", `chains.type[1]: duplicate extractor "source"`},
		{"language", "[sources]\nlanguages = [\"cobol\"]", `unknown language "cobol"`},
		{"glob", "[sources]\nexclude_files = [\"[abc\"]", "sources.exclude_files[0]"},
		{"pattern path", "[sources]\npaths = [\"src/*\"]", "must be a path, not a pattern"},
		{"overlap", "[sources]\npaths = [\"src\", \"src/model\"]", "overlaps"},
		{"url", "[openapi]\nspecs = [\"ftp://example.com/a.yaml\"]", "must be a file path or an http(s) URL"},
		{"debounce", "[watch]\ndebounce = \"2m\"", "watch.debounce"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.IsCode(err, errors.CodeValidationError) {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PROPINFO_SOURCES_PATHS", "a, b")
	t.Setenv("PROPINFO_CACHE_ENABLED", "false")
	t.Setenv("PROPINFO_WATCH_DEBOUNCE", "250ms")
	t.Setenv("PROPINFO_OBSERVABILITY_METRICS_ADDR", ":9100")
	t.Setenv("PROPINFO_SOURCES_WORKERS", "not-a-number")

	cfg := DefaultConfig()
	ApplyEnvOverrides(cfg)

	if !reflect.DeepEqual(cfg.Sources.Paths, []string{"a", "b"}) {
		t.Errorf("unexpected paths %v", cfg.Sources.Paths)
	}
	if cfg.CacheEnabled() {
		t.Error("expected cache disabled by env")
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("unexpected debounce %v", cfg.Watch.Debounce)
	}
	if cfg.Observability.MetricsAddr != ":9100" {
		t.Errorf("unexpected metrics addr %q", cfg.Observability.MetricsAddr)
	}
	if cfg.Sources.Workers != 0 {
		t.Errorf("expected invalid int to be ignored, got %d", cfg.Sources.Workers)
	}
	if err := Check(cfg); err != nil {
		t.Errorf("expected overridden config to validate, got %v", err)
	}
}

func TestChains(t *testing.T) {
	chains := Chains{
		List:   []string{"serializer", "source"},
		Type:   []string{"source", "openapi"},
		Access: []string{"reflection"},
	}
	if got := chains.Names(); !reflect.DeepEqual(got, []string{"serializer", "source", "openapi", "reflection"}) {
		t.Errorf("unexpected names %v", got)
	}
	if chains.ByName("bogus") != nil {
		t.Error("expected nil for unknown chain")
	}
	if !Supports("serializer", ChainList) || Supports("serializer", ChainType) {
		t.Error("unexpected serializer capabilities")
	}
}
