package config

import (
	"strings"
	"testing"
)

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Version = 2
	cfg.Chains.List = []string{"magic"}
	cfg.Sources.Languages = []string{"go", "go"}
	cfg.Cache.MemoryEntries = -1

	errs := Validate(cfg)
	if len(errs) != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", len(errs), errs)
	}
	wanted := []string{"config version", "duplicate language", "unknown extractor", "cache.memory_entries"}
	for i, want := range wanted {
		if !strings.Contains(errs[i].Error(), want) {
			t.Errorf("error %d: expected %q, got %v", i, want, errs[i])
		}
	}
}

func TestValidate_DefaultConfigIsValid(t *testing.T) {
	if errs := Validate(DefaultConfig()); len(errs) != 0 {
		t.Fatalf("expected default config to be valid, got %v", errs)
	}
}

func TestValidate_EnabledCacheNeedsPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Path = ""
	if err := Check(cfg); err == nil || !strings.Contains(err.Error(), "cache.path") {
		t.Fatalf("expected cache path error, got %v", err)
	}

	disabled := false
	cfg.Cache.Enabled = &disabled
	if err := Check(cfg); err != nil {
		t.Fatalf("expected disabled cache without path to validate, got %v", err)
	}
}
