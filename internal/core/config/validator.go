package config

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"propinfo/internal/core/config/helpers"
	"propinfo/internal/core/errors"
	"propinfo/internal/engine/source"
	"propinfo/internal/shared/util"
)

// capabilities lists the chains each extractor can serve.
var capabilities = map[string]map[string]bool{
	ExtractorReflection: {ChainList: true, ChainType: true, ChainAccess: true, ChainInitializable: true},
	ExtractorSerializer: {ChainList: true},
	ExtractorSource:     {ChainList: true, ChainType: true, ChainDescription: true, ChainAccess: true, ChainInitializable: true},
	ExtractorOpenAPI:    {ChainList: true, ChainType: true, ChainDescription: true, ChainAccess: true, ChainInitializable: true},
}

// KnownExtractors returns the names accepted in [chains].
func KnownExtractors() []string {
	return util.SortedStringKeys(capabilities)
}

// Supports reports whether the named extractor can serve chain.
func Supports(extractor, chain string) bool {
	return capabilities[extractor][chain]
}

// Validate returns every problem found in cfg.
func Validate(cfg *Config) []error {
	var errs []error
	errs = append(errs, validateVersion(cfg)...)
	errs = append(errs, validateSources(cfg)...)
	errs = append(errs, validateOpenAPI(cfg)...)
	errs = append(errs, validateChains(cfg)...)
	errs = append(errs, validateCache(cfg)...)
	errs = append(errs, validateWatch(cfg)...)
	return errs
}

// Check validates cfg and folds every problem into one VALIDATION_ERROR.
func Check(cfg *Config) error {
	return validationError(Validate(cfg))
}

// validationError folds errs into a single VALIDATION_ERROR, or nil.
func validationError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Wrap(stderrors.Join(errs...), errors.CodeValidationError, "invalid config")
}

func validateVersion(cfg *Config) []error {
	if cfg.Version != 1 {
		return []error{fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)}
	}
	return nil
}

func validateSources(cfg *Config) []error {
	var errs []error
	cleaned := make([]string, len(cfg.Sources.Paths))
	for i, p := range cfg.Sources.Paths {
		if helpers.HasWildcard(p) {
			errs = append(errs, fmt.Errorf("sources.paths[%d] %q must be a path, not a pattern", i, p))
		}
		cleaned[i] = filepath.Clean(p)
		for j := 0; j < i; j++ {
			if helpers.IsPathOverlap(cleaned[i], cleaned[j]) {
				errs = append(errs, fmt.Errorf("sources.paths[%d] %q overlaps sources.paths[%d] %q", i, p, j, cfg.Sources.Paths[j]))
			}
		}
	}

	seen := make(map[string]bool, len(cfg.Sources.Languages))
	for _, lang := range cfg.Sources.Languages {
		if !source.IsSupportedLanguage(lang) {
			errs = append(errs, fmt.Errorf("sources.languages: unknown language %q (supported: %s)", lang, strings.Join(source.SupportedLanguages(), ", ")))
			continue
		}
		if seen[lang] {
			errs = append(errs, fmt.Errorf("sources.languages: duplicate language %q", lang))
		}
		seen[lang] = true
	}

	for i, p := range cfg.Sources.ExcludeDirs {
		if err := util.ValidateGlob(p); err != nil {
			errs = append(errs, fmt.Errorf("sources.exclude_dirs[%d] %q is not a valid glob: %w", i, p, err))
		}
	}
	for i, p := range cfg.Sources.ExcludeFiles {
		if err := util.ValidateGlob(p); err != nil {
			errs = append(errs, fmt.Errorf("sources.exclude_files[%d] %q is not a valid glob: %w", i, p, err))
		}
	}
	if cfg.Sources.Workers < 0 {
		errs = append(errs, fmt.Errorf("sources.workers must be >= 0"))
	}
	return errs
}

func validateOpenAPI(cfg *Config) []error {
	var errs []error
	seen := make(map[string]bool, len(cfg.OpenAPI.Specs))
	for i, spec := range cfg.OpenAPI.Specs {
		if seen[spec] {
			errs = append(errs, fmt.Errorf("openapi.specs[%d] duplicates %q", i, spec))
		}
		seen[spec] = true
		if strings.Contains(spec, "://") {
			u, err := url.Parse(spec)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				errs = append(errs, fmt.Errorf("openapi.specs[%d] %q must be a file path or an http(s) URL", i, spec))
			}
		}
	}
	if cfg.OpenAPI.RequestsPerSecond > 100 {
		errs = append(errs, fmt.Errorf("openapi.requests_per_second must be <= 100"))
	}
	if cfg.OpenAPI.Timeout > 2*time.Minute {
		errs = append(errs, fmt.Errorf("openapi.timeout must be <= 2m"))
	}
	return errs
}

func validateChains(cfg *Config) []error {
	var errs []error
	for _, chain := range ChainNames() {
		seen := make(map[string]bool)
		for i, name := range cfg.Chains.ByName(chain) {
			ref := fmt.Sprintf("chains.%s[%d]", chain, i)
			if _, ok := capabilities[name]; !ok {
				errs = append(errs, fmt.Errorf("%s: unknown extractor %q (known: %s)", ref, name, strings.Join(KnownExtractors(), ", ")))
				continue
			}
			if !Supports(name, chain) {
				errs = append(errs, fmt.Errorf("%s: extractor %q cannot serve the %s chain", ref, name, chain))
			}
			if seen[name] {
				errs = append(errs, fmt.Errorf("%s: duplicate extractor %q", ref, name))
			}
			seen[name] = true
		}
	}
	return errs
}

func validateCache(cfg *Config) []error {
	var errs []error
	if cfg.CacheEnabled() && cfg.Cache.Path == "" {
		errs = append(errs, fmt.Errorf("cache.path must not be empty when cache.enabled=true"))
	}
	if cfg.Cache.MemoryEntries < 0 {
		errs = append(errs, fmt.Errorf("cache.memory_entries must be >= 0"))
	}
	return errs
}

func validateWatch(cfg *Config) []error {
	if cfg.Watch.Debounce < 0 || cfg.Watch.Debounce > time.Minute {
		return []error{fmt.Errorf("watch.debounce must be between 0 and 1m")}
	}
	return nil
}
