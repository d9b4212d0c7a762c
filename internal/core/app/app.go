// Package app wires the configured extractors into property info chains.
package app

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"propinfo/internal/core/config"
	"propinfo/internal/core/errors"
	"propinfo/internal/core/propertyinfo"
	"propinfo/internal/core/watcher"
	"propinfo/internal/data/cache"
	"propinfo/internal/engine/openapi"
	"propinfo/internal/engine/reflection"
	"propinfo/internal/engine/source"
	"propinfo/internal/shared/observability"
)

// Update is delivered to the update callback after every watcher reload.
type Update struct {
	Paths   []string
	Classes int
	Schemas int
	Err     error
}

type Options struct {
	// Registry supplies Go types to the reflection and serializer
	// extractors. An empty registry is used when nil.
	Registry *reflection.Registry
	// ConfigPath enables reloading chains and OpenAPI specs when the file
	// changes in watch mode.
	ConfigPath string
}

type App struct {
	Config   *config.Config
	Parser   *source.Parser
	Index    *source.Index
	OpenAPI  *openapi.Extractor
	Registry *reflection.Registry

	configPath string
	grammars   *source.GrammarLoader
	loader     *openapi.Loader
	store      *cache.Store
	extractors map[string]any

	mu    sync.RWMutex
	cache *propertyinfo.CacheExtractor
	info  propertyinfo.PropertyInfo

	updateMu sync.RWMutex
	onUpdate func(Update)

	reloadMu      sync.Mutex
	activeWatcher *watcher.Watcher
	configWatcher *config.Watcher
}

// New builds every extractor and the chains named by cfg. Nothing is loaded
// until Load is called.
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := config.Check(cfg); err != nil {
		return nil, err
	}

	registry := opts.Registry
	if registry == nil {
		registry = reflection.NewRegistry()
	}

	grammars, err := source.NewGrammarLoader(cfg.Sources.Languages...)
	if err != nil {
		return nil, err
	}
	p := source.NewParser(grammars)

	a := &App{
		Config:     cfg,
		Parser:     p,
		OpenAPI:    openapi.NewExtractor(),
		Registry:   registry,
		configPath: strings.TrimSpace(opts.ConfigPath),
		grammars:   grammars,
		loader: openapi.NewLoader(openapi.LoaderOptions{
			Timeout:           cfg.OpenAPI.Timeout,
			RequestsPerSecond: cfg.OpenAPI.RequestsPerSecond,
			Burst:             cfg.OpenAPI.Burst,
		}),
	}

	if cfg.CacheEnabled() {
		store, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			slog.Warn("snapshot cache unavailable, parsing every file", "path", cfg.Cache.Path, "error", err)
		} else {
			a.store = store
		}
	}

	var snapshots source.SnapshotStore
	if a.store != nil {
		snapshots = a.store
	}
	a.Index, err = source.NewIndex(p, source.IndexOptions{
		Roots:        cfg.Sources.Paths,
		ExcludeDirs:  cfg.Sources.ExcludeDirs,
		ExcludeFiles: cfg.Sources.ExcludeFiles,
		Workers:      cfg.Sources.Workers,
	}, snapshots)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	a.extractors = map[string]any{
		config.ExtractorReflection: reflection.NewReflectionExtractor(registry),
		config.ExtractorSerializer: reflection.NewSerializerExtractor(registry),
		config.ExtractorSource:     source.NewExtractor(a.Index),
		config.ExtractorOpenAPI:    a.OpenAPI,
	}
	if err := a.applyChains(cfg.Chains); err != nil {
		a.closeResources()
		return nil, err
	}
	return a, nil
}

// Load indexes the source roots and loads the OpenAPI documents used by the
// configured chains.
func (a *App) Load(ctx context.Context) error {
	ctx, span := observability.Tracer().Start(ctx, "app.Load")
	defer span.End()

	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	if a.uses(config.ExtractorSource) {
		if err := a.Index.Reload(ctx); err != nil {
			span.RecordError(err)
			return err
		}
	}
	if specs := a.specs(); a.uses(config.ExtractorOpenAPI) && len(specs) > 0 {
		if err := a.OpenAPI.Load(ctx, a.loader, specs); err != nil {
			span.RecordError(err)
			return err
		}
	}
	a.resetCache()
	return nil
}

// Info returns the cached, instrumented aggregator.
func (a *App) Info() propertyinfo.PropertyInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.info
}

// Classes lists every class known to the configured extractors, sorted and
// deduplicated.
func (a *App) Classes() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(names []string) {
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	if a.uses(config.ExtractorSource) {
		add(a.Index.Classes())
	}
	if a.uses(config.ExtractorOpenAPI) {
		add(a.OpenAPI.Schemas())
	}
	if a.uses(config.ExtractorReflection) || a.uses(config.ExtractorSerializer) {
		add(a.Registry.Names())
	}
	sort.Strings(out)
	return out
}

func (a *App) SetUpdateHandler(handler func(Update)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

func (a *App) emitUpdate(u Update) {
	a.updateMu.RLock()
	handler := a.onUpdate
	a.updateMu.RUnlock()
	if handler != nil {
		handler(u)
	}
}

// applyChains rebuilds the aggregator for chains and swaps it in with a
// fresh memo cache.
func (a *App) applyChains(chains config.Chains) error {
	agg, err := BuildExtractor(chains, a.extractors)
	if err != nil {
		return err
	}
	memo := propertyinfo.NewCacheExtractor(agg, a.Config.Cache.MemoryEntries)

	a.mu.Lock()
	a.cache = memo
	a.info = propertyinfo.NewInstrumented(memo)
	a.Config.Chains = chains
	a.mu.Unlock()
	return nil
}

func (a *App) uses(extractor string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, name := range a.Config.Chains.Names() {
		if name == extractor {
			return true
		}
	}
	return false
}

func (a *App) specs() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.Config.OpenAPI.Specs...)
}

func (a *App) resetCache() {
	a.mu.RLock()
	memo := a.cache
	a.mu.RUnlock()
	if memo != nil {
		memo.Reset()
	}
}

// Close stops the watchers and releases the snapshot store and loaders.
func (a *App) Close() error {
	a.StopWatcher()
	return a.closeResources()
}

func (a *App) closeResources() error {
	if a.loader != nil {
		a.loader.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "close snapshot cache")
		}
	}
	return nil
}
