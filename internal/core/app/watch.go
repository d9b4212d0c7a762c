package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"

	"propinfo/internal/core/config"
	"propinfo/internal/core/watcher"
	"propinfo/internal/shared/observability"
	"propinfo/internal/shared/util"
)

// StartWatcher watches the source roots and local OpenAPI documents and
// reloads whatever changed. The config file is watched too when the app was
// built with a ConfigPath.
func (a *App) StartWatcher(ctx context.Context) error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Sources.ExcludeDirs,
		a.Config.Sources.ExcludeFiles,
		func(paths []string) { a.HandleChanges(ctx, paths) },
	)
	if err != nil {
		return err
	}

	specs := a.localSpecs()
	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		names = append(names, filepath.Base(spec))
	}
	w.SetLanguageFilters(a.grammars.SupportedExtensions(), names, a.grammars.SkipSuffixes())

	if err := w.Watch(append(append([]string(nil), a.Config.Sources.Paths...), specs...)); err != nil {
		_ = w.Close()
		return err
	}

	a.reloadMu.Lock()
	a.activeWatcher = w
	a.reloadMu.Unlock()

	if a.configPath != "" {
		cw := config.NewWatcher(a.configPath, func(cfg *config.Config) { a.ApplyConfig(ctx, cfg) })
		if err := cw.Start(ctx); err != nil {
			slog.Warn("config watcher unavailable", "path", a.configPath, "error", err)
		} else {
			a.reloadMu.Lock()
			a.configWatcher = cw
			a.reloadMu.Unlock()
		}
	}
	slog.Info("watching for changes", "paths", len(a.Config.Sources.Paths), "specs", len(specs))
	return nil
}

func (a *App) StopWatcher() {
	a.reloadMu.Lock()
	w, cw := a.activeWatcher, a.configWatcher
	a.activeWatcher, a.configWatcher = nil, nil
	a.reloadMu.Unlock()

	if cw != nil {
		cw.Stop()
	}
	if w != nil {
		if err := w.Close(); err != nil {
			slog.Warn("failed to close watcher", "error", err)
		}
	}
}

// HandleChanges reloads the source index and or the OpenAPI documents
// touched by paths, then drops every memoised answer.
func (a *App) HandleChanges(ctx context.Context, paths []string) {
	specs := make(map[string]bool)
	for _, spec := range a.localSpecs() {
		specs[absPath(spec)] = true
	}

	a.mu.RLock()
	roots := append([]string(nil), a.Config.Sources.Paths...)
	a.mu.RUnlock()

	var sourcesChanged, specsChanged bool
	for _, p := range paths {
		if specs[absPath(p)] {
			specsChanged = true
			continue
		}
		for _, root := range roots {
			if util.HasPathPrefix(absPath(p), absPath(root)) {
				sourcesChanged = true
				break
			}
		}
	}

	update := Update{Paths: paths}
	a.reloadMu.Lock()
	if sourcesChanged && a.uses(config.ExtractorSource) {
		update.Err = a.Index.Reload(ctx)
	}
	if update.Err == nil && specsChanged && a.uses(config.ExtractorOpenAPI) {
		update.Err = a.OpenAPI.Load(ctx, a.loader, a.specs())
	}
	a.reloadMu.Unlock()

	a.resetCache()
	update.Classes = len(a.Index.Classes())
	update.Schemas = len(a.OpenAPI.Schemas())
	if update.Err != nil {
		observability.ReloadsTotal.WithLabelValues("error").Inc()
		slog.Warn("reload failed", "paths", len(paths), "error", update.Err)
	} else {
		observability.ReloadsTotal.WithLabelValues("ok").Inc()
		slog.Info("reloaded after change", "paths", len(paths), "classes", update.Classes, "schemas", update.Schemas)
	}
	a.emitUpdate(update)
}

// ApplyConfig swaps in the chains and OpenAPI documents of a reloaded
// config. Source settings only take effect on restart.
func (a *App) ApplyConfig(ctx context.Context, cfg *config.Config) {
	base := filepath.Dir(a.configPath)
	if a.configPath == "" {
		base = "."
	}
	cfg = config.ResolvePaths(cfg, base)

	if !reflect.DeepEqual(cfg.Sources, a.Config.Sources) {
		slog.Warn("source settings changed; restart to apply them")
	}
	if err := a.applyChains(cfg.Chains); err != nil {
		slog.Warn("ignoring reloaded chains", "error", err)
		return
	}

	a.mu.Lock()
	a.Config.OpenAPI.Specs = cfg.OpenAPI.Specs
	a.mu.Unlock()

	update := Update{Paths: []string{a.configPath}}
	a.reloadMu.Lock()
	if a.uses(config.ExtractorOpenAPI) {
		update.Err = a.OpenAPI.Load(ctx, a.loader, a.specs())
	}
	a.reloadMu.Unlock()
	a.resetCache()
	update.Classes = len(a.Index.Classes())
	update.Schemas = len(a.OpenAPI.Schemas())
	a.emitUpdate(update)
}

func (a *App) localSpecs() []string {
	var out []string
	for _, spec := range a.specs() {
		if !strings.Contains(spec, "://") {
			out = append(out, spec)
		}
	}
	return out
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
