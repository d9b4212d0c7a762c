package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"propinfo/internal/core/errors"
	"propinfo/internal/shared/observability"
	"propinfo/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
)

// SnapshotStore persists parsed files keyed by path and content hash so
// unchanged files are not parsed again.
type SnapshotStore interface {
	BeginScan(ctx context.Context) (string, error)
	Lookup(ctx context.Context, path, hash string) ([]byte, bool, error)
	Save(ctx context.Context, scanID, path, hash, language string, payload []byte) error
	FinishScan(ctx context.Context, scanID string, files, classes int) error
}

// SnapshotPruner is implemented by stores that can drop snapshots of files
// which no longer exist.
type SnapshotPruner interface {
	Prune(ctx context.Context, keep []string) (int64, error)
}

type IndexOptions struct {
	Roots        []string
	ExcludeDirs  []string
	ExcludeFiles []string
	// Workers bounds concurrent parsing; zero means GOMAXPROCS.
	Workers int
}

// IndexStats summarises the last build.
type IndexStats struct {
	Files     int
	Classes   int
	Snapshots int
	Skipped   int
}

// Index holds the classes declared under a set of source roots.
type Index struct {
	parser *Parser
	opts   IndexOptions
	filter *util.PathFilter
	store  SnapshotStore

	mu      sync.RWMutex
	byID    map[string]*Class
	byName  map[string]*Class
	ids     []string
	stats   IndexStats
	version int
}

// NewIndex prepares an index; call Reload to populate it. store may be nil.
func NewIndex(parser *Parser, opts IndexOptions, store SnapshotStore) (*Index, error) {
	filter, err := util.NewPathFilter(opts.ExcludeDirs, opts.ExcludeFiles)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "invalid exclude pattern")
	}
	return &Index{
		parser: parser,
		opts:   opts,
		filter: filter,
		store:  store,
		byID:   make(map[string]*Class),
		byName: make(map[string]*Class),
	}, nil
}

// Lookup finds a class by qualified name, then by simple name.
func (i *Index) Lookup(name string) (*Class, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if c, ok := i.byID[name]; ok {
		return c, true
	}
	c, ok := i.byName[name]
	return c, ok
}

// Classes returns the qualified names of every indexed class, sorted.
func (i *Index) Classes() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]string, len(i.ids))
	copy(out, i.ids)
	return out
}

func (i *Index) Stats() IndexStats {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.stats
}

// Version increases with every successful reload.
func (i *Index) Version() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.version
}

// Reload rescans the roots and atomically replaces the indexed classes.
func (i *Index) Reload(ctx context.Context) error {
	ctx, span := observability.Tracer().Start(ctx, "source.Index.Reload")
	defer span.End()

	paths, err := i.collect()
	if err != nil {
		span.RecordError(err)
		return err
	}

	scanID := ""
	if i.store != nil {
		if scanID, err = i.store.BeginScan(ctx); err != nil {
			slog.Warn("snapshot store unavailable, parsing every file", "error", err)
			scanID = ""
		}
	}

	files, stats, err := i.parseAll(ctx, paths, scanID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	byID, byName, ids := i.merge(files)
	stats.Classes = len(ids)
	span.SetAttributes(
		attribute.Int("files", stats.Files),
		attribute.Int("classes", stats.Classes),
		attribute.Int("snapshots", stats.Snapshots),
	)

	if scanID != "" {
		if err := i.store.FinishScan(ctx, scanID, stats.Files, stats.Classes); err != nil {
			slog.Warn("failed to record scan", "scan_id", scanID, "error", err)
		}
		if pruner, ok := i.store.(SnapshotPruner); ok {
			if removed, err := pruner.Prune(ctx, paths); err != nil {
				slog.Warn("failed to prune snapshots", "error", err)
			} else if removed > 0 {
				slog.Debug("pruned stale snapshots", "removed", removed)
			}
		}
	}

	i.mu.Lock()
	i.byID, i.byName, i.ids = byID, byName, ids
	i.stats = stats
	i.version++
	i.mu.Unlock()

	observability.IndexedClasses.Set(float64(stats.Classes))
	slog.Info("source index loaded", "files", stats.Files, "classes", stats.Classes, "snapshots", stats.Snapshots, "skipped", stats.Skipped)
	return nil
}

func (i *Index) collect() ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, root := range i.opts.Roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "source root not found"), errors.CtxPath, root)
		}
		if !info.IsDir() {
			if i.parser.IsSupportedPath(root) && !seen[root] {
				seen[root] = true
				paths = append(paths, root)
			}
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && i.filter.ExcludeDir(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if !i.parser.IsSupportedPath(path) || i.filter.ExcludeFile(path) || seen[path] {
				return nil
			}
			seen[path] = true
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "walk failed"), errors.CtxPath, root)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

type parseResult struct {
	file     *File
	snapshot bool
}

func (i *Index) parseAll(ctx context.Context, paths []string, scanID string) ([]*File, IndexStats, error) {
	workers := i.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]parseResult, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = i.parseOne(ctx, paths[idx], scanID)
			}
		}()
	}

feed:
	for idx := range paths {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, IndexStats{}, err
	}

	var stats IndexStats
	files := make([]*File, 0, len(paths))
	for _, r := range results {
		if r.file == nil {
			stats.Skipped++
			continue
		}
		stats.Files++
		if r.snapshot {
			stats.Snapshots++
		}
		files = append(files, r.file)
	}
	return files, stats, nil
}

func (i *Index) parseOne(ctx context.Context, path, scanID string) parseResult {
	content, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("failed to read source file", "path", path, "error", err)
		return parseResult{}
	}
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	if scanID != "" {
		payload, ok, err := i.store.Lookup(ctx, path, hash)
		if err != nil {
			slog.Debug("snapshot lookup failed", "path", path, "error", err)
		} else if ok {
			var file File
			if err := json.Unmarshal(payload, &file); err == nil {
				observability.SnapshotHitsTotal.Inc()
				return parseResult{file: &file, snapshot: true}
			}
		}
	}

	file, err := i.parser.ParseFile(ctx, path, content)
	if err != nil {
		slog.Warn("failed to parse source file", "path", path, "error", err)
		return parseResult{}
	}

	if scanID != "" {
		payload, err := json.Marshal(file)
		if err == nil {
			err = i.store.Save(ctx, scanID, path, hash, file.Language, payload)
		}
		if err != nil {
			slog.Debug("snapshot save failed", "path", path, "error", err)
		}
	}
	return parseResult{file: file}
}

// merge indexes classes in file order; the first declaration of an id wins.
// Out-of-body members are attached to their owner afterwards.
func (i *Index) merge(files []*File) (map[string]*Class, map[string]*Class, []string) {
	byID := make(map[string]*Class)
	byName := make(map[string]*Class)
	for _, f := range files {
		for ci := range f.Classes {
			class := &f.Classes[ci]
			id := class.ID()
			if existing, ok := byID[id]; ok {
				slog.Warn("duplicate class declaration ignored", "class", id, "file", class.File, "first", existing.File)
				continue
			}
			byID[id] = class
			if _, ok := byName[class.Name]; !ok {
				byName[class.Name] = class
			}
		}
	}

	for _, f := range files {
		for _, m := range f.Members {
			owner, ok := byID[qualify(f.Package, m.Owner)]
			if !ok {
				continue
			}
			for _, name := range m.Initializers {
				owner.Initializers = appendUnique(owner.Initializers, name)
			}
			if m.Accessor != nil {
				owner.Accessors = append(owner.Accessors, *m.Accessor)
			}
		}
	}
	return byID, byName, util.SortedStringKeys(byID)
}
