package app

import (
	"context"
	"fmt"
	"time"

	"propinfo/internal/core/config"
	"propinfo/internal/shared/observability"
	"propinfo/internal/shared/util"
)

type HealthStatus struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	HeapMB      uint64            `json:"heap_mb"`
	HeapObjects uint64            `json:"heap_objects"`
	Components  map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	heap := util.ReadHeapUsage()
	observability.HeapAllocBytes.Set(float64(heap.AllocBytes))
	status := HealthStatus{
		Status:      "up",
		Timestamp:   time.Now().UTC(),
		HeapMB:      heap.AllocMB(),
		HeapObjects: heap.Objects,
		Components:  make(map[string]string),
	}
	a := s.app

	if a.uses(config.ExtractorSource) {
		stats := a.Index.Stats()
		if a.Index.Version() == 0 {
			status.Status = "degraded"
			status.Components["source_index"] = "not loaded"
		} else {
			status.Components["source_index"] = fmt.Sprintf("ok (%d files, %d classes)", stats.Files, stats.Classes)
		}
	}

	if a.uses(config.ExtractorOpenAPI) {
		schemas := len(a.OpenAPI.Schemas())
		if len(a.specs()) > 0 && schemas == 0 {
			status.Status = "degraded"
			status.Components["openapi"] = "no schemas loaded"
		} else {
			status.Components["openapi"] = fmt.Sprintf("ok (%d schemas)", schemas)
		}
	}

	if a.store != nil {
		status.Components["snapshot_cache"] = "ok"
	} else if a.Config.CacheEnabled() {
		status.Status = "degraded"
		status.Components["snapshot_cache"] = "missing but enabled in config"
	}

	a.mu.RLock()
	memo := a.cache
	a.mu.RUnlock()
	status.Components["memo_cache"] = fmt.Sprintf("ok (%d entries)", memo.Len())

	return status
}
