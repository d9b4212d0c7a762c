package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"propinfo/internal/core/app"
	"propinfo/internal/core/config"
	"propinfo/internal/core/propertyinfo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pythonModels = `from dataclasses import dataclass
from typing import Optional


@dataclass(frozen=True)
class Point:
    """A point."""

    x: int
    #: Vertical position.
    y: Optional[float] = None
`

const tsModels = `/** A user profile. */
export interface Profile {
  /** Unique id. */
  readonly id: string;
  nickname?: string;
  tags: string[];
}
`

const profileSpec = `openapi: 3.0.3
info:
  title: Profiles
  version: 1.0.0
paths: {}
components:
  schemas:
    Profile:
      type: object
      properties:
        id:
          type: string
          readOnly: true
        tags:
          type: array
          description: Free-form labels.
          items:
            type: string
    Avatar:
      type: object
      properties:
        url:
          type: string
          title: Image location
`

const projectConfig = `version = 1

[sources]
paths = ["src"]
languages = ["python", "typescript"]

[openapi]
specs = ["api/openapi.yaml"]

[cache]
path = "state/cache.db"
`

func createProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"src/geometry/models.py": pythonModels,
		"src/web/profile.ts":     tsModels,
		"api/openapi.yaml":       profileSpec,
		config.DefaultFileName:   projectConfig,
	}
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func loadApp(t *testing.T, dir string) *app.App {
	t.Helper()
	cfgPath := filepath.Join(dir, config.DefaultFileName)
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	cfg = config.ResolvePaths(cfg, dir)

	a, err := app.New(cfg, app.Options{ConfigPath: cfgPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.NoError(t, a.Load(context.Background()))
	return a
}

func property(t *testing.T, report *app.ClassReport, name string) app.PropertyReport {
	t.Helper()
	for _, p := range report.Properties {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("property %s not in report for %s", name, report.Class)
	return app.PropertyReport{}
}

func TestFullPipelineIntegration(t *testing.T) {
	dir := createProject(t)
	a := loadApp(t, dir)
	ctx := context.Background()

	assert.Equal(t, []string{"Avatar", "Profile", "models.Point", "profile.Profile"}, a.Classes())

	point, err := a.Describe(ctx, "Point", nil)
	require.NoError(t, err)
	require.Len(t, point.Properties, 2)
	assert.Equal(t, "int", property(t, point, "x").TypeText)
	y := property(t, point, "y")
	assert.Equal(t, "?float", y.TypeText)
	assert.Equal(t, "Vertical position.", y.ShortDescription)
	require.NotNil(t, y.Writable)
	assert.False(t, *y.Writable, "frozen dataclass fields are read-only")
	require.NotNil(t, y.Initializable)
	assert.True(t, *y.Initializable)

	// Source answers first; the OpenAPI schema of the same name fills the
	// description the TypeScript interface does not carry.
	profile, err := a.Describe(ctx, "Profile", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "nickname", "tags"}, names(profile))
	assert.Equal(t, "?string", property(t, profile, "nickname").TypeText)
	id := property(t, profile, "id")
	assert.Equal(t, "Unique id.", id.ShortDescription)
	require.NotNil(t, id.Writable)
	assert.False(t, *id.Writable)
	assert.Equal(t, "Free-form labels.", property(t, profile, "tags").ShortDescription)

	avatar, err := a.Describe(ctx, "Avatar", propertyinfo.Context{"locale": "en"})
	require.NoError(t, err)
	url := property(t, avatar, "url")
	assert.Equal(t, "string", url.TypeText)
	assert.Equal(t, "Image location", url.ShortDescription)

	health := app.NewHealthService(a).Check(ctx)
	assert.Equal(t, "up", health.Status)
	assert.Equal(t, "ok", health.Components["snapshot_cache"])
}

func TestSnapshotsSurviveRestart(t *testing.T) {
	dir := createProject(t)

	first := loadApp(t, dir)
	assert.Equal(t, 0, first.Index.Stats().Snapshots)
	require.NoError(t, first.Close())

	second := loadApp(t, dir)
	stats := second.Index.Stats()
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 2, stats.Snapshots, "unchanged files come from the snapshot store")

	report, err := second.Describe(context.Background(), "Point", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, names(report))
}

func names(report *app.ClassReport) []string {
	out := make([]string, 0, len(report.Properties))
	for _, p := range report.Properties {
		out = append(out, p.Name)
	}
	return out
}
