package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolvePaths rewrites every relative path in cfg against base, normally
// the directory holding the config file. URLs are left untouched.
func ResolvePaths(cfg *Config, base string) *Config {
	out := *cfg
	out.Sources.Paths = make([]string, len(cfg.Sources.Paths))
	for i, p := range cfg.Sources.Paths {
		out.Sources.Paths[i] = ResolveRelative(base, p)
	}
	out.OpenAPI.Specs = make([]string, len(cfg.OpenAPI.Specs))
	for i, spec := range cfg.OpenAPI.Specs {
		if strings.Contains(spec, "://") {
			out.OpenAPI.Specs[i] = spec
			continue
		}
		out.OpenAPI.Specs[i] = ResolveRelative(base, spec)
	}
	if cfg.Cache.Path != "" {
		out.Cache.Path = ResolveRelative(base, cfg.Cache.Path)
	}
	return &out
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

// DetectProjectRoot walks up from each candidate looking for a project
// marker and falls back to the working directory.
func DetectProjectRoot(candidates []string) (string, error) {
	markers := []string{
		DefaultFileName,
		"go.mod",
		".git",
	}

	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}

		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		root := abs
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			root = filepath.Dir(abs)
		}

		for {
			for _, marker := range markers {
				if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
					return filepath.Clean(root), nil
				}
			}
			parent := filepath.Dir(root)
			if parent == root {
				break
			}
			root = parent
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Clean(cwd), nil
}

// FindConfigFile returns the propinfo.toml at the project root containing
// dir, if there is one.
func FindConfigFile(dir string) (string, bool) {
	root, err := DetectProjectRoot([]string{dir})
	if err != nil {
		return "", false
	}
	path := filepath.Join(root, DefaultFileName)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, true
	}
	return "", false
}

// StateDir returns $XDG_STATE_HOME/propinfo, falling back to
// ~/.local/state/propinfo.
func StateDir() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); dir != "" {
		return filepath.Join(dir, "propinfo")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "propinfo")
	}
	return filepath.Join(os.TempDir(), "propinfo")
}
