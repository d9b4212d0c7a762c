package config

import (
	"time"
)

// Extractor names accepted in [chains].
const (
	ExtractorReflection = "reflection"
	ExtractorSerializer = "serializer"
	ExtractorSource     = "source"
	ExtractorOpenAPI    = "openapi"
)

// Chain names.
const (
	ChainList          = "list"
	ChainType          = "type"
	ChainDescription   = "description"
	ChainAccess        = "access"
	ChainInitializable = "initializable"
)

const DefaultFileName = "propinfo.toml"

type Config struct {
	Version       int            `toml:"version"`
	Sources       Sources        `toml:"sources"`
	OpenAPI       OpenAPI        `toml:"openapi"`
	Chains        Chains         `toml:"chains"`
	Cache         Cache          `toml:"cache"`
	Watch         Watch          `toml:"watch"`
	Observability Observability  `toml:"observability"`
	Context       map[string]any `toml:"context"` // default hints merged under -context flags
}

type Sources struct {
	Paths        []string `toml:"paths"`
	Languages    []string `toml:"languages"`
	ExcludeDirs  []string `toml:"exclude_dirs"`
	ExcludeFiles []string `toml:"exclude_files"`
	Workers      int      `toml:"workers"`
}

type OpenAPI struct {
	Specs             []string      `toml:"specs"` // files or http(s) URLs
	RequestsPerSecond float64       `toml:"requests_per_second"`
	Burst             int           `toml:"burst"`
	Timeout           time.Duration `toml:"timeout"`
}

// Chains lists extractor names per capability, highest priority first.
type Chains struct {
	List          []string `toml:"list"`
	Type          []string `toml:"type"`
	Description   []string `toml:"description"`
	Access        []string `toml:"access"`
	Initializable []string `toml:"initializable"`
}

type Cache struct {
	Enabled       *bool  `toml:"enabled"`
	Path          string `toml:"path"`
	MemoryEntries int    `toml:"memory_entries"`
}

type Watch struct {
	Enabled  bool          `toml:"enabled"`
	Debounce time.Duration `toml:"debounce"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
}

// DefaultConfig indexes the current directory with every extractor enabled.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	normalize(cfg)
	return cfg
}

// ByName returns the chain stored under name.
func (c Chains) ByName(name string) []string {
	switch name {
	case ChainList:
		return c.List
	case ChainType:
		return c.Type
	case ChainDescription:
		return c.Description
	case ChainAccess:
		return c.Access
	case ChainInitializable:
		return c.Initializable
	}
	return nil
}

// Names returns every extractor referenced by any chain, in first-seen order.
func (c Chains) Names() []string {
	seen := make(map[string]bool)
	var out []string
	for _, chain := range ChainNames() {
		for _, name := range c.ByName(chain) {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

func ChainNames() []string {
	return []string{ChainList, ChainType, ChainDescription, ChainAccess, ChainInitializable}
}

// CacheEnabled reports whether the sqlite snapshot store should be opened.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}
