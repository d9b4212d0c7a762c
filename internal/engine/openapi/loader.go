package openapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"propinfo/internal/core/errors"
	"propinfo/internal/shared/observability"
	"propinfo/internal/shared/util"

	"github.com/getkin/kin-openapi/openapi3"
)

const maxSpecSizeBytes = 8 << 20 // 8 MiB

// Loader reads OpenAPI documents from files or http(s) URLs. Remote fetches
// are rate limited per host.
type Loader struct {
	client   *http.Client
	limiters *util.LimiterRegistry
}

type LoaderOptions struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

func NewLoader(opts LoaderOptions) *Loader {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &Loader{
		client:   &http.Client{Timeout: opts.Timeout},
		limiters: util.NewLimiterRegistry(opts.RequestsPerSecond, opts.Burst, 5*time.Minute),
	}
}

// Close releases the per-host limiters.
func (l *Loader) Close() {
	l.limiters.Close()
}

func (l *Loader) Load(ctx context.Context, path string) (*openapi3.T, error) {
	source := strings.TrimSpace(path)
	if source == "" {
		return nil, errors.New(errors.CodeValidationError, "openapi source is required")
	}

	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	loader.Context = ctx

	var (
		doc *openapi3.T
		err error
	)
	if isHTTPSource(source) {
		doc, err = l.loadFromURL(ctx, loader, source)
	} else {
		if _, statErr := os.Stat(source); statErr != nil {
			return nil, errors.AddContext(errors.Wrap(statErr, errors.CodeNotFound, "openapi spec not found"), errors.CtxSource, source)
		}
		doc, err = loader.LoadFromFile(source)
	}
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "load openapi spec"), errors.CtxSource, source)
	}
	if doc == nil {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "openapi spec resolved to nil document"), errors.CtxSource, source)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "validate openapi spec"), errors.CtxSource, source)
	}
	return doc, nil
}

func isHTTPSource(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func (l *Loader) loadFromURL(ctx context.Context, loader *openapi3.Loader, source string) (*openapi3.T, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, err
	}
	throttled, err := l.limiters.Get(u.Host).Acquire(ctx)
	if throttled {
		observability.SpecFetchesThrottledTotal.Inc()
		slog.Debug("openapi fetch rate limited", "host", u.Host)
	}
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSpecSizeBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxSpecSizeBytes {
		return nil, fmt.Errorf("spec exceeds %d bytes", maxSpecSizeBytes)
	}
	return loader.LoadFromDataWithPath(data, u)
}
