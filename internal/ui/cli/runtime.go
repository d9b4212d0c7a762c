package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	coreapp "propinfo/internal/core/app"
	"propinfo/internal/core/config"
	"propinfo/internal/core/propertyinfo"
	"propinfo/internal/shared/observability"
)

func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "propinfo v%s\n", versionString)
		return 0
	}

	cleanupLogs := configureLogging(stderr, opts.ui, opts.verbose)
	defer cleanupLogs()

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to detect working directory", "error", err)
		return 1
	}

	cfg, cfgPath, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		fmt.Fprintln(stderr, errorStyle.Render(err.Error()))
		return 1
	}
	if opts.watch {
		cfg.Watch.Enabled = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Observability.OTLPEndpoint, cfg.Observability.ServiceName)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	app, err := coreapp.New(cfg, coreapp.Options{ConfigPath: cfgPath})
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	defer app.Close()

	if err := app.Load(ctx); err != nil {
		slog.Error("initial load failed", "error", err)
		return 1
	}

	if addr := strings.TrimSpace(cfg.Observability.MetricsAddr); addr != "" {
		server := NewObservabilityServer(addr, coreapp.NewHealthService(app))
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(shutdownCtx)
		}()
	}

	hints := buildHints(cfg.Context, opts)

	if cfg.Watch.Enabled {
		if err := app.StartWatcher(ctx); err != nil {
			slog.Error("failed to start watcher", "error", err)
			return 1
		}
		defer app.StopWatcher()
	}

	if opts.ui {
		if err := runUI(ctx, app, opts.args[0], hints); err != nil {
			slog.Error("failed to run UI", "error", err)
			return 1
		}
		return 0
	}

	if code := printOnce(ctx, stdout, stderr, app, opts, hints); code != 0 || !cfg.Watch.Enabled {
		return code
	}

	app.SetUpdateHandler(func(update coreapp.Update) {
		if update.Err != nil {
			fmt.Fprintln(stderr, errorStyle.Render(update.Err.Error()))
			return
		}
		fmt.Fprintln(stdout, statusStyle.Render(fmt.Sprintf("reloaded %d paths at %s", len(update.Paths), time.Now().Format("15:04:05"))))
		printOnce(ctx, stdout, stderr, app, opts, hints)
	})

	<-ctx.Done()
	return 0
}

// printOnce prints the class list, a class report or a single property
// depending on the positional arguments.
func printOnce(ctx context.Context, stdout, stderr io.Writer, app *coreapp.App, opts cliOptions, hints propertyinfo.Context) int {
	switch len(opts.args) {
	case 0:
		classes := app.Classes()
		if opts.json {
			return writeJSON(stdout, stderr, classes)
		}
		renderClasses(stdout, classes)
		return 0
	case 1:
		report, err := app.Describe(ctx, opts.args[0], hints)
		if err != nil {
			fmt.Fprintln(stderr, errorStyle.Render(err.Error()))
			return 1
		}
		if opts.json {
			return writeJSON(stdout, stderr, report)
		}
		renderReport(stdout, report)
		return 0
	default:
		prop, err := app.DescribeProperty(opts.args[0], opts.args[1], hints)
		if err != nil {
			fmt.Fprintln(stderr, errorStyle.Render(err.Error()))
			return 1
		}
		if opts.json {
			return writeJSON(stdout, stderr, prop)
		}
		renderReport(stdout, &coreapp.ClassReport{Class: opts.args[0], Properties: []coreapp.PropertyReport{prop}})
		return 0
	}
}

func writeJSON(stdout, stderr io.Writer, v any) int {
	if err := renderJSON(stdout, v); err != nil {
		fmt.Fprintln(stderr, errorStyle.Render(err.Error()))
		return 1
	}
	return 0
}

// loadConfig reads the explicit path, else the propinfo.toml of the project
// containing cwd, else the defaults. Relative paths are resolved against the
// config file's directory.
func loadConfig(path, cwd string) (*config.Config, string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		if found, ok := config.FindConfigFile(cwd); ok {
			path = found
		}
	}

	var cfg *config.Config
	base := cwd
	if path == "" {
		cfg = config.DefaultConfig()
		slog.Debug("no config file found, using defaults", "cwd", cwd)
	} else {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		cfg = loaded
		base = filepath.Dir(path)
	}

	config.ApplyEnvOverrides(cfg)
	if err := config.Check(cfg); err != nil {
		return nil, "", err
	}
	return config.ResolvePaths(cfg, base), path, nil
}

func configureLogging(stderr io.Writer, uiMode, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := stderr
	var closeFn func() = func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
				if err == nil {
					output = f
					closeFn = func() { _ = f.Close() }
				} else {
					fmt.Fprintf(stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	return filepath.Join(config.StateDir(), "propinfo.log")
}
