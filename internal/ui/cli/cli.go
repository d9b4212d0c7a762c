package cli

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"propinfo/internal/core/propertyinfo"
)

const versionString = "1.0.0"

type cliOptions struct {
	configPath     string
	hints          contextFlag
	includePrivate bool
	ui             bool
	watch          bool
	json           bool
	verbose        bool
	version        bool
	args           []string
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("propinfo", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: propinfo [flags] [<class> [property]]")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.configPath, "config", "", "Path to config file (default: propinfo.toml at the project root)")
	fs.Var(&opts.hints, "context", "Context hint passed to every extractor as key=value (repeatable)")
	fs.BoolVar(&opts.includePrivate, "include-private", false, "Include non-public properties of source classes")
	fs.BoolVar(&opts.ui, "ui", false, "Browse the class properties in a terminal UI")
	fs.BoolVar(&opts.watch, "watch", false, "Reload on source, spec and config changes")
	fs.BoolVar(&opts.json, "json", false, "Print the report as JSON")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	if len(opts.args) > 2 {
		return cliOptions{}, fmt.Errorf("expected at most two arguments (<class> [property]), got %d", len(opts.args))
	}
	if opts.ui && opts.json {
		return cliOptions{}, fmt.Errorf("-ui and -json cannot be combined")
	}
	if opts.ui && len(opts.args) == 0 {
		return cliOptions{}, fmt.Errorf("-ui requires a class argument")
	}
	return opts, nil
}

// contextFlag collects repeated -context key=value flags in order.
type contextFlag []contextHint

type contextHint struct {
	key   string
	value any
}

func (f *contextFlag) String() string {
	if f == nil {
		return ""
	}
	parts := make([]string, 0, len(*f))
	for _, h := range *f {
		parts = append(parts, fmt.Sprintf("%s=%v", h.key, h.value))
	}
	return strings.Join(parts, ",")
}

func (f *contextFlag) Set(raw string) error {
	hint, err := parseHint(raw)
	if err != nil {
		return err
	}
	*f = append(*f, hint)
	return nil
}

// parseHint converts key=value into a typed hint: booleans become bool,
// serializer groups become a string list, anything else stays a string.
func parseHint(raw string) (contextHint, error) {
	key, value, found := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return contextHint{}, fmt.Errorf("context hint %q must be formatted as key=value", raw)
	}
	value = strings.TrimSpace(value)

	if key == propertyinfo.CtxSerializerGroups {
		groups := make([]string, 0)
		for _, g := range strings.Split(value, ",") {
			if g = strings.TrimSpace(g); g != "" {
				groups = append(groups, g)
			}
		}
		return contextHint{key: key, value: groups}, nil
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return contextHint{key: key, value: b}, nil
	}
	return contextHint{key: key, value: value}, nil
}

// buildHints layers the config defaults, then -context flags, then
// -include-private.
func buildHints(defaults map[string]any, opts cliOptions) propertyinfo.Context {
	hints := make(propertyinfo.Context, len(defaults)+len(opts.hints)+1)
	for k, v := range defaults {
		hints[k] = v
	}
	for _, h := range opts.hints {
		hints[h.key] = h.value
	}
	if opts.includePrivate {
		hints[propertyinfo.CtxIncludePrivate] = true
	}
	return hints
}
