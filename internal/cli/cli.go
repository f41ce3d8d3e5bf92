package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/powerset/pkg/automaton"
	"github.com/matzehuels/powerset/pkg/cache"
	"github.com/matzehuels/powerset/pkg/config"
	pkgio "github.com/matzehuels/powerset/pkg/io"
	"github.com/matzehuels/powerset/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config
}

// New creates a new CLI instance with a default logger and default config.
// The config file is loaded when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cache, c.Config.Keyer(), c.Logger)
	runner.TTL = c.Config.Cache.TTL.Duration
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return c.Config.OpenCache(ctx)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory: the configured one, or
// $XDG_CACHE_HOME/powerset (~/.cache/powerset/).
func (c *CLI) cacheDir() (string, error) {
	return c.Config.CacheDir()
}

// inputName returns a display name for an input argument.
func inputName(input string) string {
	if input == "-" {
		return "stdin"
	}
	return input
}

// readDef loads a definition from the file input, or from r for "-".
// An empty format follows the file extension (JSON for stdin).
func readDef(r io.Reader, input, format string) (automaton.Def, error) {
	if input != "-" && format == "" {
		return pkgio.ImportDef(input)
	}

	f := pkgio.JSON
	if format != "" {
		var err error
		if f, err = pkgio.ParseFormat(format); err != nil {
			return automaton.Def{}, err
		}
	}
	if input == "-" {
		return pkgio.ReadDef(r, f)
	}

	file, err := os.Open(input)
	if err != nil {
		return automaton.Def{}, fmt.Errorf("open %s: %w", input, err)
	}
	defer file.Close()
	return pkgio.ReadDef(file, f)
}
