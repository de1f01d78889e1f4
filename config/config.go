package config

import (
	"fmt"
	"os"
	path "path/filepath"
	"strings"

	"github.com/kkyr/gitrewrite/pkgs/logger"
	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/thoas/go-funk"
)

var (
	// AppName is the name of the application, used for the env var prefix
	// and the default data directory name.
	AppName = "gitrewrite"

	// AppEnvPrefix is used as the prefix for environment variables bound
	// through viper.
	AppEnvPrefix = AppName

	// DefaultDataDir is the path under the user's home directory the
	// bbolt-backed GraphStore (SPEC_FULL.md §5) defaults into when
	// --on-disk-graph is set without an explicit --graph-db path.
	DefaultDataDir = os.ExpandEnv("$HOME/." + AppName)

	// validLogLevels mirrors logrus's own level set.
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

func init() {
	if expanded, err := homedir.Expand(path.Join("~", "."+AppName)); err == nil {
		DefaultDataDir = expanded
	}
}

// AppConfig holds the handful of ambient settings this tool needs, scoped
// down from the teacher's blockchain-node AppConfig to just what a one-shot
// history rewrite run touches.
type AppConfig struct {
	// RepoPath is the repository to rewrite (-d).
	RepoPath string

	// DestinationPath is the second repository opened for two-repository
	// mode (-o); empty means rewrite in place (SPEC_FULL.md §9 OQ4).
	DestinationPath string

	// GitBinPath holds the --git-bin value. Nothing else in the program
	// reads it; the engine never shells out to git.
	GitBinPath string

	// LogLevel is one of validLogLevels.
	LogLevel string

	// LogFormat is either "text" or "json".
	LogFormat string

	g *Globals
}

// Globals holds references the rest of the program reaches for through
// AppConfig.G(), the way the teacher's EngineConfig.G() exposes its Globals.
type Globals struct {
	Log logger.Logger
}

// G returns the global object.
func (c *AppConfig) G() *Globals {
	return c.g
}

// Configure builds an AppConfig from v's current flag/env/file bindings and
// wires up its logger, the way the teacher's config.Configure populates an
// AppConfig from viper before a command runs (cmd/root.go's
// PersistentPreRun calls config.Configure(cfg, tmconfig, &itr)).
func Configure(v *viper.Viper) *AppConfig {
	v.SetEnvPrefix(AppEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cfg := &AppConfig{
		RepoPath:        v.GetString("repo"),
		DestinationPath: v.GetString("output"),
		GitBinPath:      v.GetString("git-bin"),
		LogLevel:        normalizeLogLevel(v.GetString("log-level")),
		LogFormat:       v.GetString("log-format"),
		g:               &Globals{},
	}

	setupLogger(cfg)

	return cfg
}

func normalizeLogLevel(level string) string {
	if level == "" || !funk.ContainsString(validLogLevels, level) {
		return "info"
	}
	return level
}

func setupLogger(cfg *AppConfig) {
	cfg.g.Log = logger.NewLogrusWithFormat(cfg.LogFormat)

	switch cfg.LogLevel {
	case "debug":
		cfg.g.Log.SetToDebug()
	case "warn":
		if entry, ok := logger.Entry(cfg.g.Log); ok {
			entry.Logger.SetLevel(logrus.WarnLevel)
		}
	case "error":
		cfg.g.Log.SetToError()
	default:
		cfg.g.Log.SetToInfo()
	}
}

// EnsureDestination creates dir (and parents) for two-repository mode, the
// way the teacher's setup() pre-creates its data directories before opening
// anything inside them.
func EnsureDestination(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create destination directory %q: %w", dir, err)
	}
	return nil
}
