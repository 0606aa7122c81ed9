// Package config resolves the immutable startup configuration from flags,
// environment variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/taigrr/annotate/internal/pathfilter"
	"github.com/taigrr/annotate/internal/store"
	"github.com/taigrr/annotate/internal/types"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. ANNOTATE_PORT.
	EnvPrefix = "ANNOTATE"
	// ConfigName is the config file looked up in the project root.
	ConfigName = "annotate"

	DefaultPort          = 8888
	DefaultExtension     = "py"
	DefaultLogLevel      = "info"
	DefaultMaxNotesBytes = 32 << 20
)

// Flag names, shared with the config file and environment keys.
const (
	KeyConfig        = "config"
	KeyExtensions    = "extensions"
	KeyPort          = "port"
	KeyUIDir         = "ui-dir"
	KeyIgnore        = "ignore"
	KeyWorkers       = "workers"
	KeyNotesFile     = "notes-file"
	KeyCacheFile     = "cache-file"
	KeyMaxNotesBytes = "max-notes-bytes"
	KeyLogLevel      = "log-level"
)

// BindFlags registers the configuration flags on a flag set.
func BindFlags(flags *pflag.FlagSet) {
	flags.StringP(KeyConfig, "c", "", "path to a config file (YAML or JSON); defaults to annotate.yaml in the project root")
	flags.StringSliceP(KeyExtensions, "e", []string{DefaultExtension}, "file extensions to include, without the dot")
	flags.IntP(KeyPort, "p", DefaultPort, "port to listen on")
	flags.String(KeyUIDir, "", "directory holding index.html and static/ (default: ui next to the executable)")
	flags.StringSlice(KeyIgnore, nil, "glob patterns of root-relative paths to leave out of the snapshot")
	flags.Int(KeyWorkers, runtime.NumCPU(), "number of files read in parallel")
	flags.String(KeyNotesFile, store.DefaultNotesFile, "name of the notes file inside the project root")
	flags.String(KeyCacheFile, store.DefaultCacheFile, "name of the snapshot cache file inside the project root")
	flags.Int64(KeyMaxNotesBytes, DefaultMaxNotesBytes, "largest accepted notes body in bytes")
	flags.String(KeyLogLevel, DefaultLogLevel, "log level: debug, info, warn or error")
}

// Load resolves the configuration for the given project root. An empty root
// means the current working directory.
// Precedence: flags > env (including <root>/.env) > config file > defaults.
func Load(flags *pflag.FlagSet, root string) (types.ScanConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return types.ScanConfig{}, configError("", fmt.Errorf("bind flags: %w", err))
		}
	}

	// Defaults for callers that did not register flags.
	v.SetDefault(KeyExtensions, []string{DefaultExtension})
	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyWorkers, runtime.NumCPU())
	v.SetDefault(KeyNotesFile, store.DefaultNotesFile)
	v.SetDefault(KeyCacheFile, store.DefaultCacheFile)
	v.SetDefault(KeyMaxNotesBytes, DefaultMaxNotesBytes)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)

	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return types.ScanConfig{}, configError("", fmt.Errorf("failed to get current directory: %w", err))
		}
		root = wd
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return types.ScanConfig{}, configError(root, err)
	}

	// A .env file in the root fills in variables that are not already set.
	if err := godotenv.Load(filepath.Join(absRoot, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return types.ScanConfig{}, configError(filepath.Join(absRoot, ".env"), fmt.Errorf("read .env: %w", err))
	}

	cfgFile := v.GetString(KeyConfig)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(absRoot)
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return types.ScanConfig{}, configError(cfgFile, fmt.Errorf("read config file: %w", err))
		}
	}

	uiDir := v.GetString(KeyUIDir)
	if uiDir == "" {
		uiDir = defaultUIDir()
	}
	if absUI, err := filepath.Abs(uiDir); err == nil {
		uiDir = absUI
	}

	cfg := types.ScanConfig{
		Root:           absRoot,
		Extensions:     pathfilter.NormalizeExtensions(splitList(v.GetStringSlice(KeyExtensions))),
		Port:           v.GetInt(KeyPort),
		UIDir:          uiDir,
		Ignore:         splitList(v.GetStringSlice(KeyIgnore)),
		Workers:        v.GetInt(KeyWorkers),
		NotesFile:      v.GetString(KeyNotesFile),
		CacheFile:      v.GetString(KeyCacheFile),
		MaxNotesBytes:  v.GetInt64(KeyMaxNotesBytes),
		LogLevel:       v.GetString(KeyLogLevel),
		ConfigFileUsed: v.ConfigFileUsed(),
	}

	if err := Validate(cfg); err != nil {
		return types.ScanConfig{}, err
	}

	return cfg, nil
}

// Validate checks a configuration before the server starts.
func Validate(cfg types.ScanConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return configError("", fmt.Errorf("invalid port %d: must be between 1 and 65535", cfg.Port))
	}

	info, err := os.Stat(cfg.Root)
	if err != nil {
		return configError(cfg.Root, fmt.Errorf("project root does not exist: %w", err))
	}
	if !info.IsDir() {
		return configError(cfg.Root, errors.New("project root is not a directory"))
	}

	if cfg.Workers < 1 {
		return configError("", fmt.Errorf("invalid workers %d: must be at least 1", cfg.Workers))
	}
	if cfg.MaxNotesBytes < 1 {
		return configError("", fmt.Errorf("invalid max notes bytes %d: must be positive", cfg.MaxNotesBytes))
	}

	for _, name := range []string{cfg.NotesFile, cfg.CacheFile} {
		if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
			return configError("", fmt.Errorf("invalid artifact name %q: must be a plain file name", name))
		}
	}
	if cfg.NotesFile == cfg.CacheFile {
		return configError("", fmt.Errorf("notes file and cache file must differ, both are %q", cfg.NotesFile))
	}

	if level := strings.ToLower(strings.TrimSpace(cfg.LogLevel)); level != "" {
		if _, err := log.ParseLevel(level); err != nil {
			return configError("", fmt.Errorf("invalid log level %q", cfg.LogLevel))
		}
	}

	return nil
}

// Addr returns the listen address for the configured port.
func Addr(cfg types.ScanConfig) string {
	return fmt.Sprintf(":%d", cfg.Port)
}

// splitList flattens comma-separated entries, as environment variables
// arrive as a single string.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func defaultUIDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "ui"
	}
	return filepath.Join(filepath.Dir(exe), "ui")
}

func configError(path string, err error) error {
	return types.NewError(types.KindConfiguration, path, err)
}
