package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/devkit-labs/devkit/internal/branding"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys understood by the CLI. Each can also be set through the environment
// as <PREFIX>_<KEY>, e.g. DEVKIT_YES=1.
const (
	KeyYes          = "yes"
	KeyTimeout      = "timeout"
	KeyProbeTimeout = "probe_timeout"
	KeyLogLevel     = "log_level"
	KeyManifest     = "manifest"
	KeyBackend      = "backend"
	KeyOTLPEndpoint = "otlp_endpoint"
)

// Keys lists every key Set accepts.
var Keys = []string{KeyYes, KeyTimeout, KeyProbeTimeout, KeyLogLevel, KeyManifest, KeyBackend, KeyOTLPEndpoint}

var (
	// ErrUnknownKey is returned by Set for a key outside Keys.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned by Set for a value its key cannot hold.
	ErrInvalidValue = errors.New("invalid config value")
)

// Defaults applied by Load.
const (
	DefaultTimeout      = 30 * time.Minute
	DefaultProbeTimeout = 10 * time.Second
	DefaultLogLevel     = "warn"
)

// Dir returns the path to the config directory (~/.devkit/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.devkit/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	viper.SetDefault(KeyYes, false)
	viper.SetDefault(KeyTimeout, DefaultTimeout.String())
	viper.SetDefault(KeyProbeTimeout, DefaultProbeTimeout.String())
	viper.SetDefault(KeyLogLevel, DefaultLogLevel)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := check(key, value); err != nil {
		return err
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// AutoYes reports whether every confirmation prompt should be answered yes.
func AutoYes() bool {
	return viper.GetBool(KeyYes)
}

// Timeout bounds a single install or update command.
func Timeout() time.Duration {
	return durationOr(KeyTimeout, DefaultTimeout)
}

// ProbeTimeout bounds a single version probe.
func ProbeTimeout() time.Duration {
	return durationOr(KeyProbeTimeout, DefaultProbeTimeout)
}

// LogLevel returns the configured log level name.
func LogLevel() string {
	return viper.GetString(KeyLogLevel)
}

// ManifestPath returns the manifest override path, or "" for the built-in manifest.
func ManifestPath() string {
	return viper.GetString(KeyManifest)
}

// Backend returns the forced backend name, or "" to auto-detect.
func Backend() string {
	return viper.GetString(KeyBackend)
}

// OTLPEndpoint returns the trace collector endpoint, or "" when tracing is off.
func OTLPEndpoint() string {
	return viper.GetString(KeyOTLPEndpoint)
}

func check(key, value string) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
	var err error
	switch key {
	case KeyYes:
		_, err = strconv.ParseBool(value)
	case KeyTimeout, KeyProbeTimeout:
		var d time.Duration
		if d, err = time.ParseDuration(value); err == nil && d <= 0 {
			err = errors.New("must be positive")
		}
	case KeyLogLevel:
		_, err = zerolog.ParseLevel(value)
	}
	if err != nil {
		return fmt.Errorf("%w for %s: %q: %v", ErrInvalidValue, key, value, err)
	}
	return nil
}

// durationOr parses key as a duration, falling back to def when the value
// is empty, malformed, or not positive.
func durationOr(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
