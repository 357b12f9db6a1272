package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ticofookfook/argfuscator/internal/dialect"
	"github.com/ticofookfook/argfuscator/internal/profile"
	"github.com/ticofookfook/argfuscator/internal/technique"
)

// DefaultConfigFile is read when no explicit path is given. It is optional.
const DefaultConfigFile = "argfuscator.yaml"

// EnvPrefix prefixes environment overrides, e.g. ARGFUSCATOR_COUNT=5.
const EnvPrefix = "ARGFUSCATOR"

// Platform values accepted by the configuration.
const (
	PlatformAuto    = "auto"
	PlatformWindows = "windows"
	PlatformPosix   = "posix"
)

// Output formats.
const (
	OutputPlain = "plain"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// LiteralsConfig controls which tokens are kept byte-for-byte.
type LiteralsConfig struct {
	Values    []string `yaml:"values" mapstructure:"values"`
	Heuristic bool     `yaml:"heuristic" mapstructure:"heuristic"`
	MinLength int      `yaml:"min_length" mapstructure:"min_length"`
}

// Config holds all configuration settings for the obfuscator.
// Struct tags control how Viper maps config file keys and environment variables.
type Config struct {
	// General behavior
	Silent       bool `yaml:"silent" mapstructure:"silent"`                 // Suppress informational messages
	DebugMode    bool `yaml:"debug_mode" mapstructure:"debug_mode"`         // Enable verbose debug logging
	AbortOnError bool `yaml:"abort_on_error" mapstructure:"abort_on_error"` // Stop a batch on the first failing command

	// Target
	Platform        string `yaml:"platform" mapstructure:"platform"`                 // auto, windows or posix
	DefaultPlatform string `yaml:"default_platform" mapstructure:"default_platform"` // Used when auto detection is inconclusive
	Dialect         string `yaml:"dialect,omitempty" mapstructure:"dialect"`         // Empty selects the platform default

	// Generation
	Count        int      `yaml:"count" mapstructure:"count"`
	Seed         *int64   `yaml:"seed,omitempty" mapstructure:"seed"`
	MaxRetries   int      `yaml:"max_retries" mapstructure:"max_retries"`
	Techniques   []string `yaml:"techniques" mapstructure:"techniques"` // Empty means all
	OutputFormat string   `yaml:"output_format" mapstructure:"output_format"`
	Verify       bool     `yaml:"verify" mapstructure:"verify"` // Reject variants the equivalence model disagrees with

	Tables   technique.Tables `yaml:"tables" mapstructure:"tables"`
	Literals LiteralsConfig   `yaml:"literals" mapstructure:"literals"`

	// Platform detection
	WindowsPrograms []string `yaml:"windows_programs" mapstructure:"windows_programs"`
	UnixPrograms    []string `yaml:"unix_programs" mapstructure:"unix_programs"`

	// Profiles are merged over the built-in ones by executable name.
	Profiles []profile.Profile `yaml:"profiles,omitempty" mapstructure:"profiles"`
}

// Default values for the configuration. Tables and program lists are filled
// after unmarshalling so that configured lists replace rather than merge.
var defaults = map[string]interface{}{
	"silent":              false,
	"debug_mode":          false,
	"abort_on_error":      false,
	"platform":            PlatformAuto,
	"default_platform":    PlatformWindows,
	"dialect":             "",
	"count":               1,
	"max_retries":         32,
	"techniques":          []string{},
	"output_format":       OutputPlain,
	"verify":              false,
	"literals.values":     []string{},
	"literals.heuristic":  true,
	"literals.min_length": 24,
}

var defaultWindowsPrograms = []string{
	"taskkill", "reg", "powershell", "pwsh", "certutil", "bitsadmin", "cmd", "rundll32",
	"regsvr32", "mshta", "wmic", "schtasks", "sc", "net", "msiexec", "certreq", "netsh",
}

var defaultUnixPrograms = []string{
	"curl", "wget", "nc", "ncat", "netcat", "ssh", "scp", "bash", "sh", "zsh", "cat", "chmod",
	"chown", "find", "tar", "python", "python3", "perl", "base64", "openssl", "socat",
}

var (
	// Testing controls whether output is suppressed for testing purposes
	Testing bool

	// Output receives informational, debug and warning messages.
	Output io.Writer = os.Stderr

	quiet bool
	debug bool
)

// UseLogging applies the silent and debug settings of cfg to the package
// level printers.
func UseLogging(cfg *Config) {
	quiet = cfg.Silent
	debug = cfg.DebugMode
}

// PrintInfo prints informational output unless silenced.
func PrintInfo(format string, args ...interface{}) {
	if !Testing && !quiet {
		fmt.Fprintf(Output, format, args...)
	}
}

// PrintDebug prints only in debug mode.
func PrintDebug(format string, args ...interface{}) {
	if !Testing && debug {
		fmt.Fprintf(Output, "Debug: "+format, args...)
	}
}

// PrintWarning prints a "Warning:" line.
func PrintWarning(format string, args ...interface{}) {
	if !Testing {
		fmt.Fprintf(Output, "Warning: "+format, args...)
	}
}

// LoadConfig reads configuration from file and environment variables and
// returns a filled, validated Config struct. Command-line flags are applied
// by the caller.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("seed"); err != nil {
		return nil, fmt.Errorf("error binding seed environment variable: %w", err)
	}

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigFile
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
		}
		PrintDebug("loaded configuration from %s\n", configPath)
	} else if os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("specified config file not found: %s", configPath)
		}
		PrintDebug("configuration file '%s' not found, using default settings\n", DefaultConfigFile)
	} else {
		return nil, fmt.Errorf("error checking config file %s: %w", configPath, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}
	cfg.fillLists()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// fillLists extends the built-in insertion characters and program lists with
// the configured ones. Option characters and substitutions replace the
// defaults when set.
func (c *Config) fillLists() {
	c.Tables.InsertionChars = mergeLists(technique.DefaultTables().InsertionChars, c.Tables.InsertionChars)
	c.Tables = c.Tables.WithDefaults()
	c.WindowsPrograms = mergeLists(defaultWindowsPrograms, c.WindowsPrograms)
	c.UnixPrograms = mergeLists(defaultUnixPrograms, c.UnixPrograms)
}

func mergeLists(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	if c.Count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", c.Count)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	if c.Literals.MinLength < 0 {
		return fmt.Errorf("literals.min_length must not be negative, got %d", c.Literals.MinLength)
	}
	switch c.Platform {
	case PlatformAuto, PlatformWindows, PlatformPosix:
	default:
		return fmt.Errorf("invalid platform '%s' (valid: auto, windows, posix)", c.Platform)
	}
	switch c.DefaultPlatform {
	case PlatformWindows, PlatformPosix:
	default:
		return fmt.Errorf("invalid default_platform '%s' (valid: windows, posix)", c.DefaultPlatform)
	}
	switch c.OutputFormat {
	case OutputPlain, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("invalid output_format '%s' (valid: plain, json, yaml)", c.OutputFormat)
	}
	if c.Dialect != "" {
		if _, err := dialect.Lookup(c.Dialect); err != nil {
			return err
		}
	}
	for i, p := range c.Profiles {
		if len(p.Names) == 0 {
			return fmt.Errorf("profile %d has no names", i)
		}
		if p.Platform != PlatformWindows && p.Platform != PlatformPosix {
			return fmt.Errorf("profile '%s' has invalid platform '%s'", p.Names[0], p.Platform)
		}
	}
	return nil
}

// DefaultConfig returns a Config struct populated with default values.
func DefaultConfig() *Config {
	cfg := &Config{
		Platform:        PlatformAuto,
		DefaultPlatform: PlatformWindows,
		Count:           1,
		MaxRetries:      32,
		Techniques:      []string{},
		OutputFormat:    OutputPlain,
		Literals:        LiteralsConfig{Values: []string{}, Heuristic: true, MinLength: 24},
	}
	cfg.fillLists()
	return cfg
}

// SaveConfig saves the default configuration to a file.
func SaveConfig(configPath string) error {
	cfg := DefaultConfig()
	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshalling default config: %w", err)
	}
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory for config file %s: %w", configPath, err)
	}
	if err := os.WriteFile(configPath, yamlData, 0644); err != nil {
		return fmt.Errorf("error writing config file %s: %w", configPath, err)
	}
	PrintInfo("Info: Saved default configuration to %s\n", configPath)
	return nil
}
