// Package config loads the stubgen configuration from a YAML file and
// STUBGEN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/sghaida/stubgen/stub"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "stubgen.yaml"

// Sentinel validation errors.
var (
	ErrEmptyPackage      = errors.New("output package must not be empty")
	ErrInvalidNameFormat = errors.New("name format must contain exactly one %s verb")
	ErrNoPatterns        = errors.New("at least one package pattern is required")
	ErrInvalidPrefetch   = errors.New("prefetch must not be negative")
	ErrInvalidLogLevel   = errors.New("invalid log level")
	ErrInvalidLogFormat  = errors.New("log format must be console or json")
)

// Default configuration values.
const (
	DefaultOutputFile    = "stubs.gen.go"
	DefaultOutputPackage = "stubs"
	DefaultNameFormat    = "Stub%s"
	DefaultDir           = "."
	DefaultPattern       = "./..."
	DefaultPrefetch      = 4
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
)

// Config holds all configuration for a stubgen run.
type Config struct {
	Stubs    StubsConfig    `mapstructure:"stubs" yaml:"stubs"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// StubsConfig decides which contracts get a stub.
type StubsConfig struct {
	IgnoredContracts []string `mapstructure:"ignored_contracts" yaml:"ignored_contracts"`
	StubInternal     bool     `mapstructure:"stub_internal" yaml:"stub_internal"`
}

// OutputConfig describes the generated file.
type OutputConfig struct {
	File       string `mapstructure:"file" yaml:"file"`
	Package    string `mapstructure:"package" yaml:"package"`
	ImportPath string `mapstructure:"import_path" yaml:"import_path"`
	NameFormat string `mapstructure:"name_format" yaml:"name_format"`
}

// AnalysisConfig describes which packages are loaded and how.
type AnalysisConfig struct {
	Dir                 string   `mapstructure:"dir" yaml:"dir"`
	Patterns            []string `mapstructure:"patterns" yaml:"patterns"`
	Tests               bool     `mapstructure:"tests" yaml:"tests"`
	Prefetch            int      `mapstructure:"prefetch" yaml:"prefetch"`
	SkipBrokenDocuments bool     `mapstructure:"skip_broken_documents" yaml:"skip_broken_documents"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Stubs: StubsConfig{IgnoredContracts: []string{}},
		Output: OutputConfig{
			File:       DefaultOutputFile,
			Package:    DefaultOutputPackage,
			NameFormat: DefaultNameFormat,
		},
		Analysis: AnalysisConfig{
			Dir:      DefaultDir,
			Patterns: []string{DefaultPattern},
			Prefetch: DefaultPrefetch,
		},
		Logging: LoggingConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// Load reads configuration from path and the environment.
//
// With an empty path stubgen.yaml is looked up in the working directory and a
// missing file is not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("STUBGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("stubs.ignored_contracts", d.Stubs.IgnoredContracts)
	v.SetDefault("stubs.stub_internal", d.Stubs.StubInternal)

	v.SetDefault("output.file", d.Output.File)
	v.SetDefault("output.package", d.Output.Package)
	v.SetDefault("output.import_path", d.Output.ImportPath)
	v.SetDefault("output.name_format", d.Output.NameFormat)

	v.SetDefault("analysis.dir", d.Analysis.Dir)
	v.SetDefault("analysis.patterns", d.Analysis.Patterns)
	v.SetDefault("analysis.tests", d.Analysis.Tests)
	v.SetDefault("analysis.prefetch", d.Analysis.Prefetch)
	v.SetDefault("analysis.skip_broken_documents", d.Analysis.SkipBrokenDocuments)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output.Package) == "" {
		return ErrEmptyPackage
	}
	if strings.Count(c.Output.NameFormat, "%") != 1 || strings.Count(c.Output.NameFormat, "%s") != 1 {
		return fmt.Errorf("%w: %q", ErrInvalidNameFormat, c.Output.NameFormat)
	}
	if len(c.Analysis.Patterns) == 0 {
		return ErrNoPatterns
	}
	if c.Analysis.Prefetch < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPrefetch, c.Analysis.Prefetch)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}
	return nil
}

// Inclusion returns the inclusion policy of the engine.
func (c *Config) Inclusion() stub.Config {
	return stub.Config{
		IgnoredContracts: c.Stubs.IgnoredContracts,
		StubInternal:     c.Stubs.StubInternal,
	}
}

// WriteDefault writes the default configuration as YAML.
func WriteDefault(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Default()); err != nil {
		return fmt.Errorf("config: encode defaults: %w", err)
	}
	return enc.Close()
}
