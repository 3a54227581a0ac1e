package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kaptinlin/jsonrepair"
	"github.com/pelletier/go-toml/v2"

	"github.com/leofalp/ratescan/core/extract"
	"github.com/leofalp/ratescan/core/scan"
	"github.com/leofalp/ratescan/providers/export"
)

// Environment variable names.
const (
	EnvConfig    = "RATESCAN_CONFIG"
	EnvOutputDir = "RATESCAN_OUTPUT_DIR"
)

// Defaults.
const (
	DefaultBaseName = "aave_all_protocols"
	DefaultDelay    = 2 * time.Second
	DefaultTimeout  = 10 * time.Second
	DefaultRetries  = 2
	aavescanBase    = "https://aavescan.com/"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported config file format")

// Config holds everything a scan needs.
type Config struct {
	Sources     []scan.Source      `json:"sources" yaml:"sources" toml:"sources"`
	Delay       Duration           `json:"delay" yaml:"delay" toml:"delay"`
	Timeout     Duration           `json:"timeout" yaml:"timeout" toml:"timeout"`
	Retries     int                `json:"retries" yaml:"retries" toml:"retries"`
	UserAgent   string             `json:"user_agent,omitempty" yaml:"user_agent,omitempty" toml:"user_agent,omitempty"`
	OutputDir   string             `json:"output_dir" yaml:"output_dir" toml:"output_dir"`
	BaseName    string             `json:"base_name" yaml:"base_name" toml:"base_name"`
	Formats     []string           `json:"formats" yaml:"formats" toml:"formats"`
	SnapshotDir string             `json:"snapshot_dir,omitempty" yaml:"snapshot_dir,omitempty" toml:"snapshot_dir,omitempty"`
	Heuristics  extract.Heuristics `json:"heuristics" yaml:"heuristics" toml:"heuristics"`
}

// DefaultSources returns the stock aavescan pages.
func DefaultSources() []scan.Source {
	sources := []scan.Source{{Label: "mainnet", URL: aavescanBase}}
	for _, label := range []string{"base-v3", "polygon-v3", "optimism-v3", "arbitrum-v3", "sonic-v3"} {
		sources = append(sources, scan.Source{Label: label, URL: aavescanBase + label})
	}
	return sources
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sources:    DefaultSources(),
		Delay:      Duration(DefaultDelay),
		Timeout:    Duration(DefaultTimeout),
		Retries:    DefaultRetries,
		OutputDir:  ".",
		BaseName:   DefaultBaseName,
		Formats:    []string{string(export.FormatJSON), string(export.FormatCSV)},
		Heuristics: extract.DefaultHeuristics(),
	}
}

// Load reads path over the defaults and validates the result. The format is
// chosen by extension: .yaml/.yml, .toml or .json.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	// Lists from the file replace the defaults rather than extend them.
	cfg.Sources, cfg.Formats = nil, nil
	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Sources == nil {
		cfg.Sources = DefaultSources()
	}
	if cfg.Formats == nil {
		cfg.Formats = Default().Formats
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads path, or the file named by RATESCAN_CONFIG when path is empty,
// or the defaults when neither is set. Environment overrides are applied last.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() {
	if dir := os.Getenv(EnvOutputDir); dir != "" {
		c.OutputDir = dir
	}
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		return toml.Unmarshal(data, cfg)
	case ".json":
		return decodeJSON(data, cfg)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// decodeJSON retries with the repaired document when strict parsing fails.
func decodeJSON(data []byte, cfg *Config) error {
	err := json.Unmarshal(data, cfg)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return err
	}

	repaired, repairErr := jsonrepair.JSONRepair(string(data))
	if repairErr != nil {
		return fmt.Errorf("%w (repair failed: %v)", err, repairErr)
	}
	return json.Unmarshal([]byte(repaired), cfg)
}

// Validate reports the first problem found.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return errors.New("no sources configured")
	}
	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if strings.TrimSpace(s.Label) == "" {
			return fmt.Errorf("source %d: label cannot be empty", i)
		}
		if seen[s.Label] {
			return fmt.Errorf("source %d: duplicate label %q", i, s.Label)
		}
		seen[s.Label] = true

		u, err := url.Parse(s.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("source %q: invalid URL %q", s.Label, s.URL)
		}
	}

	if c.Delay < 0 {
		return errors.New("delay cannot be negative")
	}
	if c.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}
	if c.Retries < 0 {
		return errors.New("retries cannot be negative")
	}
	if strings.TrimSpace(c.BaseName) == "" {
		return errors.New("base_name cannot be empty")
	}
	if _, err := c.ExportFormats(); err != nil {
		return err
	}
	return nil
}

// ExportFormats parses Formats. An empty list means JSON only.
func (c *Config) ExportFormats() ([]export.Format, error) {
	if len(c.Formats) == 0 {
		return []export.Format{export.FormatJSON}, nil
	}
	out := make([]export.Format, 0, len(c.Formats))
	seen := make(map[export.Format]bool)
	for _, s := range c.Formats {
		f, err := export.ParseFormat(s)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}
