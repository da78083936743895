package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/querystate/internal/errors"
	"github.com/vango-dev/querystate/pkg/location"
	"github.com/vango-dev/querystate/pkg/schema"
	"github.com/vango-dev/querystate/pkg/selector"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "querystate.json"

	// DefaultAddr is the default listen address for serve.
	DefaultAddr = ":8080"

	// DefaultPath is the default WebSocket history endpoint.
	DefaultPath = "/history"

	// EnvAddr overrides Server.Addr.
	EnvAddr = "QUERYSTATE_ADDR"

	// EnvPath overrides Server.Path.
	EnvPath = "QUERYSTATE_PATH"
)

// yamlFileNames are tried, in order, after ConfigFileName.
var yamlFileNames = []string{"querystate.yaml", "querystate.yml"}

// Config represents the complete querystate configuration.
type Config struct {
	// Schema maps field names to codec kinds ("identity", "boolean",
	// "string", "number").
	Schema map[string]string `json:"schema,omitempty" yaml:"schema,omitempty"`

	// Includes, when present, lists the only fields that are synchronized.
	Includes []string `json:"includes,omitempty" yaml:"includes,omitempty"`

	// Excludes lists fields that are never synchronized.
	Excludes []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`

	// InitialState is the state used before any location is read.
	InitialState map[string]any `json:"initialState,omitempty" yaml:"initialState,omitempty"`

	// InitialOptions seeds the store options.
	InitialOptions map[string]any `json:"initialOptions,omitempty" yaml:"initialOptions,omitempty"`

	// InitialLocation is used when no live history exists.
	InitialLocation LocationConfig `json:"initialLocation,omitempty" yaml:"initialLocation,omitempty"`

	// Server contains the serve command settings.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LocationConfig is a location as written in configuration files.
type LocationConfig struct {
	Pathname string `json:"pathname,omitempty" yaml:"pathname,omitempty"`
	Search   string `json:"search,omitempty" yaml:"search,omitempty"`
}

// Location converts c to a location.Location.
func (c LocationConfig) Location() location.Location {
	return location.Location{Pathname: c.Pathname, Search: c.Search}
}

// ServerConfig contains WebSocket server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// Path is the WebSocket history endpoint.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Metrics exposes Prometheus metrics at /metrics.
	Metrics bool `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		InitialLocation: LocationConfig{Pathname: "/"},
		Server: ServerConfig{
			Addr: DefaultAddr,
			Path: DefaultPath,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for querystate.json, then querystate.yaml and querystate.yml.
func Load(dir string) (*Config, error) {
	candidates := append([]string{ConfigFileName}, yamlFileNames...)
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("Q101").
		WithDetail("No querystate.json or querystate.yaml found in " + dir)
}

// LoadFile reads configuration from the specified file path. The format is
// chosen by extension: .yaml and .yml are YAML, anything else is JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("Q101").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("Q102").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("Q102").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid " + formatName(path))
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("Q102").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("Q102").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := &Config{}
	if err := copier.CopyWithOption(out, c, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched kinds, which cannot happen here.
		panic(err)
	}
	if c.InitialState != nil {
		out.InitialState = location.Options(c.InitialState).Clone()
	}
	if c.InitialOptions != nil {
		out.InitialOptions = location.Options(c.InitialOptions).Clone()
	}
	// Absence of a selector list is significant.
	out.Includes = sameNilness(c.Includes, out.Includes)
	out.Excludes = sameNilness(c.Excludes, out.Excludes)
	out.configPath = c.configPath
	return out
}

func sameNilness(src, dst []string) []string {
	switch {
	case src == nil:
		return nil
	case dst == nil:
		return []string{}
	}
	return dst
}

// ApplyEnv overrides server settings from the environment.
func (c *Config) ApplyEnv() {
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}
	if path := os.Getenv(EnvPath); path != "" {
		c.Server.Path = path
	}
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.Path == "" {
		c.Server.Path = DefaultPath
	}
	if c.InitialLocation.Pathname == "" {
		c.InitialLocation.Pathname = "/"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.BuildSchema(); err != nil {
		return err
	}
	for _, name := range append(append([]string{}, c.Includes...), c.Excludes...) {
		if strings.TrimSpace(name) == "" {
			return errors.New("Q104").
				WithDetail("includes and excludes must not contain empty field names")
		}
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return errors.New("Q104").
			WithDetail("server.path must start with '/', got " + c.Server.Path)
	}
	if p := c.InitialLocation.Pathname; p != "" && !strings.HasPrefix(p, "/") {
		return errors.New("Q104").
			WithDetail("initialLocation.pathname must start with '/', got " + p)
	}
	return nil
}

// BuildSchema converts the configured kinds into a schema.Schema.
func (c *Config) BuildSchema() (schema.Schema, error) {
	sch, err := schema.FromKinds(c.Schema)
	if err != nil {
		return nil, errors.New("Q103").Wrap(err)
	}
	return sch, nil
}

// Selector returns the configured field selector.
func (c *Config) Selector() selector.Selector {
	return selector.New(c.Includes, c.Excludes)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func formatName(path string) string {
	if isYAML(path) {
		return "YAML"
	}
	return "JSON"
}
