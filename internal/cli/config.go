package cli

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/emberwell/migrate/internal/entity"
	"github.com/emberwell/migrate/internal/ingest"
	"github.com/emberwell/migrate/internal/target"
)

//go:embed schema.cue
var configSchema string

// Error codes for configuration problems.
const (
	ErrCodeConfigNotFound = "config_not_found"
	ErrCodeConfigInvalid  = "config_invalid"
)

// ConfigError reports a run configuration that could not be loaded or
// does not satisfy the schema.
type ConfigError struct {
	Code    string
	Path    string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Config is the run configuration shared by every command. Exactly one
// source mechanism (dir or url) and one target strategy (database or
// endpoint) must be set.
type Config struct {
	Source struct {
		Dir string `yaml:"dir"`
		URL string `yaml:"url"`
	} `yaml:"source"`
	Target struct {
		Database string `yaml:"database"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"target"`
	Workers   int               `yaml:"workers"`
	Timeout   string            `yaml:"timeout"`
	MaxPages  int               `yaml:"max_pages"`
	Documents map[string]string `yaml:"documents"`
}

// LoadConfig reads a YAML run configuration, checks it against the
// embedded CUE schema, and decodes it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Code: ErrCodeConfigNotFound, Path: path, Message: "reading config", Err: err}
	}

	// Schema check runs on the generic document so unknown keys and
	// wrong types are caught before decoding into the struct.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Code: ErrCodeConfigInvalid, Path: path, Message: "parsing YAML", Err: err}
	}
	cctx := cuecontext.New()
	schema := cctx.CompileString(configSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, &ConfigError{Code: ErrCodeConfigInvalid, Path: path, Message: "compiling schema", Err: err}
	}
	unified := schema.Unify(cctx.Encode(raw))
	if err := unified.Validate(); err != nil {
		return nil, &ConfigError{Code: ErrCodeConfigInvalid, Path: path, Message: "schema violation", Err: err}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Code: ErrCodeConfigInvalid, Path: path, Message: "decoding config", Err: err}
	}
	if err := cfg.check(); err != nil {
		return nil, &ConfigError{Code: ErrCodeConfigInvalid, Path: path, Message: err.Error()}
	}
	return &cfg, nil
}

func (c *Config) check() error {
	if (c.Source.Dir == "") == (c.Source.URL == "") {
		return fmt.Errorf("exactly one of source.dir and source.url must be set")
	}
	if (c.Target.Database == "") == (c.Target.Endpoint == "") {
		return fmt.Errorf("exactly one of target.database and target.endpoint must be set")
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("timeout: %v", err)
		}
	}
	for name := range c.Documents {
		if _, err := entity.ParseType(name); err != nil {
			return fmt.Errorf("documents: %v", err)
		}
	}
	return nil
}

// NewSource builds the source mechanism the config selects.
func (c *Config) NewSource() ingest.Source {
	if c.Source.URL != "" {
		return ingest.HTTPSource{BaseURL: c.Source.URL}
	}
	return ingest.DirSource{Dir: c.Source.Dir}
}

// NewStore builds the target client strategy the config selects: a local
// SQLite store or the remote HTTP store API.
func (c *Config) NewStore() (target.Client, error) {
	if c.Target.Endpoint != "" {
		return target.NewRemoteClient(c.Target.Endpoint), nil
	}
	return target.OpenSQLite(c.Target.Database)
}

// DocumentOverrides converts the config's documents map onto entity types.
// check has already rejected unknown keys.
func (c *Config) DocumentOverrides() map[entity.Type]string {
	if len(c.Documents) == 0 {
		return nil
	}
	docs := make(map[entity.Type]string, len(c.Documents))
	for name, file := range c.Documents {
		typ, err := entity.ParseType(name)
		if err != nil {
			continue
		}
		docs[typ] = file
	}
	return docs
}

// RunTimeout returns the configured per-run timeout, zero when unset.
func (c *Config) RunTimeout() time.Duration {
	if c.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}
