// Package config loads and validates sitepub configuration from YAML with
// environment expansion and .env support.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// Project is the parameter-store namespace prefix
	// (keys are /{project}/s3-bucket and /{project}/cloudfront-distribution-id).
	Project  string         `yaml:"project"`
	Source   SourceConfig   `yaml:"source"`
	Renderer RendererConfig `yaml:"renderer"`
	Store    StoreConfig    `yaml:"store"`
	Params   ParamsConfig   `yaml:"params"`
	CDN      CDNConfig      `yaml:"cdn"`
	Daemon   DaemonConfig   `yaml:"daemon"`
	History  HistoryConfig  `yaml:"history"`
	Links    LinksConfig    `yaml:"links"`
	Retry    RetryConfig    `yaml:"retry"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SourceConfig locates the documentation source tree. If Repo.URL is set the
// tree is checked out from git before rendering; otherwise Dir is used as-is.
type SourceConfig struct {
	Dir  string     `yaml:"dir"`
	Repo RepoConfig `yaml:"repo,omitempty"`
}

// RepoConfig describes an optional git source for the documentation tree.
type RepoConfig struct {
	URL    string `yaml:"url,omitempty"`
	Branch string `yaml:"branch,omitempty"`
	Depth  int    `yaml:"depth,omitempty"`
	Token  string `yaml:"token,omitempty"`
}

// RendererKind selects the static-site renderer implementation.
type RendererKind string

const (
	RendererHugo     RendererKind = "hugo"
	RendererGoldmark RendererKind = "goldmark"
)

// RendererConfig configures the static-site renderer.
type RendererConfig struct {
	Kind   RendererKind `yaml:"kind,omitempty"`
	Binary string       `yaml:"binary,omitempty"` // external binary name for hugo kind
	Output string       `yaml:"output,omitempty"` // rendered tree directory
	Title  string       `yaml:"title,omitempty"`  // site title for the goldmark renderer
}

// StoreConfig configures the destination object store. The bucket identifier
// itself comes from the parameter store, not from this file.
type StoreConfig struct {
	Kind string `yaml:"kind,omitempty"` // currently "fs"
	Root string `yaml:"root,omitempty"` // base directory holding bucket directories
}

// ParamsConfig configures the external parameter store.
type ParamsConfig struct {
	Kind string `yaml:"kind,omitempty"` // "env" or "file"
	File string `yaml:"file,omitempty"` // yaml file for the file kind
}

// CDNConfig configures cache invalidation.
type CDNConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"` // invalidation control-plane URL
	Pattern  string `yaml:"pattern,omitempty"`  // purge pattern, default /*
	Domain   string `yaml:"domain,omitempty"`   // public site domain, log messages only
}

// DaemonConfig configures watch-and-publish mode.
type DaemonConfig struct {
	QuietWindow time.Duration `yaml:"quiet_window,omitempty"`
	MaxDelay    time.Duration `yaml:"max_delay,omitempty"`
	Every       time.Duration `yaml:"every,omitempty"` // scheduled publish interval, 0 disables
	NATSURL     string        `yaml:"nats_url,omitempty"`
	NATSSubject string        `yaml:"nats_subject,omitempty"`
	MetricsAddr string        `yaml:"metrics_addr,omitempty"`
}

// HistoryConfig configures the publish history store.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"` // sqlite file, empty disables history
}

// LinksConfig configures post-render link checking.
type LinksConfig struct {
	Check bool `yaml:"check,omitempty"`
	Fatal bool `yaml:"fatal,omitempty"` // treat broken internal links as fatal
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env files if present; existing environment wins.
	if err := godotenv.Load(".env", ".env.local"); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment variables from .env")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath) // #nosec G304 - operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Project == "" {
		c.Project = "hla-compass"
	}
	if c.Source.Dir == "" {
		c.Source.Dir = "./docs"
	}
	if c.Source.Repo.URL != "" && c.Source.Repo.Branch == "" {
		c.Source.Repo.Branch = "main"
	}
	if c.Renderer.Kind == "" {
		c.Renderer.Kind = RendererHugo
	}
	if c.Renderer.Binary == "" {
		c.Renderer.Binary = "hugo"
	}
	if c.Renderer.Output == "" {
		c.Renderer.Output = "./site/public"
	}
	if c.Store.Kind == "" {
		c.Store.Kind = "fs"
	}
	if c.Store.Root == "" {
		c.Store.Root = "./buckets"
	}
	if c.Params.Kind == "" {
		c.Params.Kind = "env"
	}
	if c.CDN.Pattern == "" {
		c.CDN.Pattern = "/*"
	}
	if c.Daemon.QuietWindow <= 0 {
		c.Daemon.QuietWindow = 2 * time.Second
	}
	if c.Daemon.MaxDelay <= 0 {
		c.Daemon.MaxDelay = 30 * time.Second
	}
	if c.Daemon.NATSSubject == "" {
		c.Daemon.NATSSubject = "sitepub.publish.completed"
	}
	c.Retry.applyDefaults()
}

// Validate checks invariants that would otherwise surface as confusing
// mid-pipeline failures.
func (c *Config) Validate() error {
	switch c.Renderer.Kind {
	case RendererHugo, RendererGoldmark:
	default:
		return fmt.Errorf("unknown renderer kind: %q", c.Renderer.Kind)
	}
	if c.Store.Kind != "fs" {
		return fmt.Errorf("unknown store kind: %q", c.Store.Kind)
	}
	switch c.Params.Kind {
	case "env":
	case "file":
		if c.Params.File == "" {
			return fmt.Errorf("params.file is required for the file parameter store")
		}
	default:
		return fmt.Errorf("unknown params kind: %q", c.Params.Kind)
	}
	return c.Retry.Validate()
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	return os.WriteFile(configPath, []byte(exampleConfig), 0o644) // #nosec G306 - config is not a secret
}

const exampleConfig = `# sitepub configuration
project: hla-compass

source:
  dir: ./docs
  # repo:
  #   url: https://example.com/org/docs.git
  #   branch: main
  #   depth: 1
  #   token: ${GIT_TOKEN}

renderer:
  kind: hugo            # or goldmark for the built-in markdown renderer
  output: ./site/public
  title: Documentation

store:
  kind: fs
  root: ./buckets

params:
  kind: env             # bucket from SITEPUB_PARAM_S3_BUCKET etc.
  # kind: file
  # file: params.yaml

cdn:
  # endpoint: https://cdn-control.example.com
  pattern: "/*"
  # domain: docs.example.com

daemon:
  quiet_window: 2s
  max_delay: 30s
  # every: 1h
  # nats_url: nats://127.0.0.1:4222
  # metrics_addr: :9090

history:
  path: ./sitepub-history.db

links:
  check: false

logging:
  level: info
  format: text
`
