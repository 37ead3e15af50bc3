package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/wordsplice/pkg/phoneme"
	"github.com/haivivi/wordsplice/pkg/splice"
	"github.com/haivivi/wordsplice/pkg/storage"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".giztoy"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// Config represents the main configuration structure for a CLI app
type Config struct {
	// AppName is the application name (e.g., "wordsplice")
	AppName string `yaml:"-"`

	// CurrentContext is the name of the currently active context
	CurrentContext string `yaml:"current_context,omitempty"`

	// Contexts is a map of context name to context configuration
	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	// configPath is the path to the config file
	configPath string
}

// Context describes one voice library: where its fragments live, where words
// go and how they are spliced.
type Context struct {
	// Name is the context name
	Name string `yaml:"name"`

	// ConsonantDirs are searched in order for consonant fragments. Each entry
	// is a local directory or s3://bucket/prefix.
	ConsonantDirs []string `yaml:"consonant_dirs,omitempty"`

	// VowelDir holds the vowel fragments.
	VowelDir string `yaml:"vowel_dir,omitempty"`

	// OutputDir receives generated words and the error report.
	OutputDir string `yaml:"output_dir,omitempty"`

	// S3 is used by every s3:// location of this context.
	S3 *storage.S3Config `yaml:"s3,omitempty"`

	// CacheDir holds the decoded-fragment cache. Empty means
	// ~/.giztoy/wordsplice/cache/<context>.
	CacheDir string `yaml:"cache_dir,omitempty"`

	// Workers bounds concurrent words in a batch (optional)
	Workers int `yaml:"workers,omitempty"`

	// GapMs is the silence between syllables in milliseconds. Zero uses the
	// default; -1 disables the gap.
	GapMs int `yaml:"gap_ms,omitempty"`

	// Splice overrides the overlap ratios (optional). A ratio set to 0 is
	// kept.
	Splice *splice.Ratios `yaml:"splice,omitempty"`

	// Consonants replaces the consonant set (optional)
	Consonants []string `yaml:"consonants,omitempty"`

	// VowelAliases replaces the vowel alias table (optional)
	VowelAliases map[string]string `yaml:"vowel_aliases,omitempty"`
}

// LoadConfig loads or creates configuration for the specified app
func LoadConfig(appName string) (*Config, error) {
	return LoadConfigWithPath(appName, "")
}

// LoadConfigWithPath loads configuration from a custom path
func LoadConfigWithPath(appName, customPath string) (*Config, error) {
	var configPath string

	if customPath != "" {
		configPath = customPath
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, DefaultBaseDir, appName, DefaultConfigFile)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		AppName:    appName,
		Contexts:   make(map[string]*Context),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		if ctx == nil {
			cfg.Contexts[name] = &Context{Name: name}
		}
	}

	cfg.AppName = appName
	cfg.configPath = configPath

	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory path
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// AddContext validates and adds a context, replacing any with the same name.
func (c *Config) AddContext(name string, ctx *Context) error {
	ctx.Name = name
	if err := ctx.Validate(); err != nil {
		return err
	}
	c.Contexts[name] = ctx
	return c.Save()
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext sets the current context
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns a specific context
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// GetCurrentContext returns the current context
func (c *Config) GetCurrentContext() (*Context, error) {
	if c.CurrentContext == "" {
		return nil, fmt.Errorf("no current context set")
	}
	return c.GetContext(c.CurrentContext)
}

// ResolveContext returns the context by name, or current context if name is empty
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name == "" {
		return c.GetCurrentContext()
	}
	return c.GetContext(name)
}

// ListContexts returns all context names, sorted.
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate checks that the context names every location a batch needs and
// that its ratios are usable.
func (ctx *Context) Validate() error {
	if len(ctx.ConsonantDirs) == 0 {
		return fmt.Errorf("context %q: no consonant_dirs", ctx.Name)
	}
	if slices.Contains(ctx.ConsonantDirs, "") {
		return fmt.Errorf("context %q: empty entry in consonant_dirs", ctx.Name)
	}
	if ctx.VowelDir == "" {
		return fmt.Errorf("context %q: no vowel_dir", ctx.Name)
	}
	if ctx.Workers < 0 {
		return fmt.Errorf("context %q: workers must not be negative", ctx.Name)
	}
	if ctx.GapMs < -1 {
		return fmt.Errorf("context %q: gap_ms must be -1 or more", ctx.Name)
	}
	if ctx.Splice != nil {
		if err := ctx.Splice.Policy().Validate(); err != nil {
			return fmt.Errorf("context %q: %w", ctx.Name, err)
		}
	}
	return nil
}

// Gap returns the inter-syllable silence in the form synth.Synthesizer
// expects.
func (ctx *Context) Gap() time.Duration {
	if ctx.GapMs < 0 {
		return -1
	}
	return time.Duration(ctx.GapMs) * time.Millisecond
}

// Policy returns the splice ratios with defaults filled in.
func (ctx *Context) Policy() splice.Policy {
	if ctx.Splice == nil {
		return splice.DefaultPolicy()
	}
	return ctx.Splice.Policy()
}

// Inventory returns the phoneme inventory of the library.
func (ctx *Context) Inventory() *phoneme.Inventory {
	return phoneme.NewInventory(ctx.Consonants, ctx.VowelAliases)
}

// StorageOptions returns the options for opening the context's stores.
func (ctx *Context) StorageOptions() storage.Options {
	var opts storage.Options
	if ctx.S3 != nil {
		opts.S3 = *ctx.S3
	}
	return opts
}

// Redacted returns a copy safe for display.
func (ctx *Context) Redacted() *Context {
	out := *ctx
	if ctx.S3 != nil {
		s3 := *ctx.S3
		s3.AccessKey = MaskSecret(s3.AccessKey)
		s3.SecretKey = MaskSecret(s3.SecretKey)
		out.S3 = &s3
	}
	return &out
}

// MaskSecret masks a credential for display
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
