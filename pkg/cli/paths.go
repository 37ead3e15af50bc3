package cli

import (
	"os"
	"path/filepath"
)

// Paths provides access to the app's directory structure under ~/.giztoy
type Paths struct {
	// AppName is the application name
	AppName string

	// HomeDir is the user's home directory
	HomeDir string
}

// NewPaths creates a new Paths instance for the given app
func NewPaths(appName string) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{
		AppName: appName,
		HomeDir: home,
	}, nil
}

// BaseDir returns the base directory (~/.giztoy)
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// AppDir returns the app-specific directory (~/.giztoy/<app>)
func (p *Paths) AppDir() string {
	return filepath.Join(p.BaseDir(), p.AppName)
}

// ConfigFile returns the config file path (~/.giztoy/<app>/config.yaml)
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.AppDir(), DefaultConfigFile)
}

// CacheDir returns the fragment cache directory of a context
// (~/.giztoy/<app>/cache/<context>). Contexts never share a cache.
func (p *Paths) CacheDir(context string) string {
	if context == "" {
		context = "default"
	}
	return filepath.Join(p.AppDir(), "cache", context)
}

// TempDir returns the staging directory for encoded words (~/.giztoy/<app>/tmp)
func (p *Paths) TempDir() string {
	return filepath.Join(p.AppDir(), "tmp")
}

// EnsureDir creates dir and its parents if they don't exist, and returns it
func EnsureDir(dir string) (string, error) {
	return dir, os.MkdirAll(dir, 0755)
}
