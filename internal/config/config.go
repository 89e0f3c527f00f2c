// Package config loads the twig configuration file.
//
// Configuration lives at ~/.config/twig/config.toml. All fields are
// optional; missing values fall back to the defaults in [Default].
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// ListConfig holds defaults for the list command.
type ListConfig struct {
	// Jobs caps how many background tasks run concurrently.
	Jobs int `toml:"jobs"`
	// TaskTimeout bounds a single background task ("5s", "1m", ...).
	TaskTimeout duration `toml:"task_timeout"`
	// IncludePrunable shows worktrees whose directory is gone.
	IncludePrunable bool `toml:"include_prunable"`
	// URLTemplate adds an extra column expanded per branch,
	// e.g. "http://localhost:{port}" or "https://{branch}.dev.example.com".
	URLTemplate string `toml:"url_template"`
}

// Config holds the twig configuration.
type Config struct {
	// WorktreeDir is where new worktrees are created.
	WorktreeDir string `toml:"worktree_dir"`
	// WorktreeFormat names worktree folders, default "{repo}-{branch}".
	WorktreeFormat string `toml:"worktree_format"`
	// Hosts maps git hosts to a forge kind ("github" or "gitlab")
	// for self-hosted instances.
	Hosts map[string]string `toml:"hosts"`
	List  ListConfig        `toml:"list"`
}

// DefaultWorktreeFormat is the default format for worktree folder names.
const DefaultWorktreeFormat = "{repo}-{branch}"

// Default returns the default configuration.
func Default() Config {
	return Config{
		WorktreeFormat: DefaultWorktreeFormat,
		List: ListConfig{
			Jobs:        8,
			TaskTimeout: duration(10 * time.Second),
		},
	}
}

// duration wraps time.Duration with TOML string decoding ("5s", "1m").
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration.
func (d duration) Duration() time.Duration {
	return time.Duration(d)
}

// TaskTimeout returns the configured per-task timeout.
func (c *Config) TaskTimeout() time.Duration {
	return c.List.TaskTimeout.Duration()
}

// configPath returns the path to the config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "twig", "config.toml"), nil
}

// Load reads the config file, falling back to defaults when it is absent.
func Load() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Default(), fmt.Errorf("resolve config path: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from an explicit path. A missing file is not an
// error; a malformed file is.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Default(), fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.List.Jobs < 0 {
		return fmt.Errorf("list.jobs must be positive, got %d", c.List.Jobs)
	}
	if c.List.Jobs == 0 {
		c.List.Jobs = Default().List.Jobs
	}
	if c.List.TaskTimeout <= 0 {
		c.List.TaskTimeout = Default().List.TaskTimeout
	}
	if c.WorktreeFormat == "" {
		c.WorktreeFormat = DefaultWorktreeFormat
	}
	if err := ValidatePath(c.WorktreeDir, "worktree_dir"); err != nil {
		return err
	}
	for host, forge := range c.Hosts {
		if forge != "github" && forge != "gitlab" {
			return fmt.Errorf("hosts.%q must be \"github\" or \"gitlab\", got %q", host, forge)
		}
	}
	return nil
}

// ValidatePath checks that the path is absolute or starts with ~.
// Returns an error if the path is relative (like "." or "..").
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil // not configured
	}
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
