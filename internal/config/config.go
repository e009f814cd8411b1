package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	yaml "gopkg.in/yaml.v2"

	"github.com/gitfetch/gitfetch/internal/display"
	"github.com/gitfetch/gitfetch/internal/provider"
)

const defaultCacheExpiryMinutes = 15

// Config holds the persistent options from the user's config file. Flags
// override these per run.
type Config struct {
	Username           string            `yaml:"username"`
	Provider           string            `yaml:"provider"`
	ProviderURL        string            `yaml:"provider_url"`
	Token              string            `yaml:"token"`
	CacheExpiryMinutes int               `yaml:"cache_expiry_minutes"`
	ShowDate           bool              `yaml:"show_date"`
	GraphOnly          bool              `yaml:"graph_only"`
	ShowAchievements   bool              `yaml:"show_achievements"`
	ShowLanguages      bool              `yaml:"show_languages"`
	ShowIssues         bool              `yaml:"show_issues"`
	ShowPullRequests   bool              `yaml:"show_pull_requests"`
	ShowAccount        bool              `yaml:"show_account"`
	ShowGrid           bool              `yaml:"show_grid"`
	BoxGlyph           string            `yaml:"box_glyph"`
	Width              int               `yaml:"width"`
	Height             int               `yaml:"height"`
	Colors             map[string]string `yaml:"colors"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Provider:           "github",
		CacheExpiryMinutes: defaultCacheExpiryMinutes,
		ShowAchievements:   true,
		ShowLanguages:      true,
		ShowIssues:         true,
		ShowPullRequests:   true,
		ShowAccount:        true,
		ShowGrid:           true,
	}
}

// Path returns the default config file location.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "gitfetch", "config.yml")
}

// Load reads the config file at path, layering it over defaults. A
// missing file is not an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, configErr(err, "read config file", path)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, configErr(err, "parse config file", path)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return configErr(err, "create config directory", path)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return configErr(err, "encode config", path)
	}

	header := "# gitfetch configuration\n# Delete this file to run setup again.\n\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return configErr(err, "write config file", path)
	}
	return nil
}

// CacheTTL converts the expiry setting to a duration. Unset or invalid
// values fall back to the default.
func (c Config) CacheTTL() time.Duration {
	minutes := c.CacheExpiryMinutes
	if minutes <= 0 {
		minutes = defaultCacheExpiryMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// Display maps the config onto render options. Width, height, and color
// come from the config only as far as the user pinned them; the caller
// overlays terminal detection on top.
func (c Config) Display() display.Options {
	opts := display.DefaultOptions()
	opts.ShowDate = c.ShowDate
	opts.GraphOnly = c.GraphOnly
	opts.ShowAchievements = c.ShowAchievements
	opts.ShowLanguages = c.ShowLanguages
	opts.ShowIssues = c.ShowIssues
	opts.ShowPullRequests = c.ShowPullRequests
	opts.ShowAccount = c.ShowAccount
	opts.ShowGrid = c.ShowGrid
	opts.BoxGlyph = c.BoxGlyph
	if c.Width > 0 {
		opts.Width = c.Width
	}
	if c.Height > 0 {
		opts.Height = c.Height
	}
	if len(c.Colors) > 0 {
		opts.Theme = display.FromColors(c.Colors)
	}
	return opts
}

func configErr(err error, msg, path string) error {
	return goerr.Wrap(err, msg,
		goerr.T(provider.ErrTagConfig),
		goerr.V("hint", "Check your configuration at "+path))
}
