package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gitfetch/gitfetch/internal/provider"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Provider != "github" {
		t.Errorf("Provider = %q; want github", cfg.Provider)
	}
	if cfg.CacheExpiryMinutes != 15 {
		t.Errorf("CacheExpiryMinutes = %d; want 15", cfg.CacheExpiryMinutes)
	}
	if !cfg.ShowGrid || !cfg.ShowLanguages || !cfg.ShowAchievements ||
		!cfg.ShowIssues || !cfg.ShowPullRequests || !cfg.ShowAccount {
		t.Errorf("sections should default on: %+v", cfg)
	}
	if cfg.ShowDate || cfg.GraphOnly {
		t.Errorf("ShowDate/GraphOnly should default off: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load(missing) = %+v; want defaults", cfg)
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `username: octocat
provider: gitlab
cache_expiry_minutes: 60
show_grid: false
box_glyph: "●"
colors:
  header: "#ff0000"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Username != "octocat" {
		t.Errorf("Username = %q; want octocat", cfg.Username)
	}
	if cfg.Provider != "gitlab" {
		t.Errorf("Provider = %q; want gitlab", cfg.Provider)
	}
	if cfg.CacheExpiryMinutes != 60 {
		t.Errorf("CacheExpiryMinutes = %d; want 60", cfg.CacheExpiryMinutes)
	}
	if cfg.ShowGrid {
		t.Error("ShowGrid = true; want false from file")
	}
	if !cfg.ShowLanguages {
		t.Error("ShowLanguages = false; want the untouched default")
	}
	if cfg.BoxGlyph != "●" {
		t.Errorf("BoxGlyph = %q; want ●", cfg.BoxGlyph)
	}
	if cfg.Colors["header"] != "#ff0000" {
		t.Errorf("Colors[header] = %q; want #ff0000", cfg.Colors["header"])
	}
}

func TestLoadParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("username: [unclosed"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load error = nil; want a config error")
	}
	if got := provider.Kind(err); got != "config" {
		t.Errorf("Kind(err) = %q; want config", got)
	}
	if got := provider.Hint(err); got != "Check your configuration at "+path {
		t.Errorf("Hint(err) = %q; want a hint naming %s", got, path)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")

	cfg := Default()
	cfg.Username = "octocat"
	cfg.Provider = "gitea"
	cfg.ProviderURL = "https://forge.example"
	cfg.Colors = map[string]string{"level4": "#216e39"}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "# gitfetch configuration") {
		t.Errorf("saved file missing header comment: %q", string(data[:40]))
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Username != "octocat" || loaded.Provider != "gitea" ||
		loaded.ProviderURL != "https://forge.example" {
		t.Errorf("Load after Save = %+v; want the saved values", loaded)
	}
	if loaded.Colors["level4"] != "#216e39" {
		t.Errorf("Colors[level4] = %q; want #216e39", loaded.Colors["level4"])
	}
}

func TestCacheTTL(t *testing.T) {
	tests := []struct {
		minutes int
		want    time.Duration
	}{
		{0, 15 * time.Minute},
		{-5, 15 * time.Minute},
		{45, 45 * time.Minute},
	}
	for _, tt := range tests {
		cfg := Config{CacheExpiryMinutes: tt.minutes}
		if got := cfg.CacheTTL(); got != tt.want {
			t.Errorf("CacheTTL(%d) = %v; want %v", tt.minutes, got, tt.want)
		}
	}
}

func TestDisplayMapsOptions(t *testing.T) {
	cfg := Default()
	cfg.GraphOnly = true
	cfg.ShowLanguages = false
	cfg.BoxGlyph = "●"
	cfg.Width = 120
	cfg.Colors = map[string]string{"header": "#ff0000"}

	opts := cfg.Display()

	if !opts.GraphOnly {
		t.Error("GraphOnly = false; want true")
	}
	if opts.ShowLanguages {
		t.Error("ShowLanguages = true; want false")
	}
	if opts.BoxGlyph != "●" {
		t.Errorf("BoxGlyph = %q; want ●", opts.BoxGlyph)
	}
	if opts.Width != 120 {
		t.Errorf("Width = %d; want 120", opts.Width)
	}
	if got := opts.Theme["header"]; got != "\x1b[38;2;255;0;0m" {
		t.Errorf("Theme[header] = %q; want the truecolor escape", got)
	}
	if got := opts.Theme["level2"]; got == "" {
		t.Error("Theme[level2] = \"\"; want defaults preserved under overrides")
	}
}

func TestDisplayKeepsDetectedWidthWhenUnset(t *testing.T) {
	opts := Default().Display()
	if opts.Width != 80 {
		t.Errorf("Width = %d; want the render default when config leaves it unset", opts.Width)
	}
}
