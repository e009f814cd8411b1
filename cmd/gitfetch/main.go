package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gitfetch/gitfetch/internal/cache"
	"github.com/gitfetch/gitfetch/internal/config"
	"github.com/gitfetch/gitfetch/internal/display"
	"github.com/gitfetch/gitfetch/internal/provider"
	"github.com/gitfetch/gitfetch/internal/stats"
	"github.com/gitfetch/gitfetch/internal/ui"
	"github.com/gitfetch/gitfetch/internal/updater"
	"github.com/joho/godotenv"
	"golang.org/x/term"
)

// version is set at build time via -ldflags "-X main.version=vX.X.X"
// If not set, defaults to "dev" for local development builds
var version = "dev"

// refreshWait bounds the background refresh that runs after stale cached
// data has already been rendered.
const refreshWait = 30 * time.Second

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

func main() {
	var (
		userFlag     = flag.String("user", "", "Account username (alternative to the positional argument)")
		providerFlag = flag.String("provider", "", "Hosting provider: github, gitlab, gitea, codeberg, sourcehut or local")
		urlFlag      = flag.String("url", "", "Base URL for self-hosted provider instances")
		tokenFlag    = flag.String("token", "", "API token (overrides environment and config)")
		repoFlag     = flag.String("repo", "", "Path to a local git repository (local provider)")
		configFlag   = flag.String("config", "", "Path to the configuration file")
		widthFlag    = flag.Int("width", 0, "Output width in columns (overrides detection)")
		heightFlag   = flag.Int("height", 0, "Viewport height for watch mode")
		noColor      = flag.Bool("no-color", false, "Disable colored output")
		graphOnly    = flag.Bool("graph-only", false, "Render only the contribution graph")
		noCache      = flag.Bool("no-cache", false, "Bypass the cache entirely")
		refresh      = flag.Bool("refresh", false, "Fetch fresh data and update the cache")
		clearCache   = flag.Bool("clear-cache", false, "Clear the cache and exit")
		listCached   = flag.Bool("cached", false, "List cached accounts and exit")
		watch        = flag.Bool("watch", false, "Keep running and refresh periodically")
		setup        = flag.Bool("setup", false, "Run interactive setup and save the configuration")
		showVersion  = flag.Bool("version", false, "Show version information")
		showHelp     = flag.Bool("help", false, "Show help information")
	)
	flag.Usage = printHelp
	flag.Parse()

	log.SetFlags(0)

	// Handle --version
	if *showVersion {
		fmt.Printf("gitfetch version %s\n", version)
		fmt.Println("A neofetch-style tool for git contribution statistics")
		os.Exit(0)
	}

	// Handle --help
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	// Handle --clear-cache
	if *clearCache {
		store, err := cache.Open(cache.DefaultPath())
		if err != nil {
			fail(err)
		}
		err = store.Clear(context.Background())
		store.Close()
		if err != nil {
			fail(err)
		}
		fmt.Println("Cache cleared successfully!")
		os.Exit(0)
	}

	// Handle --cached
	if *listCached {
		store, err := cache.Open(cache.DefaultPath())
		if err != nil {
			fail(err)
		}
		err = printCachedAccounts(context.Background(), store)
		store.Close()
		if err != nil {
			fail(err)
		}
		os.Exit(0)
	}

	cfgPath := *configFlag
	if cfgPath == "" {
		cfgPath = config.Path()
	}

	// Tokens may live in a .env file in the working directory or beside
	// the config file. Variables already set in the environment win.
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(filepath.Dir(cfgPath), ".env"))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fail(err)
	}

	username := strings.TrimSpace(flag.Arg(0))
	if username == "" {
		username = strings.TrimSpace(*userFlag)
	}

	_, statErr := os.Stat(cfgPath)
	firstRun := os.IsNotExist(statErr)
	if *setup || (firstRun && username == "" && interactive()) {
		cfg, err = runSetup(cfgPath, cfg)
		if err != nil {
			fail(err)
		}
	}
	if username == "" {
		username = cfg.Username
	}

	providerName := *providerFlag
	if providerName == "" {
		providerName = cfg.Provider
	}
	baseURL := *urlFlag
	if baseURL == "" {
		baseURL = cfg.ProviderURL
	}
	configuredToken := *tokenFlag
	if configuredToken == "" {
		configuredToken = cfg.Token
	}

	fetcher, err := provider.New(providerName, provider.Options{
		Token:    provider.ResolveToken(providerName, configuredToken),
		BaseURL:  baseURL,
		RepoPath: *repoFlag,
	})
	if err != nil {
		fail(err)
	}

	if username == "" && fetcher.Name() != "local" {
		fmt.Fprintln(os.Stderr, "gitfetch: username required")
		fmt.Fprintln(os.Stderr, "  Hint: Pass a username or run gitfetch --setup")
		os.Exit(1)
	}

	// Local repositories read instantly, so only remote providers cache.
	var store *cache.Cache
	if !*noCache && fetcher.Name() != "local" {
		store, err = cache.Open(cache.DefaultPath())
		if err != nil {
			log.Printf("cache unavailable: %v", err)
			store = nil
		}
	}
	defer store.Close()

	key := fetcher.Name() + "/" + username
	fetchAndStore := func(ctx context.Context) (stats.Profile, stats.Bundle, error) {
		profile, err := fetcher.FetchProfile(ctx, username)
		if err != nil {
			return stats.Profile{}, stats.Bundle{}, err
		}
		bundle, err := fetcher.FetchStats(ctx, username, profile)
		if err != nil {
			return stats.Profile{}, stats.Bundle{}, err
		}
		if err := store.Put(ctx, key, profile, bundle); err != nil {
			log.Printf("cache write failed: %v", err)
		}
		return profile, bundle, nil
	}

	ctx := context.Background()

	var (
		profile stats.Profile
		bundle  stats.Bundle
		stale   bool
	)

	entry, err := store.Get(ctx, key)
	if err != nil {
		log.Printf("cache read failed: %v", err)
	}
	switch {
	case !*refresh && entry != nil && entry.Fresh(cfg.CacheTTL()):
		profile, bundle = entry.Profile, entry.Bundle
	case !*refresh && entry != nil:
		profile, bundle = entry.Profile, entry.Bundle
		stale = true
	default:
		stop := startSpinner(fetchMessage(fetcher.Name(), username))
		profile, bundle, err = fetchAndStore(ctx)
		stop()
		if err != nil {
			fail(err)
		}
	}

	opts := cfg.Display()
	if *graphOnly {
		opts.GraphOnly = true
	}
	if *heightFlag > 0 {
		opts.Height = *heightFlag
	}
	opts.Width = resolveWidth(*widthFlag, cfg.Width)
	opts.ColorEnabled = colorEnabled(*noColor)

	if *watch {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "gitfetch: watch mode requires a terminal")
			os.Exit(1)
		}
		if err := ui.Run(profile, bundle, opts, cfg.CacheTTL(), fetchAndStore); err != nil {
			fail(err)
		}
		return
	}

	for _, line := range display.Render(profile, bundle, opts) {
		fmt.Println(line)
	}

	if stale {
		fmt.Fprintln(os.Stderr, "Refreshing data in background...")
		refreshCtx, cancel := context.WithTimeout(ctx, refreshWait)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if _, _, err := fetchAndStore(refreshCtx); err != nil {
				log.Printf("background refresh failed: %v", err)
			}
		}()
		<-done
		cancel()
	}

	markerDir := filepath.Dir(cache.DefaultPath())
	if notice := updater.New(version, markerDir).Notice(ctx); notice != "" {
		fmt.Println(ui.HelpStyle.Render(notice))
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "gitfetch: %v\n", err)
	if hint := provider.Hint(err); hint != "" {
		fmt.Fprintf(os.Stderr, "  Hint: %s\n", hint)
	}
	os.Exit(1)
}

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

/// resolveWidth picks the output width: an explicit flag wins, then the
// config file, then the terminal size, then the COLUMNS variable.
func resolveWidth(flagWidth, cfgWidth int) int {
	if flagWidth > 0 {
		return flagWidth
	}
	if cfgWidth > 0 {
		return cfgWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if n, err := strconv.Atoi(cols); err == nil && n > 0 {
			return n
		}
	}
	return 80
}

func colorEnabled(noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func fetchMessage(providerName, username string) string {
	if providerName == "local" {
		return "Reading repository history..."
	}
	return fmt.Sprintf("Fetching stats for %s...", username)
}

// startSpinner animates braille frames on stderr until the returned stop
// function is called. Outside a terminal it does nothing.
func startSpinner(message string) func() {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return func() {}
	}

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()

		frame := 0
		fmt.Fprintf(os.Stderr, "\r%c %s", spinnerFrames[frame], message)
		for {
			select {
			case <-done:
				fmt.Fprint(os.Stderr, "\r\x1b[K")
				return
			case <-ticker.C:
				frame++
				fmt.Fprintf(os.Stderr, "\r%c %s", spinnerFrames[frame%len(spinnerFrames)], message)
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}

func printCachedAccounts(ctx context.Context, store *cache.Cache) error {
	accounts, err := store.Accounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Println("No cached accounts.")
		return nil
	}
	for _, account := range accounts {
		fmt.Printf("%-32s cached %s\n", account.Key, account.CachedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runSetup(path string, cfg config.Config) (config.Config, error) {
	if !interactive() {
		return cfg, fmt.Errorf("setup requires an interactive terminal")
	}

	fmt.Println("🚀 Welcome to gitfetch! Let's set up your configuration.")
	fmt.Println()
	fmt.Println("Please enter your default username.")
	fmt.Println("(You can override it later by passing a username as an argument)")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	username, err := promptLine(reader, "Username", cfg.Username)
	if err != nil {
		return cfg, err
	}
	if username == "" {
		return cfg, fmt.Errorf("username cannot be empty")
	}

	defaultProvider := cfg.Provider
	if defaultProvider == "" {
		defaultProvider = "github"
	}
	providerName, err := promptLine(reader, "Provider (github, gitlab, gitea, codeberg, sourcehut)", defaultProvider)
	if err != nil {
		return cfg, err
	}
	if _, err := provider.New(providerName, provider.Options{}); err != nil {
		return cfg, err
	}

	cfg.Username = username
	cfg.Provider = providerName
	if err := config.Save(path, cfg); err != nil {
		return cfg, err
	}

	fmt.Println()
	fmt.Println("✅ Configuration saved! You can now use gitfetch.")
	fmt.Println()
	return cfg, nil
}

func promptLine(reader *bufio.Reader, label, fallback string) (string, error) {
	if fallback != "" {
		fmt.Printf("%s [%s]: ", label, fallback)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("setup cancelled")
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback, nil
	}
	return line, nil
}

func printHelp() {
	fmt.Println("gitfetch - a neofetch-style tool for git contribution statistics")
	fmt.Println()
	fmt.Printf("Version: %s\n", version)
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  gitfetch [OPTIONS] [username]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  --user NAME      Account username (alternative to the positional argument)")
	fmt.Println("  --provider NAME  Hosting provider: github, gitlab, gitea, codeberg, sourcehut, local")
	fmt.Println("  --url URL        Base URL for self-hosted provider instances")
	fmt.Println("  --token TOKEN    API token (overrides environment and config)")
	fmt.Println("  --repo PATH      Path to a local git repository (local provider)")
	fmt.Println("  --config PATH    Path to the configuration file")
	fmt.Println("  --width N        Output width in columns (overrides detection)")
	fmt.Println("  --height N       Viewport height for watch mode")
	fmt.Println("  --no-color       Disable colored output")
	fmt.Println("  --graph-only     Render only the contribution graph")
	fmt.Println("  --no-cache       Bypass the cache entirely")
	fmt.Println("  --refresh        Fetch fresh data and update the cache")
	fmt.Println("  --clear-cache    Clear the cache and exit")
	fmt.Println("  --cached         List cached accounts and exit")
	fmt.Println("  --watch          Keep running and refresh periodically")
	fmt.Println("  --setup          Run interactive setup and save the configuration")
	fmt.Println("  --version        Show version information")
	fmt.Println("  --help           Show this help message")
	fmt.Println()
	fmt.Println("PROVIDERS:")
	fmt.Println("  github     GitHub (default); a token unlocks the contribution calendar")
	fmt.Println("  gitlab     GitLab or a self-hosted instance via --url")
	fmt.Println("  gitea      Gitea and Forgejo; codeberg presets the Codeberg URL")
	fmt.Println("  sourcehut  sr.ht profiles")
	fmt.Println("  local      Commit history of a local repository, no network")
	fmt.Println()
	fmt.Println("ENVIRONMENT:")
	fmt.Println("  GITHUB_TOKEN / GH_TOKEN      GitHub API token")
	fmt.Println("  GITLAB_TOKEN                 GitLab API token")
	fmt.Println("  GITEA_TOKEN                  Gitea API token")
	fmt.Println("  SRHT_TOKEN                   Sourcehut API token")
	fmt.Println("  NO_COLOR                     Disable colored output")
	fmt.Println("  GITFETCH_DEBUG               Trace provider requests on stderr")
	fmt.Println()
	fmt.Println("  Tokens may also be placed in a .env file in the working")
	fmt.Println("  directory or next to the config file.")
	fmt.Println()
	fmt.Println("FILES:")
	fmt.Printf("  Config: %s\n", config.Path())
	fmt.Printf("  Cache:  %s\n", cache.DefaultPath())
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  gitfetch torvalds")
	fmt.Println("  gitfetch --provider gitlab gitlab-org")
	fmt.Println("  gitfetch --provider local --repo ~/src/linux")
	fmt.Println("  gitfetch --watch octocat")
}
