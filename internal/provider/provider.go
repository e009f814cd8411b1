package provider

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gitfetch/gitfetch/internal/stats"
)

const defaultUserAgent = "gitfetch/1.0"

var debugEnabled = os.Getenv("GITFETCH_DEBUG") != ""

// debugf traces provider traffic to stderr when GITFETCH_DEBUG is set.
func debugf(format string, args ...any) {
	if !debugEnabled {
		return
	}
	fmt.Fprintf(os.Stderr, "gitfetch: "+format+"\n", args...)
}

// Fetcher retrieves a hosting account's profile and activity statistics.
// Implementations must not mutate the data after returning it.
type Fetcher interface {
	Name() string
	FetchProfile(ctx context.Context, username string) (stats.Profile, error)
	FetchStats(ctx context.Context, username string, profile stats.Profile) (stats.Bundle, error)
}

// Options configure a fetcher. Zero values select provider defaults.
type Options struct {
	Token    string
	BaseURL  string
	RepoPath string
	Client   *http.Client
}

func (o Options) httpClient() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// New returns the fetcher registered under name. The empty name selects
// github.
func New(name string, opts Options) (Fetcher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "github":
		return newGitHub(opts), nil
	case "gitlab":
		return newGitLab(opts), nil
	case "gitea", "forgejo":
		return newGitea(opts), nil
	case "codeberg":
		if opts.BaseURL == "" {
			opts.BaseURL = "https://codeberg.org"
		}
		return newGitea(opts), nil
	case "sourcehut", "srht":
		return newSourcehut(opts), nil
	case "local", "git":
		return newLocal(opts), nil
	default:
		return nil, goerr.New("unknown provider "+name,
			goerr.T(ErrTagConfig),
			goerr.V("hint", "Supported providers: github, gitlab, gitea, sourcehut, local"))
	}
}

// collectLanguages turns the primary language of each repository into
// count-based percentages. Spellings of the same language are merged and
// the most frequent casing wins; entries keep first-seen order.
func collectLanguages(names []string) []stats.Language {
	type langCount struct {
		casings map[string]int
		total   int
	}

	counts := make(map[string]*langCount)
	var order []string
	for _, name := range names {
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		lc, ok := counts[key]
		if !ok {
			lc = &langCount{casings: make(map[string]int)}
			counts[key] = lc
			order = append(order, key)
		}
		lc.casings[name]++
		lc.total++
	}

	var total int
	for _, lc := range counts {
		total += lc.total
	}
	if total == 0 {
		return nil
	}

	langs := make([]stats.Language, 0, len(order))
	for _, key := range order {
		lc := counts[key]
		langs = append(langs, stats.Language{
			Name:       canonicalCasing(lc.casings),
			Percentage: float64(lc.total) / float64(total) * 100,
		})
	}
	return langs
}

func canonicalCasing(casings map[string]int) string {
	var name string
	var best int
	for casing, n := range casings {
		if n > best || (n == best && (name == "" || casing < name)) {
			name, best = casing, n
		}
	}
	return name
}

// weightedLanguages converts summed byte weights into percentages sorted
// by share, largest first.
func weightedLanguages(weights map[string]float64) []stats.Language {
	if len(weights) == 0 {
		return nil
	}

	var total float64
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return nil
	}

	langs := make([]stats.Language, 0, len(weights))
	for name, w := range weights {
		langs = append(langs, stats.Language{
			Name:       name,
			Percentage: w / total * 100,
		})
	}
	sort.Slice(langs, func(i, j int) bool {
		if langs[i].Percentage != langs[j].Percentage {
			return langs[i].Percentage > langs[j].Percentage
		}
		return langs[i].Name < langs[j].Name
	})
	return langs
}
