package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gitfetch/gitfetch/internal/stats"
)

const (
	giteaBaseURL = "https://gitea.com"

	giteaPageLimit = 50
)

// Gitea also serves Forgejo and Codeberg, which keep the same API surface.
type Gitea struct {
	client  *http.Client
	baseURL string
	token   string
}

func newGitea(opts Options) *Gitea {
	base := opts.BaseURL
	if base == "" {
		base = giteaBaseURL
	}
	return &Gitea{
		client:  opts.httpClient(),
		baseURL: strings.TrimRight(base, "/"),
		token:   opts.Token,
	}
}

func (g *Gitea) Name() string {
	return "gitea"
}

func (g *Gitea) api() string {
	return g.baseURL + "/api/v1"
}

type giteaUser struct {
	Login       string `json:"login"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

type giteaRepo struct {
	Name       string `json:"name"`
	FullName   string `json:"full_name"`
	StarsCount int    `json:"stars_count"`
	ForksCount int    `json:"forks_count"`
	Language   string `json:"language"`
}

func (g *Gitea) FetchProfile(ctx context.Context, username string) (stats.Profile, error) {
	endpoint := fmt.Sprintf("%s/users/%s", g.api(), url.PathEscape(username))

	var user giteaUser
	if err := g.getJSON(ctx, endpoint, &user); err != nil {
		return stats.Profile{}, fmt.Errorf("gitea: fetch user: %w", err)
	}

	return stats.Profile{
		Login:   user.Login,
		Name:    user.FullName,
		Bio:     user.Description,
		Website: user.Website,
	}, nil
}

func (g *Gitea) FetchStats(ctx context.Context, username string, profile stats.Profile) (stats.Bundle, error) {
	repos, err := g.fetchRepos(ctx, username)
	if err != nil {
		return stats.Bundle{}, fmt.Errorf("gitea: fetch repos: %w", err)
	}

	languages := make([]string, 0, len(repos))
	var totalStars, totalForks int
	for _, repo := range repos {
		totalStars += repo.StarsCount
		totalForks += repo.ForksCount
		languages = append(languages, repo.Language)
	}

	bundle := stats.Bundle{
		TotalRepos: len(repos),
		TotalStars: totalStars,
		TotalForks: totalForks,
		Languages:  collectLanguages(languages),
	}

	graph, total, err := g.fetchHeatmap(ctx, username)
	if err != nil {
		log.Printf("gitea: fetch heatmap: %v", err)
	} else {
		bundle.Graph = graph
		bundle.TotalContributions = total
	}

	if g.token == "" {
		log.Printf("gitea: no token; skipping pull request and issue dashboards")
		return bundle, nil
	}

	bundle.PullRequests = []stats.DashboardGroup{
		g.dashboardGroup(ctx, "Awaiting Review", "pulls", "review_requested"),
		g.dashboardGroup(ctx, "Open", "pulls", "created"),
		g.dashboardGroup(ctx, "Mentions", "pulls", "mentioned"),
	}
	bundle.Issues = []stats.DashboardGroup{
		g.dashboardGroup(ctx, "Assigned", "issues", "assigned"),
		g.dashboardGroup(ctx, "Created", "issues", "created"),
		g.dashboardGroup(ctx, "Mentions", "issues", "mentioned"),
	}

	return bundle, nil
}

func (g *Gitea) fetchRepos(ctx context.Context, username string) ([]giteaRepo, error) {
	var all []giteaRepo
	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/users/%s/repos?page=%d&limit=%d",
			g.api(), url.PathEscape(username), page, giteaPageLimit)

		var batch []giteaRepo
		if err := g.getJSON(ctx, endpoint, &batch); err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
	}
	return all, nil
}

// fetchHeatmap maps the per-day activity feed onto a calendar. Timestamps
// arrive as unix seconds, one entry per active hour bucket.
func (g *Gitea) fetchHeatmap(ctx context.Context, username string) (stats.Calendar, int, error) {
	endpoint := fmt.Sprintf("%s/users/%s/heatmap", g.api(), url.PathEscape(username))

	var entries []struct {
		Timestamp     int64 `json:"timestamp"`
		Contributions int   `json:"contributions"`
	}
	if err := g.getJSON(ctx, endpoint, &entries); err != nil {
		return nil, 0, err
	}

	counts := make(map[time.Time]int, len(entries))
	var total int
	for _, entry := range entries {
		day := time.Unix(entry.Timestamp, 0).UTC()
		counts[day] += entry.Contributions
		total += entry.Contributions
	}

	now := time.Now().UTC()
	return stats.FromDailyCounts(counts, now.AddDate(0, 0, -365), now), total, nil
}

// dashboardGroup queries the issue search scoped to the token's user. The
// filter names a boolean flag such as assigned or review_requested.
func (g *Gitea) dashboardGroup(ctx context.Context, name, kind, filter string) stats.DashboardGroup {
	endpoint := fmt.Sprintf("%s/repos/issues/search?type=%s&state=open&%s=true&limit=%d",
		g.api(), kind, filter, searchPerPage)

	var items []struct {
		Title      string `json:"title"`
		HTMLURL    string `json:"html_url"`
		Repository struct {
			FullName string `json:"full_name"`
		} `json:"repository"`
	}
	if err := g.getJSON(ctx, endpoint, &items); err != nil {
		log.Printf("gitea: search %s %s: %v", filter, kind, err)
		return stats.DashboardGroup{Name: name}
	}

	group := stats.DashboardGroup{Name: name, TotalCount: len(items)}
	for _, item := range items {
		group.Items = append(group.Items, stats.DashboardItem{
			Title: item.Title,
			Repo:  item.Repository.FullName,
			URL:   item.HTMLURL,
		})
	}
	return group
}

func (g *Gitea) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	if g.token != "" {
		req.Header.Set("Authorization", "token "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	debugf("gitea: GET %s -> %d", endpoint, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError("gitea", resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
