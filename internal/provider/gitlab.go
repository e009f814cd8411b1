package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gitfetch/gitfetch/internal/stats"
)

const gitlabBaseURL = "https://gitlab.com"

type GitLab struct {
	client  *http.Client
	baseURL string
	token   string
}

func newGitLab(opts Options) *GitLab {
	base := opts.BaseURL
	if base == "" {
		base = gitlabBaseURL
	}
	return &GitLab{
		client:  opts.httpClient(),
		baseURL: strings.TrimRight(base, "/"),
		token:   opts.Token,
	}
}

func (g *GitLab) Name() string {
	return "gitlab"
}

func (g *GitLab) api() string {
	return g.baseURL + "/api/v4"
}

type gitlabUser struct {
	ID         int    `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Bio        string `json:"bio"`
	Org        string `json:"organization"`
	WebsiteURL string `json:"website_url"`
}

type gitlabProject struct {
	ID         int    `json:"id"`
	Path       string `json:"path_with_namespace"`
	StarCount  int    `json:"star_count"`
	ForksCount int    `json:"forks_count"`
}

func (g *GitLab) FetchProfile(ctx context.Context, username string) (stats.Profile, error) {
	user, err := g.lookupUser(ctx, username)
	if err != nil {
		return stats.Profile{}, err
	}
	return stats.Profile{
		Login:   user.Username,
		Name:    user.Name,
		Bio:     user.Bio,
		Company: user.Org,
		Website: user.WebsiteURL,
	}, nil
}

// lookupUser resolves a username to its numeric id. GitLab has no direct
// by-name endpoint, so this filters the users collection.
func (g *GitLab) lookupUser(ctx context.Context, username string) (gitlabUser, error) {
	endpoint := fmt.Sprintf("%s/users?username=%s", g.api(), url.QueryEscape(username))

	var users []gitlabUser
	if _, err := g.getJSON(ctx, endpoint, &users); err != nil {
		return gitlabUser{}, fmt.Errorf("gitlab: fetch user: %w", err)
	}
	if len(users) == 0 {
		return gitlabUser{}, goerr.New("user "+username+" not found",
			goerr.T(ErrTagNotFound),
			goerr.V("hint", "Verify the username is correct for gitlab"))
	}
	return users[0], nil
}

func (g *GitLab) FetchStats(ctx context.Context, username string, profile stats.Profile) (stats.Bundle, error) {
	user, err := g.lookupUser(ctx, username)
	if err != nil {
		return stats.Bundle{}, err
	}

	projects, err := g.fetchProjects(ctx, user.ID)
	if err != nil {
		return stats.Bundle{}, fmt.Errorf("gitlab: fetch projects: %w", err)
	}

	var totalStars, totalForks int
	weights := make(map[string]float64)
	for _, project := range projects {
		totalStars += project.StarCount
		totalForks += project.ForksCount

		langs, err := g.fetchProjectLanguages(ctx, project.ID)
		if err != nil {
			log.Printf("gitlab: fetch languages for %s: %v", project.Path, err)
			continue
		}
		for name, pct := range langs {
			weights[name] += pct
		}
	}

	bundle := stats.Bundle{
		TotalRepos: len(projects),
		TotalStars: totalStars,
		TotalForks: totalForks,
		Languages:  weightedLanguages(weights),
	}

	graph, total, err := g.fetchCalendar(ctx, username)
	if err != nil {
		log.Printf("gitlab: fetch contribution calendar: %v", err)
	} else {
		bundle.Graph = graph
		bundle.TotalContributions = total
	}

	if g.token == "" {
		log.Printf("gitlab: no token; skipping merge request and issue dashboards")
		return bundle, nil
	}

	bundle.PullRequests = []stats.DashboardGroup{
		g.dashboardGroup(ctx, "Awaiting Review", "/merge_requests", "reviewer_username", username),
		g.dashboardGroup(ctx, "Open", "/merge_requests", "author_username", username),
	}
	bundle.Issues = []stats.DashboardGroup{
		g.dashboardGroup(ctx, "Assigned", "/issues", "assignee_username", username),
		g.dashboardGroup(ctx, "Created", "/issues", "author_username", username),
	}

	return bundle, nil
}

func (g *GitLab) fetchProjects(ctx context.Context, userID int) ([]gitlabProject, error) {
	var all []gitlabProject
	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/users/%d/projects?page=%d&per_page=%d",
			g.api(), userID, page, reposPerPage)

		var batch []gitlabProject
		if _, err := g.getJSON(ctx, endpoint, &batch); err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
	}
	return all, nil
}

func (g *GitLab) fetchProjectLanguages(ctx context.Context, projectID int) (map[string]float64, error) {
	endpoint := fmt.Sprintf("%s/projects/%d/languages", g.api(), projectID)

	langs := make(map[string]float64)
	if _, err := g.getJSON(ctx, endpoint, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// fetchCalendar reads the public activity feed the profile page renders,
// a date-to-count map served outside the REST API.
func (g *GitLab) fetchCalendar(ctx context.Context, username string) (stats.Calendar, int, error) {
	endpoint := fmt.Sprintf("%s/users/%s/calendar.json", g.baseURL, url.PathEscape(username))

	raw := make(map[string]int)
	if _, err := g.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, 0, err
	}

	counts := make(map[time.Time]int, len(raw))
	var total int
	for dateStr, count := range raw {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		counts[date] = count
		total += count
	}

	now := time.Now().UTC()
	return stats.FromDailyCounts(counts, now.AddDate(0, 0, -365), now), total, nil
}

// dashboardGroup runs one filtered listing best-effort: failures produce
// an empty group rather than failing the whole fetch.
func (g *GitLab) dashboardGroup(ctx context.Context, name, path, filter, username string) stats.DashboardGroup {
	endpoint := fmt.Sprintf("%s%s?scope=all&state=opened&%s=%s&per_page=%d",
		g.api(), path, filter, url.QueryEscape(username), searchPerPage)

	var items []struct {
		Title  string `json:"title"`
		WebURL string `json:"web_url"`
	}
	header, err := g.getJSON(ctx, endpoint, &items)
	if err != nil {
		log.Printf("gitlab: fetch %s %s: %v", filter, path, err)
		return stats.DashboardGroup{Name: name}
	}

	group := stats.DashboardGroup{Name: name, TotalCount: len(items)}
	if total, err := strconv.Atoi(header.Get("X-Total")); err == nil {
		group.TotalCount = total
	}
	for _, item := range items {
		group.Items = append(group.Items, stats.DashboardItem{
			Title: item.Title,
			Repo:  gitlabRepoFromURL(item.WebURL),
			URL:   item.WebURL,
		})
	}
	return group
}

func (g *GitLab) getJSON(ctx context.Context, endpoint string, out any) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	if g.token != "" {
		req.Header.Set("PRIVATE-TOKEN", g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	debugf("gitlab: GET %s -> %d", endpoint, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.Header, statusError("gitlab", resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.Header, fmt.Errorf("decode response: %w", err)
	}
	return resp.Header, nil
}

// gitlabRepoFromURL extracts the project path from a web URL such as
// https://gitlab.com/group/project/-/issues/1.
func gitlabRepoFromURL(webURL string) string {
	base, _, found := strings.Cut(webURL, "/-/")
	if !found {
		return ""
	}
	return repoFromURL(base)
}
