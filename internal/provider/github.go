package provider

import (
	"bytes"
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
	githubBaseURL = "https://api.github.com"

	reposPerPage  = 100
	searchPerPage = 5
)

type GitHub struct {
	client  *http.Client
	baseURL string
	token   string
}

func newGitHub(opts Options) *GitHub {
	base := opts.BaseURL
	if base == "" {
		base = githubBaseURL
	}
	return &GitHub{
		client:  opts.httpClient(),
		baseURL: strings.TrimRight(base, "/"),
		token:   opts.Token,
	}
}

func (g *GitHub) Name() string {
	return "github"
}

type githubUser struct {
	Login   string `json:"login"`
	Name    string `json:"name"`
	Bio     string `json:"bio"`
	Company string `json:"company"`
	Blog    string `json:"blog"`
}

type githubRepo struct {
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	Language        string `json:"language"`
	Fork            bool   `json:"fork"`
}

func (g *GitHub) FetchProfile(ctx context.Context, username string) (stats.Profile, error) {
	endpoint := fmt.Sprintf("%s/users/%s", g.baseURL, url.PathEscape(username))

	var user githubUser
	if err := g.getJSON(ctx, endpoint, &user); err != nil {
		return stats.Profile{}, fmt.Errorf("github: fetch user: %w", err)
	}

	return stats.Profile{
		Login:   user.Login,
		Name:    user.Name,
		Bio:     user.Bio,
		Company: user.Company,
		Website: user.Blog,
	}, nil
}

func (g *GitHub) FetchStats(ctx context.Context, username string, profile stats.Profile) (stats.Bundle, error) {
	repos, err := g.fetchRepos(ctx, username)
	if err != nil {
		return stats.Bundle{}, fmt.Errorf("github: fetch repos: %w", err)
	}

	languages := make([]string, 0, len(repos))
	var totalStars, totalForks int
	for _, repo := range repos {
		totalStars += repo.StargazersCount
		totalForks += repo.ForksCount
		languages = append(languages, repo.Language)
	}

	bundle := stats.Bundle{
		TotalRepos: len(repos),
		TotalStars: totalStars,
		TotalForks: totalForks,
		Languages:  collectLanguages(languages),
	}

	if g.token == "" {
		// The contribution calendar and search API need credentials;
		// public repo data still renders.
		log.Printf("github: no token; skipping contribution calendar and dashboards")
		return bundle, nil
	}

	graph, total, err := g.fetchCalendar(ctx, username)
	if err != nil {
		log.Printf("github: fetch contribution calendar: %v", err)
	} else {
		bundle.Graph = graph
		bundle.TotalContributions = total
	}

	bundle.PullRequests = g.searchGroups(ctx, []searchSpec{
		{"Awaiting Review", "is:pr state:open review-requested:" + username},
		{"Open", "is:pr state:open author:" + username},
		{"Mentions", "is:pr state:open mentions:" + username},
	})
	bundle.Issues = g.searchGroups(ctx, []searchSpec{
		{"Assigned", "is:issue state:open assignee:" + username},
		{"Created", "is:issue state:open author:" + username},
		{"Mentions", "is:issue state:open mentions:" + username},
	})

	return bundle, nil
}

func (g *GitHub) fetchRepos(ctx context.Context, username string) ([]githubRepo, error) {
	var all []githubRepo
	nextURL := fmt.Sprintf("%s/users/%s/repos?per_page=%d&type=owner&sort=updated",
		g.baseURL, url.PathEscape(username), reposPerPage)

	for nextURL != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, nextURL, nil)
		if err != nil {
			return nil, fmt.Errorf("new request: %w", err)
		}
		g.applyHeaders(req)

		resp, err := g.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("do request: %w", err)
		}
		debugf("github: GET %s -> %d", nextURL, resp.StatusCode)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, statusError("github", resp)
		}

		var page []githubRepo
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("decode repos response: %w", err)
		}
		resp.Body.Close()

		all = append(all, page...)
		nextURL = extractNextLink(resp.Header.Get("Link"))
	}

	return all, nil
}

const contributionQuery = `query($login: String!) {
  user(login: $login) {
    contributionsCollection {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            contributionCount
            date
          }
        }
      }
    }
  }
}`

func (g *GitHub) fetchCalendar(ctx context.Context, username string) (stats.Calendar, int, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     contributionQuery,
		"variables": map[string]string{"login": username},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/graphql", bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("new request: %w", err)
	}
	g.applyHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	debugf("github: POST %s -> %d", g.baseURL+"/graphql", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, 0, statusError("github", resp)
	}

	var result struct {
		Data struct {
			User struct {
				ContributionsCollection struct {
					ContributionCalendar struct {
						TotalContributions int `json:"totalContributions"`
						Weeks              []struct {
							ContributionDays []struct {
								ContributionCount int    `json:"contributionCount"`
								Date              string `json:"date"`
							} `json:"contributionDays"`
						} `json:"weeks"`
					} `json:"contributionCalendar"`
				} `json:"contributionsCollection"`
			} `json:"user"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, 0, fmt.Errorf("decode graphql response: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, 0, fmt.Errorf("graphql: %s", result.Errors[0].Message)
	}

	calendar := result.Data.User.ContributionsCollection.ContributionCalendar
	var graph stats.Calendar
	for _, week := range calendar.Weeks {
		var days []stats.Day
		for _, day := range week.ContributionDays {
			date, err := time.Parse("2006-01-02", day.Date)
			if err != nil {
				date = time.Time{}
			}
			days = append(days, stats.Day{Date: date, Count: day.ContributionCount})
		}
		graph = append(graph, stats.Week{Days: days})
	}

	return graph, calendar.TotalContributions, nil
}

type searchSpec struct {
	name  string
	query string
}

// searchGroups runs each search best-effort: a failed query becomes an
// empty group rather than failing the whole fetch.
func (g *GitHub) searchGroups(ctx context.Context, specs []searchSpec) []stats.DashboardGroup {
	groups := make([]stats.DashboardGroup, 0, len(specs))
	for _, spec := range specs {
		group, err := g.searchItems(ctx, spec.query)
		if err != nil {
			log.Printf("github: search %q: %v", spec.query, err)
			group = stats.DashboardGroup{}
		}
		group.Name = spec.name
		groups = append(groups, group)
	}
	return groups
}

func (g *GitHub) searchItems(ctx context.Context, query string) (stats.DashboardGroup, error) {
	endpoint := fmt.Sprintf("%s/search/issues?q=%s&per_page=%d",
		g.baseURL, url.QueryEscape(query), searchPerPage)

	var result struct {
		TotalCount int `json:"total_count"`
		Items      []struct {
			Title         string `json:"title"`
			HTMLURL       string `json:"html_url"`
			RepositoryURL string `json:"repository_url"`
		} `json:"items"`
	}
	if err := g.getJSON(ctx, endpoint, &result); err != nil {
		return stats.DashboardGroup{}, err
	}

	group := stats.DashboardGroup{TotalCount: result.TotalCount}
	for _, item := range result.Items {
		group.Items = append(group.Items, stats.DashboardItem{
			Title: item.Title,
			Repo:  repoFromURL(item.RepositoryURL),
			URL:   item.HTMLURL,
		})
	}
	return group, nil
}

func (g *GitHub) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	g.applyHeaders(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	debugf("github: GET %s -> %d", endpoint, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError("github", resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (g *GitHub) applyHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", defaultUserAgent)
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}
}

// repoFromURL extracts owner/repo from an API repository URL.
func repoFromURL(repoURL string) string {
	if repoURL == "" {
		return ""
	}
	parts := strings.Split(strings.TrimRight(repoURL, "/"), "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2] + "/" + parts[len(parts)-1]
	}
	return repoURL
}

// extractNextLink pulls the rel="next" target out of a Link header.
func extractNextLink(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}
	for _, part := range strings.Split(linkHeader, ",") {
		sections := strings.Split(part, ";")
		if len(sections) < 2 {
			continue
		}
		if !strings.Contains(sections[1], `rel="next"`) {
			continue
		}
		return strings.Trim(strings.TrimSpace(sections[0]), "<>")
	}
	return ""
}
