package stats

import "time"

// Day is a single calendar day's contribution count.
type Day struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// Week is an ordered run of 1-7 days. A week shorter than 7 days is a
// partial week at the calendar edge; the missing days are trailing ones.
type Week struct {
	Days []Day `json:"days"`
}

// Calendar is an ordered sequence of weeks, oldest first. Day index 0
// within a week is Sunday.
type Calendar []Week

// Trim returns the most recent n weeks of the calendar.
func (c Calendar) Trim(n int) Calendar {
	if n <= 0 || len(c) <= n {
		return c
	}
	return c[len(c)-n:]
}

// Profile holds the provider-agnostic identity fields of an account.
// Optional fields are empty strings when the provider has no value.
type Profile struct {
	Login   string `json:"login"`
	Name    string `json:"name,omitempty"`
	Bio     string `json:"bio,omitempty"`
	Company string `json:"company,omitempty"`
	Website string `json:"website,omitempty"`
}

// DisplayName returns the human name, falling back to the login.
func (p Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Login != "" {
		return p.Login
	}
	return "unknown"
}

// Language is one entry of an ordered language breakdown, highest
// percentage first. Ties order by name.
type Language struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// DashboardItem is a single pull request or issue reference.
type DashboardItem struct {
	Title string `json:"title"`
	Repo  string `json:"repo"`
	URL   string `json:"url,omitempty"`
}

// DashboardGroup is a named bucket of dashboard items, e.g. "Open" or
// "Awaiting Review". TotalCount may exceed len(Items) when the provider
// returned only the first page.
type DashboardGroup struct {
	Name       string          `json:"name"`
	TotalCount int             `json:"total_count"`
	Items      []DashboardItem `json:"items"`
}

// Bundle aggregates everything a provider fetched for one account.
type Bundle struct {
	TotalRepos         int              `json:"total_repos"`
	TotalStars         int              `json:"total_stars"`
	TotalForks         int              `json:"total_forks"`
	TotalContributions int              `json:"total_contributions"`
	Languages          []Language       `json:"languages,omitempty"`
	Graph              Calendar         `json:"contribution_graph,omitempty"`
	PullRequests       []DashboardGroup `json:"pull_requests,omitempty"`
	Issues             []DashboardGroup `json:"issues,omitempty"`
}
