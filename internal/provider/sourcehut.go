package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gitfetch/gitfetch/internal/stats"
)

const sourcehutBaseURL = "https://git.sr.ht"

type Sourcehut struct {
	client  *http.Client
	baseURL string
	token   string
}

func newSourcehut(opts Options) *Sourcehut {
	base := opts.BaseURL
	if base == "" {
		base = sourcehutBaseURL
	}
	return &Sourcehut{
		client:  opts.httpClient(),
		baseURL: strings.TrimRight(base, "/"),
		token:   opts.Token,
	}
}

func (s *Sourcehut) Name() string {
	return "sourcehut"
}

const sourcehutUserQuery = `query($username: String!) {
  user(username: $username) {
    username
    name
    bio
    website
  }
}`

func (s *Sourcehut) FetchProfile(ctx context.Context, username string) (stats.Profile, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     sourcehutUserQuery,
		"variables": map[string]string{"username": strings.TrimPrefix(username, "~")},
	})
	if err != nil {
		return stats.Profile{}, fmt.Errorf("sourcehut: encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/graphql", bytes.NewReader(payload))
	if err != nil {
		return stats.Profile{}, fmt.Errorf("sourcehut: new request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return stats.Profile{}, fmt.Errorf("sourcehut: do request: %w", err)
	}
	defer resp.Body.Close()
	debugf("sourcehut: POST %s -> %d", s.baseURL+"/graphql", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return stats.Profile{}, fmt.Errorf("sourcehut: fetch user: %w", statusError("sourcehut", resp))
	}

	var result struct {
		Data struct {
			User *struct {
				Username string `json:"username"`
				Name     string `json:"name"`
				Bio      string `json:"bio"`
				Website  string `json:"website"`
			} `json:"user"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return stats.Profile{}, fmt.Errorf("sourcehut: decode response: %w", err)
	}
	if len(result.Errors) > 0 {
		return stats.Profile{}, fmt.Errorf("sourcehut: graphql: %s", result.Errors[0].Message)
	}
	user := result.Data.User
	if user == nil {
		return stats.Profile{}, goerr.New("user "+username+" not found",
			goerr.T(ErrTagNotFound),
			goerr.V("hint", "Verify the username is correct for sourcehut"))
	}

	return stats.Profile{
		Login:   user.Username,
		Name:    user.Name,
		Bio:     user.Bio,
		Website: user.Website,
	}, nil
}

// FetchStats returns an empty bundle. Sourcehut exposes no aggregate
// activity endpoints, so only the profile renders.
func (s *Sourcehut) FetchStats(ctx context.Context, username string, profile stats.Profile) (stats.Bundle, error) {
	return stats.Bundle{}, nil
}
