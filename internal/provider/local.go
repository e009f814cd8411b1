package provider

import (
	"context"
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/m-mizutani/goerr/v2"

	"github.com/gitfetch/gitfetch/internal/stats"
)

// Local reads contribution data out of a git repository on disk instead
// of a hosting API.
type Local struct {
	path string
}

func newLocal(opts Options) *Local {
	path := opts.RepoPath
	if path == "" {
		path = "."
	}
	return &Local{path: path}
}

func (l *Local) Name() string {
	return "local"
}

func (l *Local) open() (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(l.path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "open repository "+l.path,
			goerr.T(ErrTagNotFound),
			goerr.V("hint", "Run inside a git repository or pass --repo"))
	}
	return repo, nil
}

func (l *Local) FetchProfile(ctx context.Context, username string) (stats.Profile, error) {
	repo, err := l.open()
	if err != nil {
		return stats.Profile{}, err
	}

	profile := stats.Profile{Login: username}
	cfg, err := repo.ConfigScoped(gitconfig.SystemScope)
	if err != nil {
		return profile, nil
	}
	profile.Name = cfg.User.Name
	if profile.Login == "" {
		profile.Login = cfg.User.Email
	}
	if profile.Login == "" {
		profile.Login = cfg.User.Name
	}
	return profile, nil
}

// FetchStats walks a year of commit history and buckets author dates per
// day. All refs count, not just the checked-out branch.
func (l *Local) FetchStats(ctx context.Context, username string, profile stats.Profile) (stats.Bundle, error) {
	repo, err := l.open()
	if err != nil {
		return stats.Bundle{}, err
	}

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -365)

	iter, err := repo.Log(&git.LogOptions{All: true, Since: &since})
	if err != nil {
		return stats.Bundle{}, fmt.Errorf("local: read log: %w", err)
	}
	defer iter.Close()

	counts := make(map[time.Time]int)
	var total int
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		counts[c.Author.When.UTC()]++
		total++
		return nil
	})
	if err != nil {
		return stats.Bundle{}, fmt.Errorf("local: walk commits: %w", err)
	}

	return stats.Bundle{
		TotalRepos:         1,
		TotalContributions: total,
		Graph:              stats.FromDailyCounts(counts, since, now),
	}, nil
}
