package provider

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Error taxonomy shared across the application. Tagged errors carry a
// "hint" value so the CLI can print an actionable remedy next to the
// message.
var (
	ErrTagAuth      = goerr.NewTag("auth")
	ErrTagRateLimit = goerr.NewTag("rate_limit")
	ErrTagNotFound  = goerr.NewTag("not_found")
	ErrTagAPI       = goerr.NewTag("api")
	ErrTagConfig    = goerr.NewTag("config")
	ErrTagCache     = goerr.NewTag("cache")
)

// Hint returns the remediation hint attached to err, or "".
func Hint(err error) string {
	if err == nil {
		return ""
	}
	if hint, ok := goerr.Values(err)["hint"].(string); ok {
		return hint
	}
	return ""
}

// Kind names the taxonomy tag carried by err, for logs and tests.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case goerr.HasTag(err, ErrTagAuth):
		return "auth"
	case goerr.HasTag(err, ErrTagRateLimit):
		return "rate_limit"
	case goerr.HasTag(err, ErrTagNotFound):
		return "not_found"
	case goerr.HasTag(err, ErrTagConfig):
		return "config"
	case goerr.HasTag(err, ErrTagCache):
		return "cache"
	case goerr.HasTag(err, ErrTagAPI):
		return "api"
	default:
		return "unknown"
	}
}

// statusError maps a non-2xx API response to a tagged error. A 403 counts
// as rate limiting only when the limiter headers say the quota is spent;
// otherwise it is an authorization failure.
func statusError(name string, resp *http.Response) error {
	msg := fmt.Sprintf("unexpected status %d", resp.StatusCode)
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return goerr.New(msg, goerr.T(ErrTagAuth), goerr.V("hint", authHint(name)))
	case resp.StatusCode == http.StatusForbidden && rateLimited(resp):
		return goerr.New(msg, goerr.T(ErrTagRateLimit), goerr.V("hint", rateLimitHint(resp)))
	case resp.StatusCode == http.StatusForbidden:
		return goerr.New(msg, goerr.T(ErrTagAuth), goerr.V("hint", authHint(name)))
	case resp.StatusCode == http.StatusTooManyRequests:
		return goerr.New(msg, goerr.T(ErrTagRateLimit), goerr.V("hint", rateLimitHint(resp)))
	case resp.StatusCode == http.StatusNotFound:
		return goerr.New(msg, goerr.T(ErrTagNotFound),
			goerr.V("hint", "Verify the username is correct for "+name))
	default:
		return goerr.New(msg, goerr.T(ErrTagAPI),
			goerr.V("hint", "Check your network connection and try again"))
	}
}

func authHint(name string) string {
	switch name {
	case "github":
		return "Set GITHUB_TOKEN or run 'gh auth login'"
	case "gitlab":
		return "Set GITLAB_TOKEN or run 'glab auth login'"
	case "gitea":
		return "Set GITEA_TOKEN with a personal access token"
	case "sourcehut":
		return "Set SRHT_TOKEN with a personal access token"
	default:
		return "Configure an access token for " + name
	}
}

func rateLimited(resp *http.Response) bool {
	return resp.Header.Get("X-RateLimit-Remaining") == "0"
}

func rateLimitHint(resp *http.Response) string {
	if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
		if sec, err := strconv.ParseInt(reset, 10, 64); err == nil {
			return "Rate limit resets at " + time.Unix(sec, 0).Format("15:04")
		}
	}
	return "Wait a few minutes before trying again"
}
