package provider

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
)

// ResolveToken finds an API token for a provider: an explicitly
// configured value wins, then the provider's environment variables, then
// the provider CLI's stored credentials. A missing token is not fatal;
// unauthenticated fetchers degrade to public data.
func ResolveToken(name, configured string) string {
	if configured != "" {
		return configured
	}
	for _, key := range tokenEnvVars(name) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return cliToken(name)
}

// TokenEnvVar names the primary environment variable holding a
// provider's token, for hints and documentation.
func TokenEnvVar(name string) string {
	vars := tokenEnvVars(name)
	if len(vars) == 0 {
		return ""
	}
	return vars[0]
}

func tokenEnvVars(name string) []string {
	switch strings.ToLower(name) {
	case "", "github":
		return []string{"GITHUB_TOKEN", "GH_TOKEN"}
	case "gitlab":
		return []string{"GITLAB_TOKEN"}
	case "gitea", "forgejo", "codeberg":
		return []string{"GITEA_TOKEN"}
	case "sourcehut", "srht":
		return []string{"SRHT_TOKEN", "SOURCEHUT_TOKEN"}
	default:
		return nil
	}
}

// cliToken asks the provider's CLI for its stored token when one is
// installed and authenticated.
func cliToken(name string) string {
	switch strings.ToLower(name) {
	case "", "github":
		stdout, _ := commandOutput("gh", "auth", "token")
		return stdout
	case "gitlab":
		// glab prints its status report, token included, to stderr.
		stdout, stderr := commandOutput("glab", "auth", "status", "-t")
		return tokenFromStatus(stdout + "\n" + stderr)
	default:
		return ""
	}
}

func commandOutput(name string, args ...string) (string, string) {
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", ""
	}
	return strings.TrimSpace(stdout.String()), strings.TrimSpace(stderr.String())
}

// tokenFromStatus scans CLI status output for a "Token: <value>" line.
func tokenFromStatus(out string) string {
	for _, line := range strings.Split(out, "\n") {
		_, after, found := strings.Cut(line, "Token:")
		if !found {
			continue
		}
		if token := strings.TrimSpace(after); token != "" && !strings.Contains(token, "*") {
			return token
		}
	}
	return ""
}
