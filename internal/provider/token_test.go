package provider

import "testing"

func TestResolveTokenExplicitWins(t *testing.T) {
	t.Setenv("GITLAB_TOKEN", "from-env")
	if got := ResolveToken("gitlab", "from-flag"); got != "from-flag" {
		t.Errorf("ResolveToken() = %q; want from-flag", got)
	}
}

func TestResolveTokenFromEnv(t *testing.T) {
	t.Setenv("GITLAB_TOKEN", "  from-env\n")
	if got := ResolveToken("gitlab", ""); got != "from-env" {
		t.Errorf("ResolveToken() = %q; want from-env (trimmed)", got)
	}
}

func TestResolveTokenEnvOrder(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "primary")
	t.Setenv("GH_TOKEN", "secondary")
	if got := ResolveToken("github", ""); got != "primary" {
		t.Errorf("ResolveToken() = %q; want primary", got)
	}

	t.Setenv("GITHUB_TOKEN", "")
	if got := ResolveToken("github", ""); got != "secondary" {
		t.Errorf("ResolveToken() = %q; want secondary", got)
	}
}

func TestResolveTokenMissing(t *testing.T) {
	// gitea has no CLI fallback, so an empty env means no token.
	t.Setenv("GITEA_TOKEN", "")
	if got := ResolveToken("gitea", ""); got != "" {
		t.Errorf("ResolveToken() = %q; want \"\"", got)
	}
}

func TestTokenFromStatus(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want string
	}{
		{
			"glab report",
			"gitlab.com\n  ✓ Logged in to gitlab.com as jane\n  ✓ Token: glpat-abc123",
			"glpat-abc123",
		},
		{"masked token skipped", "✓ Token: **************", ""},
		{"no token line", "✗ not logged in", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tokenFromStatus(tt.out); got != tt.want {
				t.Errorf("tokenFromStatus(%q) = %q; want %q", tt.out, got, tt.want)
			}
		})
	}
}

func TestTokenEnvVar(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"", "GITHUB_TOKEN"},
		{"github", "GITHUB_TOKEN"},
		{"gitlab", "GITLAB_TOKEN"},
		{"gitea", "GITEA_TOKEN"},
		{"forgejo", "GITEA_TOKEN"},
		{"codeberg", "GITEA_TOKEN"},
		{"sourcehut", "SRHT_TOKEN"},
		{"srht", "SRHT_TOKEN"},
		{"local", ""},
	}
	for _, tt := range tests {
		if got := TokenEnvVar(tt.provider); got != tt.want {
			t.Errorf("TokenEnvVar(%q) = %q; want %q", tt.provider, got, tt.want)
		}
	}
}
