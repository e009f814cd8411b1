package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// releasesRepo is the GitHub repository polled for new releases.
	releasesRepo = "gitfetch/gitfetch"

	// checkInterval is the minimum time between release checks.
	checkInterval = 24 * time.Hour

	markerName = "last-update-check"
)

type release struct {
	TagName string `json:"tag_name"`
}

// Updater checks GitHub for newer gitfetch releases at most once per day.
type Updater struct {
	currentVersion string
	baseURL        string
	markerPath     string
	client         *http.Client
}

// New returns an Updater for the running version. markerDir holds the
// marker file recording when the last check ran, normally the cache
// directory.
func New(currentVersion, markerDir string) *Updater {
	return &Updater{
		currentVersion: strings.TrimPrefix(currentVersion, "v"),
		baseURL:        "https://api.github.com",
		markerPath:     filepath.Join(markerDir, markerName),
		client:         &http.Client{Timeout: 10 * time.Second},
	}
}

// Notice returns a one-line message when a newer release exists, or the
// empty string. The check is best effort: it runs at most once per day
// and stays silent on any failure. Development builds never check.
func (u *Updater) Notice(ctx context.Context) string {
	if u == nil || u.currentVersion == "" || u.currentVersion == "dev" {
		return ""
	}
	if !u.due() {
		return ""
	}
	u.touch()

	latest, err := u.fetchLatest(ctx)
	if err != nil {
		return ""
	}
	if compareVersions(u.currentVersion, latest) >= 0 {
		return ""
	}
	return fmt.Sprintf("A new release of gitfetch is available: v%s (running v%s)", latest, u.currentVersion)
}

// due reports whether a day has passed since the last recorded check.
func (u *Updater) due() bool {
	info, err := os.Stat(u.markerPath)
	if err != nil {
		return true
	}
	return time.Since(info.ModTime()) >= checkInterval
}

// touch records that a check ran; failed checks count too.
func (u *Updater) touch() {
	if err := os.MkdirAll(filepath.Dir(u.markerPath), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(u.markerPath, nil, 0o644)
}

func (u *Updater) fetchLatest(ctx context.Context) (string, error) {
	url := u.baseURL + "/repos/" + releasesRepo + "/releases/latest"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "gitfetch/"+u.currentVersion)

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return strings.TrimPrefix(rel.TagName, "v"), nil
}

// compareVersions compares two dotted version strings. It returns -1 when
// a is older than b, 0 when they are equal and 1 when a is newer. Missing
// segments count as zero, so "1.2" equals "1.2.0".
func compareVersions(a, b string) int {
	partsA := strings.Split(strings.TrimPrefix(a, "v"), ".")
	partsB := strings.Split(strings.TrimPrefix(b, "v"), ".")

	for len(partsA) < len(partsB) {
		partsA = append(partsA, "0")
	}
	for len(partsB) < len(partsA) {
		partsB = append(partsB, "0")
	}

	for i := range partsA {
		var na, nb int
		fmt.Sscanf(partsA[i], "%d", &na)
		fmt.Sscanf(partsB[i], "%d", &nb)
		if na < nb {
			return -1
		}
		if na > nb {
			return 1
		}
	}
	return 0
}
