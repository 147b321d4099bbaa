package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"

	"github.com/akale22/Image-Manipulator/pkg/logger"
)

// DefaultAPIBase is the GitHub REST endpoint queried for releases.
const DefaultAPIBase = "https://api.github.com"

// Matches v1.2.3 or 1.2.3 with optional pre-release and build parts.
var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
	HTMLURL    string `json:"html_url"`
	Assets     []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// LatestRelease lists the releases of repo ("owner/name") and returns the
// highest published, non-prerelease semver release. Tags that carry no
// semver fall back to the release name; releases with neither are ignored.
// It returns nil and no error when nothing qualifies.
func LatestRelease(ctx context.Context, client *http.Client, apiBase, repo string) (*selfupdate.Release, error) {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	url := fmt.Sprintf("%s/repos/%s/releases", strings.TrimRight(apiBase, "/"), repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var releases []githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("failed to decode github releases: %w", err)
	}

	var candidates []*selfupdate.Release
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		v, ok := releaseVersion(r)
		if !ok {
			continue
		}
		candidates = append(candidates, &selfupdate.Release{
			Version:  v,
			AssetURL: pickAsset(r),
			URL:      r.HTMLURL,
		})
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Version.GT(candidates[j].Version)
	})
	return candidates[0], nil
}

func releaseVersion(r githubRelease) (semver.Version, bool) {
	for _, s := range []string{r.TagName, r.Name} {
		if m := semverRe.FindString(s); m != "" {
			if v, err := semver.Parse(strings.TrimPrefix(m, "v")); err == nil {
				return v, true
			}
		}
	}
	return semver.Version{}, false
}

// pickAsset prefers an asset built for this platform, then any asset that
// looks like a binary, then the first asset.
func pickAsset(r githubRelease) string {
	if len(r.Assets) == 0 {
		return ""
	}
	score := func(name string) int {
		name = strings.ToLower(name)
		switch {
		case strings.Contains(name, runtime.GOOS) && strings.Contains(name, runtime.GOARCH):
			return 3
		case strings.Contains(name, runtime.GOOS):
			return 2
		case strings.Contains(name, "darwin"), strings.Contains(name, "linux"), strings.Contains(name, "windows"),
			strings.Contains(name, "amd64"), strings.Contains(name, "arm64"):
			return 1
		}
		return 0
	}
	best, bestScore := r.Assets[0].BrowserDownloadURL, score(r.Assets[0].Name)
	for _, a := range r.Assets[1:] {
		if s := score(a.Name); s > bestScore {
			best, bestScore = a.BrowserDownloadURL, s
		}
	}
	return best
}

// Updater checks for and installs newer releases of the running binary.
type Updater struct {
	Client  *http.Client
	APIBase string
	Repo    string
	Current string // running version
	Yes     bool   // install without asking

	In  io.Reader
	Out io.Writer

	// Replaces the file at exe with the asset; selfupdate.UpdateTo when nil.
	Apply func(assetURL, exe string) error
}

// CheckForUpdates reports the current and latest versions and, when a newer
// release with a downloadable asset exists, installs it after confirmation.
func (u *Updater) CheckForUpdates(ctx context.Context) error {
	apiBase := u.APIBase
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	log := logger.For(ctx)
	fmt.Fprintf(u.Out, "Current version: %s\n", u.Current)

	latest, err := LatestRelease(ctx, u.Client, apiBase, u.Repo)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if latest == nil {
		fmt.Fprintf(u.Out, "No releases found for %s.\n", u.Repo)
		return nil
	}
	fmt.Fprintf(u.Out, "Latest version: %s\n", latest.Version)

	current, err := semver.Parse(strings.TrimPrefix(u.Current, "v"))
	if err != nil {
		log.Warn("could not parse current version", "version", u.Current, "err", err)
	} else if latest.Version.LTE(current) {
		fmt.Fprintf(u.Out, "You are already running the latest version: %s.\n", current)
		return nil
	}

	if latest.AssetURL == "" {
		fmt.Fprintf(u.Out, "A new version (%s) is available but there is no downloadable asset.\n", latest.Version)
		if latest.URL != "" {
			fmt.Fprintf(u.Out, "Download it from %s\n", latest.URL)
		}
		return nil
	}

	if !u.Yes {
		ok, err := u.confirm(fmt.Sprintf("A new version (%s) is available. Update now? (y/N): ", latest.Version))
		if err != nil {
			return fmt.Errorf("failed reading input: %w", err)
		}
		if !ok {
			fmt.Fprintln(u.Out, "Update cancelled.")
			return nil
		}
	}

	fmt.Fprintln(u.Out, "Updating...")
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	apply := u.Apply
	if apply == nil {
		apply = selfupdate.UpdateTo
	}
	log.Info("installing release", "version", latest.Version.String(), "asset", latest.AssetURL)
	if err := apply(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Fprintf(u.Out, "Updated to version %s. Restart to use it.\n", latest.Version)
	return nil
}

func (u *Updater) confirm(prompt string) (bool, error) {
	fmt.Fprint(u.Out, prompt)
	if u.In == nil {
		return false, nil
	}
	line, err := bufio.NewReader(u.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
