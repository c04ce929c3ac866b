// Package updater performs self-update against GitHub releases.
package updater

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/creativeprojects/go-selfupdate"

	"github.com/lumispeak/medialed/internal/logging"
	"github.com/lumispeak/medialed/internal/version"
)

// Options configures the updater.
type Options struct {
	Repository string // GitHub repo slug (e.g., "lumispeak/medialed")
	Prerelease bool   // Whether to include prereleases
}

// UpdateInfo describes the outcome of an update check.
type UpdateInfo struct {
	CurrentVersion  string    `json:"current_version"`
	LatestVersion   string    `json:"latest_version"`
	ReleaseNotes    string    `json:"release_notes"`
	ReleaseURL      string    `json:"release_url"`
	PublishedAt     time.Time `json:"published_at"`
	UpdateAvailable bool      `json:"update_available"`
}

// Updater checks for and applies new releases.
type Updater struct {
	repository selfupdate.Repository
	updater    *selfupdate.Updater
	logger     *slog.Logger

	latest *selfupdate.Release
}

// New creates an updater for the given repository.
func New(opts Options) (*Updater, error) {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub source: %w", err)
	}

	updater, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: opts.Prerelease,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	return &Updater{
		repository: selfupdate.ParseSlug(opts.Repository),
		updater:    updater,
		logger:     logging.GetLogger("updater"),
	}, nil
}

// Check queries GitHub for the latest release and compares it against the
// current version without downloading anything.
func (u *Updater) Check(ctx context.Context) (*UpdateInfo, error) {
	currentVersion := version.Version

	release, found, err := u.updater.DetectLatest(ctx, u.repository)
	if err != nil {
		return nil, fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("repository not found or has no releases")
	}

	// Dev builds are always considered outdated.
	isNewer := currentVersion == "dev" || release.GreaterThan(currentVersion)
	if !isNewer {
		return &UpdateInfo{
			CurrentVersion:  currentVersion,
			LatestVersion:   release.Version(),
			UpdateAvailable: false,
		}, nil
	}

	u.latest = release

	return &UpdateInfo{
		CurrentVersion:  currentVersion,
		LatestVersion:   release.Version(),
		ReleaseNotes:    release.ReleaseNotes,
		ReleaseURL:      release.URL,
		PublishedAt:     release.PublishedAt,
		UpdateAvailable: true,
	}, nil
}

// Apply downloads the latest release and replaces the running binary.
// Checks first if no prior Check found a release.
func (u *Updater) Apply(ctx context.Context) error {
	if u.latest == nil {
		info, err := u.Check(ctx)
		if err != nil {
			return err
		}
		if !info.UpdateAvailable {
			return fmt.Errorf("no update available")
		}
	}

	if ok, reason := checkWritePermission(); !ok {
		return fmt.Errorf("cannot apply update: %s", reason)
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	if err := u.updater.UpdateTo(ctx, u.latest, exe); err != nil {
		return fmt.Errorf("failed to apply update: %w", err)
	}

	u.logger.Info("Update applied", "version", u.latest.Version())
	return nil
}

// checkWritePermission verifies the executable's directory is writable.
func checkWritePermission() (bool, string) {
	exe, err := os.Executable()
	if err != nil {
		return false, fmt.Sprintf("failed to get executable path: %v", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return false, fmt.Sprintf("failed to resolve symlinks: %v", err)
	}

	dir := filepath.Dir(exe)

	tmp := filepath.Join(dir, ".medialed.update.test")
	f, err := os.Create(tmp)
	if err != nil {
		return false, fmt.Sprintf("no write permission to %s: %v", dir, err)
	}
	f.Close()
	os.Remove(tmp)
	return true, ""
}
