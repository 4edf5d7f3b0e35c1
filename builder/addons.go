package builder

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/packmill/packmill/config"
	"github.com/packmill/packmill/errors"
)

// AddonKind distinguishes the two addon folders.
type AddonKind string

const (
	AddonPlugin AddonKind = "plugin"
	AddonMod    AddonKind = "mod"
)

// Folder returns the output subdirectory for this addon kind.
func (k AddonKind) Folder() string {
	if k == AddonMod {
		return "mods"
	}
	return "plugins"
}

// Resolver turns an addon spec into a file in destDir.
type Resolver interface {
	Resolve(addon config.Addon, destDir string) (ResolvedFile, error)
}

// HTTPResolver downloads URL addons. Files already present in destDir are
// reused without re-downloading; the lockfile diff handles removals.
type HTTPResolver struct {
	Client *http.Client
}

// Resolve downloads the addon into destDir and returns its resolved file.
func (r *HTTPResolver) Resolve(addon config.Addon, destDir string) (ResolvedFile, error) {
	filename, err := filenameFromURL(addon.URL)
	if err != nil {
		return ResolvedFile{}, errors.DownloadFailed(addon.URL, err)
	}

	resolved := ResolvedFile{Filename: filename, URL: addon.URL}
	dest := filepath.Join(destDir, filename)

	if _, err := os.Stat(dest); err == nil {
		return resolved, nil
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Get(addon.URL)
	if err != nil {
		return ResolvedFile{}, errors.DownloadFailed(addon.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ResolvedFile{}, errors.DownloadFailed(addon.URL, fmt.Errorf("unexpected status: %s", resp.Status))
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return ResolvedFile{}, err
	}

	tmp, err := os.CreateTemp(destDir, ".download-*")
	if err != nil {
		return ResolvedFile{}, err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return ResolvedFile{}, errors.DownloadFailed(addon.URL, err)
	}
	if err := tmp.Close(); err != nil {
		return ResolvedFile{}, err
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return ResolvedFile{}, err
	}

	return resolved, nil
}

func filenameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("cannot derive filename from url: %s", rawURL)
	}
	return name, nil
}

// processAddons resolves every addon of one kind into the output directory,
// records the results in the new lockfile, and removes files the previous
// lockfile placed that are no longer requested.
func (b *BuildContext) processAddons(kind AddonKind, addons []config.Addon) error {
	destDir := filepath.Join(b.OutputDir, kind.Folder())

	current := make(map[string]bool, len(addons))
	for _, addon := range addons {
		resolved, err := b.Resolver.Resolve(addon, destDir)
		if err != nil {
			return err
		}
		current[resolved.Filename] = true

		entry := LockEntry{Addon: addon, Resolved: resolved}
		switch kind {
		case AddonMod:
			b.newLockfile.Mods = append(b.newLockfile.Mods, entry)
		default:
			b.newLockfile.Plugins = append(b.newLockfile.Plugins, entry)
		}
	}

	// Remove files the old lockfile owned that no addon resolves to anymore.
	for stale := range b.lockfile.Filenames(kind) {
		if current[stale] {
			continue
		}
		target := filepath.Join(destDir, stale)
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return err
		}
		b.log.WithField("file", stale).Info("Removed stale addon")
	}

	return nil
}
