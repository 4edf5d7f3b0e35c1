package builder

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/packmill/packmill/config"
	"github.com/packmill/packmill/errors"
)

// ResolvedFile records where an addon spec ended up on disk.
type ResolvedFile struct {
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
}

// LockEntry pairs an addon spec with its resolved file.
type LockEntry struct {
	Addon    config.Addon `json:"addon"`
	Resolved ResolvedFile `json:"resolved"`
}

// Lockfile records what the last successful build placed in the output
// directory. It is replaced wholesale: a new lockfile is only written after
// every addon in the current spec list has resolved.
type Lockfile struct {
	Plugins []LockEntry `json:"plugins,omitempty"`
	Mods    []LockEntry `json:"mods,omitempty"`
}

// ReadLockfile loads a lockfile, returning an empty one when none exists.
func ReadLockfile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Lockfile{}, nil
		}
		return nil, err
	}

	var lf Lockfile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLockfileInvalid, "failed to parse lockfile")
	}
	return &lf, nil
}

// Write persists the lockfile atomically via a temp file rename.
func (lf *Lockfile) Write(path string) error {
	data, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Filenames returns the resolved filenames of one addon kind.
func (lf *Lockfile) Filenames(kind AddonKind) map[string]bool {
	entries := lf.Plugins
	if kind == AddonMod {
		entries = lf.Mods
	}

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Resolved.Filename] = true
	}
	return names
}
