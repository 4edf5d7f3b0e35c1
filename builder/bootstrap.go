package builder

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/packmill/packmill/errors"
)

// templatedExtensions are the file types that get ${VAR} expansion during
// bootstrap. Everything else is copied byte for byte.
var templatedExtensions = map[string]bool{
	".properties": true,
	".yml":        true,
	".yaml":       true,
	".toml":       true,
	".json":       true,
	".txt":        true,
	".conf":       true,
}

// ConfigDirName is the template directory bootstrapped into the output dir.
const ConfigDirName = "config"

// BootstrapFile re-materializes a single config file from its template.
// relPath is relative to the config template directory; the result lands at
// the same relative path inside the output directory.
func (b *BuildContext) BootstrapFile(relPath string) error {
	src := filepath.Join(b.Root, ConfigDirName, relPath)
	dest := filepath.Join(b.OutputDir, relPath)

	info, err := os.Stat(src)
	if err != nil {
		return errors.BootstrapFailed(relPath, err)
	}
	if info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.BootstrapFailed(relPath, err)
	}

	if !templatedExtensions[strings.ToLower(filepath.Ext(src))] {
		return copyFile(src, dest, relPath)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return errors.BootstrapFailed(relPath, err)
	}

	expanded := os.Expand(string(data), b.lookupVariable)
	if err := os.WriteFile(dest, []byte(expanded), info.Mode().Perm()); err != nil {
		return errors.BootstrapFailed(relPath, err)
	}
	return nil
}

// lookupVariable resolves ${NAME} references in templates. Server variables
// win; a few values are always available. Unknown names expand to empty,
// matching os.Expand semantics.
func (b *BuildContext) lookupVariable(name string) string {
	if v, ok := b.App.Variables[name]; ok {
		return v
	}
	switch name {
	case "SERVER_NAME":
		return b.App.Name
	case "MC_VERSION":
		return b.App.MCVersion
	}
	return os.Getenv(name)
}

// bootstrapAll walks the config template directory and bootstraps every file.
func (b *BuildContext) bootstrapAll() error {
	configDir := filepath.Join(b.Root, ConfigDirName)
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil
	}

	return filepath.WalkDir(configDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(configDir, path)
		if err != nil {
			return err
		}
		return b.BootstrapFile(rel)
	})
}

func copyFile(src, dest, relPath string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.BootstrapFailed(relPath, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return errors.BootstrapFailed(relPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.BootstrapFailed(relPath, err)
	}
	return nil
}
