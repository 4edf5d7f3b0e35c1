// Package builder turns a server definition into a runnable output
// directory: bootstrapped config files, downloaded addons, a lockfile
// recording what was placed, and the server jar itself.
package builder

import (
	"os"
	"path/filepath"

	"github.com/packmill/packmill/config"
	"github.com/packmill/packmill/errors"
	"github.com/packmill/packmill/logging"
	"github.com/packmill/packmill/pkg/paths"
	"github.com/sirupsen/logrus"
)

// OutputDirName is the deployable directory built under the server root.
const OutputDirName = "server"

// BuildContext holds the state of one or more builds for a server.
type BuildContext struct {
	App       *config.ServerConfig
	Root      string
	OutputDir string
	Resolver  Resolver

	lockfile    *Lockfile
	newLockfile Lockfile
	log         *logrus.Entry
}

// New creates a BuildContext rooted at the server.toml's directory.
func New(app *config.ServerConfig) *BuildContext {
	root := app.Root()
	return &BuildContext{
		App:       app,
		Root:      root,
		OutputDir: filepath.Join(root, OutputDirName),
		Resolver:  &HTTPResolver{},
		log:       logging.NewLogger("builder"),
	}
}

// BuildAll produces the runnable output directory and returns the server
// jar's filename. The previous lockfile is only replaced once every addon
// has resolved successfully.
func (b *BuildContext) BuildAll() (string, error) {
	if err := os.MkdirAll(b.OutputDir, 0755); err != nil {
		return "", errors.BuildFailed(err)
	}

	lf, err := ReadLockfile(paths.LockfilePath(b.Root))
	if err != nil {
		return "", errors.BuildFailed(err)
	}
	b.lockfile = lf
	b.newLockfile = Lockfile{}

	if err := b.bootstrapAll(); err != nil {
		return "", errors.BuildFailed(err)
	}

	jarName, err := b.resolveJar()
	if err != nil {
		return "", err
	}

	if err := b.processAddons(AddonPlugin, b.App.Plugins); err != nil {
		return "", errors.BuildFailed(err)
	}
	if err := b.processAddons(AddonMod, b.App.Mods); err != nil {
		return "", errors.BuildFailed(err)
	}

	if err := b.newLockfile.Write(paths.LockfilePath(b.Root)); err != nil {
		return "", errors.BuildFailed(err)
	}
	b.lockfile = &b.newLockfile

	b.log.WithField("jar", jarName).Info("Build complete")
	return jarName, nil
}

// resolveJar ensures the server jar exists in the output directory and
// returns its name.
func (b *BuildContext) resolveJar() (string, error) {
	jarName := b.App.Jar.Filename(b.App.MCVersion)
	jarPath := filepath.Join(b.OutputDir, jarName)

	if _, err := os.Stat(jarPath); err == nil {
		return jarName, nil
	}

	if b.App.Jar.URL == "" {
		return "", errors.New(errors.ErrCodeBuildFailed,
			"server jar "+jarName+" not present and no download url configured")
	}

	_, err := b.Resolver.Resolve(config.Addon{Name: jarName, URL: b.App.Jar.URL}, b.OutputDir)
	if err != nil {
		return "", errors.BuildFailed(err)
	}
	return jarName, nil
}
