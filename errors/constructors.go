package errors

import (
	"fmt"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *PackError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *PackError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// JarUnresolved creates an error for spawning before any build produced a jar
func JarUnresolved() *PackError {
	return New(ErrCodeJarUnresolved, "no server jar has been built yet; run a build first")
}

// BuildFailed creates a build failure error
func BuildFailed(err error) *PackError {
	return Wrap(err, ErrCodeBuildFailed, "server build failed")
}

// BootstrapFailed creates a bootstrap failure error for a single config file
func BootstrapFailed(relPath string, err error) *PackError {
	return Wrap(err, ErrCodeBootstrapFailed, fmt.Sprintf("failed to bootstrap config file: %s", relPath)).
		WithDetail("path", relPath)
}

// DownloadFailed creates an addon download failure error
func DownloadFailed(source string, err error) *PackError {
	return Wrap(err, ErrCodeDownloadFailed, fmt.Sprintf("failed to download addon: %s", source)).
		WithDetail("source", source)
}

// WatcherFailed creates a watcher setup failure error
func WatcherFailed(path string, err error) *PackError {
	return Wrap(err, ErrCodeWatcherFailed, fmt.Sprintf("failed to watch path: %s", path)).
		WithDetail("path", path)
}

// SpawnFailed creates a process spawn failure error
func SpawnFailed(err error) *PackError {
	return Wrap(err, ErrCodeSpawnFailed, "failed to spawn server process")
}
