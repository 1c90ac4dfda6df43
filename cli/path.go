package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/kconf/pkg"
)

// baseConfig is the base name of the kong configuration file.
const baseConfig = "config"

const defaultDirMode os.FileMode = 0o700

// userDir resolves a per-user directory for kconf files. The lookup argument
// is one of the os.UserConfigDir family of functions; dotName is the fallback
// directory under $HOME when the platform lookup fails.
func userDir(lookup func() (string, error), dotName string) string {
	if dir, err := lookup(); err == nil {
		return filepath.Join(dir, pkg.Name)
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, dotName, pkg.Name)
	}

	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, pkg.Name)
	}

	return pkg.Name
}

// configDir is where the kong configuration file lives.
func configDir() string { return userDir(os.UserConfigDir, ".config") }

// cacheDir holds transient files such as profiling output.
func cacheDir() string { return userDir(os.UserCacheDir, ".cache") }

// configPath joins path elements onto the configuration directory. With no
// elements it is equivalent to configDir.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates the runtime directories kconf expects to exist.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
