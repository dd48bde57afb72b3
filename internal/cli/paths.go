package cli

import (
	"os"
	"path/filepath"
)

const (
	manifestFile   = "plugins.toml"
	lockfileFile   = "plugins.lock"
	pluginsDirName = "plugins"

	// defaultMCVersion is used when init/import cannot detect the server's
	// Minecraft version from a Paper JAR.
	defaultMCVersion = "1.21.11"
)

// workDir is the server directory jarlock operates in: the current directory
// unless JARLOCK_DIR points elsewhere.
func workDir() string {
	if dir := os.Getenv("JARLOCK_DIR"); dir != "" {
		return dir
	}
	return "."
}

func manifestPath() string {
	return filepath.Join(workDir(), manifestFile)
}

func lockfilePath() string {
	return filepath.Join(workDir(), lockfileFile)
}

func pluginsDir() string {
	return filepath.Join(workDir(), pluginsDirName)
}
