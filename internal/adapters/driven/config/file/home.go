package file

import (
	"os"
	"path/filepath"
)

// HomeEnv overrides the paperchat home directory.
const HomeEnv = "PAPERCHAT_HOME"

// HomeDir returns the directory holding config.toml and prompts/.
// PAPERCHAT_HOME wins; otherwise ~/.paperchat.
func HomeDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".paperchat"), nil
}
