package cmd

import (
	"os"
	"path/filepath"
)

// SqlctlRootDir returns $SQLCTL_HOME, or ~/.config/sqlctl when it is not set.
func SqlctlRootDir() (dirPath string, err error) {
	if customEnv, ok := os.LookupEnv("SQLCTL_HOME"); ok && customEnv != "" {
		return customEnv, nil
	}
	var home string
	home, err = os.UserHomeDir()
	if err != nil {
		return
	}
	dirPath = filepath.Join(home, ".config", "sqlctl")
	return
}
