package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// File represents the optional antseek configuration file.
type File struct {
	Defaults Defaults `toml:"defaults"`
}

// Defaults holds persistent flag defaults, applied to flags not set on the
// command line.
type Defaults struct {
	Workers      *int    `toml:"workers"`
	OutputFormat *string `toml:"output_format"`
	Verbose      *bool   `toml:"verbose"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "antseek", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero File (no
// error) if the file does not exist; the file is always optional.
func Load() (File, error) {
	path := Path()
	if path == "" {
		return File{}, nil
	}

	var f File
	_, err := toml.DecodeFile(path, &f)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return File{}, nil
		}
		return File{}, err
	}
	return f, nil
}
