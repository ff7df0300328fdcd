package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/drone/envsubst"
	"sigs.k8s.io/yaml"
)

// Config is the eventctl configuration file. References like ${NATS_URL} are
// expanded from the environment before parsing.
type Config struct {
	Transport *string `json:"transport,omitempty"`
	URL       *string `json:"url,omitempty"`
	Prefix    *string `json:"prefix,omitempty"`
	Codec     *string `json:"codec,omitempty"`
}

const configName = ".eventctl"

// GetConfig merges the config files found in the user's home directory, the
// user config directory and the working directory, in that order, then
// applies EVENTCTL_* environment overrides. An explicit path replaces the
// file search and must exist.
func GetConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		add, err := ReadConfig(path)
		if err != nil {
			return nil, err
		}
		MergeConfig(&cfg, add)
	} else {
		var candidates []string
		if dir, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(dir, configName))
		}
		if dir, err := os.UserConfigDir(); err == nil {
			candidates = append(candidates, filepath.Join(dir, configName))
		}
		candidates = append(candidates, configName)

		for _, p := range candidates {
			add, err := ReadConfig(p)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
			MergeConfig(&cfg, add)
		}
	}

	if v := os.Getenv("EVENTCTL_TRANSPORT"); v != "" {
		cfg.Transport = &v
	}
	if v := os.Getenv("EVENTCTL_URL"); v != "" {
		cfg.URL = &v
	}
	return &cfg, nil
}

// ReadConfig reads one config file.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded, err := envsubst.EvalEnv(string(data))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// MergeConfig copies the fields set in add onto cfg.
func MergeConfig(cfg *Config, add *Config) {
	if add == nil {
		return
	}
	if add.Transport != nil {
		cfg.Transport = add.Transport
	}
	if add.URL != nil {
		cfg.URL = add.URL
	}
	if add.Prefix != nil {
		cfg.Prefix = add.Prefix
	}
	if add.Codec != nil {
		cfg.Codec = add.Codec
	}
}
