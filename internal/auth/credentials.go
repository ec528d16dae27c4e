// Package auth resolves the credentials tmsctl uses against the API:
// the bearer token, and optionally a base URL override from the CLI
// config file.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TheMinarctic/rahtash-tms-admin/pkg/client"
)

// DefaultConfigPath is where tmsctl looks for its config file unless
// told otherwise.
const DefaultConfigPath = "~/.tms/config.yaml"

// Source identifies where credentials were resolved from, for startup
// logging.
type Source string

const (
	SourceNone       Source = "none"
	SourceCLIEnv     Source = "env:TMSCTL_TOKEN"
	SourceSharedEnv  Source = "env:TMS_TOKEN"
	SourceConfigFile Source = "config_file"
)

// Credentials is the resolved result. BaseURL is set only when the
// config file carries one; the caller decides whether it applies.
type Credentials struct {
	Token   string
	BaseURL string
	Source  Source
}

// Provider adapts the resolved token for injection into the HTTP client.
func (c Credentials) Provider() client.TokenProvider {
	return client.StaticToken(c.Token)
}

// Options controls resolution.
type Options struct {
	// AllowConfigFile permits falling back to the config file token.
	// Environment variables always apply.
	AllowConfigFile bool
	// ConfigPath overrides DefaultConfigPath.
	ConfigPath string
}

// tmsctl config file shape:
//
//	base_url: https://api.example.com
//	auth:
//	  token: <bearer token>
type fileConfig struct {
	BaseURL string `yaml:"base_url"`
	Auth    struct {
		Token string `yaml:"token"`
	} `yaml:"auth"`
}

var envSources = []struct {
	key    string
	source Source
}{
	{"TMSCTL_TOKEN", SourceCLIEnv},
	{"TMS_TOKEN", SourceSharedEnv},
}

// Resolve returns credentials using deterministic precedence: the
// tmsctl-specific env var wins over the shared one, and the config file
// is consulted last. A missing config file is not an error; absent
// credentials come back with SourceNone so callers can warn once.
func Resolve(opts Options) (Credentials, error) {
	for _, env := range envSources {
		if token := strings.TrimSpace(os.Getenv(env.key)); token != "" {
			return Credentials{Token: token, Source: env.source}, nil
		}
	}

	if !opts.AllowConfigFile {
		return Credentials{Source: SourceNone}, nil
	}

	fileCfg, err := readConfigFile(opts.ConfigPath)
	if err != nil {
		return Credentials{}, err
	}
	if fileCfg == nil {
		return Credentials{Source: SourceNone}, nil
	}

	creds := Credentials{
		Token:   strings.TrimSpace(fileCfg.Auth.Token),
		BaseURL: strings.TrimRight(strings.TrimSpace(fileCfg.BaseURL), "/"),
		Source:  SourceConfigFile,
	}
	if creds.Token == "" && creds.BaseURL == "" {
		creds.Source = SourceNone
	}
	return creds, nil
}

// readConfigFile returns nil without error when the file does not exist.
func readConfigFile(path string) (*fileConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultConfigPath
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("expanding config path %q: %w", path, err)
		}
		path = filepath.Join(home, rest)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading tmsctl config %s: %w", path, err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing tmsctl config %s: %w", path, err)
	}
	return &cfg, nil
}
