// Package config loads the server's YAML configuration, trying a handful
// of conventional install locations before giving up.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Config is the top-level configuration for the mail server: where its
// Mongo-backed store lives, the LMTP and HTTP API listeners, and the
// path of the local Maildir index database.
type Config struct {
	Domain string `yaml:"domain"`

	Mongo MongoConfig `yaml:"mongo"`
	LMTP  LMTPConfig  `yaml:"lmtp"`
	API   APIConfig   `yaml:"api"`

	MaildirIndexPath string `yaml:"maildirIndexPath"`
}

// MongoConfig holds the connection details for the message/user store.
type MongoConfig struct {
	URL      string `yaml:"url"`
	Database string `yaml:"database"`
}

// LMTPConfig configures the LMTP delivery listener.
type LMTPConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Banner      string `yaml:"banner"`
	MaxSize     int64  `yaml:"maxSize"`
	SpamHeader  string `yaml:"spamHeader"`
}

// APIConfig configures the HTTP REST API listener and its auth secret.
type APIConfig struct {
	Port      string `yaml:"port"`
	JWTSecret string `yaml:"jwtSecret"`
}

var candidatePaths = []string{
	"/etc/mailcore/mailcore.yaml",
	"./config/mailcore.yaml",
	"./mailcore.yaml",
	"config/mailcore.yaml",
}

// Default returns the configuration used when no file is found on any
// candidate path, suitable for local development.
func Default() *Config {
	return &Config{
		Domain: "localhost",
		Mongo: MongoConfig{
			URL:      "mongodb://localhost:27017",
			Database: "mailcore",
		},
		LMTP: LMTPConfig{
			Host:    "0.0.0.0",
			Port:    2424,
			Banner:  "mailcore LMTP",
			MaxSize: 32 << 20,
		},
		API: APIConfig{
			Port: "8080",
		},
		MaildirIndexPath: "./mailcore-index.db",
	}
}

// Load reads the first candidate config file that exists, falling back to
// Default when none are present. An explicit path, if non-empty, is tried
// first and any error reading it is returned rather than silently skipped.
func Load(explicitPath string) (*Config, error) {
	paths := candidatePaths
	if explicitPath != "" {
		paths = append([]string{explicitPath}, paths...)
	}

	for i, p := range paths {
		clean := filepath.Clean(p)
		data, err := os.ReadFile(clean)
		if err != nil {
			if os.IsNotExist(err) && !(i == 0 && explicitPath != "") {
				continue
			}
			return nil, fmt.Errorf("failed to read config at %s: %v", clean, err)
		}

		cfg := Default()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config at %s: %v", clean, err)
		}
		return cfg, nil
	}

	return Default(), nil
}
