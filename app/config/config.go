package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.kongo.dev/kongo/xtime"
)

// Config represents the application configuration, backed by a filesystem for
// persistence.
type Config struct {
	Server   Server
	Passport Passport

	fs   vfs.FileSystem
	path string
}

// NewConfig creates a new Config instance with the specified filesystem
// and configuration file path.
func NewConfig(fs vfs.FileSystem, path string) *Config {
	return &Config{fs: fs, path: path}
}

// Load reads and parses the configuration file from the filesystem.
// If the file doesn't exist, it initializes with an empty configuration.
func (c *Config) Load() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}

	configJSON, err := vfs.ReadFile(c.fs, c.path)
	if err != nil && !vfs.IsErrNotExist(err) {
		return fmt.Errorf("failed reading configuration file: %w", err)
	}

	// Ensure that unmarshalling JSON doesn't fail if the file doesn't exist or is empty.
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}

	if err = json.Unmarshal(configJSON, c); err != nil {
		return fmt.Errorf("failed parsing configuration file: %w", err)
	}

	return nil
}

// Path returns the filesystem path where the configuration is stored.
func (c *Config) Path() string {
	return c.path
}

// Save writes the current configuration to the filesystem as JSON.
func (c *Config) Save() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}
	configJSON, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed serializing configuration data: %w", err)
	}
	if err = vfs.WriteFile(c.fs, c.path, configJSON, 0o644); err != nil {
		return fmt.Errorf("failed writing configuration file: %w", err)
	}

	return nil
}

// Server defines configuration options specific to the HTTP server.
type Server struct {
	// Address is the network address in [host]:port format the server will listen on.
	Address sql.Null[string] `json:"address"`
}

// Passport defines configuration options specific to passport issuance.
type Passport struct {
	// Expiration is the amount of time issued passports are valid for.
	// It serializes from/to xtime.Duration string values. Minimum value: 1 hour.
	Expiration sql.Null[time.Duration] `json:"expiration"`
}

type cfgWrapper struct {
	Server   srvCfgWrapper      `json:"server"`
	Passport passportCfgWrapper `json:"passport"`
}
type srvCfgWrapper struct {
	Address string `json:"address,omitempty"`
}
type passportCfgWrapper struct {
	Expiration string `json:"expiration,omitempty"`
}

// MarshalJSON implements custom JSON marshaling to convert sql.Null values
// to their underlying types, omitting invalid/null fields from the output.
func (c Config) MarshalJSON() ([]byte, error) {
	w := cfgWrapper{}

	if c.Server.Address.Valid {
		w.Server.Address = c.Server.Address.V
	}
	if c.Passport.Expiration.Valid {
		w.Passport.Expiration = xtime.FormatDuration(c.Passport.Expiration.V, time.Hour)
	}

	//nolint:wrapcheck // This is fine.
	return json.Marshal(w)
}

// UnmarshalJSON implements custom JSON unmarshaling to convert plain values
// into sql.Null types and parse duration strings into time.Duration values.
func (c *Config) UnmarshalJSON(data []byte) error {
	var w cfgWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	if w.Server.Address != "" {
		c.Server.Address = sql.Null[string]{V: w.Server.Address, Valid: true}
	}
	if w.Passport.Expiration != "" {
		dur, err := xtime.ParseDuration(w.Passport.Expiration)
		if err != nil {
			return fmt.Errorf("failed parsing passport expiration: %w", err)
		}
		c.Passport.Expiration = sql.Null[time.Duration]{V: dur, Valid: true}
	}

	return nil
}

// SetDefaults sets default configuration values if they weren't set already.
func (c *Config) SetDefaults() {
	if !c.Passport.Expiration.Valid {
		c.Passport.Expiration = sql.Null[time.Duration]{V: 24 * time.Hour, Valid: true}
	}
}
