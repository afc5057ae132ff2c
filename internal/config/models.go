package config

import (
	"fmt"
	"time"
)

// CurrentVersion is the only file format version understood
const CurrentVersion = 1

// Output formats for scan results
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats lists every accepted output format
var Formats = []string{FormatTable, FormatJSON, FormatYAML}

// Config represents the entire configuration file
type Config struct {
	Version     int          `yaml:"version"`
	Preferences *Preferences `yaml:"preferences,omitempty"`
}

// Preferences are the defaults applied to every scan. Command line flags
// override them when set explicitly.
type Preferences struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`      // Listening window
	Port           int    `yaml:"port"`                 // Discovery port
	ResolveNames   bool   `yaml:"resolve_names"`        // Reverse DNS lookups for peers
	DNSServer      string `yaml:"dns_server,omitempty"` // host[:port]; empty uses the system resolver
	Format         string `yaml:"format"`               // table, json or yaml
	AssumeYes      bool   `yaml:"assume_yes"`           // Skip the confirmation prompt
}

// New creates a Config with default values
func New() *Config {
	return &Config{
		Version:     CurrentVersion,
		Preferences: DefaultPreferences(),
	}
}

// DefaultPreferences returns the built-in scan defaults
func DefaultPreferences() *Preferences {
	return &Preferences{
		TimeoutSeconds: 60,
		Port:           17500,
		ResolveNames:   true,
		Format:         FormatTable,
	}
}

// Timeout returns the listening window as a duration
func (p *Preferences) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Validate checks that every preference is usable
func (p *Preferences) Validate() error {
	if p.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", p.TimeoutSeconds)
	}
	if p.Port < 1 || p.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", p.Port)
	}
	if !ValidFormat(p.Format) {
		return fmt.Errorf("unknown format %q (expected one of %v)", p.Format, Formats)
	}
	return nil
}

// ValidFormat reports whether f names a supported output format
func ValidFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}
