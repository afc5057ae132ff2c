// Package config manages the lanscan preferences file.
//
// The file holds scan defaults only. Scan results are never persisted.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/lanscan/config.yaml or $HOME/.config/lanscan/config.yaml
//   - macOS: $HOME/.config/lanscan/config.yaml
//   - Windows: %LOCALAPPDATA%\lanscan\config.yaml
//
// # Usage Example
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	scanner.Timeout = cfg.Preferences.Timeout()
//
// A missing file is not an error; Load returns the defaults. Save writes
// through a temporary file and a rename so a crash never leaves a partial file.
package config
