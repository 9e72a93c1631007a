// Package studio holds the editor subsystem's persisted configuration:
// recent files, last-used directories, start mode, scale and fullscreen
// flag, and an autosave journal (JSON via encoding/json under os.UserConfigDir, a
// best-effort autosave journal alongside it).
package studio

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tic-editor-core/internal/host"
	"tic-editor-core/internal/router"
)

const maxRecentFiles = 15

// Config is the editor subsystem's persisted settings.
type Config struct {
	LastCartDir   string       `json:"last_cart_dir"`
	LastCartPath  string       `json:"last_cart_path"`
	StartMode     router.Mode  `json:"start_mode"`
	FullscreenUI  bool         `json:"fullscreen"`
	Scale         int          `json:"scale"`
	RecentCarts   []string     `json:"recent_carts"`
}

// DefaultConfig returns the configuration a first run starts with.
func DefaultConfig() Config {
	return Config{
		StartMode:   router.ModeCode,
		Scale:       3,
		RecentCarts: []string{},
	}
}

// ConfigPath returns the path studio.Load/Save use by default, rooted at
// the OS's per-user config directory. It returns "" if the OS reports no
// such directory (the caller should treat that as "do not persist").
func ConfigPath(sys host.System) string {
	cfgDir, err := os.UserConfigDir()
	if err != nil || cfgDir == "" {
		return ""
	}
	return filepath.Join(cfgDir, "tic-editor-core", "config.json")
}

// Load reads and validates Config from path via sys. A missing file
// yields DefaultConfig with no error; a malformed file also falls back to
// defaults (surfacing the parse error to the caller for logging, not as a
// fatal condition).
func Load(sys host.System, path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := sys.ReadFile(path)
	if err != nil {
		var nf *host.NotFoundError
		if errors.As(err, &nf) {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if len(data) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.Scale <= 0 {
		c.Scale = 3
	}
	if int(c.StartMode) < 0 || int(c.StartMode) > int(router.ModeMusic) {
		c.StartMode = router.ModeCode
	}
	c.RecentCarts = normalizeRecent(c.RecentCarts)
}

func normalizeRecent(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
		if len(out) >= maxRecentFiles {
			break
		}
	}
	return out
}

// Save marshals cfg as indented JSON and writes it to path via sys. A
// no-op if path is "".
func Save(sys host.System, path string, cfg Config) error {
	if path == "" {
		return nil
	}
	cfg.normalize()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("studio: marshal config: %w", err)
	}
	return sys.WriteFile(path, data)
}

// RememberCart pushes path to the front of RecentCarts, de-duplicating and
// trimming to maxRecentFiles.
func (c *Config) RememberCart(path string) {
	filtered := make([]string, 0, len(c.RecentCarts)+1)
	filtered = append(filtered, path)
	for _, p := range c.RecentCarts {
		if p != path {
			filtered = append(filtered, p)
		}
	}
	c.RecentCarts = normalizeRecent(filtered)
	c.LastCartPath = path
	c.LastCartDir = filepath.Dir(path)
}

// AutosaveJournal is a single autosave snapshot of a cartridge's code
// region, recovered on next launch if the process exited uncleanly.
type AutosaveJournal struct {
	SavedAt    time.Time `json:"saved_at"`
	SourcePath string    `json:"source_path"`
	Code       string    `json:"code"`
}

// AutosavePath derives the autosave journal's path from the config
// path's directory.
func AutosavePath(configPath string) string {
	if configPath == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(configPath), "autosave.json")
}

// WriteAutosave persists j to path via sys. A no-op if path is "".
func WriteAutosave(sys host.System, path string, j AutosaveJournal) error {
	if path == "" {
		return nil
	}
	data, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("studio: marshal autosave: %w", err)
	}
	return sys.WriteFile(path, data)
}

// ReadAutosave reads and decodes an autosave journal from path via sys.
// Reports ok=false (no error) if no journal exists.
func ReadAutosave(sys host.System, path string) (j AutosaveJournal, ok bool, err error) {
	if path == "" {
		return AutosaveJournal{}, false, nil
	}
	data, readErr := sys.ReadFile(path)
	if readErr != nil {
		var nf *host.NotFoundError
		if errors.As(readErr, &nf) || os.IsNotExist(readErr) {
			return AutosaveJournal{}, false, nil
		}
		return AutosaveJournal{}, false, readErr
	}
	if len(data) == 0 {
		return AutosaveJournal{}, false, nil
	}
	if unmarshalErr := json.Unmarshal(data, &j); unmarshalErr != nil {
		return AutosaveJournal{}, false, unmarshalErr
	}
	return j, true, nil
}

// ClearAutosave empties the autosave journal at path by writing zero
// bytes to it; ReadAutosave treats an empty journal as absent. The file
// itself is not deleted.
func ClearAutosave(sys host.System, path string) error {
	if path == "" {
		return nil
	}
	return sys.WriteFile(path, nil)
}
