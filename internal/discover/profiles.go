package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"
)

// Profile is one entry of a Firefox profiles.ini.
type Profile struct {
	Name    string
	Path    string
	Default bool
}

// StorageDir is where Firefox keeps per-origin storage for the profile.
func (p Profile) StorageDir() string {
	return filepath.Join(p.Path, "storage", "default")
}

// DefaultProfilesRoot returns the OS-specific directory holding profiles.ini.
func DefaultProfilesRoot() string {
	home := homeDir()
	if home == "" {
		return ""
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Firefox")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Mozilla", "Firefox")
		}
		return filepath.Join(home, "AppData", "Roaming", "Mozilla", "Firefox")
	default:
		return filepath.Join(home, ".mozilla", "firefox")
	}
}

// Profiles parses root/profiles.ini. Relative profile paths are resolved
// against root. A profile is marked Default when its section says so or an
// [Install*] section points at it.
func Profiles(root string) ([]Profile, error) {
	cfg, err := ini.Load(filepath.Join(root, "profiles.ini"))
	if err != nil {
		return nil, fmt.Errorf("discover: reading profiles.ini: %w", err)
	}

	installDefaults := make(map[string]bool)
	for _, sec := range cfg.Sections() {
		if strings.HasPrefix(sec.Name(), "Install") {
			if p := sec.Key("Default").String(); p != "" {
				installDefaults[filepath.ToSlash(p)] = true
			}
		}
	}

	var profiles []Profile
	for _, sec := range cfg.Sections() {
		if !strings.HasPrefix(sec.Name(), "Profile") {
			continue
		}
		raw := sec.Key("Path").String()
		if raw == "" {
			continue
		}
		path := filepath.FromSlash(raw)
		if sec.Key("IsRelative").MustBool(true) {
			path = filepath.Join(root, path)
		}
		profiles = append(profiles, Profile{
			Name:    sec.Key("Name").MustString(filepath.Base(path)),
			Path:    path,
			Default: sec.Key("Default").MustInt(0) == 1 || installDefaults[filepath.ToSlash(raw)],
		})
	}
	return profiles, nil
}
