package prefabs

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

//go:embed *.yaml
var PrefabsFS embed.FS

// Dir is the on-disk directory checked before the embedded copies. The
// sandbox points it at a working tree so edits hot reload.
var Dir = "prefabs"

// Load reads a prefab, preferring the disk copy under Dir.
func Load(name string) ([]byte, error) {
	clean := cleanPrefabPath(name)
	if clean == "" {
		return nil, errors.New("prefabs: empty prefab name")
	}
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	data, err := PrefabsFS.ReadFile(clean)
	if err != nil {
		return nil, errors.Wrapf(err, "prefabs: read %s", clean)
	}
	return data, nil
}

// LoadScript reads a hook script, preferring the disk copy under Dir.
func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	data, err := ScriptsFS.ReadFile(clean)
	if err != nil {
		return nil, errors.Wrapf(err, "prefabs: read script %s", clean)
	}
	return data, nil
}

func ModTime(name string) (time.Time, bool) {
	info, err := os.Stat(diskPath(cleanPrefabPath(name)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func cleanPrefabPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	return strings.TrimPrefix(s, "prefabs/")
}

func cleanScriptPath(path string) string {
	s := filepath.ToSlash(path)
	s = strings.TrimPrefix(s, "prefabs/")
	s = strings.TrimPrefix(s, "scripts/")
	return "scripts/" + s
}

func diskPath(clean string) string {
	return filepath.Join(Dir, filepath.FromSlash(clean))
}

// IsScript reports whether a changed path is a hook script.
func IsScript(path string) bool {
	return isScriptFile(path)
}

// Name returns the prefab or script name for a changed path, as passed to
// Load or LoadScript.
func Name(path string) string {
	return filepath.Base(path)
}
