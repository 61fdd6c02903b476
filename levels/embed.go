package levels

import (
	"embed"
	"encoding/json"
	"io/fs"
	"os"

	"github.com/jakecoffman/cp"
	"github.com/pkg/errors"
)

//go:embed *.json
var LevelsFS embed.FS

// Level is a tile grid. Layers hold Width*Height tile ids in row-major order;
// any non-zero id on a physics layer is solid ground.
type Level struct {
	Name      string      `json:"name"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	TileSize  float64     `json:"tile_size"`
	Layers    [][]int     `json:"layers"`
	LayerMeta []LayerMeta `json:"layer_meta,omitempty"`
}

type LayerMeta struct {
	Physics bool `json:"physics"`
}

func LoadLevelFromFS(name string) (*Level, error) {
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, errors.Wrap(err, "read level")
	}
	return decode(data)
}

// LoadLevelFile reads a level from disk, for levels outside the embedded set.
func LoadLevelFile(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read level")
	}
	return decode(data)
}

func decode(data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, errors.Wrap(err, "unmarshal level")
	}
	if lvl.Width <= 0 || lvl.Height <= 0 {
		return nil, errors.Errorf("level %q has invalid size %dx%d", lvl.Name, lvl.Width, lvl.Height)
	}
	for i, layer := range lvl.Layers {
		if len(layer) != lvl.Width*lvl.Height {
			return nil, errors.Errorf("level %q layer %d has %d tiles, want %d", lvl.Name, i, len(layer), lvl.Width*lvl.Height)
		}
	}
	if lvl.TileSize <= 0 {
		lvl.TileSize = 32
	}
	return &lvl, nil
}

func (l *Level) physicsLayer(i int) bool {
	// levels without meta treat every layer as solid
	if i >= len(l.LayerMeta) {
		return true
	}
	return l.LayerMeta[i].Physics
}

// Solid reports whether tile (x, y) blocks movement. Out of range is solid.
func (l *Level) Solid(x, y int) bool {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return true
	}
	idx := y*l.Width + x
	for i, layer := range l.Layers {
		if l.physicsLayer(i) && layer[idx] != 0 {
			return true
		}
	}
	return false
}

// SolidRects merges each row's runs of solid tiles into one box, in world
// pixels with Y down.
func (l *Level) SolidRects() []cp.BB {
	var out []cp.BB
	ts := l.TileSize
	for y := 0; y < l.Height; y++ {
		x := 0
		for x < l.Width {
			if !l.Solid(x, y) {
				x++
				continue
			}
			start := x
			for x < l.Width && l.Solid(x, y) {
				x++
			}
			out = append(out, cp.BB{
				L: float64(start) * ts,
				B: float64(y) * ts,
				R: float64(x) * ts,
				T: float64(y+1) * ts,
			})
		}
	}
	return out
}

func (l *Level) PixelSize() (float64, float64) {
	return float64(l.Width) * l.TileSize, float64(l.Height) * l.TileSize
}
