package prefabs

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type PointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// SpawnSpec places one agent prefab. Overrides are merged over the prefab
// using its YAML keys.
type SpawnSpec struct {
	Prefab    string         `yaml:"prefab"`
	X         float64        `yaml:"x"`
	Y         float64        `yaml:"y"`
	Facing    int            `yaml:"facing"`
	Overrides map[string]any `yaml:"overrides"`
}

// TargetSpec is the scripted stand-in the agents hunt.
type TargetSpec struct {
	X         float64     `yaml:"x"`
	Y         float64     `yaml:"y"`
	Width     float64     `yaml:"width"`
	Height    float64     `yaml:"height"`
	Health    float64     `yaml:"health"`
	Speed     float64     `yaml:"speed"`
	Pause     float64     `yaml:"pause"`
	Waypoints []PointSpec `yaml:"waypoints"`
}

type SceneSpec struct {
	Name   string      `yaml:"name"`
	Level  string      `yaml:"level"`
	Target TargetSpec  `yaml:"target"`
	Agents []SpawnSpec `yaml:"agents"`
}

func LoadSceneSpec(filename string) (SceneSpec, error) {
	scene, err := LoadSpec[SceneSpec](filename)
	if err != nil {
		return SceneSpec{}, err
	}
	if scene.Level == "" {
		return SceneSpec{}, errors.Wrapf(ErrInvalidSpec, "scene %s has no level", filename)
	}
	return scene, nil
}

// ApplyOverrides decodes raw over a copy of base, so keys missing from raw
// keep the prefab's values.
func ApplyOverrides[T any](base T, raw map[string]any) (T, error) {
	if len(raw) == 0 {
		return base, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return base, errors.Wrap(err, "prefabs: encode overrides")
	}
	out := base
	if err := yaml.Unmarshal(b, &out); err != nil {
		return base, errors.Wrap(err, "prefabs: decode overrides")
	}
	return out, nil
}

// ResolveSpawn loads the spawn's prefab and applies its overrides.
func ResolveSpawn(s SpawnSpec) (AgentSpec, error) {
	spec, err := LoadSpec[AgentSpec](s.Prefab)
	if err != nil {
		return AgentSpec{}, err
	}
	spec, err = ApplyOverrides(spec, s.Overrides)
	if err != nil {
		return AgentSpec{}, err
	}
	spec.Normalize()
	if err := spec.Validate(); err != nil {
		return AgentSpec{}, errors.Wrapf(err, "prefabs: %s", s.Prefab)
	}
	return spec, nil
}
