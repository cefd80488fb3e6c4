// Package config loads the engine configuration from a YAML file and
// reconciles it with command-line flags. Flags given explicitly win over
// the file; everything else falls back to the file, then to defaults.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/voxelforge/voxelforge/internal/engine/voxel"
)

// Duration decodes YAML scalars like "50ms" or "2s" into a time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds the engine configuration.
type Config struct {
	ListenAddr   string   `yaml:"listen_addr"`
	RenderRadius int      `yaml:"render_radius"`
	Workers      int      `yaml:"workers"`
	QueueSize    int      `yaml:"queue_size"`
	TickInterval Duration `yaml:"tick_interval"`

	// AtlasPath points at a texture atlas descriptor; empty means the
	// built-in layout. AtlasImage optionally names the image to validate
	// the descriptor against.
	AtlasPath  string `yaml:"atlas_path"`
	AtlasImage string `yaml:"atlas_image"`

	// MeshCachePath enables the on-disk mesh cache when non-empty.
	MeshCachePath string `yaml:"mesh_cache_path"`

	Worldgen voxel.Params `yaml:"worldgen"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		ListenAddr:   ":8420",
		RenderRadius: 8,
		Workers:      4,
		QueueSize:    256,
		TickInterval: Duration(50 * time.Millisecond),
		Worldgen:     voxel.DefaultParams(),
	}
}

// Load reads and decodes a YAML config file. Unknown keys are an error so a
// typoed tuning knob fails loudly instead of silently using the default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.RenderRadius < 0 {
		return fmt.Errorf("render_radius %d is negative", c.RenderRadius)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers %d, need at least 1", c.Workers)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("queue_size %d, need at least 1", c.QueueSize)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval %s is not positive", time.Duration(c.TickInterval))
	}
	if c.Worldgen.ChunkSize < 1 {
		return fmt.Errorf("worldgen chunk_size %d, need at least 1", c.Worldgen.ChunkSize)
	}
	if c.Worldgen.WorldHeight < 2 {
		return fmt.Errorf("worldgen world_height %d, need at least 2", c.Worldgen.WorldHeight)
	}
	return nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["listen"] {
		cfg.ListenAddr = fromFile.ListenAddr
	}
	if !explicitFlags["radius"] {
		cfg.RenderRadius = fromFile.RenderRadius
	}
	if !explicitFlags["workers"] {
		cfg.Workers = fromFile.Workers
	}
	if !explicitFlags["queue"] {
		cfg.QueueSize = fromFile.QueueSize
	}
	if !explicitFlags["tick"] {
		cfg.TickInterval = fromFile.TickInterval
	}
	if !explicitFlags["atlas"] {
		cfg.AtlasPath = fromFile.AtlasPath
	}
	if !explicitFlags["atlas-image"] {
		cfg.AtlasImage = fromFile.AtlasImage
	}
	if !explicitFlags["mesh-cache"] {
		cfg.MeshCachePath = fromFile.MeshCachePath
	}
	if !explicitFlags["seed"] {
		cfg.Worldgen = fromFile.Worldgen
	} else {
		seed := cfg.Worldgen.Seed
		cfg.Worldgen = fromFile.Worldgen
		cfg.Worldgen.Seed = seed
	}
}
