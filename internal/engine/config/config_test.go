package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesFileValues(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":9000"
render_radius: 12
workers: 8
tick_interval: 100ms
worldgen:
  seed: 42
  chunk_size: 32
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9000" {
		t.Errorf("ListenAddr = %q, want :9000", cfg.ListenAddr)
	}
	if cfg.RenderRadius != 12 {
		t.Errorf("RenderRadius = %d, want 12", cfg.RenderRadius)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.TickInterval != Duration(100*time.Millisecond) {
		t.Errorf("TickInterval = %s, want 100ms", time.Duration(cfg.TickInterval))
	}
	if cfg.Worldgen.Seed != 42 {
		t.Errorf("Worldgen.Seed = %d, want 42", cfg.Worldgen.Seed)
	}
	if cfg.Worldgen.ChunkSize != 32 {
		t.Errorf("Worldgen.ChunkSize = %d, want 32", cfg.Worldgen.ChunkSize)
	}
	// Keys absent from the file keep their defaults.
	if cfg.QueueSize != Default().QueueSize {
		t.Errorf("QueueSize = %d, want default %d", cfg.QueueSize, Default().QueueSize)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "listen_adr: \":9000\"\n")

	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted a config with a misspelled key")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"negative radius", "render_radius: -1\n"},
		{"zero workers", "workers: 0\n"},
		{"zero queue", "queue_size: 0\n"},
		{"zero tick", "tick_interval: 0s\n"},
		{"zero chunk size", "worldgen:\n  chunk_size: 0\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.body)
			if _, err := Load(path); err == nil {
				t.Fatalf("Load accepted %s", tc.name)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load of a missing file did not fail")
	} else if !strings.Contains(err.Error(), "read config") {
		t.Errorf("error %q does not wrap the read failure", err)
	}
}

func TestMergePrefersExplicitFlags(t *testing.T) {
	cfg := Default()
	cfg.ListenAddr = ":7777"
	cfg.RenderRadius = 3
	cfg.Worldgen.Seed = 99

	fromFile := Default()
	fromFile.ListenAddr = ":9000"
	fromFile.RenderRadius = 12
	fromFile.Workers = 8
	fromFile.Worldgen.Seed = 42
	fromFile.Worldgen.ChunkSize = 32

	Merge(cfg, fromFile, map[string]bool{"listen": true, "seed": true})

	if cfg.ListenAddr != ":7777" {
		t.Errorf("explicit -listen overridden: got %q", cfg.ListenAddr)
	}
	if cfg.RenderRadius != 12 {
		t.Errorf("RenderRadius = %d, want file value 12", cfg.RenderRadius)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want file value 8", cfg.Workers)
	}
	// An explicit -seed keeps the flag seed while the rest of the worldgen
	// tuning still comes from the file.
	if cfg.Worldgen.Seed != 99 {
		t.Errorf("explicit -seed overridden: got %d", cfg.Worldgen.Seed)
	}
	if cfg.Worldgen.ChunkSize != 32 {
		t.Errorf("Worldgen.ChunkSize = %d, want file value 32", cfg.Worldgen.ChunkSize)
	}
}
