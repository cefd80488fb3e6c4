// Package meshcache persists generated chunk meshes in a SQLite database.
// Meshes are derived data: the cache is keyed by worldgen seed so a tuning
// change invalidates naturally, and a miss just falls through to the mesher.
package meshcache

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/voxelforge/voxelforge/internal/engine/mesh"
	"github.com/voxelforge/voxelforge/internal/engine/voxel"
)

const schema = `
CREATE TABLE IF NOT EXISTS meshes (
	seed INTEGER NOT NULL,
	cx   INTEGER NOT NULL,
	cz   INTEGER NOT NULL,
	data BLOB    NOT NULL,
	PRIMARY KEY (seed, cx, cz)
);`

// Cache is a seed-scoped chunk mesh store. Safe for concurrent use; the
// underlying pool serializes writers.
type Cache struct {
	db   *sql.DB
	seed int64
	enc  *zstd.Encoder
	dec  *zstd.Decoder
}

// Open creates or opens the cache database at path.
func Open(path string, seed int64) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open mesh cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init mesh cache schema: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init mesh cache compressor: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init mesh cache decompressor: %w", err)
	}
	return &Cache{db: db, seed: seed, enc: enc, dec: dec}, nil
}

// Get returns the cached mesh for a chunk. ok is false on a miss; a
// corrupted row is treated as a miss after being deleted.
func (c *Cache) Get(pos voxel.ChunkPos) (mesh.Buffer, bool, error) {
	var blob []byte
	err := c.db.QueryRow(
		`SELECT data FROM meshes WHERE seed = ? AND cx = ? AND cz = ?`,
		c.seed, pos.X, pos.Z,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return mesh.Buffer{}, false, nil
	}
	if err != nil {
		return mesh.Buffer{}, false, fmt.Errorf("mesh cache lookup (%d,%d): %w", pos.X, pos.Z, err)
	}

	b, err := c.decode(blob)
	if err != nil {
		c.db.Exec(`DELETE FROM meshes WHERE seed = ? AND cx = ? AND cz = ?`, c.seed, pos.X, pos.Z)
		return mesh.Buffer{}, false, nil
	}
	return b, true, nil
}

// Put stores a chunk mesh, replacing any previous entry.
func (c *Cache) Put(pos voxel.ChunkPos, b *mesh.Buffer) error {
	blob, err := c.encode(b)
	if err != nil {
		return fmt.Errorf("encode mesh (%d,%d): %w", pos.X, pos.Z, err)
	}
	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO meshes (seed, cx, cz, data) VALUES (?, ?, ?, ?)`,
		c.seed, pos.X, pos.Z, blob,
	)
	if err != nil {
		return fmt.Errorf("mesh cache store (%d,%d): %w", pos.X, pos.Z, err)
	}
	return nil
}

// Wrap turns a mesh function into a read-through cached one. Cache errors
// never block generation; they are reported through onErr and the mesh is
// computed anyway.
func (c *Cache) Wrap(fn func(voxel.ChunkPos) mesh.Buffer, onErr func(error)) func(voxel.ChunkPos) mesh.Buffer {
	return func(pos voxel.ChunkPos) mesh.Buffer {
		if b, ok, err := c.Get(pos); err == nil && ok {
			return b
		} else if err != nil && onErr != nil {
			onErr(err)
		}
		b := fn(pos)
		if err := c.Put(pos, &b); err != nil && onErr != nil {
			onErr(err)
		}
		return b
	}
}

// Close releases the database and codec resources.
func (c *Cache) Close() error {
	c.enc.Close()
	c.dec.Close()
	return c.db.Close()
}

func (c *Cache) encode(b *mesh.Buffer) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, err
	}
	return c.enc.EncodeAll(buf.Bytes(), nil), nil
}

func (c *Cache) decode(blob []byte) (mesh.Buffer, error) {
	raw, err := c.dec.DecodeAll(blob, nil)
	if err != nil {
		return mesh.Buffer{}, err
	}
	var b mesh.Buffer
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&b); err != nil {
		return mesh.Buffer{}, err
	}
	return b, nil
}
