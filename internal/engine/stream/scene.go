package stream

import (
	"github.com/google/uuid"

	"github.com/voxelforge/voxelforge/internal/engine/mesh"
	"github.com/voxelforge/voxelforge/internal/engine/voxel"
)

// Renderer is the display collaborator. The manager hands it finished mesh
// buffers and tears entities down by handle; it never inspects renderer
// internals.
type Renderer interface {
	Render(pos voxel.ChunkPos, b *mesh.Buffer) (uuid.UUID, error)
	Discard(id uuid.UUID)
}

// Physics is the collision collaborator, consuming the trimesh view of the
// same buffers.
type Physics interface {
	AddCollider(pos voxel.ChunkPos, c mesh.Collision) (uuid.UUID, error)
	RemoveCollider(id uuid.UUID)
}

// Viewer supplies the world-space position the manager recenters on each
// tick. The manager only reads it.
type Viewer interface {
	Position() (x, y, z float64)
}

// NopRenderer satisfies Renderer without a display; handy for headless runs.
type NopRenderer struct{}

func (NopRenderer) Render(voxel.ChunkPos, *mesh.Buffer) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (NopRenderer) Discard(uuid.UUID) {}

// NopPhysics satisfies Physics without a collision backend.
type NopPhysics struct{}

func (NopPhysics) AddCollider(voxel.ChunkPos, mesh.Collision) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (NopPhysics) RemoveCollider(uuid.UUID) {}
