package voxel

import "math"

// ChunkPos identifies a vertical column of the world with a fixed S×S
// horizontal footprint spanning the full world height. Chunk coordinates
// partition the horizontal plane exhaustively and without overlap.
type ChunkPos struct {
	X, Z int
}

// ChunkFromWorld maps a world-space position onto the chunk containing it.
func ChunkFromWorld(x, z float64, size int) ChunkPos {
	return ChunkPos{
		X: int(math.Floor(x / float64(size))),
		Z: int(math.Floor(z / float64(size))),
	}
}

// ChunkFromBlock maps integer block coordinates onto their chunk.
func ChunkFromBlock(x, z, size int) ChunkPos {
	return ChunkPos{X: floorDiv(x, size), Z: floorDiv(z, size)}
}

// WithinRadius reports whether p lies inside the chessboard-distance square
// of radius r around center. The same metric governs loading, unloading, and
// stale-result containment.
func (p ChunkPos) WithinRadius(center ChunkPos, r int) bool {
	dx := p.X - center.X
	if dx < 0 {
		dx = -dx
	}
	dz := p.Z - center.Z
	if dz < 0 {
		dz = -dz
	}
	return dx <= r && dz <= r
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
