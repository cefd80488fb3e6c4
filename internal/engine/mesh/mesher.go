package mesh

import (
	"github.com/voxelforge/voxelforge/internal/engine/atlas"
	"github.com/voxelforge/voxelforge/internal/engine/voxel"
)

// Classifier is the voxel source the mesher samples. voxel.Classifier
// satisfies it; tests substitute fixed grids.
type Classifier interface {
	Classify(x, y, z int) voxel.Material
}

// Face directions, in neighbor-test order.
type face int

const (
	faceTop face = iota
	faceBottom
	faceRight
	faceLeft
	faceFront
	faceBack
)

var faceOffsets = [6][3]int{
	{0, 1, 0}, {0, -1, 0}, {1, 0, 0}, {-1, 0, 0}, {0, 0, 1}, {0, 0, -1},
}

var faceNormals = [6][3]float32{
	{0, 1, 0}, {0, -1, 0}, {1, 0, 0}, {-1, 0, 0}, {0, 0, 1}, {0, 0, -1},
}

// liquidRecess lowers the top face of liquids below the block boundary so
// their surface reads as a surface.
const liquidRecess = 0.1

// Mesher converts a chunk's voxel volume into a culled triangle mesh. It
// has no mutable state beyond its configuration: Mesh is safe to call from
// any number of worker goroutines.
type Mesher struct {
	classifier Classifier
	atlas      *atlas.Atlas
	size       int
	height     int
}

// NewMesher builds a mesher over a classifier and an atlas for chunks of
// the given footprint and height.
func NewMesher(c Classifier, a *atlas.Atlas, size, height int) *Mesher {
	return &Mesher{classifier: c, atlas: a, size: size, height: height}
}

// Mesh samples the chunk's full volume and emits one quad per visible face.
//
// The volume is classified into a dense grid before any face logic runs:
// face visibility needs neighbor lookups, and those must hit the grid, not
// re-trigger generation. Neighbors outside the chunk's horizontal bounds
// are re-classified at their world position (halo sampling); neighbors
// outside the vertical range count as exposed.
func (m *Mesher) Mesh(pos voxel.ChunkPos) Buffer {
	s, h := m.size, m.height
	ox, oz := pos.X*s, pos.Z*s

	grid := make([]voxel.Material, s*h*s)
	for x := 0; x < s; x++ {
		for y := 0; y < h; y++ {
			for z := 0; z < s; z++ {
				grid[(x*h+y)*s+z] = m.classifier.Classify(ox+x, y, oz+z)
			}
		}
	}

	var b Buffer
	for x := 0; x < s; x++ {
		for y := 0; y < h; y++ {
			for z := 0; z < s; z++ {
				mat := grid[(x*h+y)*s+z]
				if mat == voxel.Air {
					continue
				}

				for d := faceTop; d <= faceBack; d++ {
					off := faceOffsets[d]
					nx, ny, nz := x+off[0], y+off[1], z+off[2]

					if ny < 0 || ny >= h {
						// Vertical out-of-range is always exposed.
						m.emit(&b, ox+x, y, oz+z, d, mat)
						continue
					}

					var neighbor voxel.Material
					if nx < 0 || nx >= s || nz < 0 || nz >= s {
						neighbor = m.classifier.Classify(ox+nx, ny, oz+nz)
					} else {
						neighbor = grid[(nx*h+ny)*s+nz]
					}

					if faceVisible(mat, neighbor) {
						m.emit(&b, ox+x, y, oz+z, d, mat)
					}
				}
			}
		}
	}
	return b
}

// faceVisible decides whether a quad separates cur from its neighbor.
// Liquids are meshed on both sides of their boundary with solids, so a
// solid facing any liquid emits; liquid against same- or other-category
// liquid does not.
func faceVisible(cur, neighbor voxel.Material) bool {
	if neighbor == voxel.Air {
		return true
	}
	return cur.Solid() && neighbor.Liquid()
}

// emit appends one face: four vertices in the clockwise winding for the
// direction, one shared normal, four UV corners, and the 0,1,2 0,2,3 index
// pattern.
func (m *Mesher) emit(b *Buffer, wx, wy, wz int, d face, mat voxel.Material) {
	x, y, z := float32(wx), float32(wy), float32(wz)

	top := y + 1
	if d == faceTop && mat.Liquid() {
		top = y + 1 - liquidRecess
	}

	// Winding is baked per direction: the renderer culls counter-clockwise
	// triangles, so each face enumerates its corners clockwise as seen
	// from outside.
	var quad [4][3]float32
	switch d {
	case faceTop:
		quad = [4][3]float32{
			{x, top, z}, {x, top, z + 1}, {x + 1, top, z + 1}, {x + 1, top, z},
		}
	case faceBottom:
		quad = [4][3]float32{
			{x, y, z + 1}, {x, y, z}, {x + 1, y, z}, {x + 1, y, z + 1},
		}
	case faceRight:
		quad = [4][3]float32{
			{x + 1, y + 1, z}, {x + 1, y + 1, z + 1}, {x + 1, y, z + 1}, {x + 1, y, z},
		}
	case faceLeft:
		quad = [4][3]float32{
			{x, y + 1, z + 1}, {x, y + 1, z}, {x, y, z}, {x, y, z + 1},
		}
	case faceFront:
		quad = [4][3]float32{
			{x + 1, y + 1, z + 1}, {x, y + 1, z + 1}, {x, y, z + 1}, {x + 1, y, z + 1},
		}
	case faceBack:
		quad = [4][3]float32{
			{x, y + 1, z}, {x + 1, y + 1, z}, {x + 1, y, z}, {x, y, z},
		}
	}

	base := uint32(len(b.Positions))
	b.Positions = append(b.Positions, quad[:]...)

	n := faceNormals[d]
	b.Normals = append(b.Normals, n, n, n, n)

	uv := m.atlas.UV(mat, faceClass(d))
	b.UVs = append(b.UVs, uv[:]...)

	b.Indices = append(b.Indices, base, base+1, base+2, base, base+2, base+3)
}

func faceClass(d face) atlas.FaceClass {
	switch d {
	case faceTop:
		return atlas.FaceTop
	case faceBottom:
		return atlas.FaceBottom
	default:
		return atlas.FaceSide
	}
}
