package mesh

// Buffer holds the four parallel attribute sequences of a chunk mesh.
// Positions are world-space. Every emitted face contributes four vertices
// sharing one normal and six indices forming two triangles, so
// len(Indices) is always a multiple of six and the three attribute slices
// stay the same length.
type Buffer struct {
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Indices   []uint32
}

// Empty reports whether the buffer carries no geometry. A fully-air chunk
// meshes to an empty buffer; that is a valid result, not an error.
func (b *Buffer) Empty() bool {
	return len(b.Positions) == 0
}

// FaceCount returns the number of quads in the buffer.
func (b *Buffer) FaceCount() int {
	return len(b.Indices) / 6
}

// Collision is the physics-facing view of a mesh: positions plus triangle
// index triples.
type Collision struct {
	Vertices  [][3]float32
	Triangles [][3]uint32
}

// Collision repackages the buffer for a trimesh collider. It is a direct
// regrouping of the same vertex and index data, not a recomputation.
func (b *Buffer) Collision() Collision {
	c := Collision{
		Vertices:  b.Positions,
		Triangles: make([][3]uint32, 0, len(b.Indices)/3),
	}
	for i := 0; i+2 < len(b.Indices); i += 3 {
		c.Triangles = append(c.Triangles, [3]uint32{b.Indices[i], b.Indices[i+1], b.Indices[i+2]})
	}
	return c
}
