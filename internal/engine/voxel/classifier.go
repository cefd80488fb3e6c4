package voxel

// Classifier decides the material at any world coordinate. It is a pure
// function of its Params: no state is written after construction, so a
// single Classifier may be shared by any number of goroutines.
//
// Classification is vertical-first and short-circuiting: fixed layers beat
// noise, the 2D surface pass shapes the terrain, and a 3D cave pass carves
// only through voxels the surface pass made solid.
type Classifier struct {
	p       Params
	surface *Noise
	caves   *Noise
	ores    *Noise
}

// NewClassifier derives the noise sources from the seeds in p.
func NewClassifier(p Params) *Classifier {
	return &Classifier{
		p:       p,
		surface: NewNoise(p.Seed),
		caves:   NewNoise(p.Seed + 300),
		ores:    NewNoise(p.OreSeed),
	}
}

// Params returns the configuration the classifier was built from.
func (c *Classifier) Params() Params { return c.p }

// Classify returns the material at world block (x, y, z).
func (c *Classifier) Classify(x, y, z int) Material {
	if x >= c.p.Border || x < -c.p.Border || z >= c.p.Border || z < -c.p.Border {
		return Air
	}
	if y < 0 || y >= c.p.WorldHeight-1 {
		return Air
	}
	if y == 0 {
		return Bedrock
	}
	if y == c.p.OceanFloorY {
		return Stone
	}

	h := c.SurfaceHeight(x, z)
	m := c.surfaceMaterial(y, h)

	if m == Air {
		return c.trunkMaterial(x, y, z, h)
	}
	if !m.Solid() {
		return m
	}

	fx, fy, fz := float64(x), float64(y), float64(z)
	n := c.caves.Sample3(fx*c.p.CaveScale, fy*c.p.CaveScale, fz*c.p.CaveScale)
	switch {
	case n < c.p.CaveOpenThreshold:
		// Carved open. Deep carves flood with lava.
		if y < c.p.LavaLevel {
			return Lava
		}
		return Air
	case n < c.p.CaveThreshold:
		return c.oreMaterial(x, y, z)
	default:
		return m
	}
}

// SurfaceHeight computes the terrain height for a column by summing three
// surface-noise samples at rising frequency and remapping the result into
// [BaseHeight, WorldHeight-CeilingMargin].
func (c *Classifier) SurfaceHeight(x, z int) int {
	fx, fz := float64(x), float64(z)
	s := c.p.SurfaceScale
	v := c.surface.Sample2(fx*2*s, fz*2*s) +
		c.surface.Sample2(fx*4*s, fz*4*s) +
		c.surface.Sample2(fx*6*s, fz*6*s)

	top := float64(c.p.WorldHeight - c.p.CeilingMargin)
	return int(remap(v, c.p.SurfaceNoiseMin, c.p.SurfaceNoiseMax, float64(c.p.BaseHeight), top))
}

func (c *Classifier) surfaceMaterial(y, h int) Material {
	inBand := y > c.p.LiquidBandMin && y < c.p.LiquidBandMax
	switch {
	case y+c.p.SoilDepth < h:
		return Stone
	case y < h:
		if inBand {
			return Sand
		}
		return Dirt
	case y == h:
		if inBand {
			return Sand
		}
		return Grass
	case y > c.p.LiquidBandMin && y < c.p.WaterLevel:
		return Water
	default:
		return Air
	}
}

// oreMaterial classifies disturbed rock inside the cave shell. Ranges are
// checked in order; stone when nothing matches.
func (c *Classifier) oreMaterial(x, y, z int) Material {
	n := c.ores.Sample3(float64(x)*c.p.OreScale, float64(y)*c.p.OreScale, float64(z)*c.p.OreScale)
	for _, o := range c.p.Ores {
		if n >= o.Min && n < o.Max && y >= o.MinY && y <= o.MaxY {
			return o.Material
		}
	}
	return Stone
}

// trunkMaterial grows log columns above grassy surface. Placement hashes
// the column coordinates so the classifier stays a pure coordinate
// function; no neighborhood lookups are needed.
func (c *Classifier) trunkMaterial(x, y, z, h int) Material {
	if c.p.TreePermille <= 0 {
		return Air
	}
	// Trees only root on dry grass, above the liquid band.
	if h < c.p.LiquidBandMax {
		return Air
	}
	hash := columnHash(c.p.Seed, x, z)
	if int(hash%1000) >= c.p.TreePermille {
		return Air
	}
	trunk := c.p.TrunkMinHeight + int((hash>>10)%3)
	if y > h && y <= h+trunk {
		return Log
	}
	return Air
}

func columnHash(seed int64, x, z int) uint64 {
	h := uint64(seed)
	h ^= uint64(int64(x)) * 0x9e3779b97f4a7c15
	h ^= uint64(int64(z)) * 0xc2b2ae3d27d4eb4f
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return h
}

// remap linearly maps v from [inMin, inMax] to [outMin, outMax].
func remap(v, inMin, inMax, outMin, outMax float64) float64 {
	return (v-inMin)/(inMax-inMin)*(outMax-outMin) + outMin
}
