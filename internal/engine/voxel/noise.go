package voxel

// Seeded simplex noise after Ken Perlin's reference algorithm.
// Both samplers return values in [-1, 1] and are safe for concurrent use
// once constructed: the permutation table is never written after New.

var gradients = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

// Noise is a deterministic coherent-noise source derived from a seed.
type Noise struct {
	perm [512]int
}

// NewNoise builds a noise source with a seed-shuffled permutation table.
func NewNoise(seed int64) *Noise {
	var table [256]int
	for i := range table {
		table[i] = i
	}

	// Fisher-Yates driven by an LCG so the shuffle is reproducible
	// without pulling in math/rand state.
	s := seed
	for i := 255; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407
		j := int((s>>33)&0x7FFFFFFF) % (i + 1)
		if j < 0 {
			j = -j
		}
		table[i], table[j] = table[j], table[i]
	}

	n := &Noise{}
	for i := range n.perm {
		n.perm[i] = table[i&255]
	}
	return n
}

// Sample2 evaluates 2D simplex noise at (x, y).
func (n *Noise) Sample2(x, y float64) float64 {
	const (
		skew   = 0.36602540378443864676 // (sqrt(3)-1)/2
		unskew = 0.21132486540518711775 // (3-sqrt(3))/6
	)

	s := (x + y) * skew
	i := floor(x + s)
	j := floor(y + s)

	t := float64(i+j) * unskew
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)

	var i1, j1 int
	if x0 > y0 {
		i1 = 1
	} else {
		j1 = 1
	}

	x1 := x0 - float64(i1) + unskew
	y1 := y0 - float64(j1) + unskew
	x2 := x0 - 1.0 + 2.0*unskew
	y2 := y0 - 1.0 + 2.0*unskew

	ii := i & 255
	jj := j & 255

	var total float64
	for _, c := range [3]struct {
		x, y float64
		gi   int
	}{
		{x0, y0, n.perm[ii+n.perm[jj]] % 12},
		{x1, y1, n.perm[ii+i1+n.perm[jj+j1]] % 12},
		{x2, y2, n.perm[ii+1+n.perm[jj+1]] % 12},
	} {
		a := 0.5 - c.x*c.x - c.y*c.y
		if a < 0 {
			continue
		}
		a *= a
		g := gradients[c.gi]
		total += a * a * (g[0]*c.x + g[1]*c.y)
	}
	return 70.0 * total
}

// Sample3 evaluates 3D simplex noise at (x, y, z).
func (n *Noise) Sample3(x, y, z float64) float64 {
	const (
		skew   = 1.0 / 3.0
		unskew = 1.0 / 6.0
	)

	s := (x + y + z) * skew
	i := floor(x + s)
	j := floor(y + s)
	k := floor(z + s)

	t := float64(i+j+k) * unskew
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)
	z0 := z - (float64(k) - t)

	// Rank the displacements to find the simplex traversal order.
	var i1, j1, k1, i2, j2, k2 int
	switch {
	case x0 >= y0 && y0 >= z0:
		i1, i2, j2 = 1, 1, 1
	case x0 >= y0 && x0 >= z0:
		i1, i2, k2 = 1, 1, 1
	case x0 >= y0:
		k1, i2, k2 = 1, 1, 1
	case y0 < z0:
		k1, j2, k2 = 1, 1, 1
	case x0 < z0:
		j1, j2, k2 = 1, 1, 1
	default:
		j1, i2, j2 = 1, 1, 1
	}

	x1 := x0 - float64(i1) + unskew
	y1 := y0 - float64(j1) + unskew
	z1 := z0 - float64(k1) + unskew
	x2 := x0 - float64(i2) + 2.0*unskew
	y2 := y0 - float64(j2) + 2.0*unskew
	z2 := z0 - float64(k2) + 2.0*unskew
	x3 := x0 - 1.0 + 3.0*unskew
	y3 := y0 - 1.0 + 3.0*unskew
	z3 := z0 - 1.0 + 3.0*unskew

	ii := i & 255
	jj := j & 255
	kk := k & 255

	var total float64
	for _, c := range [4]struct {
		x, y, z float64
		gi      int
	}{
		{x0, y0, z0, n.perm[ii+n.perm[jj+n.perm[kk]]] % 12},
		{x1, y1, z1, n.perm[ii+i1+n.perm[jj+j1+n.perm[kk+k1]]] % 12},
		{x2, y2, z2, n.perm[ii+i2+n.perm[jj+j2+n.perm[kk+k2]]] % 12},
		{x3, y3, z3, n.perm[ii+1+n.perm[jj+1+n.perm[kk+1]]] % 12},
	} {
		a := 0.6 - c.x*c.x - c.y*c.y - c.z*c.z
		if a < 0 {
			continue
		}
		a *= a
		g := gradients[c.gi]
		total += a * a * (g[0]*c.x + g[1]*c.y + g[2]*c.z)
	}
	return 32.0 * total
}

func floor(x float64) int {
	i := int(x)
	if x < float64(i) {
		return i - 1
	}
	return i
}
