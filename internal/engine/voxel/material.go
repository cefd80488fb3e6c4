package voxel

// Material is the substance held by a single voxel. Air is the distinguished
// empty value; every adjacency test in the mesher treats it specially.
type Material uint8

const (
	Air Material = iota
	Bedrock
	Stone
	Dirt
	Grass
	Sand
	Log
	Water
	Lava
	CoalOre
	IronOre
	GoldOre
	DiamondOre
)

// MaterialCount is the number of defined materials, Air included.
const MaterialCount = int(DiamondOre) + 1

var materialNames = [MaterialCount]string{
	"air", "bedrock", "stone", "dirt", "grass", "sand", "log",
	"water", "lava", "coal_ore", "iron_ore", "gold_ore", "diamond_ore",
}

func (m Material) String() string {
	if int(m) < len(materialNames) {
		return materialNames[m]
	}
	return "unknown"
}

// Liquid reports whether the material flows; liquids are meshed on both
// sides of their boundary with solids.
func (m Material) Liquid() bool {
	return m == Water || m == Lava
}

// Solid reports whether the material is solid matter: not Air and not a
// liquid. Only solid voxels take the cave pass.
func (m Material) Solid() bool {
	return m != Air && !m.Liquid()
}
