package voxel

// OreRange binds a material to a half-open band of the ore noise field,
// gated by an inclusive y-range. Ranges are checked in slice order; the
// first match wins.
type OreRange struct {
	Material Material `yaml:"material"`
	Min      float64  `yaml:"min"`
	Max      float64  `yaml:"max"`
	MinY     int      `yaml:"min_y"`
	MaxY     int      `yaml:"max_y"`
}

// Params holds every constant the classifier depends on. The struct is
// treated as immutable once a Classifier is built from it, so tests can vary
// seeds freely without cross-test interference.
type Params struct {
	Seed    int64 `yaml:"seed"`
	OreSeed int64 `yaml:"ore_seed"`

	ChunkSize   int `yaml:"chunk_size"`
	WorldHeight int `yaml:"world_height"`

	// Border caps |x| and |z|; noise degrades numerically at extreme
	// distances, so everything past it is Air.
	Border int `yaml:"border"`

	OceanFloorY   int `yaml:"ocean_floor_y"`
	BaseHeight    int `yaml:"base_height"`
	CeilingMargin int `yaml:"ceiling_margin"`
	SoilDepth     int `yaml:"soil_depth"`

	SurfaceScale    float64 `yaml:"surface_scale"`
	SurfaceNoiseMin float64 `yaml:"surface_noise_min"`
	SurfaceNoiseMax float64 `yaml:"surface_noise_max"`

	LiquidBandMin int `yaml:"liquid_band_min"`
	LiquidBandMax int `yaml:"liquid_band_max"`
	WaterLevel    int `yaml:"water_level"`

	CaveScale float64 `yaml:"cave_scale"`
	// Cave noise below CaveOpenThreshold is open air; between the two
	// thresholds the rock is disturbed and takes the ore pass; above
	// CaveThreshold the surface material stands.
	CaveOpenThreshold float64 `yaml:"cave_open_threshold"`
	CaveThreshold     float64 `yaml:"cave_threshold"`
	LavaLevel         int     `yaml:"lava_level"`

	OreScale float64    `yaml:"ore_scale"`
	Ores     []OreRange `yaml:"ores"`

	// TreePermille columns out of 1000 host a trunk.
	TreePermille   int `yaml:"tree_permille"`
	TrunkMinHeight int `yaml:"trunk_min_height"`
}

// DefaultParams returns the stock worldgen tuning.
func DefaultParams() Params {
	return Params{
		Seed:    2137,
		OreSeed: 69420,

		ChunkSize:   16,
		WorldHeight: 256,
		Border:      5_000_000,

		OceanFloorY:   64,
		BaseHeight:    64,
		CeilingMargin: 40,
		SoilDepth:     3,

		SurfaceScale:    0.004,
		SurfaceNoiseMin: -1,
		SurfaceNoiseMax: 12,

		LiquidBandMin: 64,
		LiquidBandMax: 72,
		WaterLevel:    70,

		CaveScale:         0.06,
		CaveOpenThreshold: -0.42,
		CaveThreshold:     -0.18,
		LavaLevel:         11,

		OreScale: 0.1,
		Ores: []OreRange{
			{Material: DiamondOre, Min: 0.80, Max: 0.95, MinY: 1, MaxY: 16},
			{Material: GoldOre, Min: 0.62, Max: 0.74, MinY: 8, MaxY: 24},
			{Material: IronOre, Min: 0.42, Max: 0.58, MinY: 10, MaxY: 48},
			{Material: CoalOre, Min: 0.18, Max: 0.38, MinY: 24, MaxY: 64},
		},

		TreePermille:   12,
		TrunkMinHeight: 4,
	}
}
