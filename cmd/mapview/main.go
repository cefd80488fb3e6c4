package main

import (
	"flag"
	"image"
	"image/color"
	"log"
	"os"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"github.com/voxelforge/voxelforge/internal/engine/voxel"
)

// materialColors maps surface materials to map pixels. Unlisted materials
// render as stone grey.
var materialColors = map[voxel.Material]color.RGBA{
	voxel.Grass:   {86, 152, 74, 255},
	voxel.Sand:    {219, 206, 145, 255},
	voxel.Water:   {52, 108, 202, 255},
	voxel.Dirt:    {134, 96, 67, 255},
	voxel.Stone:   {128, 128, 128, 255},
	voxel.Log:     {101, 67, 33, 255},
	voxel.Bedrock: {40, 40, 40, 255},
	voxel.Lava:    {207, 92, 20, 255},
}

func main() {
	var (
		seed   = flag.Int64("seed", voxel.DefaultParams().Seed, "worldgen seed")
		cx     = flag.Int("cx", 0, "center block x")
		cz     = flag.Int("cz", 0, "center block z")
		span   = flag.Int("span", 512, "map edge length in blocks")
		scale  = flag.Int("scale", 1, "output pixels per block")
		smooth = flag.Bool("smooth", false, "smooth upscaling instead of crisp blocks")
		out    = flag.String("o", "map.webp", "output webp path")
	)
	flag.Parse()

	if *span < 1 || *scale < 1 {
		log.Fatal("span and scale must be at least 1")
	}

	params := voxel.DefaultParams()
	params.Seed = *seed
	c := voxel.NewClassifier(params)

	img := image.NewRGBA(image.Rect(0, 0, *span, *span))
	half := *span / 2
	for px := 0; px < *span; px++ {
		for pz := 0; pz < *span; pz++ {
			img.SetRGBA(px, pz, surfaceColor(c, *cx-half+px, *cz-half+pz))
		}
	}

	final := image.Image(img)
	if *scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, *span**scale, *span**scale))
		if *smooth {
			draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		} else {
			draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		}
		final = dst
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := nativewebp.Encode(f, final, nil); err != nil {
		log.Fatalf("encode %s: %v", *out, err)
	}

	log.Printf("wrote %s (%d blocks around %d,%d, seed %d)", *out, *span, *cx, *cz, *seed)
}

// surfaceColor walks the column top-down to the first non-air voxel and
// colors the pixel by what it finds, darkened slightly with depth below
// sea level so ocean shelves read on the map.
func surfaceColor(c *voxel.Classifier, x, z int) color.RGBA {
	p := c.Params()
	h := c.SurfaceHeight(x, z)

	// Columns above the water table show their surface; flooded columns
	// show water tinted by depth.
	top := h
	if top < p.WaterLevel-1 {
		top = p.WaterLevel - 1
	}
	for y := top; y >= 0; y-- {
		m := c.Classify(x, y, z)
		if m == voxel.Air {
			continue
		}
		col, ok := materialColors[m]
		if !ok {
			col = materialColors[voxel.Stone]
		}
		if m == voxel.Water {
			depth := p.WaterLevel - h
			if depth > 10 {
				depth = 10
			}
			if depth > 0 {
				col.R -= uint8(depth * 2)
				col.G -= uint8(depth * 3)
			}
		}
		return col
	}
	return color.RGBA{0, 0, 0, 255}
}
