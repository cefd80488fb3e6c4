// Package atlas maps materials to sub-rectangles of a texture atlas.
//
// The descriptor is external asset metadata: a JSON document naming the
// atlas pixel dimensions and one rectangle per material, with grass split
// into distinct top and side rectangles (its bottom reuses dirt). A
// descriptor that fails schema validation or leaves a referenced material
// without a rectangle is a fatal configuration error: there is no sane
// fallback mapping, so loading fails instead of indexing out of bounds
// later.
package atlas

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/voxelforge/voxelforge/internal/engine/voxel"
)

//go:embed schema.json
var schemaJSON string

// FaceClass selects which rectangle a face uses for materials with
// direction-dependent texturing.
type FaceClass int

const (
	FaceTop FaceClass = iota
	FaceBottom
	FaceSide
)

// Rect is a sub-rectangle of the atlas in pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Descriptor is the on-disk atlas description.
type Descriptor struct {
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Textures map[string]Rect `json:"textures"`
}

// Atlas resolves materials and face classes to normalized UV corners.
type Atlas struct {
	desc Descriptor
	// uv[material][faceClass] holds the four corners in the emission
	// order of a face's vertices.
	uv [voxel.MaterialCount][3][4][2]float32
}

// requiredKeys lists every rectangle a descriptor must provide. Air needs
// none (it is never meshed) and grass resolves through the three split keys.
var requiredKeys = []string{
	"bedrock", "stone", "dirt", "grass_top", "grass_side", "sand", "log",
	"water", "lava", "coal_ore", "iron_ore", "gold_ore", "diamond_ore",
}

// Load reads, validates, and compiles a descriptor file.
func Load(path string) (*Atlas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read atlas descriptor: %w", err)
	}
	return Parse(data)
}

// Parse validates raw descriptor JSON against the embedded schema and
// compiles it.
func Parse(data []byte) (*Atlas, error) {
	schema, err := jsonschema.CompileString("atlas.schema.json", schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("compile atlas schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse atlas descriptor: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("atlas descriptor rejected by schema: %w", err)
	}

	var d Descriptor
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode atlas descriptor: %w", err)
	}
	return New(d)
}

// New compiles a descriptor into an Atlas, failing fast on any missing or
// out-of-bounds rectangle.
func New(d Descriptor) (*Atlas, error) {
	for _, key := range requiredKeys {
		r, ok := d.Textures[key]
		if !ok {
			return nil, fmt.Errorf("atlas descriptor missing rectangle %q", key)
		}
		if r.X+r.W > float64(d.Width) || r.Y+r.H > float64(d.Height) {
			return nil, fmt.Errorf("atlas rectangle %q exceeds %dx%d atlas", key, d.Width, d.Height)
		}
	}

	a := &Atlas{desc: d}
	for m := voxel.Material(1); int(m) < voxel.MaterialCount; m++ {
		for _, f := range []FaceClass{FaceTop, FaceBottom, FaceSide} {
			a.uv[m][f] = a.corners(d.Textures[keyFor(m, f)])
		}
	}
	return a, nil
}

// keyFor picks the descriptor key for a material and face class. Grass is
// the one direction-dependent material: grass_top on top, dirt underneath,
// grass_side around.
func keyFor(m voxel.Material, f FaceClass) string {
	if m == voxel.Grass {
		switch f {
		case FaceTop:
			return "grass_top"
		case FaceBottom:
			return "dirt"
		default:
			return "grass_side"
		}
	}
	if m == voxel.Air {
		return "stone" // never emitted; placeholder keeps the table dense
	}
	return m.String()
}

func (a *Atlas) corners(r Rect) [4][2]float32 {
	w := float32(a.desc.Width)
	h := float32(a.desc.Height)
	u0 := float32(r.X) / w
	v0 := float32(r.Y) / h
	u1 := float32(r.X+r.W) / w
	v1 := float32(r.Y+r.H) / h
	return [4][2]float32{{u0, v0}, {u1, v0}, {u1, v1}, {u0, v1}}
}

// UV returns the four texture-coordinate corners for a face, ordered to
// match the four vertices the mesher emits.
func (a *Atlas) UV(m voxel.Material, f FaceClass) [4][2]float32 {
	return a.uv[m][f]
}

// Size returns the atlas pixel dimensions.
func (a *Atlas) Size() (w, h int) {
	return a.desc.Width, a.desc.Height
}

// Default returns the built-in descriptor: a single 208x16 strip of 16px
// tiles, one per material. Used when no descriptor file is configured.
func Default() Descriptor {
	order := []string{
		"bedrock", "stone", "dirt", "grass_top", "grass_side", "log",
		"lava", "water", "coal_ore", "iron_ore", "gold_ore", "diamond_ore",
		"sand",
	}
	d := Descriptor{
		Width:    len(order) * 16,
		Height:   16,
		Textures: make(map[string]Rect, len(order)),
	}
	for i, key := range order {
		d.Textures[key] = Rect{X: float64(i * 16), Y: 0, W: 16, H: 16}
	}
	return d
}
