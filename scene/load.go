package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/achilleasa/go-pathtrace/types"
)

// jsonScene mirrors the top-level shape of a scene file (spec §6).
type jsonScene struct {
	Settings struct {
		ImageSettings struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"image_settings"`
		BackgroundColor []float32 `json:"background_color"`
	} `json:"settings"`

	Camera struct {
		Matrix    []float32     `json:"matrix"`
		Position  []float32     `json:"position"`
		FOV       *float32      `json:"fov"`
		Animation [][16]float32 `json:"animation"`
	} `json:"camera"`

	Lights    []jsonLight       `json:"lights"`
	Meshes    []jsonMesh        `json:"meshes"`
	Objects   []json.RawMessage `json:"objects"`
	Textures  []jsonTexture     `json:"textures"`
	Materials []jsonMaterial    `json:"materials"`
}

type jsonLight struct {
	Position  []float32  `json:"position"`
	Intensity float32    `json:"intensity"`
	Color     *[]float32 `json:"color"`
}

type jsonMesh struct {
	Vertices  []float32 `json:"vertices"`
	Triangles []int     `json:"triangles"`
	UVs       []float32 `json:"uvs"`
	Normals   []float32 `json:"normals"`
}

type jsonTexture struct {
	Name   string    `json:"name"`
	Type   string    `json:"type"`
	Color1 []float32 `json:"color1"`
	Color2 []float32 `json:"color2"`
	Scale  float32   `json:"scale"`
	Width  float32   `json:"width"`
	File   string    `json:"file"`
}

// jsonMaterial's "albedo" key is polymorphic in the scene format: either an
// inline [r,g,b] array or a string naming an entry of the textures table
// (see original_source/export.py's two branches for "albedo"). Albedo is
// therefore decoded lazily from json.RawMessage rather than a fixed type.
type jsonMaterial struct {
	Type            string          `json:"type"`
	Albedo          json.RawMessage `json:"albedo"`
	Absorption      []float32       `json:"absorption"`
	IOR             float32         `json:"ior"`
	SmoothShading   *bool           `json:"smooth_shading"`
	BackFaceCulling *bool           `json:"back_face_culling"`
	CastsShadows    *bool           `json:"casts_shadows"`
	ReceivesShadows *bool           `json:"receives_shadows"`
}

// jsonObjectRef is the `{ref, transform, material_index}` object shape.
// Load tries this shape first (looking for a "ref" key) and falls back to
// treating the object as an inline jsonMesh, per spec §6's "either inline
// mesh objects or {ref,...}".
type jsonObjectRef struct {
	Ref           *int      `json:"ref"`
	Transform     []float32 `json:"transform"`
	MaterialIndex *int      `json:"material_index"`
}

// Load reads and validates a JSON scene file (spec §6), builds every Mesh's
// triangle-BVH, constructs mesh instances and materials, and returns a
// Scene with its top-level BVH already built.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading scene file %q: %v", ErrResource, path, err)
	}

	var js jsonScene
	if err := json.Unmarshal(data, &js); err != nil {
		return nil, fmt.Errorf("%w: parsing scene file %q: %v", ErrConfiguration, path, err)
	}

	baseDir := filepath.Dir(path)

	scn := &Scene{
		Textures: make(map[string]*Texture),
	}

	if len(js.Settings.BackgroundColor) < 3 {
		return nil, fmt.Errorf("%w: settings.background_color requires at least 3 components", ErrConfiguration)
	}
	scn.BackgroundColor = types.Vec3{js.Settings.BackgroundColor[0], js.Settings.BackgroundColor[1], js.Settings.BackgroundColor[2]}

	camera, err := loadCamera(js)
	if err != nil {
		return nil, err
	}
	scn.Camera = camera

	for i, jl := range js.Lights {
		if len(jl.Position) < 3 {
			return nil, fmt.Errorf("%w: light %d: position requires 3 components", ErrConfiguration, i)
		}
		color := types.Vec3{1, 1, 1}
		if jl.Color != nil {
			if len(*jl.Color) < 3 {
				return nil, fmt.Errorf("%w: light %d: color requires 3 components", ErrConfiguration, i)
			}
			color = types.Vec3{(*jl.Color)[0], (*jl.Color)[1], (*jl.Color)[2]}
		}
		scn.Lights = append(scn.Lights, PointLight{
			Position:  types.Vec3{jl.Position[0], jl.Position[1], jl.Position[2]},
			Color:     color,
			Intensity: jl.Intensity,
		})
	}

	for _, jt := range js.Textures {
		tex, err := loadTexture(baseDir, jt)
		if err != nil {
			return nil, fmt.Errorf("%w: texture %q: %v", ErrConfiguration, jt.Name, err)
		}
		scn.Textures[jt.Name] = tex
	}

	for i, jm := range js.Materials {
		mat, err := loadMaterial(scn, jm)
		if err != nil {
			return nil, fmt.Errorf("%w: material %d: %v", ErrConfiguration, i, err)
		}
		scn.Materials = append(scn.Materials, mat)
	}

	for i := range js.Meshes {
		mesh, err := loadMesh(js.Meshes[i])
		if err != nil {
			return nil, fmt.Errorf("%w: mesh %d: %v", ErrConfiguration, i, err)
		}
		scn.Meshes = append(scn.Meshes, mesh)
	}

	for i, raw := range js.Objects {
		inst, err := loadObject(scn, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: object %d: %v", ErrConfiguration, i, err)
		}
		scn.Instances = append(scn.Instances, inst)
	}

	scn.Build()
	logger.Noticef("loaded scene %q: %d meshes, %d instances, %d materials, %d lights",
		path, len(scn.Meshes), len(scn.Instances), len(scn.Materials), len(scn.Lights))

	return scn, nil
}

func loadCamera(js jsonScene) (*Camera, error) {
	if len(js.Camera.Matrix) < 9 {
		return nil, fmt.Errorf("%w: camera.matrix requires 9 floats", ErrConfiguration)
	}
	if len(js.Camera.Position) < 3 {
		return nil, fmt.Errorf("%w: camera.position requires 3 floats", ErrConfiguration)
	}
	if js.Settings.ImageSettings.Width <= 0 || js.Settings.ImageSettings.Height <= 0 {
		return nil, fmt.Errorf("%w: settings.image_settings width/height must be positive", ErrConfiguration)
	}

	var basis [9]float32
	copy(basis[:], js.Camera.Matrix[:9])
	pos := types.Vec3{js.Camera.Position[0], js.Camera.Position[1], js.Camera.Position[2]}

	fov := float32(math.Pi / 3)
	if js.Camera.FOV != nil {
		fov = *js.Camera.FOV
	}

	cam := &Camera{
		View:   types.Mat4FromBasisAndPosition(basis, pos),
		FOV:    fov,
		Width:  js.Settings.ImageSettings.Width,
		Height: js.Settings.ImageSettings.Height,
	}

	for _, frame := range js.Camera.Animation {
		cam.Frames = append(cam.Frames, types.Mat4FromRowMajor16(frame[:]))
	}

	return cam, nil
}

func loadMesh(jm jsonMesh) (*Mesh, error) {
	return NewMesh(jm.Vertices, jm.Normals, jm.UVs, jm.Triangles)
}

func loadTexture(baseDir string, jt jsonTexture) (*Texture, error) {
	color := func(c []float32) types.Vec3 {
		if len(c) < 3 {
			return types.Vec3{}
		}
		return types.Vec3{c[0], c[1], c[2]}
	}

	switch jt.Type {
	case "albedo":
		return NewConstantTexture(color(jt.Color1)), nil
	case "checker":
		scale := jt.Scale
		if scale == 0 {
			scale = 1
		}
		return &Texture{Kind: TextureChecker, Color1: color(jt.Color1), Color2: color(jt.Color2), Scale: scale}, nil
	case "edges":
		width := jt.Width
		if width == 0 {
			width = 0.01
		}
		return &Texture{Kind: TextureEdge, Color1: color(jt.Color1), Color2: color(jt.Color2), Width: width}, nil
	case "bitmap":
		img, err := DecodeBitmap(filepath.Join(baseDir, jt.File), false)
		if err != nil {
			return nil, err
		}
		return &Texture{Kind: TextureBitmap, Bitmap: img}, nil
	default:
		return nil, fmt.Errorf("unknown type %q", jt.Type)
	}
}

func loadMaterial(scn *Scene, jm jsonMaterial) (*Material, error) {
	mat := &Material{
		CastsShadows:    true,
		ReceivesShadows: true,
		DoubleSided:     true,
	}

	switch jm.Type {
	case "diffuse":
		mat.Kind = Diffuse
	case "reflective":
		mat.Kind = Reflective
	case "refractive":
		mat.Kind = Refractive
	case "constant":
		mat.Kind = Constant
	default:
		return nil, fmt.Errorf("unknown material type %q", jm.Type)
	}

	albedo, err := resolveAlbedo(scn, jm.Albedo)
	if err != nil {
		return nil, err
	}
	mat.Albedo = albedo

	if len(jm.Absorption) >= 3 {
		mat.Absorption = types.Vec3{jm.Absorption[0], jm.Absorption[1], jm.Absorption[2]}
	}
	mat.IOR = jm.IOR
	if mat.IOR == 0 {
		mat.IOR = 1.5
	}

	if jm.SmoothShading != nil {
		mat.Smooth = *jm.SmoothShading
	}
	if jm.BackFaceCulling != nil {
		mat.DoubleSided = !*jm.BackFaceCulling
	}
	if jm.CastsShadows != nil {
		mat.CastsShadows = *jm.CastsShadows
	}
	if jm.ReceivesShadows != nil {
		mat.ReceivesShadows = *jm.ReceivesShadows
	}

	return mat, nil
}

// resolveAlbedo decodes a material's polymorphic "albedo" field: a bare
// [r,g,b] array becomes a constant texture, a JSON string is looked up by
// name in the scene's texture table, and an absent/empty field defaults to
// white.
func resolveAlbedo(scn *Scene, raw json.RawMessage) (*Texture, error) {
	if len(raw) == 0 {
		return NewConstantTexture(types.Vec3{1, 1, 1}), nil
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		tex, ok := scn.Textures[name]
		if !ok {
			return nil, fmt.Errorf("references undefined texture %q", name)
		}
		return tex, nil
	}

	var rgb []float32
	if err := json.Unmarshal(raw, &rgb); err != nil {
		return nil, fmt.Errorf("albedo must be a [r,g,b] array or a texture name: %v", err)
	}
	if len(rgb) < 3 {
		return nil, fmt.Errorf("albedo array requires 3 components")
	}
	return NewConstantTexture(types.Vec3{rgb[0], rgb[1], rgb[2]}), nil
}

// loadObject decodes one entry of the `objects` array: either an inline
// mesh (built and appended to scn.Meshes on the fly) or a {ref, transform,
// material_index} reference into scn.Meshes/scn.Materials (spec §6).
func loadObject(scn *Scene, raw json.RawMessage) (*MeshInstance, error) {
	var ref jsonObjectRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, err
	}

	transform := types.Ident4()
	if len(ref.Transform) >= 16 {
		transform = types.Mat4FromRowMajor16(ref.Transform)
	}

	materialID := 0
	if ref.MaterialIndex != nil {
		materialID = *ref.MaterialIndex
	}
	if materialID < 0 || materialID >= len(scn.Materials) {
		return nil, fmt.Errorf("material_index %d out of range", materialID)
	}

	var mesh *Mesh
	if ref.Ref != nil {
		if *ref.Ref < 0 || *ref.Ref >= len(scn.Meshes) {
			return nil, fmt.Errorf("ref %d out of range", *ref.Ref)
		}
		mesh = scn.Meshes[*ref.Ref]
	} else {
		var jm jsonMesh
		if err := json.Unmarshal(raw, &jm); err != nil {
			return nil, err
		}
		var err error
		mesh, err = loadMesh(jm)
		if err != nil {
			return nil, err
		}
		scn.Meshes = append(scn.Meshes, mesh)
	}

	return NewMeshInstance(mesh, transform, scn.Materials[materialID], materialID), nil
}

// DecodeBitmap decodes an image file for use as a bitmap texture. flipY is
// an explicit per-call parameter rather than a global flag (SPEC_FULL's
// resolution of the source's racy set_flip_vertically_on_load, spec §9).
func DecodeBitmap(path string, flipY bool) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading texture %q: %v", ErrResource, path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding texture %q: %v", ErrResource, path, err)
	}
	if !flipY {
		return img, nil
	}
	return flipImageY(img), nil
}

func flipImageY(img image.Image) image.Image {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	h := bounds.Dy()
	for y := 0; y < h; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.Set(x, bounds.Min.Y+h-1-y, img.At(x, bounds.Min.Y+y))
		}
	}
	return out
}
