package scene

import (
	"image"
	"math"

	"github.com/achilleasa/go-pathtrace/core"
	"github.com/achilleasa/go-pathtrace/types"
)

// TextureKind is the closed set of texture variants the renderer supports.
type TextureKind int

const (
	TextureConstant TextureKind = iota
	TextureChecker
	TextureEdge
	TextureBitmap
)

// Texture is a closed sum type sampled by a hit's UV coordinates. It has no
// dependency on the render package: sampling never recurses.
type Texture struct {
	Kind TextureKind

	// TextureConstant
	Color types.Vec3

	// TextureChecker / TextureEdge share color1/color2
	Color1 types.Vec3
	Color2 types.Vec3
	Scale  float32 // checker square size
	Width  float32 // edge band width, in barycentric distance

	// TextureBitmap
	Bitmap image.Image
}

// NewConstantTexture wraps a plain color as a texture, used when a material
// is given an inline albedo rather than a named texture.
func NewConstantTexture(c types.Vec3) *Texture {
	return &Texture{Kind: TextureConstant, Color: c}
}

// Sample evaluates the texture at a hit's UV coordinates.
func (tex *Texture) Sample(hit core.RayHit) types.Vec3 {
	switch tex.Kind {
	case TextureConstant:
		return tex.Color

	case TextureChecker:
		cx := int(math.Floor(float64(hit.TexCoord[0] / tex.Scale)))
		cy := int(math.Floor(float64(hit.TexCoord[1] / tex.Scale)))
		if (cx%2+2)%2 == (cy%2+2)%2 {
			return tex.Color1
		}
		return tex.Color2

	case TextureEdge:
		// Distance to the nearest triangle edge in barycentric space, not
		// texture space -- matches beamcast/textures.hpp reading hit.uv
		// rather than hit.texCoords here.
		u, v := hit.BaryUV[0], hit.BaryUV[1]
		dist := u
		if v < dist {
			dist = v
		}
		if w := 1 - u - v; w < dist {
			dist = w
		}
		if dist < tex.Width {
			return tex.Color1
		}
		return tex.Color2

	case TextureBitmap:
		if tex.Bitmap == nil {
			return types.Vec3{}
		}
		bounds := tex.Bitmap.Bounds()
		w, h := bounds.Dx(), bounds.Dy()
		u := wrap01(hit.TexCoord[0])
		v := wrap01(hit.TexCoord[1])
		x := bounds.Min.X + int(u*float32(w))%w
		y := bounds.Min.Y + int(v*float32(h))%h
		r, g, b, _ := tex.Bitmap.At(x, y).RGBA()
		return types.Vec3{float32(r) / 65535, float32(g) / 65535, float32(b) / 65535}

	default:
		return types.Vec3{}
	}
}

func wrap01(v float32) float32 {
	v = float32(math.Mod(float64(v), 1.0))
	if v < 0 {
		v++
	}
	return v
}
