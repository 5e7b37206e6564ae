package scene

import (
	"testing"

	"github.com/achilleasa/go-pathtrace/core"
	"github.com/achilleasa/go-pathtrace/types"
)

func TestTextureConstantIgnoresHit(t *testing.T) {
	tex := NewConstantTexture(types.Vec3{0.2, 0.4, 0.6})
	got := tex.Sample(core.RayHit{})
	if got != (types.Vec3{0.2, 0.4, 0.6}) {
		t.Fatalf("expected constant texture to ignore the hit, got %v", got)
	}
}

// TextureChecker/TextureBitmap key off the mesh's interpolated texture-space
// UV (hit.TexCoord); TextureEdge keys off the raw barycentric pair
// (hit.BaryUV). A hit whose two UV pairs disagree must make each texture
// kind read its own field.
func TestTextureSamplingReadsTheCorrectUVField(t *testing.T) {
	hit := core.RayHit{
		// Deep in barycentric-edge-band territory (distance to nearest
		// edge < 0.05), but far from any checker boundary in texture
		// space.
		BaryUV:   types.Vec2{0.01, 0.01},
		TexCoord: types.Vec2{0.5, 0.5},
	}

	edge := &Texture{Kind: TextureEdge, Color1: types.Vec3{1, 0, 0}, Color2: types.Vec3{0, 0, 1}, Width: 0.05}
	if got := edge.Sample(hit); got != edge.Color1 {
		t.Fatalf("expected edge texture to read barycentric UV and land in the edge band, got %v", got)
	}

	checker := &Texture{Kind: TextureChecker, Color1: types.Vec3{1, 1, 1}, Color2: types.Vec3{0, 0, 0}, Scale: 1}
	cx := int(hit.TexCoord[0] / checker.Scale)
	cy := int(hit.TexCoord[1] / checker.Scale)
	want := checker.Color2
	if (cx%2+2)%2 == (cy%2+2)%2 {
		want = checker.Color1
	}
	if got := checker.Sample(hit); got != want {
		t.Fatalf("expected checker texture to read interpolated texture UV, got %v want %v", got, want)
	}
}

// A mesh whose per-vertex UVs make the interpolated texture coordinate land
// far from any edge, while the hit's own barycentric position sits right on
// a triangle edge, must still show the edge band: TextureEdge has to use
// the raw barycentric pair, not the mesh-interpolated UV.
func TestMeshEdgeTextureUsesBarycentricNotTextureUV(t *testing.T) {
	vertices := []float32{
		-1, -1, -5,
		1, -1, -5,
		0, 1, -5,
	}
	// Interpolated UV is pinned at (0.5, 0.5) everywhere on the triangle
	// regardless of where within it a ray lands.
	uvs := []float32{
		0.5, 0.5, 0,
		0.5, 0.5, 0,
		0.5, 0.5, 0,
	}
	m, err := NewMesh(vertices, nil, uvs, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Aimed near the v0 corner (-1,-1,-5): barycentric u and v are both
	// small, landing inside the edge band.
	ray := core.NewRay(types.Vec3{-0.95, -0.95, 0}, types.Vec3{0, 0, -1})
	ok, hit := m.Intersect(ray, 1e-4, 1e30, false)
	if !ok {
		t.Fatalf("expected a hit")
	}
	if hit.TexCoord != (types.Vec2{0.5, 0.5}) {
		t.Fatalf("expected interpolated texture UV pinned at (0.5,0.5), got %v", hit.TexCoord)
	}

	edge := &Texture{Kind: TextureEdge, Color1: types.Vec3{1, 0, 0}, Color2: types.Vec3{0, 0, 1}, Width: 0.1}
	if got := edge.Sample(hit); got != edge.Color1 {
		t.Fatalf("expected the near-corner hit to fall in the barycentric edge band, got %v", got)
	}

	checker := &Texture{Kind: TextureChecker, Color1: types.Vec3{1, 1, 1}, Color2: types.Vec3{0, 0, 0}, Scale: 1}
	if got := checker.Sample(hit); got != checker.Color1 {
		t.Fatalf("expected checker at origin texture-space cell to read Color1, got %v", got)
	}
}
