package core

import "github.com/achilleasa/go-pathtrace/types"

// RayKind distinguishes primary (camera/bounce) rays from shadow rays, so
// traversal filters can treat them differently (shadow rays skip materials
// that opt out of casting shadows, and respect back-face culling).
type RayKind uint8

const (
	Primary RayKind = iota
	Shadow
)

// Ray is a parametric line: point(t) = Origin + t*Direction.
type Ray struct {
	Origin    types.Vec3
	Direction types.Vec3
	Kind      RayKind

	// Attenuation is a per-ray throughput slot: NewRay sets it to (1,1,1)
	// and NewShadowRay leaves it zero. The integrator's materials neither
	// read nor update it; path throughput is carried by the radiance
	// values that Shade returns.
	Attenuation types.Vec3
}

// NewRay creates a primary ray with full attenuation.
func NewRay(origin, direction types.Vec3) Ray {
	return Ray{
		Origin:      origin,
		Direction:   direction,
		Kind:        Primary,
		Attenuation: types.Vec3{1, 1, 1},
	}
}

// NewShadowRay creates a shadow ray used purely for occlusion testing.
func NewShadowRay(origin, direction types.Vec3) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
		Kind:      Shadow,
	}
}

// At evaluates the ray at parameter t.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// InvDirection returns the componentwise reciprocal of the ray direction,
// used by the AABB slab test. A zero component yields signed infinity,
// which AABB.Intersect handles explicitly.
func (r Ray) InvDirection() types.Vec3 {
	return types.Vec3{1 / r.Direction[0], 1 / r.Direction[1], 1 / r.Direction[2]}
}

// NoHit marks the absence of an intersection in a RayHit's ObjectIndex.
const NoHit uint32 = 0xFFFFFFFF

// RayHit records the result of a closest-hit intersection query.
type RayHit struct {
	T      float32
	Pos    types.Vec3
	Normal types.Vec3

	// BaryUV holds the raw barycentric (u, v) of the hit within its
	// triangle, used by procedural textures that key off distance to an
	// edge (TextureEdge). TexCoord holds the mesh's own interpolated
	// per-vertex UV (or the barycentric pair, when the mesh has none),
	// used by textures that sample texture space (TextureChecker,
	// TextureBitmap). Kept distinct rather than a single UV field,
	// matching beamcast/intersectable.hpp's "uv" vs. mesh.hpp's
	// "texCoords".
	BaryUV   types.Vec2
	TexCoord types.Vec2

	// TriangleIndex is the index of the hit triangle within its owning
	// mesh; ObjectIndex is the index of the hit primitive (mesh instance,
	// or triangle when intersecting a mesh's own BVH) within the tree
	// that was traversed. ObjectIndex == NoHit means no intersection was
	// found.
	TriangleIndex uint32
	ObjectIndex   uint32

	// Depth is the recursion depth at which this hit was shaded; set by
	// the integrator, not by traversal.
	Depth int
}

// Miss returns a zero-value hit record meaning "no intersection".
func Miss() RayHit {
	return RayHit{ObjectIndex: NoHit}
}

// Hit reports whether the hit record represents an actual intersection.
func (h RayHit) Hit() bool {
	return h.ObjectIndex != NoHit
}
