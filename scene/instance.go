package scene

import (
	"github.com/achilleasa/go-pathtrace/core"
	"github.com/achilleasa/go-pathtrace/types"
)

// MeshInstance places a Mesh in the scene via a transform, and is itself
// the Primitive type partitioned by the top-level scene BVH.
type MeshInstance struct {
	Mesh         *Mesh
	Transform    types.Mat4
	InvTransform types.Mat4
	Identity     bool

	Material   *Material
	MaterialID int

	worldBox core.AABB
}

// NewMeshInstance builds an instance, computing its world AABB by
// transforming the mesh AABB's eight corners and unioning them (transform
// can only translate/rotate/scale, so this is exact for axis-aligned boxes
// under any affine map, tight only when the transform is axis-preserving).
func NewMeshInstance(mesh *Mesh, transform types.Mat4, material *Material, materialID int) *MeshInstance {
	inst := &MeshInstance{
		Mesh:         mesh,
		Transform:    transform,
		InvTransform: transform.Inv(),
		Identity:     transform == types.Ident4(),
		Material:     material,
		MaterialID:   materialID,
	}
	inst.worldBox = core.EmptyAABB()
	for _, c := range mesh.Box.Corners() {
		inst.worldBox = inst.worldBox.UnionPoint(transform.TransformPoint(c))
	}
	return inst
}

func (mi *MeshInstance) Bounds() core.AABB  { return mi.worldBox }
func (mi *MeshInstance) Center() types.Vec3 { return mi.worldBox.Center() }

// Intersect transforms the incoming world ray into mesh-local space by the
// inverse transform (point transform for the origin, vector transform for
// the direction, without renormalizing), delegates to the mesh's own
// triangle-BVH, then transforms the resulting shading normal back to world
// space with the forward transform, renormalized.
//
// The direction is deliberately left unnormalized after the inverse
// transform: t stays meaningful in instance-local space, and the
// world-space hit position is recovered by evaluating the *original* world
// ray at t, not the local one.
//
// Shadow rays against a single-sided material reject back faces (spec
// §4.4/§4.6); Scene.IntersectShadow separately filters out whole instances
// whose material doesn't cast shadows before ever reaching here.
func (mi *MeshInstance) Intersect(ray core.Ray, tMin, tMax float32) (bool, core.RayHit) {
	localRay := ray
	if !mi.Identity {
		localRay.Origin = mi.InvTransform.TransformPoint(ray.Origin)
		localRay.Direction = mi.InvTransform.TransformDirection(ray.Direction)
	}

	var ok bool
	var hit core.RayHit
	if ray.Kind == core.Shadow && !mi.Material.DoubleSided {
		ok, hit = mi.Mesh.IntersectFrontFacing(localRay, tMin, tMax, mi.Material.Smooth)
	} else {
		ok, hit = mi.Mesh.Intersect(localRay, tMin, tMax, mi.Material.Smooth)
	}
	if !ok {
		return false, core.Miss()
	}

	if mi.Identity {
		return true, hit
	}

	hit.Pos = ray.At(hit.T)
	normal := mi.Transform.TransformDirection(hit.Normal)
	if !normal.IsZero() {
		normal = normal.Normalize()
	}
	hit.Normal = normal
	return true, hit
}
