package scene

import (
	"math"
	"testing"

	"github.com/achilleasa/go-pathtrace/core"
	"github.com/achilleasa/go-pathtrace/types"
)

func opaqueMaterial() *Material {
	return &Material{
		Kind:            Diffuse,
		Albedo:          NewConstantTexture(types.Vec3{1, 1, 1}),
		CastsShadows:    true,
		ReceivesShadows: true,
		DoubleSided:     true,
	}
}

// Spec §8, "instance transform round-trip": if a ray hits an instance at
// world point P, transforming P by the instance's inverse transform must
// land on the underlying mesh (within 1e-4 of the local-space hit point the
// mesh itself would have reported).
func TestInstanceTransformRoundTrip(t *testing.T) {
	mesh := singleTriangle()
	mat := opaqueMaterial()

	basis := [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
	transform := types.Mat4FromBasisAndPosition(basis, types.Vec3{3, 4, 5}).Mul4(
		types.Mat4FromBasisAndPosition([9]float32{2, 0, 0, 0, 2, 0, 0, 0, 2}, types.Vec3{0, 0, 0}),
	)
	inst := NewMeshInstance(mesh, transform, mat, 0)

	worldRay := core.NewRay(types.Vec3{3, 3.6, 15}, types.Vec3{0, 0, -1})
	ok, hit := inst.Intersect(worldRay, 1e-4, 1e30)
	if !ok {
		t.Fatalf("expected instance hit")
	}

	local := inst.InvTransform.TransformPoint(hit.Pos)
	localRay := core.NewRay(inst.InvTransform.TransformPoint(worldRay.Origin), inst.InvTransform.TransformDirection(worldRay.Direction))
	meshOk, meshHit := mesh.Intersect(localRay, 1e-4, 1e30, mat.Smooth)
	if !meshOk {
		t.Fatalf("expected mesh-local hit")
	}

	d := local.Sub(meshHit.Pos)
	if math.Abs(float64(d[0])) > 1e-4 || math.Abs(float64(d[1])) > 1e-4 || math.Abs(float64(d[2])) > 1e-4 {
		t.Fatalf("instance-space round trip mismatch: local=%v meshHit=%v", local, meshHit.Pos)
	}
}

func TestMeshInstanceWorldBoundsEnclosesTransformedGeometry(t *testing.T) {
	mesh := singleTriangle()
	mat := opaqueMaterial()
	transform := types.Mat4FromBasisAndPosition([9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}, types.Vec3{10, 0, 0})
	inst := NewMeshInstance(mesh, transform, mat, 0)

	box := inst.Bounds()
	for _, v := range mesh.Vertices {
		wp := transform.TransformPoint(v)
		for axis := 0; axis < 3; axis++ {
			if wp[axis] < box.Min[axis]-1e-4 || wp[axis] > box.Max[axis]+1e-4 {
				t.Fatalf("world bounds do not enclose transformed vertex %v", wp)
			}
		}
	}
}

func TestIdentityInstanceSkipsTransform(t *testing.T) {
	mesh := singleTriangle()
	mat := opaqueMaterial()
	inst := NewMeshInstance(mesh, types.Ident4(), mat, 0)
	if !inst.Identity {
		t.Fatalf("expected identity transform to be detected")
	}

	ray := core.NewRay(types.Vec3{0, -0.2, 0}, types.Vec3{0, 0, -1})
	ok, hit := inst.Intersect(ray, 1e-4, 1e30)
	if !ok {
		t.Fatalf("expected a hit")
	}
	if hit.T < 4.9 || hit.T > 5.1 {
		t.Fatalf("expected t close to 5, got %f", hit.T)
	}
}

// Single-sided materials must reject shadow rays hitting a back face, per
// spec §4.4's back-face culling rule for shadow-ray occlusion tests.
func TestInstanceShadowRayRespectsBackFaceCulling(t *testing.T) {
	mesh := singleTriangle()
	mat := opaqueMaterial()
	mat.DoubleSided = false
	inst := NewMeshInstance(mesh, types.Ident4(), mat, 0)

	backShadow := core.NewShadowRay(types.Vec3{0, -0.2, -10}, types.Vec3{0, 0, 1})
	if ok, _ := inst.Intersect(backShadow, 1e-4, 1e30); ok {
		t.Fatalf("expected back-facing shadow ray to be culled for a single-sided material")
	}

	frontShadow := core.NewShadowRay(types.Vec3{0, -0.2, 0}, types.Vec3{0, 0, -1})
	if ok, _ := inst.Intersect(frontShadow, 1e-4, 1e30); !ok {
		t.Fatalf("expected front-facing shadow ray to hit")
	}
}
