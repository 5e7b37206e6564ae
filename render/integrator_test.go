package render

import (
	"testing"

	"github.com/achilleasa/go-pathtrace/core"
	"github.com/achilleasa/go-pathtrace/sampler"
	"github.com/achilleasa/go-pathtrace/scene"
	"github.com/achilleasa/go-pathtrace/types"
)

func floorScene(t *testing.T, matKind scene.MaterialKind) *scene.Scene {
	t.Helper()
	vertices := []float32{
		-10, 0, -10,
		10, 0, -10,
		10, 0, 10,
		-10, 0, 10,
	}
	mesh1, err := scene.NewMesh(vertices, nil, nil, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mesh2, err := scene.NewMesh(vertices, nil, nil, []int{0, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mat := &scene.Material{
		Kind:            matKind,
		Albedo:          scene.NewConstantTexture(types.Vec3{0.8, 0.8, 0.8}),
		IOR:             1.5,
		CastsShadows:    true,
		ReceivesShadows: true,
		DoubleSided:     true,
	}

	scn := &scene.Scene{
		Materials:       []*scene.Material{mat},
		BackgroundColor: types.Vec3{0, 0, 0},
		Lights: []scene.PointLight{
			{Position: types.Vec3{0, 5, 0}, Color: types.Vec3{1, 1, 1}, Intensity: 100},
		},
	}
	scn.Instances = []*scene.MeshInstance{
		scene.NewMeshInstance(mesh1, types.Ident4(), mat, 0),
		scene.NewMeshInstance(mesh2, types.Ident4(), mat, 0),
	}
	scn.Build()
	return scn
}

// A diffuse surface must never return more radiance than it received --
// the direct term is bounded by the inverse-square-attenuated light
// contribution and the indirect bounce is a single recursive sample of the
// same bounded process, so the result stays finite and non-negative.
func TestDiffuseShadeStaysNonNegativeAndFinite(t *testing.T) {
	scn := floorScene(t, scene.Diffuse)
	ig := &Integrator{Scene: scn}
	rng := sampler.NewRand(sampler.Seed(1, 2, 0, 42))

	ray := core.NewRay(types.Vec3{5, 1, 2}, types.Vec3{0, -1, 0})
	color := ig.Shade(ray, 0, rng)

	for i := 0; i < 3; i++ {
		if color[i] < 0 {
			t.Fatalf("expected non-negative radiance, got %v", color)
		}
		if color[i] > 1000 {
			t.Fatalf("radiance %v implausibly large for a single bounce diffuse surface", color)
		}
	}
}

func TestShadeMissReturnsBackgroundColor(t *testing.T) {
	scn := floorScene(t, scene.Diffuse)
	scn.BackgroundColor = types.Vec3{0.1, 0.2, 0.3}
	ig := &Integrator{Scene: scn}
	rng := sampler.NewRand(1)

	ray := core.NewRay(types.Vec3{0, 1, 0}, types.Vec3{0, 1, 0})
	color := ig.Shade(ray, 0, rng)
	if color != scn.BackgroundColor {
		t.Fatalf("expected a ray missing all geometry to return the background color, got %v", color)
	}
}

func TestShadeAtMaxDepthReturnsBackgroundWithoutRecursing(t *testing.T) {
	scn := floorScene(t, scene.Diffuse)
	ig := &Integrator{Scene: scn}
	rng := sampler.NewRand(1)

	ray := core.NewRay(types.Vec3{5, 1, 2}, types.Vec3{0, -1, 0})
	color := ig.Shade(ray, maxDepth, rng)
	if color != scn.BackgroundColor {
		t.Fatalf("expected shading at the depth cap to return background color without recursing, got %v", color)
	}
}

func TestBeerLambertAttenuatesOverDistance(t *testing.T) {
	absorption := types.Vec3{1, 0.5, 0.1}
	near := beerLambert(absorption, 0.1)
	far := beerLambert(absorption, 5)

	for i := 0; i < 3; i++ {
		if far[i] >= near[i] {
			t.Fatalf("expected attenuation to decrease with distance, near=%v far=%v", near, far)
		}
		if far[i] < 0 || far[i] > 1 {
			t.Fatalf("expected transmittance in [0,1], got %v", far[i])
		}
	}
}

func TestBeerLambertZeroDistanceIsIdentity(t *testing.T) {
	absorption := types.Vec3{1, 2, 3}
	result := beerLambert(absorption, 0)
	for i := 0; i < 3; i++ {
		if result[i] < 0.999 || result[i] > 1.001 {
			t.Fatalf("expected zero-distance transmittance of 1, got %v", result)
		}
	}
}

func TestSchlickFresnelNormalIncidenceMatchesR0(t *testing.T) {
	n1, n2 := float32(1), float32(1.5)
	r0 := (n1 - n2) / (n1 + n2)
	r0 *= r0

	f := schlickFresnel(types.Vec3{0, 0, -1}, types.Vec3{0, 0, 1}, n1, n2)
	if diff := f - r0; diff < -1e-4 || diff > 1e-4 {
		t.Fatalf("expected normal-incidence Fresnel to equal r0=%f, got %f", r0, f)
	}
}

func TestSchlickFresnelTotalInternalReflection(t *testing.T) {
	// A glancing ray exiting a denser medium (n1 > n2) beyond the
	// critical angle must reflect with probability 1.
	grazing := types.Vec3{0.999, 0, -0.05}.Normalize()
	f := schlickFresnel(grazing, types.Vec3{0, 0, 1}, 1.5, 1.0)
	if f != 1 {
		t.Fatalf("expected total internal reflection to force Fresnel reflectance to 1, got %f", f)
	}
}
