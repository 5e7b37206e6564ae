// Package render implements the bounded-depth recursive shading integrator
// and the tile-parallel scheduler that drives it across an output image.
package render

import (
	"math"

	"github.com/achilleasa/go-pathtrace/core"
	"github.com/achilleasa/go-pathtrace/sampler"
	"github.com/achilleasa/go-pathtrace/scene"
	"github.com/achilleasa/go-pathtrace/types"
)

// maxDepth bounds shading recursion (SPEC_FULL resolves spec.md's 3-5 range
// to 3, overriding the original's MAX_DEPTH = 5 -- see SPEC_FULL.md).
const maxDepth = 3

// rayEpsilon offsets a spawned ray's origin away from the surface it left,
// matching beamcast/materials.cpp's EPS.
const rayEpsilon = 0.001

// Integrator shades a primary ray against a scene, recursing through
// material bounces up to maxDepth. It carries no mutable state of its own;
// all per-sample randomness is supplied externally via a *sampler.Rand so
// that a single Integrator value is safe to share across tile workers.
type Integrator struct {
	Scene *scene.Scene
}

// Shade traces ray through the scene and returns the radiance it gathers.
// depth is the number of bounces already taken (0 for a primary ray).
func (ig *Integrator) Shade(ray core.Ray, depth int, rng *sampler.Rand) types.Vec3 {
	if depth >= maxDepth {
		return ig.Scene.BackgroundColor
	}

	hit, inst, ok := ig.intersect(ray)
	if !ok {
		return ig.Scene.BackgroundColor
	}
	hit.Depth = depth

	mat := inst.Material
	switch mat.Kind {
	case scene.Diffuse:
		return ig.shadeDiffuse(mat, hit, depth, rng)
	case scene.Reflective:
		return ig.shadeReflective(mat, ray, hit, depth, rng)
	case scene.Refractive:
		return ig.shadeRefractive(mat, ray, hit, depth, rng)
	case scene.Constant:
		return mat.Albedo.Sample(hit)
	default:
		return ig.Scene.BackgroundColor
	}
}

func (ig *Integrator) intersect(ray core.Ray) (core.RayHit, *scene.MeshInstance, bool) {
	ok, hit, inst := ig.Scene.Intersect(ray, 1e-4, math.MaxFloat32)
	return hit, inst, ok
}

// shadeDiffuse implements spec §4.7's Diffuse variant: direct lighting
// summed over every point light (shadow-tested when the material receives
// shadows), plus one cosine-weighted indirect bounce, modulated by albedo.
func (ig *Integrator) shadeDiffuse(mat *scene.Material, hit core.RayHit, depth int, rng *sampler.Rand) types.Vec3 {
	var direct types.Vec3
	for _, light := range ig.Scene.Lights {
		toLight := light.Position.Sub(hit.Pos)
		distSq := toLight.Dot(toLight)
		dist := float32(math.Sqrt(float64(distSq)))
		if dist < 1e-8 {
			continue
		}
		lightDir := toLight.Mul(1 / dist)

		ndotl := hit.Normal.Dot(lightDir)
		if ndotl <= 0 {
			continue
		}

		if mat.ReceivesShadows {
			shadowOrigin := hit.Pos.Add(hit.Normal.Mul(rayEpsilon))
			shadowRay := core.NewShadowRay(shadowOrigin, lightDir)
			if ig.Scene.IntersectShadow(shadowRay, rayEpsilon, dist-rayEpsilon) {
				continue
			}
		}

		attenuation := float32(4) * float32(math.Pi) * distSq
		direct = direct.Add(light.Color.Mul(light.Intensity * ndotl / attenuation))
	}

	bounceDir := sampler.CosineWeightedHemisphere(hit.Normal, rng.Float(), rng.Float())
	bounceOrigin := hit.Pos.Add(hit.Normal.Mul(rayEpsilon))
	indirect := ig.Shade(core.NewRay(bounceOrigin, bounceDir), depth+1, rng)

	albedo := mat.Albedo.Sample(hit)
	return direct.Add(indirect).MulVec(albedo)
}

// shadeReflective implements spec §4.7's Reflective variant: a single
// mirror bounce, modulated by albedo.
func (ig *Integrator) shadeReflective(mat *scene.Material, ray core.Ray, hit core.RayHit, depth int, rng *sampler.Rand) types.Vec3 {
	reflectedDir := types.Reflect(ray.Direction, hit.Normal).Normalize()
	origin := hit.Pos.Add(hit.Normal.Mul(rayEpsilon))
	reflected := ig.Shade(core.NewRay(origin, reflectedDir), depth+1, rng)
	albedo := mat.Albedo.Sample(hit)
	return reflected.MulVec(albedo)
}

// shadeRefractive implements spec §4.7's Refractive variant: entering vs.
// exiting determined by the sign of dot(ray.dir, normal), Fresnel-Schlick
// weighting (with total internal reflection) choosing stochastically
// between a reflected and a refracted bounce, and Beer-Lambert absorption
// applied when exiting the medium.
func (ig *Integrator) shadeRefractive(mat *scene.Material, ray core.Ray, hit core.RayHit, depth int, rng *sampler.Rand) types.Vec3 {
	normal := hit.Normal
	ior1, ior2 := float32(1), mat.IOR
	entering := ray.Direction.Dot(normal) < 0
	if !entering {
		ior1, ior2 = ior2, ior1
		normal = normal.Negate()
	}

	eta := ior1 / ior2
	fresnel := schlickFresnel(ray.Direction, normal, ior1, ior2)

	var color types.Vec3
	if rng.Float() < fresnel {
		reflectedDir := types.Reflect(ray.Direction, normal).Normalize()
		origin := hit.Pos.Add(normal.Mul(rayEpsilon))
		color = ig.Shade(core.NewRay(origin, reflectedDir), depth+1, rng)
	} else {
		refractedDir := types.Refract(ray.Direction, normal, eta)
		if refractedDir.IsZero() {
			reflectedDir := types.Reflect(ray.Direction, normal).Normalize()
			origin := hit.Pos.Add(normal.Mul(rayEpsilon))
			color = ig.Shade(core.NewRay(origin, reflectedDir), depth+1, rng)
		} else {
			refractedDir = refractedDir.Normalize()
			origin := hit.Pos.Sub(normal.Mul(rayEpsilon))
			color = ig.Shade(core.NewRay(origin, refractedDir), depth+1, rng)
			if !entering {
				color = color.MulVec(beerLambert(mat.Absorption, hit.T))
			}
		}
	}

	return color
}

// schlickFresnel computes the Fresnel reflectance via the Schlick
// approximation, handling total internal reflection when travelling from a
// denser to a less dense medium, matching
// beamcast/materials.cpp's fresnelReflectAmount.
func schlickFresnel(incident, normal types.Vec3, n1, n2 float32) float32 {
	r0 := (n1 - n2) / (n1 + n2)
	r0 *= r0

	cosX := -normal.Dot(incident)
	if n1 > n2 {
		n := n1 / n2
		sin2T := n * n * (1 - cosX*cosX)
		if sin2T > 1 {
			return 1
		}
		cosX = float32(math.Sqrt(float64(1 - sin2T)))
	}
	x := 1 - cosX
	return r0 + (1-r0)*x*x*x*x*x
}

// beerLambert returns the per-channel transmittance of a medium with the
// given absorption coefficient over distance t.
func beerLambert(absorption types.Vec3, t float32) types.Vec3 {
	return types.Vec3{
		float32(math.Exp(float64(-absorption[0] * t))),
		float32(math.Exp(float64(-absorption[1] * t))),
		float32(math.Exp(float64(-absorption[2] * t))),
	}
}
