// Package sampler provides the RNG and sample-sequence primitives consumed
// by the integrator: a PCG-style hash for seeding, an LCG for per-sample
// draws, cosine-weighted hemisphere sampling and the Hammersley sequence.
// Every RNG is strictly thread-local -- state is a value threaded explicitly
// through calls, never package-level (spec §5's "RNG state is strictly
// thread-local").
package sampler

import (
	"math"

	"github.com/achilleasa/go-pathtrace/types"
)

// Rand is an LCG generator seeded once per tile job. It is not
// cryptographically strong; it exists to be fast and reproducible given a
// fixed seed, matching beamcast/sample.hpp's randomFloat.
type Rand struct {
	state uint32
}

// NewRand creates a generator from a 32-bit seed.
func NewRand(seed uint32) *Rand {
	return &Rand{state: seed}
}

// Seed derives a per-sample seed from pixel coordinates, frame index and a
// tile base seed, per spec §5: "each pixel derives its per-sample RNG seed
// from a hash of (x, y, frame, tile_base_seed) -- never from a global
// counter." Hashing is PCG-style, matching beamcast/sample.hpp's pcg_hash.
func Seed(x, y, frame int, tileBaseSeed uint32) uint32 {
	h := tileBaseSeed
	h = pcgHash(h ^ uint32(x)*0x9E3779B9)
	h = pcgHash(h ^ uint32(y)*0x85EBCA6B)
	h = pcgHash(h ^ uint32(frame)*0xC2B2AE35)
	return h
}

func pcgHash(input uint32) uint32 {
	state := input*747796405 + 2891336453
	word := ((state >> ((state >> 28) + 4)) ^ state) * 277803737
	return (word >> 22) ^ word
}

// Float returns the next uniform float in [0, 1).
func (r *Rand) Float() float32 {
	r.state = (r.state*1103515245 + 12345) & 0x7fffffff
	// The top 24 of the 31 state bits convert to float32 exactly, so the
	// result never rounds up to 1.
	return float32(r.state>>7) / float32(1<<24)
}

// Float2 returns two independent uniform floats in [0, 1).
func (r *Rand) Float2() (float32, float32) {
	return r.Float(), r.Float()
}

// CosineWeightedHemisphere samples a direction about normal n, weighted by
// cos(theta) against n -- the sampling distribution the diffuse material
// uses for its indirect bounce (spec §4.7). u1, u2 are independent uniforms
// in [0, 1), typically drawn from Rand.Float2.
func CosineWeightedHemisphere(n types.Vec3, u1, u2 float32) types.Vec3 {
	r := float32(math.Sqrt(float64(u1)))
	theta := 2 * math.Pi * float64(u2)
	x := r * float32(math.Cos(theta))
	y := r * float32(math.Sin(theta))
	z := float32(math.Sqrt(math.Max(0, float64(1-u1))))

	t, b := orthonormalBasis(n)
	dir := t.Mul(x).Add(b.Mul(y)).Add(n.Mul(z))
	if !dir.IsZero() {
		dir = dir.Normalize()
	}
	return dir
}

// orthonormalBasis builds an arbitrary tangent/bitangent pair perpendicular
// to n, using the Duff et al. branchless construction.
func orthonormalBasis(n types.Vec3) (t, b types.Vec3) {
	sign := float32(1)
	if n[2] < 0 {
		sign = -1
	}
	a := -1 / (sign + n[2])
	c := n[0] * n[1] * a
	t = types.Vec3{1 + sign*n[0]*n[0]*a, sign * c, -sign * n[0]}
	b = types.Vec3{c, sign + n[1]*n[1]*a, -n[1]}
	return t, b
}

// RadicalInverseVdC reverses the bits of i and reinterprets them as a
// fraction in [0, 1) (the van der Corput sequence, base 2), matching
// beamcast/sample.hpp's RadicalInverse_VdC.
func RadicalInverseVdC(bits uint32) float32 {
	bits = (bits << 16) | (bits >> 16)
	bits = ((bits & 0x55555555) << 1) | ((bits & 0xAAAAAAAA) >> 1)
	bits = ((bits & 0x33333333) << 2) | ((bits & 0xCCCCCCCC) >> 2)
	bits = ((bits & 0x0F0F0F0F) << 4) | ((bits & 0xF0F0F0F0) >> 4)
	bits = ((bits & 0x00FF00FF) << 8) | ((bits & 0xFF00FF00) >> 8)
	return float32(bits) * 2.3283064365386963e-10
}

// Hammersley returns the i-th of N points of the 2D Hammersley
// low-discrepancy sequence.
func Hammersley(i, n uint32) types.Vec2 {
	return types.Vec2{float32(i) / float32(n), RadicalInverseVdC(i)}
}
