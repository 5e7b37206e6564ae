package core

import (
	"math"

	"github.com/achilleasa/go-pathtrace/types"
)

// AABB is an axis-aligned bounding box defined by its min and max corners.
type AABB struct {
	Min types.Vec3
	Max types.Vec3
}

// EmptyAABB returns a degenerate box suitable as the identity element for
// repeated unions (any real box will swallow it).
func EmptyAABB() AABB {
	return AABB{
		Min: types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// BoxFromPoints returns the bounding box of a set of points.
func BoxFromPoints(points ...types.Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box = box.UnionPoint(p)
	}
	return box
}

const minSideLength float32 = 1e-5

// IsEmpty reports whether the box's extent along any axis is at most
// minSideLength.
func (b AABB) IsEmpty() bool {
	size := b.Max.Sub(b.Min)
	return size[0] <= minSideLength || size[1] <= minSideLength || size[2] <= minSideLength
}

// Center returns the box centroid.
func (b AABB) Center() types.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Union returns the smallest box containing both b and other.
func (b AABB) Union(other AABB) AABB {
	return AABB{
		Min: types.MinVec3(b.Min, other.Min),
		Max: types.MaxVec3(b.Max, other.Max),
	}
}

// UnionPoint returns the smallest box containing both b and p.
func (b AABB) UnionPoint(p types.Vec3) AABB {
	return AABB{
		Min: types.MinVec3(b.Min, p),
		Max: types.MaxVec3(b.Max, p),
	}
}

// SurfaceArea returns the total surface area of the box's six faces.
func (b AABB) SurfaceArea() float32 {
	d := b.Max.Sub(b.Min)
	return 2 * (d[0]*d[1] + d[1]*d[2] + d[0]*d[2])
}

// Corners returns the 8 corners of the box, used to compute the world AABB
// of a transformed mesh instance.
func (b AABB) Corners() [8]types.Vec3 {
	return [8]types.Vec3{
		{b.Min[0], b.Min[1], b.Min[2]},
		{b.Max[0], b.Min[1], b.Min[2]},
		{b.Min[0], b.Max[1], b.Min[2]},
		{b.Max[0], b.Max[1], b.Min[2]},
		{b.Min[0], b.Min[1], b.Max[2]},
		{b.Max[0], b.Min[1], b.Max[2]},
		{b.Min[0], b.Max[1], b.Max[2]},
		{b.Max[0], b.Max[1], b.Max[2]},
	}
}

// Intersect performs the slab test against a ray, returning whether the ray
// hits the box within [tMin, tMax] and the entry distance.
//
// Division by a zero direction component yields a signed infinity per IEEE
// 754; when that infinity is multiplied against a zero-width offset (the
// ray origin sitting exactly on a min/max plane) the result is NaN, which
// would otherwise corrupt the running min/max. Each axis is therefore
// resolved independently and a NaN on one axis only discards that axis'
// contribution, rather than the whole test.
func (b AABB) Intersect(origin, invDir types.Vec3, tMin, tMax float32) (bool, float32) {
	tEnter := tMin
	tExit := tMax

	for axis := 0; axis < 3; axis++ {
		t1 := (b.Min[axis] - origin[axis]) * invDir[axis]
		t2 := (b.Max[axis] - origin[axis]) * invDir[axis]

		if math.IsNaN(float64(t1)) {
			t1 = tEnter
		}
		if math.IsNaN(float64(t2)) {
			t2 = tExit
		}

		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tEnter {
			tEnter = t1
		}
		if t2 < tExit {
			tExit = t2
		}
		if tEnter > tExit {
			return false, 0
		}
	}

	return true, tEnter
}
