package bvh

import (
	"github.com/achilleasa/go-pathtrace/core"
	"github.com/achilleasa/go-pathtrace/types"
)

func noopFilter(Primitive) bool { return true }

// Intersect performs a closest-hit query. It returns the nearest
// intersection in (tMin, tMax], front-to-back, pruning any subtree whose
// box entry distance is not closer than the current best hit.
func (t *Tree) Intersect(ray core.Ray, tMin, tMax float32, filter Filter) (bool, core.RayHit) {
	if len(t.nodes) == 0 {
		return false, core.Miss()
	}
	if filter == nil {
		filter = noopFilter
	}

	invDir := ray.InvDirection()
	if ok, _ := t.nodes[0].Box.Intersect(ray.Origin, invDir, tMin, tMax); !ok {
		return false, core.Miss()
	}

	hit := core.Miss()
	closest := tMax
	found := t.intersectNode(0, ray, invDir, tMin, &closest, &hit, filter)
	return found, hit
}

// IntersectAny performs an any-hit (shadow) query: it returns as soon as a
// primitive accepted by filter is hit anywhere in (tMin, tMax]. Shadow
// queries pass a tight tMax (the distance to the light), so the same
// front-to-back descent used for closest-hit short-circuits naturally once
// an accepted hit is found.
func (t *Tree) IntersectAny(ray core.Ray, tMin, tMax float32, filter Filter) bool {
	if len(t.nodes) == 0 {
		return false
	}
	if filter == nil {
		filter = noopFilter
	}

	invDir := ray.InvDirection()
	if ok, _ := t.nodes[0].Box.Intersect(ray.Origin, invDir, tMin, tMax); !ok {
		return false
	}

	hit := core.Miss()
	closest := tMax
	return t.intersectNodeAny(0, ray, invDir, tMin, &closest, &hit, filter)
}

// intersectNode recursively descends the flat tree starting at idx,
// updating *tMax and *hit in place whenever a closer intersection is
// found. It returns whether any primitive was hit in this subtree.
func (t *Tree) intersectNode(idx uint32, ray core.Ray, invDir types.Vec3, tMin float32, tMax *float32, hit *core.RayHit, filter Filter) bool {
	node := &t.nodes[idx]

	if node.isLeaf() {
		return t.intersectLeaf(node, ray, tMin, tMax, hit, filter)
	}

	leftIdx := idx + 1
	rightIdx := node.Right

	leftBox := t.nodes[leftIdx].Box
	rightBox := t.nodes[rightIdx].Box

	leftHit, leftT := leftBox.Intersect(ray.Origin, invDir, tMin, *tMax)
	rightHit, rightT := rightBox.Intersect(ray.Origin, invDir, tMin, *tMax)

	// Visit the child the ray direction points towards first: if the
	// direction's component along the split axis is positive, the
	// "near" side is the left child (primitives were partitioned with
	// centroid < plane on the left), otherwise it's the right child.
	nearIdx, farIdx := leftIdx, rightIdx
	nearHit, farHit := leftHit, rightHit
	farT := rightT
	if ray.Direction[node.SplitAxis] <= 0 {
		nearIdx, farIdx = rightIdx, leftIdx
		nearHit, farHit = rightHit, leftHit
		farT = leftT
	}

	found := false
	if nearHit {
		if t.intersectNode(nearIdx, ray, invDir, tMin, tMax, hit, filter) {
			found = true
		}
	}
	if farHit && farT < *tMax {
		if t.intersectNode(farIdx, ray, invDir, tMin, tMax, hit, filter) {
			found = true
		}
	}
	return found
}

// intersectNodeAny is the any-hit counterpart of intersectNode: it stops
// descending as soon as an accepted hit has been recorded.
func (t *Tree) intersectNodeAny(idx uint32, ray core.Ray, invDir types.Vec3, tMin float32, tMax *float32, hit *core.RayHit, filter Filter) bool {
	node := &t.nodes[idx]

	if node.isLeaf() {
		return t.intersectLeaf(node, ray, tMin, tMax, hit, filter)
	}

	leftIdx := idx + 1
	rightIdx := node.Right

	leftBox := t.nodes[leftIdx].Box
	rightBox := t.nodes[rightIdx].Box

	leftHit, leftT := leftBox.Intersect(ray.Origin, invDir, tMin, *tMax)
	rightHit, rightT := rightBox.Intersect(ray.Origin, invDir, tMin, *tMax)

	nearIdx, farIdx := leftIdx, rightIdx
	nearHit, farHit := leftHit, rightHit
	farT := rightT
	if ray.Direction[node.SplitAxis] <= 0 {
		nearIdx, farIdx = rightIdx, leftIdx
		nearHit, farHit = rightHit, leftHit
		farT = leftT
	}

	if nearHit && t.intersectNodeAny(nearIdx, ray, invDir, tMin, tMax, hit, filter) {
		return true
	}
	if farHit && farT < *tMax {
		if t.intersectNodeAny(farIdx, ray, invDir, tMin, tMax, hit, filter) {
			return true
		}
	}
	return false
}

func (t *Tree) intersectLeaf(node *FlatNode, ray core.Ray, tMin float32, tMax *float32, hit *core.RayHit, filter Filter) bool {
	found := false
	for i := uint32(0); i < uint32(t.leafPrimitiveCount); i++ {
		prim := t.prims[node.PrimitivesOffset+i]
		if prim == nil {
			break
		}
		if !filter(prim) {
			continue
		}
		if ok, candidate := prim.Intersect(ray, tMin, *tMax); ok {
			*tMax = candidate.T
			candidate.ObjectIndex = node.PrimitivesOffset + i
			*hit = candidate
			found = true
		}
	}
	return found
}
