// Package bvh implements a two-phase Bounding Volume Hierarchy: a mutable
// construction tree built with Surface Area Heuristic (SAH) splits, then
// flattened into a contiguous, cache-friendly traversal tree. It is
// instantiated twice by the scene package: once per mesh (over that mesh's
// triangles) and once for the top-level scene (over mesh instances).
package bvh

import (
	"sort"

	"github.com/achilleasa/go-pathtrace/core"
	"github.com/achilleasa/go-pathtrace/log"
	"github.com/achilleasa/go-pathtrace/types"
)

var logger = log.New("bvh")

const (
	maxDepth               = 50
	minPrimitivesPerLeaf    = 6
	perfectSplitThreshold   = 20
	sahTryCount             = 5
	sahTraversalCost        = 0.125
)

// Primitive is implemented by anything the BVH can partition and traverse:
// a mesh triangle reference or a scene mesh instance.
type Primitive interface {
	Bounds() core.AABB
	Center() types.Vec3

	// Intersect tests the primitive against a ray, writing into hit when
	// it returns true. Callers are responsible for filling in
	// hit.ObjectIndex from the traversal index; Intersect only needs to
	// populate the fields intrinsic to the primitive itself (T, Pos,
	// Normal, BaryUV, TexCoord, TriangleIndex).
	Intersect(ray core.Ray, tMin, tMax float32) (bool, core.RayHit)
}

// Filter optionally rejects a primitive before it is tested, e.g. to
// implement shadow-ray back-face culling or shadow-casting opt-out.
type Filter func(p Primitive) bool

// FlatNode is one entry of the traversal tree. Right == 0 marks a leaf
// (the root is always at index 0 and is never referenced as a right
// child, so the encoding is unambiguous).
type FlatNode struct {
	Box              core.AABB
	Right            uint32
	PrimitivesOffset uint32
	SplitAxis        uint8
}

func (n FlatNode) isLeaf() bool { return n.Right == 0 }

// Tree is the immutable, flattened BVH produced by Build.
type Tree struct {
	nodes []FlatNode
	// prims holds a contiguous run of primitive handles per leaf,
	// terminated by a nil sentinel.
	prims []Primitive

	// leafPrimitiveCount bounds the scan of a leaf's run, mirroring the
	// original's "stop at the first sentinel, or after leafSize
	// iterations" guard.
	leafPrimitiveCount int
}

// Stats summarizes a completed build, used for diagnostics/logging.
type Stats struct {
	Nodes    int
	Leaves   int
	MaxDepth int
	MaxLeaf  int
}

type buildNode struct {
	box         core.AABB
	left, right *buildNode
	prims       []Primitive
	splitAxis   uint8
}

func (n *buildNode) isLeaf() bool { return n.left == nil }

// Build constructs the two-phase BVH over the given primitives.
func Build(prims []Primitive) (*Tree, Stats) {
	b := &builder{}
	root := b.partition(prims, 0)

	t := &Tree{leafPrimitiveCount: b.stats.MaxLeaf}
	t.flatten(root)

	logger.Debugf("BVH built: nodes=%d leaves=%d maxDepth=%d maxLeaf=%d primitives=%d",
		b.stats.Nodes, b.stats.Leaves, b.stats.MaxDepth, b.stats.MaxLeaf, len(prims))

	return t, b.stats
}

type builder struct {
	stats Stats
}

func (b *builder) partition(prims []Primitive, depth int) *buildNode {
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	node := &buildNode{box: core.EmptyAABB()}
	for _, p := range prims {
		node.box = node.box.Union(p.Bounds())
	}

	if depth > maxDepth || len(prims) <= minPrimitivesPerLeaf {
		return b.finalizeLeaf(node, prims)
	}

	centroidBox := core.EmptyAABB()
	for _, p := range prims {
		centroidBox = centroidBox.UnionPoint(p.Center())
	}
	axis := maxExtentAxis(centroidBox)
	node.splitAxis = axis

	var left, right []Primitive
	if len(prims) < perfectSplitThreshold {
		left, right = medianSplit(prims, axis)
	} else {
		var ok bool
		left, right, ok = sahSplit(prims, node.box, axis)
		if !ok {
			return b.finalizeLeaf(node, prims)
		}
	}

	b.stats.Nodes++
	node.left = b.partition(left, depth+1)
	node.right = b.partition(right, depth+1)
	node.prims = nil
	return node
}

func (b *builder) finalizeLeaf(node *buildNode, prims []Primitive) *buildNode {
	node.prims = prims
	b.stats.Leaves++
	if len(prims) > b.stats.MaxLeaf {
		b.stats.MaxLeaf = len(prims)
	}
	return node
}

// maxExtentAxis picks the axis of maximum centroid-bounds extent, with
// ties broken in favour of the first axis encountered (X, then Y, then Z).
func maxExtentAxis(box core.AABB) uint8 {
	size := box.Max.Sub(box.Min)
	axis := uint8(0)
	best := size[0]
	for a := uint8(1); a < 3; a++ {
		if size[a] > best {
			best = size[a]
			axis = a
		}
	}
	return axis
}

func medianSplit(prims []Primitive, axis uint8) (left, right []Primitive) {
	cp := make([]Primitive, len(prims))
	copy(cp, prims)
	sort.Slice(cp, func(i, j int) bool {
		return cp[i].Center()[axis] < cp[j].Center()[axis]
	})
	mid := len(cp) / 2
	return cp[:mid], cp[mid:]
}

// sahSplit evaluates sahTryCount candidate planes along axis and returns the
// best partition, or ok=false if no split improves on the no-split cost.
func sahSplit(prims []Primitive, box core.AABB, axis uint8) (left, right []Primitive, ok bool) {
	parentArea := box.SurfaceArea()
	noSplitCost := float32(len(prims))

	bestCost := float32(1e30)
	bestPlane := float32(0)
	haveBest := false

	for i := 1; i <= sahTryCount; i++ {
		r := float32(i) / float32(sahTryCount+1)
		// Preserved exactly as the original: min*r + max*(1-r). This
		// interpolates backward relative to a naive reading of r (r=0
		// would land on max, not min) but both the C++ original and
		// its Go port were tuned against this exact formula.
		plane := box.Min[axis]*r + box.Max[axis]*(1-r)

		lBox, rBox := core.EmptyAABB(), core.EmptyAABB()
		lCount, rCount := 0, 0
		for _, p := range prims {
			if p.Center()[axis] < plane {
				lBox = lBox.Union(p.Bounds())
				lCount++
			} else {
				rBox = rBox.Union(p.Bounds())
				rCount++
			}
		}
		if lCount == 0 || rCount == 0 {
			continue
		}

		cost := sahTraversalCost + (lBox.SurfaceArea()*float32(lCount)+rBox.SurfaceArea()*float32(rCount))/parentArea
		if !haveBest || cost < bestCost {
			bestCost = cost
			bestPlane = plane
			haveBest = true
		}
	}

	if !haveBest || bestCost > noSplitCost {
		return nil, nil, false
	}

	left = make([]Primitive, 0, len(prims))
	right = make([]Primitive, 0, len(prims))
	for _, p := range prims {
		if p.Center()[axis] < bestPlane {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return nil, nil, false
	}
	return left, right, true
}

// flatten performs the pre-order walk described in spec §4.3: FlatNodes are
// emitted depth-first, the left child of a non-leaf always lands at
// own_index+1, and each leaf's primitive run in the flat primitive array is
// terminated by a nil sentinel.
func (t *Tree) flatten(root *buildNode) {
	t.nodes = make([]FlatNode, 0)
	t.prims = make([]Primitive, 0)
	t.flattenNode(root)
}

func (t *Tree) flattenNode(n *buildNode) uint32 {
	idx := uint32(len(t.nodes))

	if n.isLeaf() {
		offset := uint32(len(t.prims))
		t.prims = append(t.prims, n.prims...)
		t.prims = append(t.prims, nil) // sentinel
		t.nodes = append(t.nodes, FlatNode{
			Box:              n.box,
			Right:            0,
			PrimitivesOffset: offset,
			SplitAxis:        n.splitAxis,
		})
		return idx
	}

	t.nodes = append(t.nodes, FlatNode{Box: n.box, SplitAxis: n.splitAxis})
	t.flattenNode(n.left)
	rightIdx := t.flattenNode(n.right)
	t.nodes[idx].Right = rightIdx
	return idx
}

// NodeCount returns the number of flat nodes, for diagnostics.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// PrimitiveAt resolves a RayHit.ObjectIndex back to the Primitive that was
// hit, so callers can recover the concrete type (triangle reference, mesh
// instance) for material dispatch.
func (t *Tree) PrimitiveAt(objectIndex uint32) Primitive {
	return t.prims[objectIndex]
}
