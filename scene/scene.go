package scene

import (
	"github.com/achilleasa/go-pathtrace/bvh"
	"github.com/achilleasa/go-pathtrace/core"
	"github.com/achilleasa/go-pathtrace/log"
	"github.com/achilleasa/go-pathtrace/types"
)

var logger = log.New("scene")

// Scene owns every piece of state a render needs: materials, textures,
// meshes, mesh instances, lights, the camera and the top-level BVH over
// mesh instances. It is built once by Load and is treated as immutable
// during rendering.
type Scene struct {
	Materials []*Material
	Textures  map[string]*Texture
	Meshes    []*Mesh
	Instances []*MeshInstance
	Lights    []PointLight
	Camera    *Camera

	BackgroundColor types.Vec3

	bvh *bvh.Tree
}

// Build constructs the top-level scene BVH over the scene's mesh instances.
// Must be called once after all instances have been added and before any
// call to Intersect/IntersectShadow.
func (s *Scene) Build() {
	prims := make([]bvh.Primitive, len(s.Instances))
	for i, inst := range s.Instances {
		prims[i] = inst
	}
	tree, stats := bvh.Build(prims)
	s.bvh = tree
	logger.Debugf("scene BVH built over %d instances: nodes=%d leaves=%d maxDepth=%d",
		len(s.Instances), stats.Nodes, stats.Leaves, stats.MaxDepth)
}

// Intersect performs a closest-hit query against the scene, resolving the
// hit's owning mesh instance and material. It panics if called before
// Build -- an InvariantViolation, not a recoverable render-time condition.
func (s *Scene) Intersect(ray core.Ray, tMin, tMax float32) (bool, core.RayHit, *MeshInstance) {
	if s.bvh == nil {
		panic("scene: Intersect called before Build")
	}
	ok, hit := s.bvh.Intersect(ray, tMin, tMax, nil)
	if !ok {
		return false, hit, nil
	}
	inst, ok := s.bvh.PrimitiveAt(hit.ObjectIndex).(*MeshInstance)
	if !ok {
		panic("scene: BVH leaf primitive is not a *MeshInstance")
	}
	return true, hit, inst
}

// IntersectShadow performs an any-hit occlusion query between origin and a
// point tMax away along dir. The filter rejects instances whose material
// opts out of casting shadows; back faces of single-sided materials are
// rejected inside MeshInstance.Intersect for shadow rays (spec §4.4/§4.6).
func (s *Scene) IntersectShadow(ray core.Ray, tMin, tMax float32) bool {
	if s.bvh == nil {
		panic("scene: IntersectShadow called before Build")
	}
	filter := func(p bvh.Primitive) bool {
		inst, ok := p.(*MeshInstance)
		if !ok {
			return true
		}
		return inst.Material.CastsShadows
	}
	return s.bvh.IntersectAny(ray, tMin, tMax, filter)
}

// MaterialFor resolves the material of a mesh instance.
func (s *Scene) MaterialFor(inst *MeshInstance) *Material {
	return inst.Material
}
