package scene

import (
	"fmt"

	"github.com/achilleasa/go-pathtrace/bvh"
	"github.com/achilleasa/go-pathtrace/core"
	"github.com/achilleasa/go-pathtrace/types"
)

// degenerateTriangleEps bounds the determinant magnitude below which a
// triangle is considered parallel to the ray (see triangleRef.Intersect).
const degenerateTriangleEps = 1e-12

// Mesh is triangle soup plus per-vertex attributes and its own
// triangle-level BVH. It is immutable once the scene has finished loading.
type Mesh struct {
	Vertices []types.Vec3
	Normals  []types.Vec3
	UVs      []types.Vec2

	// Triangles holds vertex index triples.
	Triangles [][3]uint32

	// FaceNormals holds one flat (non-interpolated) normal per triangle,
	// used when the owning material disables smooth shading.
	FaceNormals []types.Vec3

	BVH   *bvh.Tree
	Stats bvh.Stats
	Box   core.AABB
}

// NewMesh validates and builds a mesh's triangle-BVH from raw vertex,
// normal, UV and index data. vertices/normals/uvs are flat [3N]float32
// arrays (the third float of each uv is ignored), matching the scene file's
// encoding;
// triangles is a flat [3M]int array of vertex indices.
func NewMesh(vertices []float32, normals []float32, uvs []float32, triangles []int) (*Mesh, error) {
	if len(vertices)%3 != 0 {
		return nil, fmt.Errorf("%w: mesh vertex array length %d is not a multiple of 3", ErrConfiguration, len(vertices))
	}
	if len(triangles)%3 != 0 {
		return nil, fmt.Errorf("%w: mesh triangle array length %d is not a multiple of 3", ErrConfiguration, len(triangles))
	}
	vertexCount := len(vertices) / 3

	m := &Mesh{
		Vertices: make([]types.Vec3, vertexCount),
		Box:      core.EmptyAABB(),
	}
	for i := 0; i < vertexCount; i++ {
		m.Vertices[i] = types.Vec3{vertices[i*3], vertices[i*3+1], vertices[i*3+2]}
		m.Box = m.Box.UnionPoint(m.Vertices[i])
	}

	if len(normals) > 0 {
		if len(normals) != len(vertices) {
			return nil, fmt.Errorf("%w: mesh normal array length %d does not match vertex count", ErrConfiguration, len(normals))
		}
		m.Normals = make([]types.Vec3, vertexCount)
		for i := 0; i < vertexCount; i++ {
			m.Normals[i] = types.Vec3{normals[i*3], normals[i*3+1], normals[i*3+2]}
		}
	}

	if len(uvs) > 0 {
		uvCount := len(uvs) / 3
		if uvCount != vertexCount {
			return nil, fmt.Errorf("%w: mesh uv array length does not match vertex count", ErrConfiguration)
		}
		m.UVs = make([]types.Vec2, vertexCount)
		for i := 0; i < vertexCount; i++ {
			// UVs are supplied as 3 floats/vertex in the scene file
			// (u, v, unused); only the first two are meaningful.
			m.UVs[i] = types.Vec2{uvs[i*3], uvs[i*3+1]}
		}
	}

	triCount := len(triangles) / 3
	m.Triangles = make([][3]uint32, triCount)
	m.FaceNormals = make([]types.Vec3, triCount)
	for i := 0; i < triCount; i++ {
		a, b, c := triangles[i*3], triangles[i*3+1], triangles[i*3+2]
		if a < 0 || a >= vertexCount || b < 0 || b >= vertexCount || c < 0 || c >= vertexCount {
			return nil, fmt.Errorf("%w: mesh triangle %d references out of range vertex index", ErrConfiguration, i)
		}
		m.Triangles[i] = [3]uint32{uint32(a), uint32(b), uint32(c)}

		v0, v1, v2 := m.Vertices[a], m.Vertices[b], m.Vertices[c]
		e1, e2 := v1.Sub(v0), v2.Sub(v0)
		normal := e1.Cross(e2)
		if !normal.IsZero() {
			normal = normal.Normalize()
		}
		m.FaceNormals[i] = normal
	}

	prims := make([]bvh.Primitive, triCount)
	for i := range m.Triangles {
		prims[i] = &triangleRef{mesh: m, index: uint32(i)}
	}
	tree, stats := bvh.Build(prims)
	m.BVH = tree
	m.Stats = stats

	return m, nil
}

// Intersect performs closest-hit intersection against the mesh's own
// triangle BVH, in mesh-local space. smooth selects the shading normal:
// the mesh's interpolated per-vertex normal when true, its flat
// per-triangle normal when false, mirroring the owning material's Smooth
// flag (spec §3).
func (m *Mesh) Intersect(ray core.Ray, tMin, tMax float32, smooth bool) (bool, core.RayHit) {
	ok, hit := m.BVH.Intersect(ray, tMin, tMax, nil)
	if !ok {
		return false, hit
	}
	return true, m.shadingNormal(hit, smooth)
}

// IntersectFrontFacing is Intersect but rejects any triangle whose face
// normal points away from the ray, used for shadow rays cast from
// single-sided materials (spec §4.4/§4.6).
func (m *Mesh) IntersectFrontFacing(ray core.Ray, tMin, tMax float32, smooth bool) (bool, core.RayHit) {
	filter := func(p bvh.Primitive) bool {
		tri := p.(*triangleRef)
		return ray.Direction.Dot(m.FaceNormals[tri.index]) < 0
	}
	ok, hit := m.BVH.Intersect(ray, tMin, tMax, filter)
	if !ok {
		return false, hit
	}
	return true, m.shadingNormal(hit, smooth)
}

// shadingNormal resolves a raw BVH hit's final shading normal from the
// material's smooth flag: interpolated across the triangle's vertex
// normals when smooth and the mesh has normals, otherwise the flat face
// normal triangleRef.Intersect already populated. Mirrors
// beamcast/renderer.hpp's post-intersection "scene.fillHitInfo(hit, r,
// material->smooth)" step, which resolves the smooth/flat choice only
// after the BVH traversal has already found the closest hit.
func (m *Mesh) shadingNormal(hit core.RayHit, smooth bool) core.RayHit {
	if !smooth || m.Normals == nil {
		return hit
	}
	tri := m.Triangles[hit.TriangleIndex]
	u, v := hit.BaryUV[0], hit.BaryUV[1]
	w := float32(1) - u - v
	normal := m.Normals[tri[0]].Mul(w).
		Add(m.Normals[tri[1]].Mul(u)).
		Add(m.Normals[tri[2]].Mul(v))
	if !normal.IsZero() {
		hit.Normal = normal.Normalize()
	}
	return hit
}

// triangleRef is the Primitive implementation used by a mesh's own BVH: a
// non-owning handle (mesh pointer + triangle index) into the mesh's
// vertex/index arrays.
type triangleRef struct {
	mesh  *Mesh
	index uint32
}

func (t *triangleRef) vertices() (v0, v1, v2 types.Vec3) {
	tri := t.mesh.Triangles[t.index]
	return t.mesh.Vertices[tri[0]], t.mesh.Vertices[tri[1]], t.mesh.Vertices[tri[2]]
}

func (t *triangleRef) Bounds() core.AABB {
	v0, v1, v2 := t.vertices()
	return core.BoxFromPoints(v0, v1, v2)
}

func (t *triangleRef) Center() types.Vec3 {
	v0, v1, v2 := t.vertices()
	return v0.Add(v1).Add(v2).Mul(1.0 / 3.0)
}

// Intersect solves the Möller–Trumbore ray-triangle equation. Degenerate
// triangles (parallel to the ray; |det| below degenerateTriangleEps) report
// no hit rather than dividing by a near-zero determinant.
func (t *triangleRef) Intersect(ray core.Ray, tMin, tMax float32) (bool, core.RayHit) {
	v0, v1, v2 := t.vertices()
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)

	pvec := ray.Direction.Cross(e2)
	det := e1.Dot(pvec)
	if det > -degenerateTriangleEps && det < degenerateTriangleEps {
		return false, core.Miss()
	}
	invDet := 1 / det

	tvec := ray.Origin.Sub(v0)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return false, core.Miss()
	}

	qvec := tvec.Cross(e1)
	v := ray.Direction.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return false, core.Miss()
	}

	hitT := e2.Dot(qvec) * invDet
	if hitT <= tMin || hitT > tMax {
		return false, core.Miss()
	}

	tri := t.mesh.Triangles[t.index]

	// The raw intersection always reports the flat face normal; Mesh.
	// Intersect/IntersectFrontFacing resolve the smooth-vs-flat choice
	// afterward via shadingNormal, once the owning material's Smooth
	// flag is in scope.
	normal := t.mesh.FaceNormals[t.index]

	var texCoord types.Vec2
	if t.mesh.UVs != nil {
		w := float32(1) - u - v
		texCoord = types.Vec2{
			t.mesh.UVs[tri[0]][0]*w + t.mesh.UVs[tri[1]][0]*u + t.mesh.UVs[tri[2]][0]*v,
			t.mesh.UVs[tri[0]][1]*w + t.mesh.UVs[tri[1]][1]*u + t.mesh.UVs[tri[2]][1]*v,
		}
	} else {
		texCoord = types.Vec2{u, v}
	}

	return true, core.RayHit{
		T:             hitT,
		Pos:           ray.At(hitT),
		Normal:        normal,
		BaryUV:        types.Vec2{u, v},
		TexCoord:      texCoord,
		TriangleIndex: t.index,
	}
}
