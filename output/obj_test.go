package output

import (
	"os"
	"strings"
	"testing"

	"github.com/achilleasa/go-pathtrace/scene"
	"github.com/achilleasa/go-pathtrace/types"
)

func singleTriangleScene(t *testing.T) *scene.Scene {
	t.Helper()
	vertices := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	mesh, err := scene.NewMesh(vertices, nil, nil, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mat := &scene.Material{Kind: scene.Diffuse, Albedo: scene.NewConstantTexture(types.Vec3{1, 1, 1})}
	scn := &scene.Scene{Materials: []*scene.Material{mat}}
	scn.Instances = []*scene.MeshInstance{
		scene.NewMeshInstance(mesh, types.Mat4FromBasisAndPosition([9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}, types.Vec3{5, 0, 0}), mat, 0),
	}
	scn.Build()
	return scn
}

func TestWriteOBJProducesOneFaceAndTransformedVertices(t *testing.T) {
	scn := singleTriangleScene(t)
	dir := t.TempDir()
	path := dir + "/out.obj"

	if err := WriteOBJ(path, scn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error reading output: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "o instance_0") {
		t.Fatalf("expected an instance group header, got:\n%s", content)
	}
	if !strings.Contains(content, "usemtl material_0") {
		t.Fatalf("expected a material group reference, got:\n%s", content)
	}
	if strings.Count(content, "v ") != 3 {
		t.Fatalf("expected exactly 3 vertex lines, got:\n%s", content)
	}
	if strings.Count(content, "f ") != 1 {
		t.Fatalf("expected exactly 1 face line, got:\n%s", content)
	}
	// Vertex 0 is (0,0,0) translated by (5,0,0).
	if !strings.Contains(content, "v 5") {
		t.Fatalf("expected a world-space-translated vertex, got:\n%s", content)
	}
}
