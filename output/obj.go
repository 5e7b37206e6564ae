package output

import (
	"bufio"
	"fmt"
	"os"

	"github.com/achilleasa/go-pathtrace/scene"
)

// WriteOBJ dumps every mesh instance's triangles, transformed to world
// space, as a Wavefront OBJ -- the CLI's `resolution_scale == "-"` escape
// hatch (spec §6). Each instance is written as its own "o" group followed
// by a "usemtl" line naming that instance's material id.
func WriteOBJ(path string, scn *scene.Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: creating %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	vertexBase := 1 // OBJ indices are 1-based
	for i, inst := range scn.Instances {
		fmt.Fprintf(w, "o instance_%d\n", i)
		fmt.Fprintf(w, "usemtl material_%d\n", inst.MaterialID)

		mesh := inst.Mesh
		for _, v := range mesh.Vertices {
			wp := inst.Transform.TransformPoint(v)
			fmt.Fprintf(w, "v %g %g %g\n", wp[0], wp[1], wp[2])
		}
		for _, tri := range mesh.Triangles {
			fmt.Fprintf(w, "f %d %d %d\n",
				vertexBase+int(tri[0]), vertexBase+int(tri[1]), vertexBase+int(tri[2]))
		}
		vertexBase += len(mesh.Vertices)
	}

	return w.Flush()
}
