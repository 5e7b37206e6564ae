package scene

import "github.com/achilleasa/go-pathtrace/types"

// PointLight is an omnidirectional point light source.
type PointLight struct {
	Position  types.Vec3
	Color     types.Vec3
	Intensity float32
}
