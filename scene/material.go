package scene

import "github.com/achilleasa/go-pathtrace/types"

// MaterialKind is the closed set of surface variants the integrator
// dispatches on. Kept as a sum type rather than an interface with N
// implementations: the set is fixed and static dispatch in the integrator's
// switch measurably beats virtual calls for a hot loop like this.
type MaterialKind int

const (
	Diffuse MaterialKind = iota
	Reflective
	Refractive
	Constant
)

// Material is immutable once constructed and is looked up by index from the
// scene's material table.
type Material struct {
	Kind MaterialKind

	Albedo *Texture

	// Refractive-only.
	IOR        float32
	Absorption types.Vec3

	Smooth          bool
	CastsShadows    bool
	ReceivesShadows bool
	DoubleSided     bool
}
