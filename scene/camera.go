package scene

import (
	"math"

	"github.com/achilleasa/go-pathtrace/core"
	"github.com/achilleasa/go-pathtrace/types"
)

// Camera generates primary rays for pixel coordinates. View is a combined
// rotation+translation transform (see types.Mat4FromBasisAndPosition); it is
// mutated in place by SelectFrame when the scene declares an animation, and
// is otherwise immutable during a render.
type Camera struct {
	View   types.Mat4
	FOV    float32
	Width  int
	Height int

	// Frames holds one row-major 4x4 matrix per animation keyframe, used
	// by SelectFrame; nil for a static camera.
	Frames []types.Mat4
}

// aspect returns the camera's image aspect ratio.
func (c *Camera) aspect() float32 {
	return float32(c.Width) / float32(c.Height)
}

// SelectFrame mutates View to the given animation keyframe. Index is
// clamped to the valid range.
func (c *Camera) SelectFrame(i int) {
	if len(c.Frames) == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(c.Frames) {
		i = len(c.Frames) - 1
	}
	c.View = c.Frames[i]
}

// GenerateRay builds a primary ray through pixel (x, y), with (jitterX,
// jitterY) in [0,1) sampling a point within the pixel for antialiasing.
// Image coordinates are flipped vertically (y=0 is the top row), and the
// jitter is uniform rather than cosine-weighted -- cosine weighting only
// matters for the hemisphere sampling the integrator performs at a hit.
func (c *Camera) GenerateRay(x, y int, jitterX, jitterY float32) core.Ray {
	flippedY := c.Height - y - 1

	ndcX := (float32(x) + jitterX) / float32(c.Width)
	ndcY := (float32(flippedY) + jitterY) / float32(c.Height)

	screenX := ndcX*2 - 1
	screenY := ndcY*2 - 1
	screenX *= c.aspect()

	tanHalfFOV := float32(math.Tan(float64(c.FOV) / 2))
	dir := types.Vec3{screenX * tanHalfFOV, screenY * tanHalfFOV, -1}.Normalize()
	dir = c.View.TransformDirection(dir)

	origin := c.View.Translation()
	return core.NewRay(origin, dir)
}
