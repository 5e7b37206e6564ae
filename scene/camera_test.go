package scene

import (
	"math"
	"testing"

	"github.com/achilleasa/go-pathtrace/types"
)

func testCamera() *Camera {
	return &Camera{
		View:   types.Ident4(),
		FOV:    float32(math.Pi / 2),
		Width:  100,
		Height: 100,
	}
}

func TestGenerateRayCenterPixelPointsDownMinusZ(t *testing.T) {
	cam := testCamera()
	// An odd resolution has a true centre pixel: (50.5)/101 == 0.5 on both
	// axes, so pixel (50,50) sampled at its middle maps to NDC (0,0).
	cam.Width, cam.Height = 101, 101
	ray := cam.GenerateRay(50, 50, 0.5, 0.5)

	if math.Abs(float64(ray.Direction[0])) > 1e-3 || math.Abs(float64(ray.Direction[1])) > 1e-3 {
		t.Fatalf("expected a center ray to point straight down -Z, got %v", ray.Direction)
	}
	if ray.Direction[2] >= 0 {
		t.Fatalf("expected a center ray's Z component to be negative, got %v", ray.Direction)
	}
}

func TestGenerateRayOriginatesAtCameraPosition(t *testing.T) {
	cam := testCamera()
	cam.View = types.Mat4FromBasisAndPosition([9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}, types.Vec3{1, 2, 3})

	ray := cam.GenerateRay(0, 0, 0, 0)
	if ray.Origin != (types.Vec3{1, 2, 3}) {
		t.Fatalf("expected ray origin to equal camera position, got %v", ray.Origin)
	}
}

func TestGenerateRayTopRowPointsUp(t *testing.T) {
	cam := testCamera()
	top := cam.GenerateRay(50, 0, 0.5, 0.5)
	bottom := cam.GenerateRay(50, 99, 0.5, 0.5)

	if top.Direction[1] <= bottom.Direction[1] {
		t.Fatalf("expected row 0 (top of image) to point higher in Y than the bottom row: top=%v bottom=%v", top.Direction, bottom.Direction)
	}
}

func TestSelectFrameClampsOutOfRangeIndices(t *testing.T) {
	cam := testCamera()
	frame0 := types.Mat4FromBasisAndPosition([9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}, types.Vec3{0, 0, 0})
	frame1 := types.Mat4FromBasisAndPosition([9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}, types.Vec3{5, 0, 0})
	cam.Frames = []types.Mat4{frame0, frame1}

	cam.SelectFrame(-1)
	if cam.View != frame0 {
		t.Fatalf("expected negative index to clamp to frame 0")
	}

	cam.SelectFrame(5)
	if cam.View != frame1 {
		t.Fatalf("expected out-of-range index to clamp to the last frame")
	}
}

func TestSelectFrameNoopWithoutAnimation(t *testing.T) {
	cam := testCamera()
	original := cam.View
	cam.SelectFrame(3)
	if cam.View != original {
		t.Fatalf("expected SelectFrame to be a no-op for a camera with no animation frames")
	}
}
