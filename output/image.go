// Package output turns a rendered FrameBuffer into bytes on disk: PPM
// (P6 binary), PNG (8-bit RGBA via the standard image/png codec), and a
// Wavefront OBJ geometry dump of a scene's triangles.
package output

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/achilleasa/go-pathtrace/render"
)

// tonemap clamps a linear radiance value to [0,1] and converts it to an
// 8-bit channel, per spec §6: "Tone mapping is a simple clamp to [0,1]
// followed by x255 conversion."
func tonemap(v float32) uint8 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(v*255 + 0.5)
}

// ToRGBA converts a linear FrameBuffer into a standard library image,
// applying the clamp tonemap to every channel.
func ToRGBA(fb *render.FrameBuffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.Pixels[y*fb.Width+x]
			img.SetRGBA(x, y, color.RGBA{
				R: tonemap(c[0]),
				G: tonemap(c[1]),
				B: tonemap(c[2]),
				A: 255,
			})
		}
	}
	return img
}

// WritePNG encodes the frame buffer as an 8-bit RGBA PNG. The stdlib codec
// is the only PNG encoder in the example pack's dependency surface -- see
// DESIGN.md's justification for this single stdlib fallback.
func WritePNG(path string, fb *render.FrameBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: creating %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := png.Encode(w, ToRGBA(fb)); err != nil {
		return fmt.Errorf("output: encoding PNG %q: %w", path, err)
	}
	return w.Flush()
}

// WritePPM encodes the frame buffer as a binary (P6) PPM.
func WritePPM(path string, fb *render.FrameBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: creating %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writePPM(w, fb); err != nil {
		return fmt.Errorf("output: encoding PPM %q: %w", path, err)
	}
	return w.Flush()
}

func writePPM(w io.Writer, fb *render.FrameBuffer) error {
	if _, err := fmt.Fprintf(w, "P6\n%d %d\n255\n", fb.Width, fb.Height); err != nil {
		return err
	}
	buf := make([]byte, 3*fb.Width)
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.Pixels[y*fb.Width+x]
			buf[x*3] = tonemap(c[0])
			buf[x*3+1] = tonemap(c[1])
			buf[x*3+2] = tonemap(c[2])
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
