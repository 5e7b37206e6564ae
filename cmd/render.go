package cmd

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/achilleasa/go-pathtrace/output"
	"github.com/achilleasa/go-pathtrace/render"
	"github.com/achilleasa/go-pathtrace/scene"
	"github.com/urfave/cli"
)

// Render is the single CLI entrypoint, implementing the positional
// contract of spec §6:
//
//	renderer <scene_file> [resolution_scale] [spp] [a | -] [thread_count]
//
// resolution_scale accepts the literal "-" to trigger an OBJ geometry dump
// instead of rendering (exits after writing output.obj); the fourth
// positional argument, "a", renders every camera animation frame instead of
// frame 0 only.
func Render(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() < 1 {
		return fmt.Errorf("missing scene file argument")
	}
	args := ctx.Args()
	sceneFile := args.Get(0)

	scn, err := scene.Load(sceneFile)
	if err != nil {
		return fmt.Errorf("loading scene: %w", err)
	}

	if args.Get(1) == "-" {
		if err := output.WriteOBJ("output.obj", scn); err != nil {
			return fmt.Errorf("dumping geometry: %w", err)
		}
		logger.Notice("wrote scene geometry to output.obj")
		return nil
	}

	scale := 1.0
	if v := args.Get(1); v != "" {
		scale, err = strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 {
			return fmt.Errorf("resolution_scale must be a positive float, got %q", v)
		}
	}

	spp := 1
	if v := args.Get(2); v != "" {
		spp, err = strconv.Atoi(v)
		if err != nil || spp <= 0 {
			return fmt.Errorf("spp must be a positive integer, got %q", v)
		}
	}

	renderAllFrames := args.Get(3) == "a"

	threads := runtime.NumCPU()
	if v := args.Get(4); v != "" {
		threads, err = strconv.Atoi(v)
		if err != nil || threads <= 0 {
			return fmt.Errorf("thread_count must be a positive integer, got %q", v)
		}
	}

	scn.Camera.Width = int(float64(scn.Camera.Width) * scale)
	scn.Camera.Height = int(float64(scn.Camera.Height) * scale)

	r := render.NewRenderer(scn)
	r.SPP = spp
	r.Threads = threads

	frameCount := 1
	if renderAllFrames && len(scn.Camera.Frames) > 0 {
		frameCount = len(scn.Camera.Frames)
	}

	for frame := 0; frame < frameCount; frame++ {
		scn.Camera.SelectFrame(frame)

		fb, stats, err := r.Render(frame)
		if err != nil {
			return fmt.Errorf("rendering frame %d: %w", frame, err)
		}

		outPath := "frame.png"
		if renderAllFrames {
			outPath = fmt.Sprintf("frame_%03d.png", frame)
		}
		if err := output.WritePNG(outPath, fb); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}

		logger.Noticef("wrote %s\n%s", outPath, stats.Table())
	}

	return nil
}
