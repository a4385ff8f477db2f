// Command umbra renders a Lisp-authored CSG scene: to a PNG by default,
// or into an interactive fly-camera window with -view.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/umbralith/umbra/pkg/engine"
	"github.com/umbralith/umbra/pkg/field"
	"github.com/umbralith/umbra/pkg/render"
	"github.com/umbralith/umbra/pkg/scene"
	"github.com/umbralith/umbra/pkg/viewer"
)

func main() {
	var (
		scenePath = flag.String("scene", "", "Scene script to render (required).")
		outPath   = flag.String("out", "out.png", "Output PNG path.")
		width     = flag.Int("width", 1280, "Output width in pixels.")
		height    = flag.Int("height", 720, "Output height in pixels.")
		timeAt    = flag.Float64("time", 0, "Elapsed-time value passed to the frame.")
		view      = flag.Bool("view", false, "Open an interactive window instead of writing a PNG.")
		scale     = flag.Int("scale", 4, "Render-scale divisor in -view mode.")
	)
	flag.Parse()

	if *scenePath == "" {
		fmt.Fprintln(os.Stderr, "usage: umbra -scene scene.lisp [-out out.png] [-view]")
		os.Exit(2)
	}

	if err := run(*scenePath, *outPath, *width, *height, *timeAt, *view, *scale); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(scenePath, outPath string, width, height int, timeAt float64, view bool, scale int) error {
	source, err := os.ReadFile(scenePath)
	if err != nil {
		return err
	}

	design, evalErrs, err := engine.NewEngine().Evaluate(string(source))
	if err != nil {
		return fmt.Errorf("%s: %w", scenePath, err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", scenePath, e.Error())
		}
		return fmt.Errorf("%s: scene evaluation failed", scenePath)
	}

	// Surface authoring errors before any pixel work starts.
	findings := design.Validate()
	for _, f := range findings {
		if f.Severity == scene.SeverityWarning {
			log.Printf("%s: %s", scenePath, f.Error())
		} else {
			fmt.Fprintf(os.Stderr, "%s: %s\n", scenePath, f.Error())
		}
	}
	if scene.HasErrors(findings) {
		return fmt.Errorf("%s: scene validation failed", scenePath)
	}

	cfg := render.DefaultConfig()
	cfg.Background = design.Background
	eval := field.NewEvaluator(design.Records, cfg.Far)

	if view {
		return viewer.Run(eval, design, cfg, viewer.Options{
			Width:  width,
			Height: height,
			Scale:  scale,
			Title:  "umbra - " + scenePath,
		})
	}

	g := render.GlobalsFor(design, width, height)
	g.Time = timeAt

	log.Printf("rendering %dx%d, %d records", width, height, len(design.Records))
	img := render.Frame(eval, g, cfg)
	if err := render.SavePNG(outPath, img); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	log.Printf("wrote %s", outPath)
	return nil
}
