package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"runtime"
	"sync"

	"github.com/umbralith/umbra/pkg/field"
)

// Pixel computes the final color of one output pixel: camera ray, march,
// then shade on a hit or the background on a miss. It is fully
// self-contained, so any number of Pixel calls may run concurrently over
// the same field and globals.
func Pixel(f field.Field, g Globals, cfg Config, x, y int) color.RGBA {
	rd := g.Ray(x, y)
	t, hit := March(f, g.CameraPos, rd, cfg)
	if !hit {
		return pack(cfg.Background.R, cfg.Background.G, cfg.Background.B)
	}
	r, gr, b := Shade(f, g.CameraPos, rd, t, g, cfg)
	return pack(r, gr, b)
}

func pack(r, g, b float64) color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(r)*255 + 0.5),
		G: uint8(clamp01(g)*255 + 0.5),
		B: uint8(clamp01(b)*255 + 0.5),
		A: 0xFF,
	}
}

// Frame renders a full image, one logical worker per pixel. Workers are
// grouped by row and striped across the CPUs; each pixel is written
// exactly once and no worker shares mutable state with another, so the
// only synchronization is the final join.
func Frame(f field.Field, g Globals, cfg Config) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))

	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(start int) {
			defer wg.Done()
			for y := start; y < g.Height; y += workers {
				for x := 0; x < g.Width; x++ {
					img.SetRGBA(x, y, Pixel(f, g, cfg, x, y))
				}
			}
		}(w)
	}
	wg.Wait()

	return img
}

// SavePNG writes an image to disk as PNG.
func SavePNG(path string, img image.Image) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(fh, img); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}
