// Package viewer opens an interactive window on a distance field: the
// frame renderer runs on the CPU every tick and a fly camera (WASD +
// mouse look + scroll zoom) moves through the scene.
package viewer

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/umbralith/umbra/pkg/field"
	"github.com/umbralith/umbra/pkg/render"
	"github.com/umbralith/umbra/pkg/scene"
)

// Fly camera tuning. Shift triples the move speed, pitch is clamped short
// of the poles, focal length never drops below 0.1.
const (
	cameraMoveSpeed   = 1.0  // world units per second
	cameraRotateSpeed = 0.25 // degrees per cursor pixel
	cameraZoomSpeed   = 0.01 // focal units per wheel notch
	pitchLimit        = 89.0
	minFocal          = 0.1
	tickRate          = 60
)

// Options configures the viewer window.
type Options struct {
	Width  int    // window width in pixels
	Height int    // window height in pixels
	Scale  int    // render-scale divisor; 4 renders at quarter resolution
	Title  string
}

// Run opens a window on the field and blocks until it closes. The design
// supplies the initial camera, light and background; cfg the march/shade
// tuning. The field is read-only for the lifetime of the window.
func Run(f field.Field, d *scene.Design, cfg render.Config, opts Options) error {
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 720
	}
	if opts.Scale <= 0 {
		opts.Scale = 4
	}
	if opts.Title == "" {
		opts.Title = "umbra"
	}

	cfg.Background = d.Background

	g := &game{
		field: f,
		cfg:   cfg,
		size:  [2]int{opts.Width / opts.Scale, opts.Height / opts.Scale},
		pos:   d.CameraPos,
		focal: d.Focal,
		light: d.LightPos,
	}
	if g.focal <= 0 {
		g.focal = scene.DefaultFocal
	}
	if d.CameraAngles != nil {
		g.yaw = d.CameraAngles.Yaw
		g.pitch = d.CameraAngles.Pitch
	}

	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetTPS(tickRate)
	ebiten.SetCursorMode(ebiten.CursorModeCaptured)
	return ebiten.RunGame(g)
}

type game struct {
	field field.Field
	cfg   render.Config
	size  [2]int

	pos        v3.Vec
	yaw, pitch float64
	focal      float64
	light      v3.Vec

	lastX, lastY int
	haveCursor   bool
	ticks        uint64

	fb *ebiten.Image
}

func (g *game) Update() error {
	g.ticks++
	dt := 1.0 / float64(tickRate)

	// Mouse look: yaw/pitch from the cursor delta, pitch clamped short of
	// straight up/down so the basis never degenerates.
	cx, cy := ebiten.CursorPosition()
	if g.haveCursor {
		g.yaw += float64(cx-g.lastX) * cameraRotateSpeed
		g.pitch += float64(cy-g.lastY) * cameraRotateSpeed
		if g.pitch > pitchLimit {
			g.pitch = pitchLimit
		}
		if g.pitch < -pitchLimit {
			g.pitch = -pitchLimit
		}
	}
	g.lastX, g.lastY = cx, cy
	g.haveCursor = true

	basis := render.YawPitch(g.yaw, g.pitch)

	speed := cameraMoveSpeed
	if ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		speed *= 3
	}

	var movement v3.Vec
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		movement = movement.Add(basis.Forward)
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		movement = movement.Sub(basis.Forward)
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		movement = movement.Add(basis.Right)
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		movement = movement.Sub(basis.Right)
	}
	if movement.Length() > 0 {
		g.pos = g.pos.Add(movement.Normalize().MulScalar(speed * dt))
	}

	// Scroll wheel zooms by changing the focal length.
	_, wy := ebiten.Wheel()
	g.focal += wy * cameraZoomSpeed
	if g.focal < minFocal {
		g.focal = minFocal
	}

	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	gl := render.Globals{
		Width:     g.size[0],
		Height:    g.size[1],
		CameraPos: g.pos,
		CameraRot: render.YawPitch(g.yaw, g.pitch),
		LightPos:  g.light,
		Focal:     g.focal,
		Time:      float64(g.ticks) / tickRate,
	}
	img := render.Frame(g.field, gl, g.cfg)

	if g.fb == nil {
		g.fb = ebiten.NewImage(g.size[0], g.size[1])
	}
	g.fb.WritePixels(img.Pix)
	screen.DrawImage(g.fb, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.size[0], g.size[1]
}
