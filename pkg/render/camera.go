package render

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/umbralith/umbra/pkg/scene"
)

// Basis is a 3x3 camera orientation matrix stored as its column vectors.
// The identity basis looks down +Z with +Y up.
type Basis struct {
	Right, Up, Forward v3.Vec
}

// IdentityBasis returns the identity orientation.
func IdentityBasis() Basis {
	return Basis{
		Right:   v3.Vec{X: 1},
		Up:      v3.Vec{Y: 1},
		Forward: v3.Vec{Z: 1},
	}
}

// Apply transforms a camera-space vector into world space.
func (b Basis) Apply(v v3.Vec) v3.Vec {
	return b.Right.MulScalar(v.X).Add(b.Up.MulScalar(v.Y)).Add(b.Forward.MulScalar(v.Z))
}

// LookAt builds an orientation looking from pos toward target with +Y as
// the up reference. A degenerate direction (target at pos, or straight up)
// falls back to the identity basis.
func LookAt(pos, target v3.Vec) Basis {
	fwd := target.Sub(pos)
	if fwd.Length() < 1e-12 {
		return IdentityBasis()
	}
	fwd = fwd.Normalize()
	worldUp := v3.Vec{Y: 1}
	right := worldUp.Cross(fwd)
	if right.Length() < 1e-9 {
		return IdentityBasis()
	}
	right = right.Normalize()
	up := fwd.Cross(right)
	return Basis{Right: right, Up: up, Forward: fwd}
}

// YawPitch builds an orientation from fly-camera angles in degrees: yaw
// rotates about +Y, pitch about the resulting right axis.
func YawPitch(yawDeg, pitchDeg float64) Basis {
	yaw := yawDeg * math.Pi / 180.0
	pitch := pitchDeg * math.Pi / 180.0
	cy, sy := math.Cos(yaw), math.Sin(yaw)
	cp, sp := math.Cos(pitch), math.Sin(pitch)
	return Basis{
		Right:   v3.Vec{X: cy, Z: -sy},
		Up:      v3.Vec{X: sy * sp, Y: cp, Z: cy * sp},
		Forward: v3.Vec{X: sy * cp, Y: -sp, Z: cy * cp},
	}
}

// Globals are the per-frame read-only parameters shared by every pixel
// worker: output size, camera, light, focal length and elapsed time. No
// worker mutates them during a frame.
type Globals struct {
	Width, Height int
	CameraPos     v3.Vec
	CameraRot     Basis
	LightPos      v3.Vec
	Focal         float64
	Time          float64
}

// NewGlobals returns frame parameters with the identity orientation and
// the design defaults for camera, light and focal length.
func NewGlobals(width, height int) Globals {
	return Globals{
		Width:     width,
		Height:    height,
		CameraPos: scene.DefaultCameraPos,
		CameraRot: IdentityBasis(),
		LightPos:  scene.DefaultLightPos,
		Focal:     scene.DefaultFocal,
	}
}

// GlobalsFor derives frame parameters from a design.
func GlobalsFor(d *scene.Design, width, height int) Globals {
	g := NewGlobals(width, height)
	g.CameraPos = d.CameraPos
	if d.CameraLook != nil {
		g.CameraRot = LookAt(d.CameraPos, *d.CameraLook)
	} else if d.CameraAngles != nil {
		g.CameraRot = YawPitch(d.CameraAngles.Yaw, d.CameraAngles.Pitch)
	}
	if d.Focal > 0 {
		g.Focal = d.Focal
	}
	g.LightPos = d.LightPos
	return g
}

// Ray returns the world-space unit ray direction through pixel (x, y).
// Pixel y grows downward; the vertical field of view is set by the focal
// length, with the horizontal extent following the aspect ratio.
func (g Globals) Ray(x, y int) v3.Vec {
	h := float64(g.Height)
	u := (2*float64(x) - float64(g.Width) + 1) / h
	v := (float64(g.Height) - 2*float64(y) - 1) / h
	return g.CameraRot.Apply(v3.Vec{X: u, Y: v, Z: g.Focal}).Normalize()
}
