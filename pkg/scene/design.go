package scene

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Default frame parameters. These match the host defaults of the record
// format's producer: camera three units back on -Z looking down +Z, a key
// light up and to the left, unit focal length.
var (
	DefaultCameraPos = v3.Vec{X: 0, Y: 0, Z: -3}
	DefaultLightPos  = v3.Vec{X: -2, Y: 2, Z: -4}
)

// DefaultFocal is the default camera focal length.
const DefaultFocal = 1.0

// CameraAngles orient the camera as fly-camera angles in degrees: yaw
// about +Y, then pitch about the resulting right axis.
type CameraAngles struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// Color is a linear RGB triple with components in [0,1].
type Color struct {
	R, G, B float64
}

// Design is one fully authored frame: the flat record sequence plus the
// per-frame global parameters. A Design is built once (by the authoring
// engine or by hand), then consumed read-only by every evaluator and
// renderer invocation. Replace it wholesale between frames for animation.
type Design struct {
	Records []Record `json:"records"`

	CameraPos v3.Vec `json:"camera_pos"`
	// At most one of CameraLook and CameraAngles is set; both nil means
	// the identity orientation. CameraLook wins if a script sets both.
	CameraLook   *v3.Vec       `json:"camera_look,omitempty"`
	CameraAngles *CameraAngles `json:"camera_angles,omitempty"`
	Focal        float64       `json:"focal"`

	LightPos   v3.Vec `json:"light_pos"`
	Background Color  `json:"background"`
}

// NewDesign returns an empty Design with default camera and light.
func NewDesign() *Design {
	return &Design{
		CameraPos: DefaultCameraPos,
		Focal:     DefaultFocal,
		LightPos:  DefaultLightPos,
	}
}

// AddShape flattens a shape tree and appends it as one more top-level
// entry of the scene. Top-level entries combine by union.
func (d *Design) AddShape(s Shape) {
	d.Records = append(d.Records, Flatten(s)...)
}

// Validate checks the design's record sequence. See Validate.
func (d *Design) Validate() []Finding {
	return Validate(d.Records)
}
