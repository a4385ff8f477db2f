// Package field evaluates signed distance fields. Its centerpiece is the
// Evaluator, a bounded stack machine that computes the scene distance of a
// flat-encoded CSG record sequence at a query point. Everything downstream
// (marching, shading) consumes fields through the Field interface, so sdfx
// solids and test stubs plug into the same pipeline.
package field

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Field is a signed distance field: negative inside, zero on the surface,
// positive outside. Implementations must be pure and safe for concurrent
// use; the renderer calls Distance from many goroutines at once.
type Field interface {
	Distance(p v3.Vec) float64
}

// SDF3Field adapts an sdfx solid to the Field interface so it can be
// raymarched like a flat-encoded scene.
type SDF3Field struct {
	S sdf.SDF3
}

// Compile-time interface check.
var _ Field = SDF3Field{}

// Distance evaluates the wrapped solid.
func (f SDF3Field) Distance(p v3.Vec) float64 {
	return f.S.Evaluate(p)
}

// Normal estimates the surface normal of f at p by a forward-difference
// gradient: one evaluation at p and one per axis at offset eps. The result
// is normalized; a degenerate (near-zero) gradient falls back to +Y rather
// than dividing by zero.
func Normal(f Field, p v3.Vec, eps float64) v3.Vec {
	d := f.Distance(p)
	g := v3.Vec{
		X: f.Distance(v3.Vec{X: p.X + eps, Y: p.Y, Z: p.Z}) - d,
		Y: f.Distance(v3.Vec{X: p.X, Y: p.Y + eps, Z: p.Z}) - d,
		Z: f.Distance(v3.Vec{X: p.X, Y: p.Y, Z: p.Z + eps}) - d,
	}
	l := g.Length()
	if l < 1e-12 {
		return v3.Vec{Y: 1}
	}
	return g.DivScalar(l)
}
