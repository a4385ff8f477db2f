package render

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/umbralith/umbra/pkg/field"
)

// March sphere-traces a ray through f: the traveled distance advances by
// the field value at the current point, which can never overshoot the
// nearest surface. It reports the traveled distance and whether the ray
// converged onto a surface. A single forward monotonic walk with three
// terminal states: convergence (hit), the far cap, or the step cap (both
// misses). Thin features smaller than the local step can be skipped; that
// is inherent to sphere tracing, not a defect.
func March(f field.Field, ro, rd v3.Vec, cfg Config) (float64, bool) {
	t := 0.0
	for i := 0; i < cfg.MaxSteps; i++ {
		d := f.Distance(ro.Add(rd.MulScalar(t)))
		if d < cfg.SurfaceEpsilon {
			return t, true
		}
		t += d
		if t > cfg.Far {
			return cfg.Far, false
		}
	}
	return t, false
}
