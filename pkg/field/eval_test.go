package field

import (
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/umbralith/umbra/pkg/scene"
)

const testFar = 100.0

func evalAt(t *testing.T, recs []scene.Record, p v3.Vec) float64 {
	t.Helper()
	return NewEvaluator(recs, testFar).Distance(p)
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDistancePrimitives(t *testing.T) {
	tests := []struct {
		name string
		recs []scene.Record
		p    v3.Vec
		want float64
	}{
		{
			"outside unit sphere",
			scene.Flatten(scene.Sphere{Radius: 1}),
			v3.Vec{X: 2},
			1.0,
		},
		{
			"center of unit sphere",
			scene.Flatten(scene.Sphere{Radius: 1}),
			v3.Vec{},
			-1.0,
		},
		{
			"surface of unit sphere",
			scene.Flatten(scene.Sphere{Radius: 1}),
			v3.Vec{Z: 1},
			0.0,
		},
		{
			"translated sphere",
			scene.Flatten(scene.Sphere{At: v3.Vec{X: 3}, Radius: 1}),
			v3.Vec{},
			2.0,
		},
		{
			"outside unit box, face",
			scene.Flatten(scene.Box{HalfExtents: v3.Vec{X: 1, Y: 1, Z: 1}}),
			v3.Vec{X: 3},
			2.0,
		},
		{
			"outside unit box, edge diagonal",
			scene.Flatten(scene.Box{HalfExtents: v3.Vec{X: 1, Y: 1, Z: 1}}),
			v3.Vec{X: 2, Y: 2},
			math.Sqrt2,
		},
		{
			"inside unit box",
			scene.Flatten(scene.Box{HalfExtents: v3.Vec{X: 1, Y: 1, Z: 1}}),
			v3.Vec{},
			-1.0,
		},
		{
			"above ground plane",
			scene.Flatten(scene.Plane{Normal: v3.Vec{Y: 1}}),
			v3.Vec{Y: 2},
			2.0,
		},
		{
			"below offset plane",
			scene.Flatten(scene.Plane{At: v3.Vec{Y: 1}, Normal: v3.Vec{Y: 1}}),
			v3.Vec{},
			-1.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evalAt(t, tt.recs, tt.p)
			if !near(got, tt.want) {
				t.Errorf("Distance(%v) = %g, want %g", tt.p, got, tt.want)
			}
		})
	}
}

func TestDistanceOperators(t *testing.T) {
	left := scene.Sphere{At: v3.Vec{X: -2}, Radius: 1}
	right := scene.Sphere{At: v3.Vec{X: 2}, Radius: 1}
	outer := scene.Sphere{Radius: 1}
	inner := scene.Sphere{Radius: 0.5}

	tests := []struct {
		name string
		recs []scene.Record
		p    v3.Vec
		want float64
	}{
		{
			"union takes the nearer operand",
			scene.Flatten(scene.Union{A: left, B: right}),
			v3.Vec{X: 1.5},
			-0.5,
		},
		{
			"union at the midpoint",
			scene.Flatten(scene.Union{A: left, B: right}),
			v3.Vec{},
			1.0,
		},
		{
			"intersection of overlapping spheres",
			scene.Flatten(scene.Intersection{
				A: scene.Sphere{At: v3.Vec{X: -0.5}, Radius: 1},
				B: scene.Sphere{At: v3.Vec{X: 0.5}, Radius: 1},
			}),
			v3.Vec{},
			-0.5,
		},
		{
			"intersection of disjoint spheres is never inside",
			scene.Flatten(scene.Intersection{A: left, B: right}),
			v3.Vec{X: -2},
			3.0, // distance to the far operand dominates
		},
		{
			"subtraction keeps the shell",
			scene.Flatten(scene.Subtraction{A: outer, B: inner}),
			v3.Vec{X: 0.75},
			-0.25,
		},
		{
			"subtraction carves the core",
			scene.Flatten(scene.Subtraction{A: outer, B: inner}),
			v3.Vec{},
			0.5,
		},
		{
			"subtraction outside everything",
			scene.Flatten(scene.Subtraction{A: outer, B: inner}),
			v3.Vec{X: 3},
			2.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evalAt(t, tt.recs, tt.p)
			if !near(got, tt.want) {
				t.Errorf("Distance(%v) = %g, want %g", tt.p, got, tt.want)
			}
		})
	}
}

func TestDistanceTopLevelUnion(t *testing.T) {
	// Multiple root trees behave as statements under an implicit union.
	var recs []scene.Record
	recs = append(recs, scene.Flatten(scene.Sphere{At: v3.Vec{X: -2}, Radius: 1})...)
	recs = append(recs, scene.Flatten(scene.Sphere{At: v3.Vec{X: 2}, Radius: 1})...)

	got := evalAt(t, recs, v3.Vec{X: 2})
	if !near(got, -1.0) {
		t.Errorf("Distance at second root's center = %g, want -1", got)
	}
	got = evalAt(t, recs, v3.Vec{})
	if !near(got, 1.0) {
		t.Errorf("Distance at midpoint = %g, want 1", got)
	}
}

func TestDistanceEmptyScene(t *testing.T) {
	e := NewEvaluator(nil, testFar)
	if got := e.Distance(v3.Vec{X: 1, Y: 2, Z: 3}); got != testFar {
		t.Errorf("Distance() = %g, want far %g", got, testFar)
	}
}

func TestDistanceUnknownKind(t *testing.T) {
	recs := []scene.Record{{Kind: scene.Kind(42)}}
	if got := evalAt(t, recs, v3.Vec{}); got != testFar {
		t.Errorf("unknown kind Distance() = %g, want far %g", got, testFar)
	}

	// An unknown record is the union identity: it must not perturb a
	// sibling's distance.
	recs = append(recs, scene.Record{Kind: scene.KindSphere, Scalar: 1})
	if got := evalAt(t, recs, v3.Vec{X: 3}); !near(got, 2.0) {
		t.Errorf("sphere beside unknown record = %g, want 2", got)
	}
}

// TestDistanceNestedOperatorFold pins the reference combiner's asymmetry:
// a popped subtree folds into its parent with min regardless of the
// parent's operator, so a nested subtree under an intersection only
// matters when its distance drops below the -1 accumulator preset.
func TestDistanceNestedOperatorFold(t *testing.T) {
	farPair := scene.Union{
		A: scene.Sphere{At: v3.Vec{X: 10}, Radius: 1},
		B: scene.Sphere{At: v3.Vec{X: 12}, Radius: 1},
	}
	here := scene.Sphere{Radius: 1}
	recs := scene.Flatten(scene.Intersection{A: farPair, B: here})

	// Inside the direct operand, far from the nested pair. A strict
	// intersection would report a large positive distance; the min-fold
	// reports the direct operand's value.
	got := evalAt(t, recs, v3.Vec{X: 0.5})
	if !near(got, -0.5) {
		t.Errorf("Distance = %g, want -0.5 (nested subtree min-folded)", got)
	}
}

func TestDistanceMalformedSequenceTerminates(t *testing.T) {
	// A truncated operator sequence must still return, bounded by the
	// record count, and report something no farther than far.
	recs := []scene.Record{
		{Kind: scene.KindUnion},
		{Kind: scene.KindSphere, Scalar: 1},
		// second operand missing
	}
	got := evalAt(t, recs, v3.Vec{X: 2})
	if math.IsNaN(got) || got > testFar {
		t.Errorf("Distance on truncated sequence = %g", got)
	}
}

func TestDistanceConcurrent(t *testing.T) {
	e := NewEvaluator(scene.Flatten(scene.Union{
		A: scene.Sphere{At: v3.Vec{X: -1}, Radius: 1},
		B: scene.Box{At: v3.Vec{X: 1}, HalfExtents: v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}},
	}), testFar)

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 1000; i++ {
				p := v3.Vec{X: float64(g), Y: float64(i % 7), Z: float64(i % 3)}
				d := e.Distance(p)
				if math.IsNaN(d) {
					t.Errorf("NaN distance at %v", p)
					return
				}
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}
}

// TestDistanceAgainstSDFX cross-checks the evaluator's primitive and
// union distances against the sdfx solids over a grid of sample points.
func TestDistanceAgainstSDFX(t *testing.T) {
	mkSphere := func(at v3.Vec, r float64) sdf.SDF3 {
		s, err := sdf.Sphere3D(r)
		if err != nil {
			t.Fatalf("Sphere3D: %v", err)
		}
		return sdf.Transform3D(s, sdf.Translate3d(at))
	}
	mkBox := func(at, he v3.Vec) sdf.SDF3 {
		s, err := sdf.Box3D(he.MulScalar(2), 0)
		if err != nil {
			t.Fatalf("Box3D: %v", err)
		}
		return sdf.Transform3D(s, sdf.Translate3d(at))
	}

	tests := []struct {
		name   string
		shape  scene.Shape
		oracle sdf.SDF3
	}{
		{
			"sphere",
			scene.Sphere{At: v3.Vec{X: 0.5, Y: -0.25}, Radius: 1.5},
			mkSphere(v3.Vec{X: 0.5, Y: -0.25}, 1.5),
		},
		{
			"box",
			scene.Box{At: v3.Vec{Z: 1}, HalfExtents: v3.Vec{X: 1, Y: 0.5, Z: 0.25}},
			mkBox(v3.Vec{Z: 1}, v3.Vec{X: 1, Y: 0.5, Z: 0.25}),
		},
		{
			"union",
			scene.Union{
				A: scene.Sphere{At: v3.Vec{X: -1}, Radius: 1},
				B: scene.Sphere{At: v3.Vec{X: 1}, Radius: 0.75},
			},
			sdf.Union3D(
				mkSphere(v3.Vec{X: -1}, 1),
				mkSphere(v3.Vec{X: 1}, 0.75),
			),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvaluator(scene.Flatten(tt.shape), testFar)
			for x := -2.0; x <= 2.0; x += 0.5 {
				for y := -2.0; y <= 2.0; y += 0.5 {
					for z := -2.0; z <= 2.0; z += 0.5 {
						p := v3.Vec{X: x, Y: y, Z: z}
						got := e.Distance(p)
						want := tt.oracle.Evaluate(p)
						if !near(got, want) {
							t.Fatalf("Distance(%v) = %g, sdfx says %g", p, got, want)
						}
					}
				}
			}
		})
	}
}
