package field

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/umbralith/umbra/pkg/scene"
)

// intersectionIdentity is the accumulator preset for intersection and
// subtraction frames. A plain max-fold identity would be -Inf; the record
// format's producer uses -1.0, which additionally floors the result of an
// intersection at -1 for points deep inside all operands. Preserved as is:
// the shading pipeline only cares about the sign and near-surface values.
const intersectionIdentity = -1.0

// frame is one entry of the evaluation stack. It tracks the operator being
// replayed, how many direct operands it still owes, how many it has seen,
// and the distance accumulated so far.
type frame struct {
	op   scene.Kind
	rem  int
	seen int
	acc  float64
}

// Evaluator computes scene distances for a flat record sequence. It is
// stateless across calls: the frame stack is a local of each Distance
// call, so a single Evaluator serves any number of goroutines.
type Evaluator struct {
	recs  []scene.Record
	roots int
	far   float64
}

// Compile-time interface check.
var _ Field = (*Evaluator)(nil)

// NewEvaluator wraps a record sequence for evaluation. far is the maximum
// march distance: it is the union identity, and the distance reported for
// record kinds the evaluator does not know (such records are "effectively
// absent" rather than an error). The sequence is not validated here; run
// scene.Validate before rendering.
func NewEvaluator(recs []scene.Record, far float64) *Evaluator {
	return &Evaluator{
		recs:  recs,
		roots: scene.Roots(recs),
		far:   far,
	}
}

// Far returns the evaluator's maximum march distance.
func (e *Evaluator) Far() float64 { return e.far }

// Distance evaluates the scene's signed distance at p by replaying the
// record sequence through a fixed-capacity stack machine.
//
// The machine starts with an implicit union frame over all top-level
// trees, preset to the far distance. At each step it first closes the
// current top frame if it owes no more operands: the popped frame's
// accumulated distance folds into the new top with min — always min, even
// under an intersection or subtraction parent. A parent's own operator
// applies only to its direct primitive operands; nested operator operands
// are pre-reduced by this union fold. This asymmetry reproduces the record
// format's reference combiner exactly.
//
// Otherwise it consumes the record under the cursor: an operator record
// pushes a fresh frame (owing exactly two operands), a primitive record
// evaluates its distance and combines it into the top frame.
//
// Every iteration either pops a frame or consumes a record, so the loop is
// statically bounded; a malformed sequence runs the bound out and returns
// whatever the root frame holds, without reading past the records.
func (e *Evaluator) Distance(p v3.Vec) float64 {
	var stack [scene.MaxDepth + 1]frame
	sp := 0
	stack[0] = frame{op: scene.KindUnion, rem: e.roots, acc: e.far}

	i := 0
	bound := 2*len(e.recs) + 2
	for it := 0; it < bound; it++ {
		top := &stack[sp]

		if top.rem == 0 {
			if sp == 0 {
				return top.acc
			}
			sp--
			if top.acc < stack[sp].acc {
				stack[sp].acc = top.acc
			}
			continue
		}

		if i >= len(e.recs) {
			break
		}
		rec := &e.recs[i]
		i++
		top.rem--
		top.seen++

		switch rec.Kind {
		case scene.KindUnion:
			if sp == scene.MaxDepth {
				break // nesting beyond the authoring bound, drop the subtree
			}
			sp++
			stack[sp] = frame{op: scene.KindUnion, rem: scene.OperandCount, acc: e.far}
		case scene.KindIntersection:
			if sp == scene.MaxDepth {
				break
			}
			sp++
			stack[sp] = frame{op: scene.KindIntersection, rem: scene.OperandCount, acc: intersectionIdentity}
		case scene.KindSubtraction:
			if sp == scene.MaxDepth {
				break
			}
			sp++
			stack[sp] = frame{op: scene.KindSubtraction, rem: scene.OperandCount, acc: intersectionIdentity}
		default:
			combine(top, e.primitive(rec, p))
		}
	}

	return stack[0].acc
}

// combine folds a direct primitive operand's distance into its frame using
// the frame's own operator.
func combine(f *frame, d float64) {
	switch f.op {
	case scene.KindIntersection:
		if d > f.acc {
			f.acc = d
		}
	case scene.KindSubtraction:
		// The first operand is kept, later operands are carved away.
		if f.seen > 1 {
			d = -d
		}
		if d > f.acc {
			f.acc = d
		}
	default: // union
		if d < f.acc {
			f.acc = d
		}
	}
}

// primitive computes the exact signed distance of a single geometric
// record. Unknown kinds report the far distance, keeping evaluation total
// over malformed records: they behave as "never hit".
func (e *Evaluator) primitive(rec *scene.Record, p v3.Vec) float64 {
	switch rec.Kind {
	case scene.KindSphere:
		return p.Sub(rec.Origin).Length() - rec.Scalar
	case scene.KindBox:
		q := p.Sub(rec.Origin).Abs().Sub(rec.Vector)
		outside := q.Max(v3.Vec{}).Length()
		inside := math.Min(q.MaxComponent(), 0)
		return outside + inside
	case scene.KindPlane:
		return p.Sub(rec.Origin).Dot(rec.Vector)
	default:
		return e.far
	}
}
