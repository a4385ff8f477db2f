package scene

import (
	"fmt"
	"math"
)

// Severity indicates whether a finding blocks rendering or is advisory.
type Severity int

const (
	SeverityError   Severity = iota // blocks rendering
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Finding describes a single validation result.
type Finding struct {
	Index    int // record index the finding refers to, -1 for scene-level
	Message  string
	Severity Severity
}

func (f Finding) Error() string {
	if f.Index < 0 {
		return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("[%s] record %d: %s", f.Severity, f.Index, f.Message)
}

// unitTolerance is the allowed deviation of a plane normal from unit length.
const unitTolerance = 1e-6

// Validate checks a flat record sequence before it is handed to the
// evaluator. It is the construction-time gate required by the error model:
// structural problems (dangling operands, nesting beyond MaxDepth) must be
// caught here, once, never per query point. An empty result means the
// sequence is renderable. Degenerate but harmless geometry (zero radius,
// zero extents) is reported as a warning only; the evaluator is total over
// such records.
func Validate(recs []Record) []Finding {
	var findings []Finding

	if len(recs) > MaxRecords {
		findings = append(findings, Finding{
			Index:    -1,
			Message:  fmt.Sprintf("%d records exceeds the maximum of %d", len(recs), MaxRecords),
			Severity: SeverityError,
		})
	}

	findings = append(findings, validateStructure(recs)...)

	for i := range recs {
		findings = append(findings, validateRecord(i, &recs[i])...)
	}

	return findings
}

// HasErrors reports whether any finding is blocking.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// validateStructure replays the operator-consumes-operands rule over the
// sequence and checks that it forms a well-formed forest within the
// nesting bound.
func validateStructure(recs []Record) []Finding {
	var findings []Finding

	// remaining[d] is the number of operands still owed at nesting depth d.
	var remaining []int
	maxDepth := 0

	for i := range recs {
		// Close finished operator frames before consuming the record.
		for len(remaining) > 0 && remaining[len(remaining)-1] == 0 {
			remaining = remaining[:len(remaining)-1]
		}
		if len(remaining) > 0 {
			remaining[len(remaining)-1]--
		}
		if recs[i].Kind.IsOperator() {
			remaining = append(remaining, OperandCount)
			if len(remaining) > maxDepth {
				maxDepth = len(remaining)
			}
			if len(remaining) == MaxDepth+1 {
				findings = append(findings, Finding{
					Index:    i,
					Message:  fmt.Sprintf("operator nesting exceeds the maximum depth of %d", MaxDepth),
					Severity: SeverityError,
				})
			}
		}
	}

	// Anything still owed after the last record is a dangling consumption.
	owed := 0
	for _, r := range remaining {
		owed += r
	}
	if owed > 0 {
		findings = append(findings, Finding{
			Index:    len(recs) - 1,
			Message:  fmt.Sprintf("sequence ends with %d operand(s) still owed to open operators", owed),
			Severity: SeverityError,
		})
	}

	return findings
}

func validateRecord(i int, r *Record) []Finding {
	var findings []Finding

	switch r.Kind {
	case KindSphere:
		if r.Scalar < 0 {
			findings = append(findings, Finding{
				Index:    i,
				Message:  fmt.Sprintf("sphere has negative radius %g", r.Scalar),
				Severity: SeverityError,
			})
		} else if r.Scalar == 0 {
			findings = append(findings, Finding{
				Index:    i,
				Message:  "sphere has zero radius",
				Severity: SeverityWarning,
			})
		}
	case KindBox:
		he := r.Vector
		if he.X < 0 || he.Y < 0 || he.Z < 0 {
			findings = append(findings, Finding{
				Index:    i,
				Message:  fmt.Sprintf("box has negative half extents %v", he),
				Severity: SeverityError,
			})
		} else if he.X == 0 && he.Y == 0 && he.Z == 0 {
			findings = append(findings, Finding{
				Index:    i,
				Message:  "box has zero extents",
				Severity: SeverityWarning,
			})
		}
	case KindPlane:
		l := r.Vector.Length()
		if l == 0 {
			findings = append(findings, Finding{
				Index:    i,
				Message:  "plane has zero normal",
				Severity: SeverityError,
			})
		} else if math.Abs(l-1) > unitTolerance {
			findings = append(findings, Finding{
				Index:    i,
				Message:  fmt.Sprintf("plane normal has length %g, expected unit length", l),
				Severity: SeverityWarning,
			})
		}
	case KindUnion, KindIntersection, KindSubtraction:
		// No parameters to check.
	default:
		// Unknown kinds evaluate as "infinitely far" and never render,
		// which is almost certainly not what the author meant.
		findings = append(findings, Finding{
			Index:    i,
			Message:  fmt.Sprintf("unknown record kind %d", uint32(r.Kind)),
			Severity: SeverityWarning,
		})
	}

	return findings
}

// Roots returns the number of top-level trees in a record sequence, parsed
// by the same consumption rule the evaluator uses. The result is the
// operand count of the evaluator's implicit top-level union frame. For a
// malformed (truncated) sequence the trailing incomplete tree still counts
// as one root.
func Roots(recs []Record) int {
	roots := 0
	i := 0
	for i < len(recs) {
		roots++
		// Consume one full tree.
		need := 1
		for need > 0 && i < len(recs) {
			need--
			if recs[i].Kind.IsOperator() {
				need += OperandCount
			}
			i++
		}
	}
	return roots
}
