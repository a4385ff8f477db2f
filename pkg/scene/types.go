// Package scene defines the shape tree and the flat record encoding that
// the field evaluator consumes. A scene is authored as a CSG tree of
// primitives and boolean operators, then flattened into an ordered record
// sequence whose insertion order encodes the tree by preorder traversal:
// an operator record declares that the next two records, recursively
// expanded, are its operands.
package scene

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Kind discriminates record variants. The numeric values are the wire ids
// of the record format and must not be renumbered.
type Kind uint32

const (
	KindUnion        Kind = 0
	KindIntersection Kind = 1
	KindSubtraction  Kind = 2
	KindSphere       Kind = 6
	KindBox          Kind = 7
	KindPlane        Kind = 8
)

func (k Kind) String() string {
	switch k {
	case KindUnion:
		return "union"
	case KindIntersection:
		return "intersection"
	case KindSubtraction:
		return "subtraction"
	case KindSphere:
		return "sphere"
	case KindBox:
		return "box"
	case KindPlane:
		return "plane"
	default:
		return "unknown"
	}
}

// IsOperator reports whether the kind is a boolean operator record.
func (k Kind) IsOperator() bool {
	return k == KindUnion || k == KindIntersection || k == KindSubtraction
}

// OperandCount is the number of operands every operator record consumes.
const OperandCount = 2

// MaxDepth is the maximum CSG nesting depth a scene may use. It bounds the
// evaluator's frame stack, so exceeding it is an authoring error caught by
// Validate, never a runtime condition.
const MaxDepth = 10

// MaxRecords is the maximum number of records in a single scene.
const MaxRecords = 256

// Record is one entry of the flat scene encoding. The meaning of Vector
// and Scalar depends on Kind:
//
//	sphere: Origin = center, Scalar = radius
//	box:    Origin = center, Vector = half extents
//	plane:  Origin = point on plane, Vector = unit normal
//	operators: all parameter fields unused
type Record struct {
	Kind   Kind    `json:"kind"`
	Origin v3.Vec  `json:"origin"`
	Vector v3.Vec  `json:"vector,omitempty"`
	Scalar float64 `json:"scalar,omitempty"`
}
