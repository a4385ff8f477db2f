package scene

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Shape is a node of a CSG shape tree.
type Shape interface {
	shape() // marker method restricting implementations to this package
}

// Sphere is a sphere centered at At.
type Sphere struct {
	At     v3.Vec
	Radius float64
}

func (Sphere) shape() {}

// Box is an axis-aligned box centered at At with the given half extents.
type Box struct {
	At          v3.Vec
	HalfExtents v3.Vec
}

func (Box) shape() {}

// Plane is the half space below the plane through At with unit normal Normal.
type Plane struct {
	At     v3.Vec
	Normal v3.Vec
}

func (Plane) shape() {}

// Union combines two shapes into the region covered by either.
type Union struct {
	A, B Shape
}

func (Union) shape() {}

// Intersection combines two shapes into the region covered by both.
type Intersection struct {
	A, B Shape
}

func (Intersection) shape() {}

// Subtraction carves B out of A.
type Subtraction struct {
	A, B Shape
}

func (Subtraction) shape() {}

// Flatten encodes a shape tree as flat records in preorder: each operator
// record is followed by the full encoding of its first operand, then its
// second. The evaluator reconstructs the tree from this ordering alone.
func Flatten(s Shape) []Record {
	return appendRecords(nil, s)
}

func appendRecords(recs []Record, s Shape) []Record {
	switch v := s.(type) {
	case Sphere:
		recs = append(recs, Record{Kind: KindSphere, Origin: v.At, Scalar: v.Radius})
	case Box:
		recs = append(recs, Record{Kind: KindBox, Origin: v.At, Vector: v.HalfExtents})
	case Plane:
		recs = append(recs, Record{Kind: KindPlane, Origin: v.At, Vector: v.Normal})
	case Union:
		recs = append(recs, Record{Kind: KindUnion})
		recs = appendRecords(recs, v.A)
		recs = appendRecords(recs, v.B)
	case Intersection:
		recs = append(recs, Record{Kind: KindIntersection})
		recs = appendRecords(recs, v.A)
		recs = appendRecords(recs, v.B)
	case Subtraction:
		recs = append(recs, Record{Kind: KindSubtraction})
		recs = appendRecords(recs, v.A)
		recs = appendRecords(recs, v.B)
	}
	return recs
}

// Depth returns the operator nesting depth of a shape tree. A bare
// primitive has depth 0, an operator over primitives has depth 1.
func Depth(s Shape) int {
	switch v := s.(type) {
	case Union:
		return 1 + max(Depth(v.A), Depth(v.B))
	case Intersection:
		return 1 + max(Depth(v.A), Depth(v.B))
	case Subtraction:
		return 1 + max(Depth(v.A), Depth(v.B))
	default:
		return 0
	}
}
