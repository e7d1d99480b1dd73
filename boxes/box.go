// Package boxes - Bounding box types and geometry for detection evaluation.
package boxes

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Box is a single bounding box in corner form. Coordinates are continuous
// pixel values with (X1, Y1) the top-left and (X2, Y2) the bottom-right
// corner. Class identifies the category. Score is the detector confidence
// and is only meaningful on predictions; ground-truth boxes leave it zero.
//
// Box is a value type and is never mutated by this package.
type Box struct {
	X1, Y1, X2, Y2 float32
	Class          int
	Score          float32
}

func (b Box) String() string {
	return fmt.Sprintf("class %d (score %.3f): (%.1f, %.1f), (%.1f, %.1f)",
		b.Class, b.Score, b.X1, b.Y1, b.X2, b.Y2)
}

// Area returns the box area in pixels squared.
//
// A malformed box (X2 < X1 or Y2 < Y1) has area 0 rather than a negative
// value, so downstream area-range filtering treats it like an empty box
// instead of failing.
func (b Box) Area() float32 {
	w := b.X2 - b.X1
	h := b.Y2 - b.Y1
	if w < 0 || h < 0 {
		return 0
	}
	return w * h
}

// Intersection returns the overlap area of two boxes, 0 when they are
// disjoint or only share an edge.
func (b Box) Intersection(o Box) float32 {
	// The overlap's top-left corner is the maximum of the two top-left
	// corners, and its bottom-right corner the minimum of the two
	// bottom-right corners.
	ix1 := math32.Max(b.X1, o.X1)
	iy1 := math32.Max(b.Y1, o.Y1)
	ix2 := math32.Min(b.X2, o.X2)
	iy2 := math32.Min(b.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0
	}
	return interW * interH
}

// Union returns the combined area of two boxes.
//
// The naive sum of the two areas would double-count the overlap, so the
// intersection is subtracted once (inclusion-exclusion):
//
//	Union(A, B) = Area(A) + Area(B) - Intersection(A, B)
func (b Box) Union(o Box) float32 {
	return b.Area() + o.Area() - b.Intersection(o)
}

// IoU returns the Intersection over Union of two boxes, the standard overlap
// measure used to decide whether a detection matches a ground truth.
//
//	IoU = Area of Intersection / Area of Union
//
//   - 1.0 means the boxes are identical.
//   - 0.0 means they do not overlap at all.
//
// Arguments:
//   - o: The other box to compare against.
//
// Returns:
//   - A value in [0, 1]. A union of zero area (both boxes degenerate)
//     yields 0 rather than a division error.
//
// @example
// a := Box{X1: 0, Y1: 0, X2: 10, Y2: 10}
// b := Box{X1: 5, Y1: 5, X2: 15, Y2: 15}
// a.IoU(b) // 25 / (100 + 100 - 25) = 0.142857
func (b Box) IoU(o Box) float32 {
	inter := b.Intersection(o)
	if inter <= 0 {
		return 0
	}
	union := b.Union(o)
	if union <= 0 {
		return 0
	}
	return inter / union
}
