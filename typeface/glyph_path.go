package typeface

import (
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// PathOp is the type of a path segment.
type PathOp uint8

const (
	// PathOpMoveTo starts a new contour.
	PathOpMoveTo PathOp = iota

	// PathOpLineTo draws a line to the target point.
	PathOpLineTo

	// PathOpQuadTo draws a quadratic bezier curve.
	PathOpQuadTo

	// PathOpCubicTo draws a cubic bezier curve.
	PathOpCubicTo
)

// String returns a string representation of the operation.
func (op PathOp) String() string {
	switch op {
	case PathOpMoveTo:
		return "MoveTo"
	case PathOpLineTo:
		return "LineTo"
	case PathOpQuadTo:
		return "QuadTo"
	case PathOpCubicTo:
		return "CubicTo"
	default:
		return "Unknown"
	}
}

// PathPoint is a point in pixels. Y grows downward from the baseline.
type PathPoint struct {
	X, Y float32
}

// PathSegment is one operation of a glyph path.
//   - MoveTo, LineTo: Points[0] is the target
//   - QuadTo: Points[0] is the control point, Points[1] the target
//   - CubicTo: Points[0], Points[1] are control points, Points[2] the target
type PathSegment struct {
	Op     PathOp
	Points [3]PathPoint
}

// GlyphPath is the outline of a glyph scaled to a type size.
// Cached paths are shared between callers and must not be modified.
type GlyphPath struct {
	// GID is the glyph id this path was generated for.
	GID uint16

	// Size is the type size in pixels per em.
	Size float32

	// Segments is the list of path operations, possibly empty (e.g. space).
	Segments []PathSegment
}

// Len returns the number of segments.
func (p *GlyphPath) Len() int {
	return len(p.Segments)
}

// Bounds returns the bounding box of every point of the path, control
// points included. An empty path has an empty box at the origin.
func (p *GlyphPath) Bounds() (minX, minY, maxX, maxY float32) {
	first := true
	for _, seg := range p.Segments {
		for _, pt := range seg.Points[:seg.Op.pointCount()] {
			if first {
				minX, minY, maxX, maxY = pt.X, pt.Y, pt.X, pt.Y
				first = false
				continue
			}
			minX = min(minX, pt.X)
			minY = min(minY, pt.Y)
			maxX = max(maxX, pt.X)
			maxY = max(maxY, pt.Y)
		}
	}
	return minX, minY, maxX, maxY
}

// pointCount returns how many entries of PathSegment.Points op uses.
func (op PathOp) pointCount() int {
	switch op {
	case PathOpQuadTo:
		return 2
	case PathOpCubicTo:
		return 3
	default:
		return 1
	}
}

// newGlyphPath converts sfnt segments into a GlyphPath.
func newGlyphPath(gid uint16, size float32, segs sfnt.Segments) *GlyphPath {
	p := &GlyphPath{
		GID:      gid,
		Size:     size,
		Segments: make([]PathSegment, 0, len(segs)),
	}

	for _, s := range segs {
		var seg PathSegment
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			seg.Op = PathOpMoveTo
		case sfnt.SegmentOpLineTo:
			seg.Op = PathOpLineTo
		case sfnt.SegmentOpQuadTo:
			seg.Op = PathOpQuadTo
		case sfnt.SegmentOpCubeTo:
			seg.Op = PathOpCubicTo
		default:
			continue
		}
		for i := 0; i < seg.Op.pointCount(); i++ {
			seg.Points[i] = pointFromFixed(s.Args[i])
		}
		p.Segments = append(p.Segments, seg)
	}

	return p
}

func pointFromFixed(pt fixed.Point26_6) PathPoint {
	return PathPoint{X: fixedToFloat32(pt.X), Y: fixedToFloat32(pt.Y)}
}

// fixedToFloat32 converts fixed.Int26_6 to float32.
func fixedToFloat32(x fixed.Int26_6) float32 {
	return float32(x) / 64.0
}

// floatToFixed converts a size in pixels to fixed.Int26_6.
func floatToFixed(v float32) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
