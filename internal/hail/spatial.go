package hail

import (
	"gonum.org/v1/gonum/spatial/kdtree"
)

// groundPoint is a gate's horizontal position tagged with its flat grid index.
type groundPoint struct {
	x, y  float64
	index int
}

func (p groundPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(groundPoint)
	switch d {
	case 0:
		return p.x - q.x
	case 1:
		return p.y - q.y
	default:
		panic("illegal dimension")
	}
}

func (p groundPoint) Dims() int { return 2 }

// Distance is the squared horizontal distance; height is ignored.
func (p groundPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(groundPoint)
	dx, dy := p.x-q.x, p.y-q.y
	return dx*dx + dy*dy
}

type groundPoints []groundPoint

func (p groundPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p groundPoints) Len() int                      { return len(p) }
func (p groundPoints) Pivot(d kdtree.Dim) int {
	return groundPlane{groundPoints: p, Dim: d}.Pivot()
}
func (p groundPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// groundPlane sorts points along one dimension for tree construction.
type groundPlane struct {
	kdtree.Dim
	groundPoints
}

func (p groundPlane) Less(i, j int) bool {
	if p.Dim == 0 {
		return p.groundPoints[i].x < p.groundPoints[j].x
	}
	return p.groundPoints[i].y < p.groundPoints[j].y
}
func (p groundPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p groundPlane) Slice(start, end int) kdtree.SortSlicer {
	return groundPlane{Dim: p.Dim, groundPoints: p.groundPoints[start:end]}
}
func (p groundPlane) Swap(i, j int) {
	p.groundPoints[i], p.groundPoints[j] = p.groundPoints[j], p.groundPoints[i]
}

// groundIndex answers nearest-gate queries over one sweep's (x, y) positions.
// It is read-only after construction and safe for concurrent queries.
type groundIndex struct {
	tree *kdtree.Tree
}

func newGroundIndex(g geometry) *groundIndex {
	pts := make(groundPoints, g.x.Len())
	for k := range pts {
		pts[k] = groundPoint{x: g.x.Data[k], y: g.y.Data[k], index: k}
	}
	return &groundIndex{tree: kdtree.New(pts, false)}
}

// nearest returns the flat index of the gate horizontally closest to (x, y).
// Gates at exactly the same distance resolve to the lowest index, which is
// what a first-minimum scan over the grid would pick.
func (gi *groundIndex) nearest(x, y float64) int {
	q := groundPoint{x: x, y: y}
	c, d := gi.tree.Nearest(q)
	best := c.(groundPoint).index

	keep := kdtree.NewDistKeeper(d)
	gi.tree.NearestSet(keep, q)
	for _, cd := range keep.Heap {
		if cd.Comparable == nil || cd.Dist > d {
			continue
		}
		if idx := cd.Comparable.(groundPoint).index; idx < best {
			best = idx
		}
	}
	return best
}
