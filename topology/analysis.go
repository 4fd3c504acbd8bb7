package topology

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/notargets/meshtopo/utils"
)

// IncidenceMatrix returns the vertex x volume element incidence pattern
func (t *Topology) IncidenceMatrix() *sparse.CSR {
	tb := t.fresh()
	return tb.vert2el.ToCSR(t.mesh.NumElements())
}

// SharedVertexCounts returns the element x element matrix whose (i,j) entry
// is the number of corner vertices elements i and j share. The diagonal
// holds each element's corner count.
func (t *Topology) SharedVertexCounts() *sparse.CSR {
	return utils.GramCSR(t.IncidenceMatrix())
}

// DualGraph joins volume elements that share a face. Every element is a node,
// including isolated ones.
func (t *Topology) DualGraph() *simple.UndirectedGraph {
	tb := t.withFaces()
	g := simple.NewUndirectedGraph()
	for ei := 0; ei < len(tb.elFaces); ei++ {
		g.AddNode(simple.Node(ei))
	}
	for _, nb := range tb.face2vol {
		if nb[1] == NoNeighbor || nb[0] == nb[1] {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(nb[0]), simple.Node(nb[1])))
	}
	return g
}

// Components returns face connected groups of volume elements. Each group
// is ascending and groups are ordered by their first element.
func (t *Topology) Components() [][]int {
	cc := topo.ConnectedComponents(t.DualGraph())
	comps := make([][]int, len(cc))
	for i, c := range cc {
		ids := make([]int, len(c))
		for j, n := range c {
			ids[j] = int(n.ID())
		}
		sort.Ints(ids)
		comps[i] = ids
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}

// BoundaryFaces lists faces with exactly one volume neighbor
func (t *Topology) BoundaryFaces() []int {
	tb := t.withFaces()
	var faces []int
	for f, nb := range tb.face2vol {
		if nb[0] != NoNeighbor && nb[1] == NoNeighbor {
			faces = append(faces, f)
		}
	}
	return faces
}

// BoundaryVertices returns the vertices of every boundary face
func (t *Topology) BoundaryVertices() *roaring.Bitmap {
	tb := t.withFaces()
	bm := roaring.New()
	for _, f := range t.BoundaryFaces() {
		for _, v := range faceCycle(tb.face2vert[f]) {
			bm.Add(uint32(v))
		}
	}
	return bm
}

type Summary struct {
	Vertices        int `json:"vertices"`
	Elements        int `json:"elements"`
	SurfaceElements int `json:"surfaceElements"`
	Segments        int `json:"segments"`
	Edges           int `json:"edges"`
	Faces           int `json:"faces"`
	BoundaryFaces   int `json:"boundaryFaces"`
	InteriorFaces   int `json:"interiorFaces"`
	Components      int `json:"components"`
}

// Summary counts what has been built. Edge and face related counts stay
// zero for disabled kinds.
func (t *Topology) Summary() Summary {
	tb := t.fresh()
	s := Summary{
		Vertices:        tb.nVertices,
		Elements:        t.mesh.NumElements(),
		SurfaceElements: t.mesh.NumSurfaceElements(),
		Segments:        t.mesh.NumSegments(),
	}
	if tb.hasEdges {
		s.Edges = len(tb.edge2vert)
	}
	if tb.hasFaces {
		s.Faces = len(tb.face2vert)
		for _, nb := range tb.face2vol {
			switch {
			case nb[1] != NoNeighbor:
				s.InteriorFaces++
			case nb[0] != NoNeighbor:
				s.BoundaryFaces++
			}
		}
		s.Components = len(t.Components())
	}
	return s
}
