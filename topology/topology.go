// Package topology derives the global edge and face structure of an
// unstructured mixed-element mesh: deduplicated edges and faces with their
// local orientations, vertex incidence and face neighbors.
//
// A Topology is rebuilt on demand. The mesh carries a modification counter;
// when it moves past the counter of the last build the topology is Stale and
// every query panics until Update succeeds.
package topology

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/notargets/meshtopo/mesh"
	"github.com/notargets/meshtopo/utils"
)

// Mesh is the read-only view of a mesh the topology is built from.
// Timestamp must advance on every change of connectivity.
type Mesh interface {
	NumVertices() int
	NumElements() int
	Element(ei int) mesh.Element
	NumSurfaceElements() int
	SurfaceElement(si int) mesh.SurfaceElement
	NumSegments() int
	Segment(gi int) mesh.Segment
	Timestamp() uint64
}

type State uint8

const (
	Stale State = iota
	Fresh
)

func (s State) String() string {
	if s == Fresh {
		return "fresh"
	}
	return "stale"
}

type Topology struct {
	mesh                   Mesh
	buildEdges, buildFaces bool
	logger                 *slog.Logger
	current                atomic.Pointer[tables]
}

type Option func(*Topology)

func WithEdges(on bool) Option { return func(t *Topology) { t.buildEdges = on } }
func WithFaces(on bool) Option { return func(t *Topology) { t.buildFaces = on } }

func WithLogger(l *slog.Logger) Option {
	return func(t *Topology) {
		if l != nil {
			t.logger = l
		}
	}
}

// New binds a topology to m. Edges and faces are built by default. Nothing
// is built until Update.
func New(m Mesh, opts ...Option) *Topology {
	if m == nil {
		panic("topology: nil mesh")
	}
	t := &Topology{
		mesh:       m,
		buildEdges: true,
		buildFaces: true,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Topology) Mesh() Mesh { return t.mesh }

// SetBuildEdges and SetBuildFaces take effect at the next Update. A change
// makes the topology Stale.
func (t *Topology) SetBuildEdges(on bool) { t.buildEdges = on }
func (t *Topology) SetBuildFaces(on bool) { t.buildFaces = on }

func (t *Topology) HasEdges() bool {
	tb := t.current.Load()
	return tb != nil && tb.hasEdges
}

func (t *Topology) HasFaces() bool {
	tb := t.current.Load()
	return tb != nil && tb.hasFaces
}

func (t *Topology) State() State {
	if t.isStale(t.current.Load()) {
		return Stale
	}
	return Fresh
}

// isStale reports whether tb no longer describes the mesh under the current
// build toggles.
func (t *Topology) isStale(tb *tables) bool {
	return tb == nil || tb.timestamp != t.mesh.Timestamp() ||
		tb.hasEdges != t.buildEdges || tb.hasFaces != t.buildFaces
}

// Timestamp returns the mesh counter of the last successful build, false if
// there has been none.
func (t *Topology) Timestamp() (uint64, bool) {
	tb := t.current.Load()
	if tb == nil {
		return 0, false
	}
	return tb.timestamp, true
}

// Update rebuilds every derived table when the topology is Stale and is a
// no-op otherwise. On error the previously published tables stay in place.
func (t *Topology) Update() error {
	if t.State() == Fresh {
		return nil
	}
	start := time.Now()
	tb, err := build(t.mesh, t.buildEdges, t.buildFaces)
	if err != nil {
		t.logger.Warn("topology rebuild failed",
			"timestamp", t.mesh.Timestamp(), "error", err)
		return fmt.Errorf("topology update: %w", err)
	}
	t.current.Store(tb)
	t.logger.Debug("topology rebuilt",
		"timestamp", tb.timestamp,
		"vertices", tb.nVertices,
		"edges", len(tb.edge2vert),
		"faces", len(tb.face2vert),
		"elapsed", time.Since(start))
	return nil
}

func (t *Topology) fresh() *tables {
	tb := t.current.Load()
	if t.isStale(tb) {
		panic("topology: query on stale topology, call Update first")
	}
	return tb
}

func (t *Topology) withEdges() *tables {
	tb := t.fresh()
	if !tb.hasEdges {
		panic("topology: edges were not built")
	}
	return tb
}

func (t *Topology) withFaces() *tables {
	tb := t.fresh()
	if !tb.hasFaces {
		panic("topology: faces were not built")
	}
	return tb
}

func checkIndex(what string, i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("topology: %s index %d out of range [0,%d)", what, i, n))
	}
}

func (t *Topology) NumEdges() int { return len(t.withEdges().edge2vert) }
func (t *Topology) NumFaces() int { return len(t.withFaces().face2vert) }

// EdgesOfElement lists the global edges of a volume element in the local
// edge order of its shape.
func (t *Topology) EdgesOfElement(ei int) []EdgeRef {
	tb := t.withEdges()
	checkIndex("element", ei, len(tb.elEdges))
	n := t.mesh.Element(ei).Type.NumEdges()
	return append([]EdgeRef(nil), tb.elEdges[ei][:n]...)
}

func (t *Topology) FacesOfElement(ei int) []FaceRef {
	tb := t.withFaces()
	checkIndex("element", ei, len(tb.elFaces))
	n := t.mesh.Element(ei).Type.NumFaces()
	return append([]FaceRef(nil), tb.elFaces[ei][:n]...)
}

func (t *Topology) EdgesOfSurfaceElement(si int) []EdgeRef {
	tb := t.withEdges()
	checkIndex("surface element", si, len(tb.seEdges))
	n := t.mesh.SurfaceElement(si).Type.NumEdges()
	return append([]EdgeRef(nil), tb.seEdges[si][:n]...)
}

func (t *Topology) FaceOfSurfaceElement(si int) FaceRef {
	tb := t.withFaces()
	checkIndex("surface element", si, len(tb.seFaces))
	return tb.seFaces[si]
}

func (t *Topology) EdgeOfSegment(gi int) EdgeRef {
	tb := t.withEdges()
	checkIndex("segment", gi, len(tb.segEdges))
	return tb.segEdges[gi]
}

// VerticesOfEdge returns the canonical vertex pair, v0 < v1
func (t *Topology) VerticesOfEdge(e int) (v0, v1 int) {
	tb := t.withEdges()
	checkIndex("edge", e, len(tb.edge2vert))
	return tb.edge2vert[e][0], tb.edge2vert[e][1]
}

// VerticesOfFace returns the canonical vertex cycle of a face
func (t *Topology) VerticesOfFace(f int) []int {
	tb := t.withFaces()
	checkIndex("face", f, len(tb.face2vert))
	return append([]int(nil), faceCycle(tb.face2vert[f])...)
}

func (t *Topology) FaceType(f int) utils.ElementType {
	tb := t.withFaces()
	checkIndex("face", f, len(tb.face2vert))
	if tb.face2vert[f][3] == utils.NoVertex {
		return utils.Triangle
	}
	return utils.Quad
}

// EdgesOfFace walks the canonical cycle of a face, edge k joining cycle
// vertices k and k+1. Orientations are relative to the cycle direction.
func (t *Topology) EdgesOfFace(f int) []EdgeRef {
	tb := t.withFaces()
	if !tb.hasEdges {
		panic("topology: edges were not built")
	}
	checkIndex("face", f, len(tb.face2vert))
	cyc := faceCycle(tb.face2vert[f])
	n := len(cyc)
	refs := make([]EdgeRef, n)
	for k := range cyc {
		a, b := cyc[k], cyc[(k+1)%n]
		key := [2]int{min(a, b), max(a, b)}
		e, ok := tb.edgeMap[key]
		if !ok {
			panic(fmt.Sprintf("topology: face %d edge %v missing from edge table", f, key))
		}
		refs[k] = NewEdgeRef(e, a > b)
	}
	return refs
}

// VertexElements lists volume elements having v as a corner, ascending.
// The vertex queries return copies.
func (t *Topology) VertexElements(v int) []int {
	tb := t.fresh()
	checkIndex("vertex", v, tb.nVertices)
	return append([]int(nil), tb.vert2el.Row(v)...)
}

func (t *Topology) VertexSurfaceElements(v int) []int {
	tb := t.fresh()
	checkIndex("vertex", v, tb.nVertices)
	return append([]int(nil), tb.vert2se.Row(v)...)
}

func (t *Topology) VertexSegments(v int) []int {
	tb := t.fresh()
	checkIndex("vertex", v, tb.nVertices)
	return append([]int(nil), tb.vert2seg.Row(v)...)
}

// SurfaceNeighborVolumes returns the volume elements on either side of a
// surface element, ascending, NoNeighbor in unused slots.
func (t *Topology) SurfaceNeighborVolumes(si int) (int, int) {
	tb := t.withFaces()
	checkIndex("surface element", si, len(tb.surf2vol))
	return tb.surf2vol[si][0], tb.surf2vol[si][1]
}

func (t *Topology) FaceVolumes(f int) (int, int) {
	tb := t.withFaces()
	checkIndex("face", f, len(tb.face2vol))
	return tb.face2vol[f][0], tb.face2vol[f][1]
}

// FaceSurfaceElement returns the lowest indexed surface element on f, or
// NoNeighbor.
func (t *Topology) FaceSurfaceElement(f int) int {
	tb := t.withFaces()
	checkIndex("face", f, len(tb.face2surf))
	return tb.face2surf[f]
}

func (t *Topology) EdgeBetweenVertices(v1, v2 int) (int, bool) {
	tb := t.withEdges()
	checkIndex("vertex", v1, tb.nVertices)
	checkIndex("vertex", v2, tb.nVertices)
	e, ok := tb.edgeMap[[2]int{min(v1, v2), max(v1, v2)}]
	return e, ok
}

// SegmentVolumeElements lists volume elements containing both segment
// vertices, ascending.
func (t *Topology) SegmentVolumeElements(gi int) []int {
	tb := t.fresh()
	checkIndex("segment", gi, t.mesh.NumSegments())
	seg := t.mesh.Segment(gi)
	return utils.Index(tb.vert2el.Row(seg.Vertices[0])).
		IntersectSorted(tb.vert2el.Row(seg.Vertices[1]))
}

func (t *Topology) SegmentSurfaceElements(gi int) []int {
	tb := t.fresh()
	checkIndex("segment", gi, t.mesh.NumSegments())
	seg := t.mesh.Segment(gi)
	return utils.Index(tb.vert2se.Row(seg.Vertices[0])).
		IntersectSorted(tb.vert2se.Row(seg.Vertices[1]))
}
