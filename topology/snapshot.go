package topology

import "github.com/notargets/meshtopo/utils"

// Snapshot is a plain copy of every derived table of a fresh topology. Refs
// are stored packed, as their uint32 encoding. Empty tables, and tables of a
// kind that was not built, are nil.
type Snapshot struct {
	Timestamp uint64 `cbor:"timestamp"`
	Vertices  int    `cbor:"vertices"`
	HasEdges  bool   `cbor:"hasEdges"`
	HasFaces  bool   `cbor:"hasFaces"`

	EdgeVertices [][2]int `cbor:"edgeVertices"`
	FaceVertices [][4]int `cbor:"faceVertices"`

	ElementEdges        [][]uint32 `cbor:"elementEdges"`
	ElementFaces        [][]uint32 `cbor:"elementFaces"`
	SurfaceElementEdges [][]uint32 `cbor:"surfaceElementEdges"`
	SurfaceElementFaces []uint32   `cbor:"surfaceElementFaces"`
	SegmentEdges        []uint32   `cbor:"segmentEdges"`

	VertexElements        CSR `cbor:"vertexElements"`
	VertexSurfaceElements CSR `cbor:"vertexSurfaceElements"`
	VertexSegments        CSR `cbor:"vertexSegments"`

	FaceVolumes            [][2]int `cbor:"faceVolumes"`
	FaceSurfaceElement     []int    `cbor:"faceSurfaceElement"`
	SurfaceNeighborVolumes [][2]int `cbor:"surfaceNeighborVolumes"`
}

// CSR is an incidence table, row i is Data[Offsets[i]:Offsets[i+1]]
type CSR struct {
	Offsets []int `cbor:"offsets"`
	Data    []int `cbor:"data"`
}

// Snapshot copies the published tables. It panics when Stale.
func (t *Topology) Snapshot() *Snapshot {
	tb := t.fresh()
	s := &Snapshot{
		Timestamp:             tb.timestamp,
		Vertices:              tb.nVertices,
		HasEdges:              tb.hasEdges,
		HasFaces:              tb.hasFaces,
		VertexElements:        csrOf(tb.vert2el),
		VertexSurfaceElements: csrOf(tb.vert2se),
		VertexSegments:        csrOf(tb.vert2seg),
	}
	if tb.hasEdges {
		s.EdgeVertices = orNil(append([][2]int(nil), tb.edge2vert...))
		s.ElementEdges = make([][]uint32, len(tb.elEdges))
		for ei := range tb.elEdges {
			n := t.mesh.Element(ei).Type.NumEdges()
			s.ElementEdges[ei] = packEdges(tb.elEdges[ei][:n])
		}
		s.SurfaceElementEdges = make([][]uint32, len(tb.seEdges))
		for si := range tb.seEdges {
			n := t.mesh.SurfaceElement(si).Type.NumEdges()
			s.SurfaceElementEdges[si] = packEdges(tb.seEdges[si][:n])
		}
		s.SegmentEdges = packEdges(tb.segEdges)
		s.ElementEdges = orNil(s.ElementEdges)
		s.SurfaceElementEdges = orNil(s.SurfaceElementEdges)
	}
	if tb.hasFaces {
		s.FaceVertices = orNil(append([][4]int(nil), tb.face2vert...))
		s.ElementFaces = make([][]uint32, len(tb.elFaces))
		for ei := range tb.elFaces {
			n := t.mesh.Element(ei).Type.NumFaces()
			s.ElementFaces[ei] = packFaces(tb.elFaces[ei][:n])
		}
		s.SurfaceElementFaces = packFaces(tb.seFaces)
		s.FaceVolumes = orNil(append([][2]int(nil), tb.face2vol...))
		s.FaceSurfaceElement = copyInts(tb.face2surf)
		s.SurfaceNeighborVolumes = orNil(append([][2]int(nil), tb.surf2vol...))
		s.ElementFaces = orNil(s.ElementFaces)
	}
	return s
}

func csrOf(T utils.Table) CSR {
	return CSR{Offsets: copyInts(T.Offsets), Data: copyInts(T.Data)}
}

func orNil[T any](a []T) []T {
	if len(a) == 0 {
		return nil
	}
	return a
}

func packEdges(refs []EdgeRef) []uint32 {
	if len(refs) == 0 {
		return nil
	}
	p := make([]uint32, len(refs))
	for i, r := range refs {
		p[i] = uint32(r)
	}
	return p
}

func packFaces(refs []FaceRef) []uint32 {
	if len(refs) == 0 {
		return nil
	}
	p := make([]uint32, len(refs))
	for i, r := range refs {
		p[i] = uint32(r)
	}
	return p
}

func copyInts(a []int) []int {
	if len(a) == 0 {
		return nil
	}
	return append(make([]int, 0, len(a)), a...)
}
