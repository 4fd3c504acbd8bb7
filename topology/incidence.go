package topology

import (
	"fmt"

	"github.com/notargets/meshtopo/mesh"
	"github.com/notargets/meshtopo/utils"
)

// NoNeighbor marks a missing volume element or surface element in a
// neighbor table.
const NoNeighbor = -1

// buildVertexIncidence builds the vertex -> entity tables from corner
// vertices only. Rows are ascending because entities are visited in order.
func (b *builder) buildVertexIncidence() {
	var (
		t  = b.t
		nv = t.nVertices
	)
	t.vert2el = utils.NewTable(nv, func(emit func(row, value int)) {
		for ei := 0; ei < b.m.NumElements(); ei++ {
			el := b.m.Element(ei)
			for _, v := range el.Type.CornerVertices(el.Vertices) {
				emit(v, ei)
			}
		}
	})
	t.vert2se = utils.NewTable(nv, func(emit func(row, value int)) {
		for si := 0; si < b.m.NumSurfaceElements(); si++ {
			se := b.m.SurfaceElement(si)
			for _, v := range se.Type.CornerVertices(se.Vertices) {
				emit(v, si)
			}
		}
	})
	t.vert2seg = utils.NewTable(nv, func(emit func(row, value int)) {
		for gi := 0; gi < b.m.NumSegments(); gi++ {
			seg := b.m.Segment(gi)
			emit(seg.Vertices[0], gi)
			if seg.Vertices[1] != seg.Vertices[0] {
				emit(seg.Vertices[1], gi)
			}
		}
	})
}

// buildNeighbors fills face -> volume elements, face -> surface element and
// surface element -> volume elements. It needs the face tables.
func (b *builder) buildNeighbors() error {
	var (
		t      = b.t
		nFaces = len(t.face2vert)
		nEl    = b.m.NumElements()
		nSe    = b.m.NumSurfaceElements()
	)
	t.face2vol = make([][2]int, nFaces)
	for f := range t.face2vol {
		t.face2vol[f] = [2]int{NoNeighbor, NoNeighbor}
	}
	for ei := 0; ei < nEl; ei++ {
		el := b.m.Element(ei)
		for lf := 0; lf < el.Type.NumFaces(); lf++ {
			f := t.elFaces[ei][lf].Index()
			switch nb := &t.face2vol[f]; {
			case nb[0] == NoNeighbor:
				nb[0] = ei
			case nb[1] == NoNeighbor:
				nb[1] = ei
			default:
				return &ConsistencyError{
					Kind:     NonManifoldFace,
					Entity:   VolumeElement,
					Index:    ei,
					Local:    lf,
					Vertices: append([]int(nil), faceCycle(t.face2vert[f])...),
					Detail:   fmt.Sprintf("global face %d already joins elements %d and %d", f, nb[0], nb[1]),
				}
			}
		}
	}

	t.face2surf = make([]int, nFaces)
	for f := range t.face2surf {
		t.face2surf[f] = NoNeighbor
	}
	t.surf2vol = make([][2]int, nSe)
	for si := 0; si < nSe; si++ {
		f := t.seFaces[si].Index()
		if t.face2surf[f] == NoNeighbor {
			t.face2surf[f] = si
		}
		nb := t.face2vol[f]
		t.surf2vol[si] = nb
		if nEl == 0 {
			continue
		}
		se := b.m.SurfaceElement(si)
		if nb[0] == NoNeighbor {
			return &ConsistencyError{
				Kind:     OrphanSurfaceElement,
				Entity:   SurfaceElementEntity,
				Index:    si,
				Local:    -1,
				Vertices: append([]int(nil), se.Type.CornerVertices(se.Vertices)...),
			}
		}
		if se.Owner != mesh.NoOwner && se.Owner != nb[0] && se.Owner != nb[1] {
			return &ConsistencyError{
				Kind:     OwnerMismatch,
				Entity:   SurfaceElementEntity,
				Index:    si,
				Local:    -1,
				Vertices: append([]int(nil), se.Type.CornerVertices(se.Vertices)...),
				Detail:   fmt.Sprintf("owner %d, face neighbors %v", se.Owner, nb),
			}
		}
	}
	return nil
}
