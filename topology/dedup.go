package topology

import (
	"fmt"

	"github.com/notargets/meshtopo/utils"
)

// tables holds every derived table of one build. A published tables value is
// never modified.
type tables struct {
	timestamp          uint64
	hasEdges, hasFaces bool
	nVertices          int

	// Global edges: canonical (ascending) vertex pairs
	edge2vert [][2]int
	edgeMap   map[[2]int]int

	// Global faces: canonical vertex cycles, 4th slot utils.NoVertex for triangles
	face2vert [][4]int

	// Local to global maps
	elEdges  [][12]EdgeRef
	elFaces  [][6]FaceRef
	seEdges  [][4]EdgeRef
	seFaces  []FaceRef
	segEdges []EdgeRef

	// Incidence
	vert2el, vert2se, vert2seg utils.Table
	face2vol                   [][2]int
	surf2vol                   [][2]int
	face2surf                  []int
}

type builder struct {
	m       Mesh
	t       *tables
	faceMap map[[4]int]int // sorted vertex set -> global face
}

func build(m Mesh, withEdges, withFaces bool) (*tables, error) {
	b := &builder{
		m: m,
		t: &tables{
			timestamp: m.Timestamp(),
			hasEdges:  withEdges,
			hasFaces:  withFaces,
			nVertices: m.NumVertices(),
		},
	}
	b.checkEntities()
	if withEdges {
		b.buildEdges()
	}
	if withFaces {
		if err := b.buildFaces(); err != nil {
			return nil, err
		}
	}
	b.buildVertexIncidence()
	if withFaces {
		if err := b.buildNeighbors(); err != nil {
			return nil, err
		}
	}
	return b.t, nil
}

// checkEntities enforces the caller contract on the mesh view: known
// shapes, enough nodes and vertex indices in range.
func (b *builder) checkEntities() {
	nv := b.t.nVertices
	check := func(kind EntityKind, i int, et utils.ElementType, dim int, verts []int) {
		if !et.IsValid() || et.GetDimension() != dim {
			panic(fmt.Sprintf("topology: %s %d has shape %v, want a %dD shape", kind, i, et, dim))
		}
		if len(verts) < et.NumVertices() {
			panic(fmt.Sprintf("topology: %s %d has %d vertices, %v needs %d",
				kind, i, len(verts), et, et.NumVertices()))
		}
		for _, v := range et.CornerVertices(verts) {
			if v < 0 || v >= nv {
				panic(fmt.Sprintf("topology: %s %d vertex %d out of range [0,%d)", kind, i, v, nv))
			}
		}
	}
	for ei := 0; ei < b.m.NumElements(); ei++ {
		el := b.m.Element(ei)
		check(VolumeElement, ei, el.Type, 3, el.Vertices)
	}
	for si := 0; si < b.m.NumSurfaceElements(); si++ {
		se := b.m.SurfaceElement(si)
		check(SurfaceElementEntity, si, se.Type, 2, se.Vertices)
	}
	for gi := 0; gi < b.m.NumSegments(); gi++ {
		seg := b.m.Segment(gi)
		check(SegmentEntity, gi, utils.Line, 1, seg.Vertices[:])
	}
}

func (b *builder) buildEdges() {
	var (
		t     = b.t
		nEl   = b.m.NumElements()
		nSe   = b.m.NumSurfaceElements()
		nSeg  = b.m.NumSegments()
		guess = nEl + nSe + nSeg + t.nVertices
	)
	t.edgeMap = make(map[[2]int]int, guess)
	t.edge2vert = make([][2]int, 0, guess)

	t.elEdges = make([][12]EdgeRef, nEl)
	for ei := 0; ei < nEl; ei++ {
		el := b.m.Element(ei)
		for le, e := range el.Type.Edges() {
			t.elEdges[ei][le] = t.edgeRef(el.Vertices[e[0]], el.Vertices[e[1]])
		}
	}
	t.seEdges = make([][4]EdgeRef, nSe)
	for si := 0; si < nSe; si++ {
		se := b.m.SurfaceElement(si)
		for le, e := range se.Type.Edges() {
			t.seEdges[si][le] = t.edgeRef(se.Vertices[e[0]], se.Vertices[e[1]])
		}
	}
	t.segEdges = make([]EdgeRef, nSeg)
	for gi := 0; gi < nSeg; gi++ {
		seg := b.m.Segment(gi)
		t.segEdges[gi] = t.edgeRef(seg.Vertices[0], seg.Vertices[1])
	}
}

// edgeRef returns the global edge through v0 and v1, allocating it on first
// sight, oriented by the local order v0 -> v1.
func (t *tables) edgeRef(v0, v1 int) EdgeRef {
	key, reversed := [2]int{v0, v1}, false
	if v0 > v1 {
		key, reversed = [2]int{v1, v0}, true
	}
	idx, ok := t.edgeMap[key]
	if !ok {
		idx = len(t.edge2vert)
		t.edge2vert = append(t.edge2vert, key)
		t.edgeMap[key] = idx
	}
	return NewEdgeRef(idx, reversed)
}

func (b *builder) buildFaces() error {
	var (
		t   = b.t
		nEl = b.m.NumElements()
		nSe = b.m.NumSurfaceElements()
		buf [4]int
	)
	b.faceMap = make(map[[4]int]int, 2*nEl+nSe)
	t.face2vert = make([][4]int, 0, 2*nEl+nSe)

	t.elFaces = make([][6]FaceRef, nEl)
	for ei := 0; ei < nEl; ei++ {
		el := b.m.Element(ei)
		for lf, f := range el.Type.Faces() {
			local := faceVertices(f, el.Vertices, buf[:])
			ref, ok := b.faceRef(local)
			if !ok {
				return b.orientationError(VolumeElement, ei, lf, local)
			}
			t.elFaces[ei][lf] = ref
		}
	}
	t.seFaces = make([]FaceRef, nSe)
	for si := 0; si < nSe; si++ {
		se := b.m.SurfaceElement(si)
		local := faceVertices(se.Type.Faces()[0], se.Vertices, buf[:])
		ref, ok := b.faceRef(local)
		if !ok {
			return b.orientationError(SurfaceElementEntity, si, 0, local)
		}
		t.seFaces[si] = ref
	}
	return nil
}

// faceVertices maps a reference face onto global vertices, returning a
// 3 or 4 long view of buf.
func faceVertices(f [4]int, verts []int, buf []int) []int {
	n := 4
	if f[3] == utils.NoVertex {
		n = 3
	}
	for i := 0; i < n; i++ {
		buf[i] = verts[f[i]]
	}
	return buf[:n]
}

// faceRef looks up the face by its vertex set, allocating it with its
// canonical cycle on first sight. It reports false when the set is known but
// local is not a rotation or reflection of the stored cycle.
func (b *builder) faceRef(local []int) (FaceRef, bool) {
	var (
		t   = b.t
		n   = len(local)
		key = sortedFaceKey(local)
	)
	idx, ok := b.faceMap[key]
	if !ok {
		canon := [4]int{utils.NoVertex, utils.NoVertex, utils.NoVertex, utils.NoVertex}
		canonicalFace(local, canon[:n])
		idx = len(t.face2vert)
		t.face2vert = append(t.face2vert, canon)
		b.faceMap[key] = idx
	}
	code, ok := faceOrientation(t.face2vert[idx][:n], local)
	if !ok {
		return 0, false
	}
	return NewFaceRef(idx, code), true
}

func (b *builder) orientationError(kind EntityKind, i, lf int, local []int) error {
	verts := make([]int, len(local))
	copy(verts, local)
	idx := b.faceMap[sortedFaceKey(local)]
	return &ConsistencyError{
		Kind:     FaceOrientation,
		Entity:   kind,
		Index:    i,
		Local:    lf,
		Vertices: verts,
		Detail:   fmt.Sprintf("global face %d has cycle %v", idx, faceCycle(b.t.face2vert[idx])),
	}
}

// sortedFaceKey sorts a 3 or 4 vertex face ascending, the sentinel trailing
func sortedFaceKey(local []int) (key [4]int) {
	key = [4]int{utils.NoVertex, utils.NoVertex, utils.NoVertex, utils.NoVertex}
	n := copy(key[:], local)
	for i := 1; i < n; i++ {
		for j := i; j > 0 && key[j] < key[j-1]; j-- {
			key[j], key[j-1] = key[j-1], key[j]
		}
	}
	return
}

func faceCycle(f [4]int) []int {
	if f[3] == utils.NoVertex {
		return f[:3]
	}
	return f[:]
}
