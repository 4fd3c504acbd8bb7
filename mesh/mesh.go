package mesh

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/notargets/meshtopo/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

// NoOwner marks a surface element without a known owning volume element
const NoOwner = -1

// Element is a volume element: a 3D reference shape and its global vertex
// indices, higher order nodes following the corner vertices.
type Element struct {
	Type     utils.ElementType
	Vertices []int
	Tag      int // Physical group
}

// SurfaceElement is a triangle or quadrilateral, usually on the boundary
type SurfaceElement struct {
	Type     utils.ElementType
	Vertices []int
	Owner    int // Owning volume element hint, NoOwner if unknown
	Tag      int // Boundary marker, see Mesh.BoundaryTags
}

// Segment is a boundary edge on a curve
type Segment struct {
	Vertices [2]int
	Tag      int
}

// Mesh is a minimal unstructured mesh container. Every mutation advances the
// modification counter returned by Timestamp.
type Mesh struct {
	// Geometry
	Vertices []r3.Vec

	// Element data
	Elements        []Element
	SurfaceElements []SurfaceElement
	Segments        []Segment

	BoundaryTags map[int]string // Boundary marker -> name
	NodeIDMap    map[int]int    // File node ID -> vertex index

	timestamp uint64
}

// NewMesh creates an empty mesh
func NewMesh() *Mesh {
	return &Mesh{
		BoundaryTags: make(map[int]string),
		NodeIDMap:    make(map[int]int),
	}
}

func (m *Mesh) NumVertices() int        { return len(m.Vertices) }
func (m *Mesh) NumElements() int        { return len(m.Elements) }
func (m *Mesh) NumSurfaceElements() int { return len(m.SurfaceElements) }
func (m *Mesh) NumSegments() int        { return len(m.Segments) }

func (m *Mesh) Element(ei int) Element               { return m.Elements[ei] }
func (m *Mesh) SurfaceElement(si int) SurfaceElement { return m.SurfaceElements[si] }
func (m *Mesh) Segment(gi int) Segment               { return m.Segments[gi] }

// Timestamp returns the modification counter
func (m *Mesh) Timestamp() uint64 { return m.timestamp }

// Touch advances the modification counter without changing the mesh
func (m *Mesh) Touch() { m.timestamp++ }

// AddVertex appends a vertex and returns its index
func (m *Mesh) AddVertex(x, y, z float64) int {
	m.Vertices = append(m.Vertices, r3.Vec{X: x, Y: y, Z: z})
	m.timestamp++
	return len(m.Vertices) - 1
}

// AddNode appends a vertex carrying a file node ID
func (m *Mesh) AddNode(nodeID int, coords []float64) int {
	var p r3.Vec
	switch len(coords) {
	case 3:
		p.Z = coords[2]
		fallthrough
	case 2:
		p.X, p.Y = coords[0], coords[1]
	}
	idx := m.AddVertex(p.X, p.Y, p.Z)
	m.NodeIDMap[nodeID] = idx
	return idx
}

// GetNodeIndex maps a file node ID to a vertex index
func (m *Mesh) GetNodeIndex(nodeID int) (idx int, ok bool) {
	idx, ok = m.NodeIDMap[nodeID]
	return
}

// AddElement appends a volume element
func (m *Mesh) AddElement(et utils.ElementType, verts []int, tag int) (int, error) {
	if err := m.checkEntity(et, 3, verts); err != nil {
		return -1, err
	}
	m.Elements = append(m.Elements, Element{Type: et, Vertices: copyInts(verts), Tag: tag})
	m.timestamp++
	return len(m.Elements) - 1, nil
}

// AddSurfaceElement appends a surface element. owner is a hint to the owning
// volume element, NoOwner if unknown.
func (m *Mesh) AddSurfaceElement(et utils.ElementType, verts []int, owner, tag int) (int, error) {
	if err := m.checkEntity(et, 2, verts); err != nil {
		return -1, err
	}
	if owner != NoOwner && (owner < 0 || owner >= len(m.Elements)) {
		return -1, fmt.Errorf("surface element owner %d out of range [0,%d)", owner, len(m.Elements))
	}
	m.SurfaceElements = append(m.SurfaceElements,
		SurfaceElement{Type: et, Vertices: copyInts(verts), Owner: owner, Tag: tag})
	m.timestamp++
	return len(m.SurfaceElements) - 1, nil
}

// AddSegment appends a boundary segment
func (m *Mesh) AddSegment(v0, v1, tag int) (int, error) {
	if err := m.checkEntity(utils.Line, 1, []int{v0, v1}); err != nil {
		return -1, err
	}
	m.Segments = append(m.Segments, Segment{Vertices: [2]int{v0, v1}, Tag: tag})
	m.timestamp++
	return len(m.Segments) - 1, nil
}

// SetElementVertices replaces the connectivity of a volume element
func (m *Mesh) SetElementVertices(ei int, verts []int) error {
	if ei < 0 || ei >= len(m.Elements) {
		return fmt.Errorf("element %d out of range [0,%d)", ei, len(m.Elements))
	}
	if err := m.checkEntity(m.Elements[ei].Type, 3, verts); err != nil {
		return err
	}
	m.Elements[ei].Vertices = copyInts(verts)
	m.timestamp++
	return nil
}

func (m *Mesh) checkEntity(et utils.ElementType, dim int, verts []int) error {
	if !et.IsValid() || et.GetDimension() != dim {
		return fmt.Errorf("element type %v is not a %dD reference shape", et, dim)
	}
	if len(verts) != et.GetNumNodes() {
		return fmt.Errorf("element type %v expects %d nodes, got %d", et, et.GetNumNodes(), len(verts))
	}
	for _, v := range verts {
		if v < 0 || v >= len(m.Vertices) {
			return fmt.Errorf("vertex index %d out of range [0,%d)", v, len(m.Vertices))
		}
	}
	return nil
}

// GetMeshDimension returns the highest element dimension present
func (m *Mesh) GetMeshDimension() int {
	switch {
	case len(m.Elements) > 0:
		return 3
	case len(m.SurfaceElements) > 0:
		return 2
	case len(m.Segments) > 0:
		return 1
	}
	return 0
}

// BoundingBox returns the min and max vertex coordinates
func (m *Mesh) BoundingBox() (lo, hi r3.Vec) {
	if len(m.Vertices) == 0 {
		return
	}
	lo = r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi = r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range m.Vertices {
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return
}

// ElementFaceVertices returns the global vertex cycle of a local face of a
// volume element, as seen from that element.
func (m *Mesh) ElementFaceVertices(ei, localFace int) []int {
	el := m.Elements[ei]
	f := el.Type.Faces()[localFace]
	n := 4
	if f[3] == utils.NoVertex {
		n = 3
	}
	verts := make([]int, n)
	for i := 0; i < n; i++ {
		verts[i] = el.Vertices[f[i]]
	}
	return verts
}

// AddBoundaryFaces appends a surface element for every volume element face
// not shared with another volume element, tagged with tag and owned by its
// element. It returns the number of surface elements added.
func (m *Mesh) AddBoundaryFaces(tag int) int {
	type faceUse struct {
		elem, local, count int
	}
	var (
		uses  = make(map[[4]int]*faceUse)
		order [][4]int
	)
	for ei, el := range m.Elements {
		for lf := 0; lf < el.Type.NumFaces(); lf++ {
			key := sortedKey(m.ElementFaceVertices(ei, lf))
			if u, ok := uses[key]; ok {
				u.count++
				continue
			}
			uses[key] = &faceUse{elem: ei, local: lf, count: 1}
			order = append(order, key)
		}
	}
	var added int
	for _, key := range order {
		u := uses[key]
		if u.count != 1 {
			continue
		}
		verts := m.ElementFaceVertices(u.elem, u.local)
		et := m.Elements[u.elem].Type.FaceType(u.local)
		if _, err := m.AddSurfaceElement(et, verts, u.elem, tag); err != nil {
			panic(err)
		}
		added++
	}
	return added
}

func sortedKey(verts []int) (key [4]int) {
	key = [4]int{utils.NoVertex, utils.NoVertex, utils.NoVertex, utils.NoVertex}
	s := copyInts(verts)
	sort.Ints(s)
	copy(key[:], s)
	return
}

func copyInts(a []int) []int {
	b := make([]int, len(a))
	copy(b, a)
	return b
}

// PrintStatistics writes entity counts, element and surface element counts
// per shape, and the boundary tag names.
func (m *Mesh) PrintStatistics(w io.Writer) {
	fmt.Fprintf(w, "Mesh Statistics:\n")
	fmt.Fprintf(w, "  Vertices: %d\n", m.NumVertices())
	fmt.Fprintf(w, "  Elements: %d\n", m.NumElements())
	fmt.Fprintf(w, "  Surface elements: %d\n", m.NumSurfaceElements())
	fmt.Fprintf(w, "  Segments: %d\n", m.NumSegments())

	printTypes := func(title string, typeCounts map[utils.ElementType]int) {
		if len(typeCounts) == 0 {
			return
		}
		types := make([]utils.ElementType, 0, len(typeCounts))
		for t := range typeCounts {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
		fmt.Fprintf(w, "  %s:\n", title)
		for _, t := range types {
			fmt.Fprintf(w, "    %s: %d\n", t, typeCounts[t])
		}
	}
	elTypes := make(map[utils.ElementType]int)
	for _, el := range m.Elements {
		elTypes[el.Type]++
	}
	printTypes("Element types", elTypes)
	seTypes := make(map[utils.ElementType]int)
	for _, se := range m.SurfaceElements {
		seTypes[se.Type]++
	}
	printTypes("Surface element types", seTypes)

	if len(m.BoundaryTags) > 0 {
		tags := make([]int, 0, len(m.BoundaryTags))
		for tag := range m.BoundaryTags {
			tags = append(tags, tag)
		}
		sort.Ints(tags)
		fmt.Fprintf(w, "  Boundary tags:\n")
		for _, tag := range tags {
			fmt.Fprintf(w, "    %d: %s\n", tag, m.BoundaryTags[tag])
		}
	}
}
