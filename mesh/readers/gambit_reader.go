package readers

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/notargets/meshtopo/mesh"
	"github.com/notargets/meshtopo/utils"
)

// ReadGambitNeutral reads a Gambit neutral file (.neu). Element groups become
// element tags, element/face boundary conditions become surface elements
// owned by the element they were given on.
func ReadGambitNeutral(filename string) (*mesh.Mesh, error) {
	return readFile(filename, readGambitNeutral)
}

type gambitElement struct {
	shape gambitShape
	nodes []int // Gambit node order, 0-based vertex indices
	tag   int
}

func readGambitNeutral(r io.Reader) (*mesh.Mesh, error) {
	var (
		scanner  = newScanner(r)
		msh      = mesh.NewMesh()
		elements []gambitElement
		bcFaces  []entity

		// Control variables from header
		numnp, nelem, ngrps, nbsets int
		sawHeader                   bool
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.Contains(line, "NUMNP") && strings.Contains(line, "NELEM") {
			// Next line contains the actual values
			if !scanner.Scan() {
				return nil, fmt.Errorf("unexpected EOF after control header")
			}
			values := strings.Fields(scanner.Text())
			if len(values) < 4 {
				return nil, fmt.Errorf("invalid control info line: %s", scanner.Text())
			}
			numnp, _ = strconv.Atoi(values[0])
			nelem, _ = strconv.Atoi(values[1])
			ngrps, _ = strconv.Atoi(values[2])
			nbsets, _ = strconv.Atoi(values[3])
			sawHeader = true
			break
		}
	}
	if !sawHeader {
		return nil, fmt.Errorf("missing NUMNP control header")
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "ENDOFSECTION":
			continue

		case strings.Contains(line, "NODAL COORDINATES"):
			if err := readGambitNodes(scanner, msh, numnp); err != nil {
				return nil, err
			}

		case strings.Contains(line, "ELEMENTS/CELLS"):
			var err error
			if elements, err = readGambitElements(scanner, msh, nelem); err != nil {
				return nil, err
			}

		case strings.Contains(line, "ELEMENT GROUP"):
			if err := readGambitGroup(scanner, elements); err != nil {
				return nil, err
			}
			ngrps--

		case strings.Contains(line, "BOUNDARY CONDITIONS"):
			faces, err := readGambitBoundary(scanner, msh, elements, len(msh.BoundaryTags)+1)
			if err != nil {
				return nil, err
			}
			bcFaces = append(bcFaces, faces...)
			nbsets--
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	if ngrps > 0 || nbsets > 0 {
		return nil, fmt.Errorf("missing %d element groups and %d boundary sets", max(ngrps, 0), max(nbsets, 0))
	}

	// Boundary owners are Gambit element positions; volume elements are
	// numbered apart from the 2D cells, in file order.
	volIndex := make([]int, len(elements))
	nvol := 0
	for i, el := range elements {
		volIndex[i] = mesh.NoOwner
		if el.shape.etype.GetDimension() == 3 {
			volIndex[i] = nvol
			nvol++
		}
	}
	for i := range bcFaces {
		bcFaces[i].owner = volIndex[bcFaces[i].owner]
	}

	entities := make([]entity, 0, len(elements)+len(bcFaces))
	for _, el := range elements {
		entities = append(entities, entity{
			etype: el.shape.etype,
			verts: el.shape.toLocal(el.nodes),
			tag:   el.tag,
			owner: mesh.NoOwner,
		})
	}
	if err := addEntities(msh, append(entities, bcFaces...)); err != nil {
		return nil, err
	}
	return msh, nil
}

func readGambitNodes(scanner *bufio.Scanner, msh *mesh.Mesh, numnp int) error {
	for i := 0; i < numnp; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading nodes")
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return fmt.Errorf("invalid node line: %s", scanner.Text())
		}
		nodeID, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("invalid node id %q: %w", fields[0], err)
		}
		// 2D files carry two coordinates
		coords := make([]float64, len(fields)-1)
		for j := range coords {
			if coords[j], err = strconv.ParseFloat(fields[1+j], 64); err != nil {
				return fmt.Errorf("node %d: invalid coordinate: %w", nodeID, err)
			}
		}
		msh.AddNode(nodeID, coords)
	}
	return nil
}

func readGambitElements(scanner *bufio.Scanner, msh *mesh.Mesh, nelem int) ([]gambitElement, error) {
	elements := make([]gambitElement, 0, nelem)
	for i := 0; i < nelem; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected EOF reading elements")
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return nil, fmt.Errorf("invalid element line: %s", scanner.Text())
		}
		elemID, _ := strconv.Atoi(fields[0])
		gambitType, _ := strconv.Atoi(fields[1])
		numNodes, _ := strconv.Atoi(fields[2])

		shape, ok := gambitShapes[gambitType]
		if !ok {
			return nil, fmt.Errorf("element %d: unsupported Gambit element type %d", elemID, gambitType)
		}
		if numNodes != shape.etype.NumVertices() {
			return nil, fmt.Errorf("element %d: %v with %d nodes is not supported", elemID, shape.etype, numNodes)
		}

		// Long node lists wrap onto continuation lines
		ids := fields[3:]
		for len(ids) < numNodes {
			if !scanner.Scan() {
				return nil, fmt.Errorf("unexpected EOF reading element %d", elemID)
			}
			ids = append(ids, strings.Fields(scanner.Text())...)
		}

		nodes := make([]int, numNodes)
		for j := range nodes {
			nodeID, _ := strconv.Atoi(ids[j])
			idx, ok := msh.GetNodeIndex(nodeID)
			if !ok {
				return nil, fmt.Errorf("element %d: unknown node %d", elemID, nodeID)
			}
			nodes[j] = idx
		}
		elements = append(elements, gambitElement{shape: shape, nodes: nodes})
	}
	return elements, nil
}

// readGambitGroup reads one ELEMENT GROUP section
func readGambitGroup(scanner *bufio.Scanner, elements []gambitElement) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in element group")
	}
	var groupID, numElems, nflags int
	parts := strings.Fields(scanner.Text())
	for i := 0; i < len(parts)-1; i++ {
		switch parts[i] {
		case "GROUP:":
			groupID, _ = strconv.Atoi(parts[i+1])
		case "ELEMENTS:":
			numElems, _ = strconv.Atoi(parts[i+1])
		case "NFLAGS:":
			nflags, _ = strconv.Atoi(parts[i+1])
		}
	}

	// Entity name, then the flags
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in element group %d", groupID)
	}
	if nflags > 0 && !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in element group %d", groupID)
	}

	for read := 0; read < numElems; {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in element group %d", groupID)
		}
		for _, field := range strings.Fields(scanner.Text()) {
			elemID, err := strconv.Atoi(field)
			if err != nil || elemID < 1 || elemID > len(elements) {
				return fmt.Errorf("element group %d: invalid element %q", groupID, field)
			}
			elements[elemID-1].tag = groupID
			read++
		}
	}
	return nil
}

// readGambitBoundary reads one BOUNDARY CONDITIONS set. Element/face entries
// become surface elements (segments in 2D) tagged with marker, node sets are
// skipped.
func readGambitBoundary(scanner *bufio.Scanner, msh *mesh.Mesh, elements []gambitElement,
	marker int) ([]entity, error) {
	if !scanner.Scan() {
		return nil, fmt.Errorf("unexpected EOF in boundary conditions")
	}
	// Format: NAME ITYPE NENTRY NVALUES IBCODE1 ...
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid boundary condition line: %s", scanner.Text())
	}
	name := parts[0]
	itype, _ := strconv.Atoi(parts[1])
	nentry, _ := strconv.Atoi(parts[2])
	msh.BoundaryTags[marker] = name

	var faces []entity
	for i := 0; i < nentry; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected EOF in boundary condition %s", name)
		}
		if itype != 1 {
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return nil, fmt.Errorf("boundary condition %s: invalid entry: %s", name, scanner.Text())
		}
		elemID, _ := strconv.Atoi(fields[0])
		faceID, _ := strconv.Atoi(fields[2])
		if elemID < 1 || elemID > len(elements) {
			return nil, fmt.Errorf("boundary condition %s: unknown element %d", name, elemID)
		}
		el := elements[elemID-1]
		if faceID < 1 || faceID > len(el.shape.faces) {
			return nil, fmt.Errorf("boundary condition %s: element %d has no face %d", name, elemID, faceID)
		}
		face := el.shape.faces[faceID-1]
		verts := make([]int, len(face))
		for j, lv := range face {
			verts[j] = el.nodes[lv]
		}
		etype := utils.Triangle
		switch len(verts) {
		case 2:
			etype = utils.Line
		case 4:
			etype = utils.Quad
		}
		faces = append(faces, entity{etype: etype, verts: verts, tag: marker, owner: elemID - 1})
	}
	return faces, nil
}

// gambitShape describes a Gambit element: its node order relative to ours
// and its faces (edges for 2D shapes) in Gambit node numbering.
type gambitShape struct {
	etype utils.ElementType
	perm  []int // local vertex i is Gambit node perm[i]
	faces [][]int
}

func (s gambitShape) toLocal(nodes []int) []int {
	verts := make([]int, len(nodes))
	for i := range verts {
		verts[i] = nodes[s.perm[i]]
	}
	return verts
}

// Gambit numbers brick and pyramid base nodes lexicographically, the
// quadrilateral counterclockwise.
var gambitShapes = map[int]gambitShape{
	1: {etype: utils.Line, perm: []int{0, 1}},
	2: {
		etype: utils.Quad,
		perm:  []int{0, 1, 2, 3},
		faces: [][]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
	},
	3: {
		etype: utils.Triangle,
		perm:  []int{0, 1, 2},
		faces: [][]int{{0, 1}, {1, 2}, {2, 0}},
	},
	4: {
		etype: utils.Hex,
		perm:  []int{0, 1, 3, 2, 4, 5, 7, 6},
		faces: [][]int{
			{0, 1, 5, 4}, {1, 3, 7, 5}, {3, 2, 6, 7},
			{2, 0, 4, 6}, {0, 2, 3, 1}, {4, 5, 7, 6},
		},
	},
	5: {
		etype: utils.Prism,
		perm:  []int{0, 1, 2, 3, 4, 5},
		faces: [][]int{
			{0, 1, 4, 3}, {1, 2, 5, 4}, {2, 0, 3, 5},
			{0, 2, 1}, {3, 4, 5},
		},
	},
	6: {
		etype: utils.Tet,
		perm:  []int{0, 1, 2, 3},
		faces: [][]int{{1, 0, 2}, {0, 1, 3}, {1, 2, 3}, {2, 0, 3}},
	},
	7: {
		etype: utils.Pyramid,
		perm:  []int{0, 1, 3, 2, 4},
		faces: [][]int{
			{0, 2, 3, 1}, {0, 1, 4}, {1, 3, 4}, {3, 2, 4}, {2, 0, 4},
		},
	},
}
