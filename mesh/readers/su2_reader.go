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

// ReadSU2 reads an SU2 native format file. Markers become boundary tags
// numbered from 1 in file order.
func ReadSU2(filename string) (*mesh.Mesh, error) {
	return readFile(filename, readSU2)
}

func readSU2(r io.Reader) (*mesh.Mesh, error) {
	var (
		scanner  = newScanner(r)
		msh      = mesh.NewMesh()
		entities []entity
		ndime    int

		hasNDIME, hasNPOIN bool
	)

	for scanner.Scan() {
		line := su2Line(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "NDIME="):
			hasNDIME = true
			if _, err := fmt.Sscanf(line, "NDIME=%d", &ndime); err != nil {
				return nil, fmt.Errorf("invalid NDIME line: %s", line)
			}
			if ndime != 2 && ndime != 3 {
				return nil, fmt.Errorf("unsupported dimension: NDIME=%d", ndime)
			}

		case strings.HasPrefix(line, "NPOIN="):
			if !hasNDIME {
				return nil, fmt.Errorf("NPOIN= before NDIME=")
			}
			hasNPOIN = true
			var npoin int
			if _, err := fmt.Sscanf(line, "NPOIN=%d", &npoin); err != nil {
				return nil, fmt.Errorf("invalid NPOIN line: %s", line)
			}
			if err := readSU2Points(scanner, msh, npoin, ndime); err != nil {
				return nil, err
			}

		case strings.HasPrefix(line, "NELEM="):
			var nelem int
			if _, err := fmt.Sscanf(line, "NELEM=%d", &nelem); err != nil {
				return nil, fmt.Errorf("invalid NELEM line: %s", line)
			}
			for i := 0; i < nelem; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading elements")
				}
				e, err := parseSU2Element(scanner.Text())
				if err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
				entities = append(entities, e)
			}

		case strings.HasPrefix(line, "NMARK="):
			var nmark int
			if _, err := fmt.Sscanf(line, "NMARK=%d", &nmark); err != nil {
				return nil, fmt.Errorf("invalid NMARK line: %s", line)
			}
			for i := 0; i < nmark; i++ {
				marked, err := readSU2Marker(scanner, msh, i+1)
				if err != nil {
					return nil, err
				}
				entities = append(entities, marked...)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	if !hasNDIME {
		return nil, fmt.Errorf("missing required NDIME= section")
	}
	if !hasNPOIN {
		return nil, fmt.Errorf("missing required NPOIN= section")
	}

	if err := addEntities(msh, entities); err != nil {
		return nil, err
	}
	return msh, nil
}

// su2Line strips comments and surrounding space
func su2Line(line string) string {
	if idx := strings.Index(line, "%"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

func readSU2Points(scanner *bufio.Scanner, msh *mesh.Mesh, npoin, ndime int) error {
	for i := 0; i < npoin; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading nodes")
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < ndime {
			return fmt.Errorf("invalid node line: expected at least %d coordinates", ndime)
		}

		coords := make([]float64, ndime)
		for j := range coords {
			var err error
			if coords[j], err = strconv.ParseFloat(fields[j], 64); err != nil {
				return fmt.Errorf("invalid coordinate: %w", err)
			}
		}
		// Node IDs are implicit and 0-based; a trailing legacy ID is ignored
		msh.AddNode(i, coords)
	}
	return nil
}

// parseSU2Element parses one element line. Vertex ranges are checked once
// the mesh is assembled, since NELEM usually precedes NPOIN.
func parseSU2Element(line string) (entity, error) {
	fields := strings.Fields(su2Line(line))
	if len(fields) < 2 {
		return entity{}, fmt.Errorf("invalid element line")
	}

	su2Type, err := strconv.Atoi(fields[0])
	if err != nil {
		return entity{}, fmt.Errorf("invalid element type: %w", err)
	}
	etype, ok := su2ElementTypeMap[su2Type]
	if !ok {
		return entity{}, fmt.Errorf("unknown element type: %d", su2Type)
	}

	numNodes := etype.GetNumNodes()
	if len(fields) < numNodes+1 {
		return entity{}, fmt.Errorf("element type %v expects %d nodes, got %d fields",
			etype, numNodes, len(fields)-1)
	}

	verts := make([]int, numNodes)
	for j := range verts {
		if verts[j], err = strconv.Atoi(fields[1+j]); err != nil {
			return entity{}, fmt.Errorf("invalid node index: %w", err)
		}
	}
	return entity{etype: etype, verts: verts, owner: mesh.NoOwner}, nil
}

func readSU2Marker(scanner *bufio.Scanner, msh *mesh.Mesh, marker int) ([]entity, error) {
	if !scanner.Scan() {
		return nil, fmt.Errorf("unexpected EOF reading marker %d", marker)
	}
	tagLine := su2Line(scanner.Text())
	if !strings.HasPrefix(tagLine, "MARKER_TAG=") {
		return nil, fmt.Errorf("expected MARKER_TAG=, got: %s", tagLine)
	}
	tagName := strings.TrimSpace(strings.TrimPrefix(tagLine, "MARKER_TAG="))

	if !scanner.Scan() {
		return nil, fmt.Errorf("unexpected EOF reading marker elements for %s", tagName)
	}
	var nMarkerElems int
	if _, err := fmt.Sscanf(su2Line(scanner.Text()), "MARKER_ELEMS=%d", &nMarkerElems); err != nil {
		return nil, fmt.Errorf("invalid MARKER_ELEMS line: %s", scanner.Text())
	}
	msh.BoundaryTags[marker] = tagName

	entities := make([]entity, 0, nMarkerElems)
	for j := 0; j < nMarkerElems; j++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected EOF reading boundary elements")
		}
		e, err := parseSU2Element(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("marker %s element %d: %w", tagName, j, err)
		}
		if e.etype.GetDimension() == 3 {
			return nil, fmt.Errorf("marker %s element %d: volume element in marker", tagName, j)
		}
		e.tag = marker
		entities = append(entities, e)
	}
	return entities, nil
}

// su2ElementTypeMap maps SU2/VTK element type identifiers to our ElementType
var su2ElementTypeMap = map[int]utils.ElementType{
	3:  utils.Line,     // VTK_LINE
	5:  utils.Triangle, // VTK_TRIANGLE
	9:  utils.Quad,     // VTK_QUAD
	10: utils.Tet,      // VTK_TETRA
	12: utils.Hex,      // VTK_HEXAHEDRON
	13: utils.Prism,    // VTK_WEDGE
	14: utils.Pyramid,  // VTK_PYRAMID
}
