package readers

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/notargets/meshtopo/mesh"
)

// ReadGmsh22 reads a Gmsh MSH file format version 2.2, ASCII only
func ReadGmsh22(filename string) (*mesh.Mesh, error) {
	return readFile(filename, readGmsh22)
}

func readGmsh22(r io.Reader) (*mesh.Mesh, error) {
	var (
		scanner  = newScanner(r)
		msh      = mesh.NewMesh()
		entities []entity
		sawNodes bool
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "$MeshFormat":
			if err := readMeshFormat22(scanner); err != nil {
				return nil, err
			}

		case "$PhysicalNames":
			if err := readPhysicalNames(scanner, msh); err != nil {
				return nil, err
			}

		case "$Nodes":
			if err := readNodes22(scanner, msh); err != nil {
				return nil, err
			}
			sawNodes = true

		case "$Elements":
			if !sawNodes {
				return nil, fmt.Errorf("$Elements before $Nodes")
			}
			var err error
			if entities, err = readElements22(scanner, msh); err != nil {
				return nil, err
			}

		default:
			// Periodic, data and unknown sections
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				skipTo(scanner, "$End"+line[1:])
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	if err := addEntities(msh, entities); err != nil {
		return nil, err
	}
	return msh, nil
}

// readMeshFormat22 checks the MeshFormat section
func readMeshFormat22(scanner *bufio.Scanner) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}

	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}
	if !strings.HasPrefix(parts[0], "2.") {
		return fmt.Errorf("unsupported Gmsh format version: %s", parts[0])
	}
	if parts[1] != "0" {
		return fmt.Errorf("binary Gmsh files are not supported")
	}

	skipTo(scanner, "$EndMeshFormat")
	return nil
}

// readPhysicalNames stores physical group names as boundary tag names
func readPhysicalNames(scanner *bufio.Scanner, msh *mesh.Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in PhysicalNames")
	}

	numNames, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid PhysicalNames count: %w", err)
	}

	for i := 0; i < numNames; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading physical names")
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			continue
		}
		tag, _ := strconv.Atoi(parts[1])
		// Names may contain spaces
		name := strings.Trim(strings.Join(parts[2:], " "), "\"")
		msh.BoundaryTags[tag] = name
	}

	skipTo(scanner, "$EndPhysicalNames")
	return nil
}

// readNodes22 reads nodes in v2.2 format
func readNodes22(scanner *bufio.Scanner, msh *mesh.Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}

	numNodes, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid node count: %w", err)
	}

	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading nodes")
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 {
			return fmt.Errorf("invalid node line: %s", scanner.Text())
		}

		nodeID, err := strconv.Atoi(parts[0])
		if err != nil {
			return fmt.Errorf("invalid node id %q: %w", parts[0], err)
		}
		coords := make([]float64, 3)
		for j := range coords {
			if coords[j], err = strconv.ParseFloat(parts[1+j], 64); err != nil {
				return fmt.Errorf("node %d: invalid coordinate: %w", nodeID, err)
			}
		}
		msh.AddNode(nodeID, coords)
	}

	skipTo(scanner, "$EndNodes")
	return nil
}

// readElements22 reads elements in v2.2 format. Unknown element types are
// skipped.
func readElements22(scanner *bufio.Scanner, msh *mesh.Mesh) ([]entity, error) {
	if !scanner.Scan() {
		return nil, fmt.Errorf("unexpected EOF in Elements")
	}

	numElements, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return nil, fmt.Errorf("invalid element count: %w", err)
	}
	entities := make([]entity, 0, numElements)

	for i := 0; i < numElements; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected EOF reading elements")
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			return nil, fmt.Errorf("invalid element line")
		}

		elemID, _ := strconv.Atoi(parts[0])
		elemType, _ := strconv.Atoi(parts[1])
		numTags, _ := strconv.Atoi(parts[2])

		if len(parts) < 3+numTags {
			return nil, fmt.Errorf("element %d: invalid element tags", elemID)
		}

		// First tag is the physical group
		var physicalTag int
		if numTags > 0 {
			physicalTag, _ = strconv.Atoi(parts[3])
		}

		etype, ok := gmshElementTypes[elemType]
		if !ok {
			continue
		}

		expectedNodes := etype.GetNumNodes()
		nodeStart := 3 + numTags
		if len(parts) < nodeStart+expectedNodes {
			return nil, fmt.Errorf("element %d: expected %d nodes, got %d",
				elemID, expectedNodes, len(parts)-nodeStart)
		}

		verts := make([]int, expectedNodes)
		for j := range verts {
			nodeID, _ := strconv.Atoi(parts[nodeStart+j])
			idx, ok := msh.GetNodeIndex(nodeID)
			if !ok {
				return nil, fmt.Errorf("element %d: unknown node %d", elemID, nodeID)
			}
			verts[j] = idx
		}

		entities = append(entities, entity{
			etype: etype,
			verts: verts,
			tag:   physicalTag,
			owner: mesh.NoOwner,
		})
	}

	skipTo(scanner, "$EndElements")
	return entities, nil
}
