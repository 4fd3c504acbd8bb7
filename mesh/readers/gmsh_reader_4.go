package readers

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/notargets/meshtopo/mesh"
)

// ReadGmsh4 reads a Gmsh MSH file format version 4.1, ASCII only
func ReadGmsh4(filename string) (*mesh.Mesh, error) {
	return readFile(filename, readGmsh4)
}

// entityKey identifies a geometric entity, tags are unique per dimension
type entityKey struct {
	dim, tag int
}

func readGmsh4(r io.Reader) (*mesh.Mesh, error) {
	var (
		scanner  = newScanner(r)
		msh      = mesh.NewMesh()
		entities []entity
		sawNodes bool

		// First physical tag of every geometric entity that has one
		physical = make(map[entityKey]int)
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "$MeshFormat":
			if err := readMeshFormat4(scanner); err != nil {
				return nil, err
			}

		case "$PhysicalNames":
			if err := readPhysicalNames(scanner, msh); err != nil {
				return nil, err
			}

		case "$Entities":
			if err := readEntities4(scanner, physical); err != nil {
				return nil, err
			}

		case "$Nodes":
			if err := readNodes4(scanner, msh); err != nil {
				return nil, err
			}
			sawNodes = true

		case "$Elements":
			if !sawNodes {
				return nil, fmt.Errorf("$Elements before $Nodes")
			}
			var err error
			if entities, err = readElements4(scanner, msh, physical); err != nil {
				return nil, err
			}

		default:
			// Partitioned entities, periodic, ghost, data and unknown sections
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

// readMeshFormat4 checks the MeshFormat section. Version 4.0 orders the
// block headers differently and is not read.
func readMeshFormat4(scanner *bufio.Scanner) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}

	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}
	if !strings.HasPrefix(parts[0], "4.1") {
		return fmt.Errorf("unsupported Gmsh format version: %s", parts[0])
	}
	if parts[1] != "0" {
		return fmt.Errorf("binary Gmsh files are not supported")
	}

	skipTo(scanner, "$EndMeshFormat")
	return nil
}

// readEntities4 records the physical tag of each geometric entity. Points
// carry a coordinate, the other dimensions a bounding box, then the
// physical tags; bounding entities follow and are ignored.
func readEntities4(scanner *bufio.Scanner, physical map[entityKey]int) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Entities")
	}

	// numPoints numCurves numSurfaces numVolumes
	counts := strings.Fields(scanner.Text())
	if len(counts) < 4 {
		return fmt.Errorf("invalid entity counts")
	}

	for dim := 0; dim <= 3; dim++ {
		num, err := strconv.Atoi(counts[dim])
		if err != nil {
			return fmt.Errorf("invalid entity count %q: %w", counts[dim], err)
		}
		// Position of numPhysicalTags
		pos := 7
		if dim == 0 {
			pos = 4
		}
		for i := 0; i < num; i++ {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading dimension %d entities", dim)
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) < pos+1 {
				return fmt.Errorf("invalid dimension %d entity: %s", dim, scanner.Text())
			}
			tag, _ := strconv.Atoi(fields[0])
			numPhysTags, _ := strconv.Atoi(fields[pos])
			if numPhysTags > 0 && pos+1 < len(fields) {
				physical[entityKey{dim, tag}], _ = strconv.Atoi(fields[pos+1])
			}
		}
	}

	skipTo(scanner, "$EndEntities")
	return nil
}

// readNodes4 reads the entity blocks of the Nodes section: a block header,
// the node tags, then one coordinate line per node.
func readNodes4(scanner *bufio.Scanner, msh *mesh.Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}

	// numEntityBlocks numNodes minNodeTag maxNodeTag
	header := strings.Fields(scanner.Text())
	if len(header) < 4 {
		return fmt.Errorf("invalid Nodes header")
	}
	numEntityBlocks, err := strconv.Atoi(header[0])
	if err != nil {
		return fmt.Errorf("invalid node block count: %w", err)
	}

	for i := 0; i < numEntityBlocks; i++ {
		// entityDim entityTag parametric numNodesInBlock
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in node entity block %d", i)
		}
		blockHeader := strings.Fields(scanner.Text())
		if len(blockHeader) < 4 {
			return fmt.Errorf("invalid node block header: %s", scanner.Text())
		}
		numNodesInBlock, err := strconv.Atoi(blockHeader[3])
		if err != nil {
			return fmt.Errorf("node block %d: invalid node count: %w", i, err)
		}

		nodeTags := make([]int, numNodesInBlock)
		for j := range nodeTags {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading node tags")
			}
			if nodeTags[j], err = strconv.Atoi(strings.TrimSpace(scanner.Text())); err != nil {
				return fmt.Errorf("node block %d: invalid node tag: %w", i, err)
			}
		}

		// Parametric coordinates, if any, follow x y z and are ignored
		for _, nodeID := range nodeTags {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading node coordinates")
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) < 3 {
				return fmt.Errorf("node %d: invalid coordinate line: %s", nodeID, scanner.Text())
			}
			coords := make([]float64, 3)
			for k := range coords {
				if coords[k], err = strconv.ParseFloat(fields[k], 64); err != nil {
					return fmt.Errorf("node %d: invalid coordinate: %w", nodeID, err)
				}
			}
			msh.AddNode(nodeID, coords)
		}
	}

	skipTo(scanner, "$EndNodes")
	return nil
}

// readElements4 reads the entity blocks of the Elements section. Elements
// take the physical tag of their geometric entity; blocks of unknown
// element types are skipped.
func readElements4(scanner *bufio.Scanner, msh *mesh.Mesh, physical map[entityKey]int) ([]entity, error) {
	if !scanner.Scan() {
		return nil, fmt.Errorf("unexpected EOF in Elements")
	}

	// numEntityBlocks numElements minElementTag maxElementTag
	header := strings.Fields(scanner.Text())
	if len(header) < 4 {
		return nil, fmt.Errorf("invalid Elements header")
	}
	numEntityBlocks, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, fmt.Errorf("invalid element block count: %w", err)
	}
	numElements, _ := strconv.Atoi(header[1])
	entities := make([]entity, 0, max(numElements, 0))

	for i := 0; i < numEntityBlocks; i++ {
		// entityDim entityTag elementType numElementsInBlock
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected EOF in element entity block %d", i)
		}
		blockHeader := strings.Fields(scanner.Text())
		if len(blockHeader) < 4 {
			return nil, fmt.Errorf("invalid element block header: %s", scanner.Text())
		}
		entityDim, _ := strconv.Atoi(blockHeader[0])
		entityTag, _ := strconv.Atoi(blockHeader[1])
		gmshType, _ := strconv.Atoi(blockHeader[2])
		numElemsInBlock, err := strconv.Atoi(blockHeader[3])
		if err != nil {
			return nil, fmt.Errorf("element block %d: invalid element count: %w", i, err)
		}

		etype, ok := gmshElementTypes[gmshType]
		if !ok {
			for j := 0; j < numElemsInBlock; j++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading elements")
				}
			}
			continue
		}
		tag := physical[entityKey{entityDim, entityTag}]
		expectedNodes := etype.GetNumNodes()

		for j := 0; j < numElemsInBlock; j++ {
			if !scanner.Scan() {
				return nil, fmt.Errorf("unexpected EOF reading elements")
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) < 1+expectedNodes {
				return nil, fmt.Errorf("invalid element line: expected %d nodes, got %d",
					expectedNodes, len(fields)-1)
			}
			elemID, _ := strconv.Atoi(fields[0])

			verts := make([]int, expectedNodes)
			for k := range verts {
				nodeID, _ := strconv.Atoi(fields[1+k])
				idx, ok := msh.GetNodeIndex(nodeID)
				if !ok {
					return nil, fmt.Errorf("element %d: unknown node %d", elemID, nodeID)
				}
				verts[k] = idx
			}

			entities = append(entities, entity{
				etype: etype,
				verts: verts,
				tag:   tag,
				owner: mesh.NoOwner,
			})
		}
	}

	skipTo(scanner, "$EndElements")
	return entities, nil
}
