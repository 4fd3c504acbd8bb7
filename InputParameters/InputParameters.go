package InputParameters

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
)

// BuildParameters are obtained from the YAML input file
type BuildParameters struct {
	Title      string `json:"Title"`
	BuildEdges bool   `json:"BuildEdges"`
	BuildFaces bool   `json:"BuildFaces"`
	IndexBase  int    `json:"IndexBase"` // 0 or 1, used when printing indices
	Workers    int    `json:"Workers"`   // Meshes processed concurrently
	Compress   bool   `json:"Compress"`  // zstd on written snapshots
}

func NewBuildParameters() *BuildParameters {
	return &BuildParameters{
		BuildEdges: true,
		BuildFaces: true,
		IndexBase:  0,
		Workers:    1,
		Compress:   true,
	}
}

// Parse overlays the YAML document onto the current values, so keys absent
// from data keep their defaults.
func (bp *BuildParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, bp); err != nil {
		return err
	}
	return bp.Validate()
}

func (bp *BuildParameters) Validate() error {
	if bp.IndexBase != 0 && bp.IndexBase != 1 {
		return fmt.Errorf("IndexBase must be 0 or 1, have %d", bp.IndexBase)
	}
	if bp.Workers < 1 {
		return fmt.Errorf("Workers must be at least 1, have %d", bp.Workers)
	}
	return nil
}

// ReadBuildParameters reads a parameters file on top of the defaults
func ReadBuildParameters(filename string) (bp *BuildParameters, err error) {
	var data []byte
	if data, err = os.ReadFile(filename); err != nil {
		return
	}
	bp = NewBuildParameters()
	if err = bp.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return
}

func (bp *BuildParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", bp.Title)
	fmt.Printf("[%v]\t\t\t= Build Edges\n", bp.BuildEdges)
	fmt.Printf("[%v]\t\t\t= Build Faces\n", bp.BuildFaces)
	fmt.Printf("[%d]\t\t\t\t= Index Base\n", bp.IndexBase)
	fmt.Printf("[%d]\t\t\t\t= Workers\n", bp.Workers)
	fmt.Printf("[%v]\t\t\t= Compress\n", bp.Compress)
}
