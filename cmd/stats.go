/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ghodss/yaml"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/notargets/meshtopo/InputParameters"
	"github.com/notargets/meshtopo/mesh"
	"github.com/notargets/meshtopo/snapshot"
	"github.com/notargets/meshtopo/topology"
	"github.com/notargets/meshtopo/utils"
)

// StatsCmd represents the stats command
var StatsCmd = &cobra.Command{
	Use:   "stats FILE...",
	Short: "Build the topology of each mesh and print its statistics",
	Long: `Build the topology of each mesh and print its statistics: entity counts,
connected components, boundary vertices and the digest of the derived tables.
Meshes are processed concurrently, up to --workers at a time.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bp, err := loadParameters()
		if err != nil {
			return err
		}
		asYAML, _ := cmd.Flags().GetBool("yaml")
		meshStats, _ := cmd.Flags().GetBool("meshStatistics")

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		reports, err := collectReports(ctx, args, bp)
		if err != nil {
			return err
		}
		for _, r := range reports {
			if asYAML {
				var out []byte
				if out, err = yaml.Marshal(r); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "---\n%s", out)
				continue
			}
			r.Print(cmd.OutOrStdout())
			if meshStats {
				r.mesh.PrintStatistics(cmd.OutOrStdout())
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(StatsCmd)
	StatsCmd.Flags().Bool("yaml", false, "print the reports as YAML documents")
	StatsCmd.Flags().BoolP("meshStatistics", "m", false, "also print element and surface element counts per shape and the boundary tags")
}

// MeshReport is what stats prints for one mesh
type MeshReport struct {
	File             string           `json:"file"`
	Summary          topology.Summary `json:"summary"`
	ComponentSizes   []int            `json:"componentSizes,omitempty"`
	BoundaryVertices uint64           `json:"boundaryVertices"`
	Digest           string           `json:"digest"`

	mesh *mesh.Mesh
}

// collectReports builds every mesh on its own goroutine; reports keep the
// argument order.
func collectReports(ctx context.Context, files []string,
	bp *InputParameters.BuildParameters) ([]MeshReport, error) {
	reports := make([]MeshReport, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.Workers)
	for i, fileName := range files {
		i, fileName := i, fileName
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := newMeshReport(fileName, bp)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func newMeshReport(fileName string, bp *InputParameters.BuildParameters) (r MeshReport, err error) {
	var (
		msh  *mesh.Mesh
		topo *topology.Topology
	)
	if msh, topo, err = buildTopology(fileName, bp); err != nil {
		return
	}
	r = MeshReport{
		File:    fileName,
		Summary: topo.Summary(),
		mesh:    msh,
	}
	if topo.HasFaces() {
		for _, c := range topo.Components() {
			r.ComponentSizes = append(r.ComponentSizes, len(c))
		}
		r.BoundaryVertices = topo.BoundaryVertices().GetCardinality()
	}
	var digest snapshot.Hash
	if digest, err = snapshot.Digest(topo.Snapshot()); err != nil {
		return
	}
	r.Digest = digest.String()
	slog.Debug("mesh analyzed", "file", fileName, "digest", r.Digest, utils.MemUsage())
	return
}

func (r MeshReport) Print(w io.Writer) {
	s := r.Summary
	fmt.Fprintf(w, "%s\n", r.File)
	fmt.Fprintf(w, "  Vertices:          %d\n", s.Vertices)
	fmt.Fprintf(w, "  Elements:          %d\n", s.Elements)
	fmt.Fprintf(w, "  Surface elements:  %d\n", s.SurfaceElements)
	fmt.Fprintf(w, "  Segments:          %d\n", s.Segments)
	fmt.Fprintf(w, "  Edges:             %d\n", s.Edges)
	fmt.Fprintf(w, "  Faces:             %d (%d boundary, %d interior)\n",
		s.Faces, s.BoundaryFaces, s.InteriorFaces)
	fmt.Fprintf(w, "  Components:        %d %v\n", s.Components, r.ComponentSizes)
	fmt.Fprintf(w, "  Boundary vertices: %d\n", r.BoundaryVertices)
	fmt.Fprintf(w, "  Digest:            %s\n", r.Digest)
}
