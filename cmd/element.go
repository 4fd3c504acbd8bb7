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
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/notargets/meshtopo/topology"
	"github.com/notargets/meshtopo/utils"
)

// ElementCmd represents the element command
var ElementCmd = &cobra.Command{
	Use:   "element FILE",
	Short: "Print the edges and faces of one volume element",
	Long: `Print the vertices, edges and faces of one volume element with their
orientations and the element across each face. Indices, including the one
given with -e, use the configured index base.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bp, err := loadParameters()
		if err != nil {
			return err
		}
		elem, _ := cmd.Flags().GetInt("element")

		_, topo, err := buildTopology(args[0], bp)
		if err != nil {
			return err
		}
		return printElement(cmd.OutOrStdout(), topo, elem-bp.IndexBase, bp.IndexBase)
	},
}

func init() {
	rootCmd.AddCommand(ElementCmd)
	ElementCmd.Flags().IntP("element", "e", 0, "element index, in the configured index base")
	if err := ElementCmd.MarkFlagRequired("element"); err != nil {
		panic(err)
	}
}

func printElement(w io.Writer, topo *topology.Topology, ei, base int) error {
	msh := topo.Mesh()
	if ei < 0 || ei >= msh.NumElements() {
		return fmt.Errorf("element %d out of range [%d, %d)", ei+base, base, msh.NumElements()+base)
	}
	el := msh.Element(ei)

	fmt.Fprintf(w, "Element %d: %s\n", ei+base, el.Type)
	fmt.Fprintf(w, "  Vertices: %v\n", utils.Index(el.Vertices).Add(base))

	if topo.HasEdges() {
		fmt.Fprintf(w, "  Edges:\n")
		for i, e := range topo.EdgesOfElement(ei) {
			v0, v1 := topo.VerticesOfEdge(e.Index())
			dir := "forward"
			if e.Reversed() {
				dir = "reversed"
			}
			fmt.Fprintf(w, "    %2d: edge %d (%d, %d) %s\n", i, e.Index()+base, v0+base, v1+base, dir)
		}
	}

	if topo.HasFaces() {
		fmt.Fprintf(w, "  Faces:\n")
		for i, f := range topo.FacesOfElement(ei) {
			a, b := topo.FaceVolumes(f.Index())
			other := a
			if a == ei {
				other = b
			}
			across := "boundary"
			if other != topology.NoNeighbor {
				across = fmt.Sprintf("element %d", other+base)
			}
			fmt.Fprintf(w, "    %2d: face %d %s %v orientation %d, %s\n", i, f.Index()+base,
				topo.FaceType(f.Index()), utils.Index(topo.VerticesOfFace(f.Index())).Add(base), f.Orientation(), across)
		}
	}
	return nil
}
