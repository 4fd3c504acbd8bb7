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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notargets/meshtopo/snapshot"
)

// DumpCmd represents the dump command
var DumpCmd = &cobra.Command{
	Use:   "dump FILE",
	Short: "Build the topology of a mesh and write it as a snapshot",
	Long: `Build the topology of a mesh and write every derived table to a snapshot
file (deterministic CBOR, zstd compressed unless --compress=false).

meshtopo dump wing.su2 -o wing.mtop`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bp, err := loadParameters()
		if err != nil {
			return err
		}
		outFile, _ := cmd.Flags().GetString("output")
		if outFile == "" {
			outFile = defaultSnapshotName(args[0])
		}

		_, topo, err := buildTopology(args[0], bp)
		if err != nil {
			return err
		}
		snap := topo.Snapshot()
		if err = snapshot.WriteFile(outFile, snap, bp.Compress); err != nil {
			return err
		}

		// Read back so a bad write is reported here rather than by the consumer
		written, err := snapshot.ReadFile(outFile)
		if err != nil {
			return err
		}
		want, err := snapshot.Digest(snap)
		if err != nil {
			return err
		}
		have, err := snapshot.Digest(written)
		if err != nil {
			return err
		}
		if want != have {
			return fmt.Errorf("%s: digest mismatch after write", outFile)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", have, outFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(DumpCmd)
	DumpCmd.Flags().StringP("output", "o", "", "snapshot file to write (default is FILE with extension .mtop)")
}

func defaultSnapshotName(meshFile string) string {
	return strings.TrimSuffix(meshFile, filepath.Ext(meshFile)) + ".mtop"
}
