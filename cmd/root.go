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
	"log/slog"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/meshtopo/InputParameters"
	"github.com/notargets/meshtopo/mesh"
	"github.com/notargets/meshtopo/mesh/readers"
	"github.com/notargets/meshtopo/topology"
)

var (
	cfgFile  string
	profiler interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "meshtopo",
	Short: "Mesh topology builder",
	Long: `
Reads unstructured meshes (Gmsh 2.2 or 4.1 .msh, Gambit .neu, SU2 .su2) and builds
their topology: global edges and faces with orientations, vertex incidence and
face neighbors.

meshtopo stats wing.su2`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger(viper.GetBool("verbose"))
		if viper.GetBool("profile") {
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.meshtopo.yaml)")
	pf.StringP("inputParameters", "I", "", "YAML file of build parameters like:\n\t- BuildEdges\n\t- IndexBase")
	pf.BoolP("verbose", "v", false, "log topology rebuilds")
	pf.Bool("profile", false, "write a CPU profile to the current directory")
	pf.Bool("edges", true, "build global edges")
	pf.Bool("faces", true, "build global faces")
	pf.Int("indexBase", 0, "index base used when printing, 0 or 1")
	pf.IntP("workers", "w", 1, "meshes processed concurrently")
	pf.Bool("compress", true, "zstd compress written snapshots")

	for _, name := range []string{"inputParameters", "verbose", "profile",
		"edges", "faces", "indexBase", "workers", "compress"} {
		if err := viper.BindPFlag(name, pf.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".meshtopo" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".meshtopo")
	}

	viper.SetEnvPrefix("MESHTOPO")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setupLogger(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadParameters starts from the defaults, overlays the parameters file and
// then any flag, environment or config value that was set explicitly.
func loadParameters() (bp *InputParameters.BuildParameters, err error) {
	bp = InputParameters.NewBuildParameters()
	if fileName := viper.GetString("inputParameters"); fileName != "" {
		if bp, err = InputParameters.ReadBuildParameters(fileName); err != nil {
			return nil, err
		}
	}
	if viper.IsSet("edges") {
		bp.BuildEdges = viper.GetBool("edges")
	}
	if viper.IsSet("faces") {
		bp.BuildFaces = viper.GetBool("faces")
	}
	if viper.IsSet("indexBase") {
		bp.IndexBase = viper.GetInt("indexBase")
	}
	if viper.IsSet("workers") {
		bp.Workers = viper.GetInt("workers")
	}
	if viper.IsSet("compress") {
		bp.Compress = viper.GetBool("compress")
	}
	if err = bp.Validate(); err != nil {
		return nil, err
	}
	return
}

// buildTopology reads a mesh file and builds its topology
func buildTopology(fileName string, bp *InputParameters.BuildParameters) (*mesh.Mesh, *topology.Topology, error) {
	msh, err := readers.ReadMeshFile(fileName)
	if err != nil {
		return nil, nil, err
	}
	topo := topology.New(msh,
		topology.WithEdges(bp.BuildEdges),
		topology.WithFaces(bp.BuildFaces),
		topology.WithLogger(slog.Default().With("file", fileName)),
	)
	if err = topo.Update(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", fileName, err)
	}
	return msh, topo, nil
}
