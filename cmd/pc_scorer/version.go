package main

import (
	"fmt"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// version can be overridden at build time via -ldflags.
var version = "0.1.0-dev"

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Show the pc_scorer version",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noConfigAnnotation: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		v := color.New(color.FgYellow, color.Bold)
		if !app.color {
			v.DisableColor()
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "pc_scorer %s\n", v.Sprint(version))
		if info, ok := debug.ReadBuildInfo(); ok {
			fmt.Fprintf(out, "go: %s\n", info.GoVersion)
		}
	},
}
