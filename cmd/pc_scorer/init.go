package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/user/pc_scorer_go/internal/sample"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a sample event folder",
	Long: `Write a sample event into [dir] (default: the current directory): a
settings folder, simulated race clocks, a status overlay and pc_scorer.toml.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{noConfigAnnotation: "true"},
	RunE:        runInit,
}

func init() {
	initCmd.Flags().Int("competitors", 10, "number of sample competitors")
	initCmd.Flags().Uint64("seed", 1, "seed of the simulated clocks")
	initCmd.Flags().Bool("force", false, "overwrite an existing event")
}

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("failed to resolve target directory: %w", err)
	}
	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	competitors, err := cmd.Flags().GetInt("competitors")
	if err != nil {
		return fmt.Errorf("failed to get competitors flag: %w", err)
	}
	seed, err := cmd.Flags().GetUint64("seed")
	if err != nil {
		return fmt.Errorf("failed to get seed flag: %w", err)
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to get force flag: %w", err)
	}

	if err := sample.Generate(target, sample.Options{Competitors: competitors, Seed: seed, Force: force}); err != nil {
		return err
	}
	app.printer.Success("Sample event written to %s", target)
	app.printer.Print(fmt.Sprintf("run: cd %s && pc_scorer calc", target))
	return nil
}
