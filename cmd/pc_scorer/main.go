package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pc_scorer",
	Short: "Score and rank multi-stage time trials",
	Long: `pc_scorer reads passage clocks of a regularity event, scores every
PC, PCG and CO segment, applies handicap coefficients, penalties and status
overrides, and ranks competitors overall and per class.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setupApp,
}

// app is set up before any subcommand runs.
var app *App

// noConfigAnnotation marks commands that run without loading the event
// config, so a broken pc_scorer.toml cannot stop them.
const noConfigAnnotation = "pc_scorer/no-config"

func init() {
	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(penaltyCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "pc_scorer.toml", "path to the event config")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress progress output")
	rootCmd.PersistentFlags().Bool("verbose", false, "log debug details to stderr")
	rootCmd.PersistentFlags().Int("jobs", 0, "segments scored in parallel (0 = number of CPUs)")
}

func main() {
	rootCmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if app != nil {
			app.printer.Error("%v", err)
		} else {
			color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	configPath, err := flags.GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	app, err = NewApp(AppOptions{
		ConfigPath: configPath,
		SkipConfig: cmd.Annotations[noConfigAnnotation] == "true",
		Color:      colorFlag,
		Quiet:      quiet,
		Verbose:    verbose,
		Jobs:       jobs,
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
	})
	return err
}
