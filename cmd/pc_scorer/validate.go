package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/pc_scorer_go/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check race data for inconsistencies",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().Bool("strict", false, "exit with an error when an issue is found")
}

func runValidate(cmd *cobra.Command, args []string) error {
	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return fmt.Errorf("failed to get strict flag: %w", err)
	}
	settings, overlay, err := app.loadSettings()
	if err != nil {
		return err
	}
	issues := validate.Overlay(overlay, settings)
	if len(issues) > 0 {
		for _, is := range issues {
			app.printer.Warn("%s", is)
		}
		app.printer.Warn("fix %s before the race data can be checked", app.cfg.Overlay)
	} else {
		ev, err := app.loadRace(settings, overlay)
		if err != nil {
			return err
		}
		issues = app.check(ev)
	}
	if len(issues) == 0 {
		app.printer.Success("No issues found.")
		return nil
	}
	if strict {
		return fmt.Errorf("%d issues found", len(issues))
	}
	app.sendStatus("%d issues found.", len(issues))
	return nil
}
