package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/pc_scorer_go/internal/export"
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute and print the standings",
	Args:  cobra.NoArgs,
	RunE:  runCalc,
}

func init() {
	calcCmd.Flags().String("class", "", "print the standings of one class")
	calcCmd.Flags().String("segment", "", "print the results of one segment")
	calcCmd.Flags().Bool("matrix", false, "print rank and point of every segment")
	calcCmd.Flags().Bool("check", false, "compute twice and verify both passes are identical")
	calcCmd.Flags().Int("name-width", 16, "truncate names to this many columns")
}

func runCalc(cmd *cobra.Command, args []string) error {
	class, err := cmd.Flags().GetString("class")
	if err != nil {
		return fmt.Errorf("failed to get class flag: %w", err)
	}
	segment, err := cmd.Flags().GetString("segment")
	if err != nil {
		return fmt.Errorf("failed to get segment flag: %w", err)
	}
	matrix, err := cmd.Flags().GetBool("matrix")
	if err != nil {
		return fmt.Errorf("failed to get matrix flag: %w", err)
	}
	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return fmt.Errorf("failed to get check flag: %w", err)
	}
	nameWidth, err := cmd.Flags().GetInt("name-width")
	if err != nil {
		return fmt.Errorf("failed to get name-width flag: %w", err)
	}

	ev, err := app.load()
	if err != nil {
		return err
	}
	app.check(ev)
	res, err := app.compute(cmd.Context(), ev)
	if err != nil {
		return err
	}

	if check {
		again, err := app.compute(cmd.Context(), ev)
		if err != nil {
			return err
		}
		first, err := export.Fingerprint(res)
		if err != nil {
			return err
		}
		second, err := export.Fingerprint(again)
		if err != nil {
			return err
		}
		if !bytes.Equal(first, second) {
			return fmt.Errorf("two passes over the same inputs gave different results")
		}
		app.printer.Success("Check passed: both passes are identical.")
	}

	tables := app.printer.Tables(nameWidth)
	switch {
	case segment != "":
		out, err := tables.Segment(res, segment)
		if err != nil {
			return err
		}
		app.printer.Print(out)
	case matrix:
		app.printer.Print(tables.Matrix(res))
	default:
		out, err := tables.Standings(res, class)
		if err != nil {
			return err
		}
		app.printer.Print(out)
	}
	return nil
}
