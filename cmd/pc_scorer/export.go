package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/pc_scorer_go/internal/export"
	"github.com/user/pc_scorer_go/internal/report"
	"github.com/user/pc_scorer_go/internal/scoring"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write results as CSV, PDF report or snapshot",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("csv", "", "write the result table to this CSV file")
	exportCmd.Flags().String("pdf", "", "write the PDF report to this file")
	exportCmd.Flags().String("snapshot", "", "write a binary results snapshot to this file")
	exportCmd.Flags().String("title", "", "PDF report title")
	exportCmd.Flags().String("font", "", "UTF-8 TrueType font for the PDF report")
}

func runExport(cmd *cobra.Command, args []string) error {
	var paths [3]string
	for i, name := range []string{"csv", "pdf", "snapshot"} {
		v, err := cmd.Flags().GetString(name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		paths[i] = v
	}
	csvPath, pdfPath, snapshotPath := paths[0], paths[1], paths[2]
	if csvPath == "" && pdfPath == "" && snapshotPath == "" {
		return fmt.Errorf("nothing to export: set --csv, --pdf or --snapshot")
	}
	title, err := cmd.Flags().GetString("title")
	if err != nil {
		return fmt.Errorf("failed to get title flag: %w", err)
	}
	font, err := cmd.Flags().GetString("font")
	if err != nil {
		return fmt.Errorf("failed to get font flag: %w", err)
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

	if csvPath != "" {
		app.sendStatus("Writing CSV: %s", csvPath)
		if err := writeFile(csvPath, func(f *os.File) error { return export.WriteCSV(f, res) }); err != nil {
			return err
		}
	}
	if snapshotPath != "" {
		app.sendStatus("Writing snapshot: %s", snapshotPath)
		if err := export.SaveSnapshot(snapshotPath, res); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}
	if pdfPath != "" {
		if err := writePDF(pdfPath, res, report.Options{Title: title, RunID: app.runID, FontFile: font}); err != nil {
			return err
		}
	}
	app.printer.Success("Export complete.")
	return nil
}

func writePDF(path string, res *scoring.Results, opts report.Options) error {
	app.sendStatus("Generating plots...")
	images, skipped := report.CreateCharts(res)
	for _, s := range skipped {
		app.printer.Warn("plot %s", s)
	}
	app.sendStatus("Generating PDF: %s", path)
	return writeFile(path, func(f *os.File) error {
		return report.BuildPDFReport(f, res, opts, images)
	})
}

// writeFile creates path and hands it to write. The file is removed when
// write fails.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
