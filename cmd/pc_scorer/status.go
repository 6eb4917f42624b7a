package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/pc_scorer_go/internal/config"
	"github.com/user/pc_scorer_go/internal/parser"
	"github.com/user/pc_scorer_go/internal/scoring"
)

// totalTarget names the Total-Result in status commands.
const totalTarget = "total"

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Edit segment and Total-Result status overrides",
}

var statusSetCmd = &cobra.Command{
	Use:   "set BIB SEGMENT|total STATUS",
	Short: "Set RIT, N.C. or BLNK for a bib on a segment or on the Total-Result",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := scoring.ParseStatus(args[2])
		if err != nil {
			return err
		}
		if !s.Set() {
			return fmt.Errorf("use 'status clear' to remove a status")
		}
		return editStatus(args[0], args[1], s)
	},
}

var statusClearCmd = &cobra.Command{
	Use:   "clear BIB SEGMENT|total",
	Short: "Remove a status override",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editStatus(args[0], args[1], scoring.StatusNone)
	},
}

var statusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the status overrides and penalties",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		overlay, err := config.LoadOverlay(app.cfg.Overlay)
		if err != nil {
			return err
		}
		raw, err := overlay.Marshal()
		if err != nil {
			return err
		}
		app.printer.Print(string(raw))
		return nil
	},
}

var penaltyCmd = &cobra.Command{
	Use:   "penalty",
	Short: "Edit penalty points",
}

var penaltySetCmd = &cobra.Command{
	Use:   "set BIB POINTS",
	Short: "Set the penalty points of a bib (0 removes it)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bib, err := parseBib(args[0])
		if err != nil {
			return err
		}
		points, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid penalty %q", args[1])
		}
		settings, overlay, err := app.loadSettings()
		if err != nil {
			return err
		}
		if _, ok := settings.Entry(bib); !ok && (points != 0 || overlay.Penalty(bib) == 0) {
			return fmt.Errorf("bib %d is not in the entries", bib)
		}
		return updateOverlay(func(o *config.Overlay) error {
			return o.SetPenalty(bib, points)
		}, fmt.Sprintf("Penalty of bib %d set to %d.", bib, points))
	},
}

func init() {
	statusCmd.AddCommand(statusSetCmd, statusClearCmd, statusListCmd)
	penaltyCmd.AddCommand(penaltySetCmd)
}

func parseBib(s string) (int, error) {
	bib, err := strconv.Atoi(s)
	if err != nil || bib <= 0 {
		return 0, fmt.Errorf("invalid bib %q", s)
	}
	return bib, nil
}

func editStatus(bibArg, target string, s scoring.Status) error {
	bib, err := parseBib(bibArg)
	if err != nil {
		return err
	}
	settings, overlay, err := app.loadSettings()
	if err != nil {
		return err
	}
	// Clearing an entry that is already there works even when it names an
	// unknown bib or segment, so mistyped keys can be removed.
	if s.Set() || !hasOverride(overlay, bib, target) {
		if err := checkTarget(settings, bib, target); err != nil {
			return err
		}
	}

	label := s.Token()
	if !s.Set() {
		label = "cleared"
	}
	if strings.EqualFold(target, totalTarget) {
		return updateOverlay(func(o *config.Overlay) error {
			return o.SetTotalStatus(bib, s)
		}, fmt.Sprintf("Total-Result of bib %d: %s.", bib, label))
	}
	return updateOverlay(func(o *config.Overlay) error {
		return o.SetSegmentStatus(bib, target, s)
	}, fmt.Sprintf("%s of bib %d: %s.", target, bib, label))
}

func checkTarget(settings *parser.Settings, bib int, target string) error {
	if _, ok := settings.Entry(bib); !ok {
		return fmt.Errorf("bib %d is not in the entries", bib)
	}
	if strings.EqualFold(target, totalTarget) {
		return nil
	}
	for _, seg := range settings.Segments {
		if seg.ID == target {
			return nil
		}
	}
	return fmt.Errorf("unknown segment %s", target)
}

func hasOverride(overlay *config.Overlay, bib int, target string) bool {
	if strings.EqualFold(target, totalTarget) {
		return overlay.TotalStatus(bib).Set()
	}
	return overlay.SegmentStatus(bib, target).Set()
}

// updateOverlay loads the overlay, applies edit and saves it back.
func updateOverlay(edit func(*config.Overlay) error, done string) error {
	overlay, err := config.LoadOverlay(app.cfg.Overlay)
	if err != nil {
		return err
	}
	if err := edit(overlay); err != nil {
		return err
	}
	if err := overlay.Save(app.cfg.Overlay); err != nil {
		return err
	}
	app.logger.Info("overlay updated", "path", app.cfg.Overlay)
	app.printer.Success("%s", done)
	return nil
}
