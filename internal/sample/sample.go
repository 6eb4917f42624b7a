// Package sample writes a small, consistent event folder: settings, race
// clocks, an app config and a status overlay.
package sample

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/user/pc_scorer_go/internal/config"
	"github.com/user/pc_scorer_go/internal/scoring"
)

type Options struct {
	Competitors int    // at least 2
	Seed        uint64 // same seed, same clocks
	Force       bool   // overwrite an existing project
}

// retiredBib is the last bib; it retires before PC3 in the sample.
func retiredBib(opts Options) int { return opts.Competitors }

type section struct {
	typ, id, name string
	ref           time.Duration
	group, day    int
}

var sections = []section{
	{"PC", "PC1", "Castle Road", 600 * time.Second, 1, 1},
	{"PC", "PC2", "Lake Side", 900 * time.Second, 1, 1},
	{"PCG", "PCG1", "Castle to Lake", 1500 * time.Second, 1, 1},
	{"CO", "CO1", "Village Check", 300 * time.Second, 2, 1},
	{"PC", "PC3", "Pass", 600 * time.Second, 3, 2},
	{"CO", "CO2", "Summit Check", 240 * time.Second, 3, 2},
}

// Generate writes the sample project into dir.
func Generate(dir string, opts Options) error {
	if opts.Competitors < 2 {
		return fmt.Errorf("sample needs at least 2 competitors, got %d", opts.Competitors)
	}
	cfgPath := filepath.Join(dir, config.DefaultFile)
	if _, err := os.Stat(cfgPath); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg := config.Default()
	for _, d := range []string{cfg.SettingsDir, cfg.RaceDir} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return err
		}
	}
	settingsDir := filepath.Join(dir, cfg.SettingsDir)
	raceDir := filepath.Join(dir, cfg.RaceDir)

	steps := []struct {
		name string
		fn   func() error
	}{
		{"entries", func() error { return writeEntries(settingsDir, opts) }},
		{"points", func() error { return writePoints(settingsDir) }},
		{"sections", func() error { return writeSections(settingsDir) }},
		{"race", func() error { return writeRace(raceDir, opts) }},
		{"overlay", func() error { return writeOverlay(filepath.Join(dir, cfg.Overlay), opts) }},
		{"config", func() error { return writeConfig(cfgPath, cfg) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return fmt.Errorf("sample %s: %w", s.name, err)
		}
	}
	return nil
}

func writeCSV(path string, rows [][]string, bom bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var w *csv.Writer
	var tw *transform.Writer
	if bom {
		tw = transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
		w = csv.NewWriter(tw)
	} else {
		w = csv.NewWriter(f)
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	if tw != nil {
		if err := tw.Close(); err != nil {
			return err
		}
	}
	return f.Close()
}

func writeEntries(dir string, opts Options) error {
	rows := [][]string{{"No", "DriverName", "CoDriverName", "CarName", "車両製造年", "CarClass", "係数", "年齢係数"}}
	for bib := 1; bib <= opts.Competitors; bib++ {
		class := "A"
		if bib > opts.Competitors/2 {
			class = "B"
		}
		coef := "1.0"
		if bib%3 == 0 {
			coef = "1.2"
		}
		age := "1.0"
		if bib%4 == 0 {
			age = "1.1"
		}
		rows = append(rows, []string{
			strconv.Itoa(bib),
			fmt.Sprintf("driver%d", bib),
			fmt.Sprintf("codriver%d", bib),
			fmt.Sprintf("car%d", bib),
			strconv.Itoa(1955 + bib%20),
			class,
			coef,
			age,
		})
	}
	return writeCSV(filepath.Join(dir, "entries_sample.csv"), rows, true)
}

func writePoints(dir string) error {
	rows := [][]string{{"Order", "Point"}}
	for i, p := range []int{100, 80, 60, 50, 40, 30, 20, 10, 5, 1} {
		rows = append(rows, []string{strconv.Itoa(i + 1), strconv.Itoa(p)})
	}
	return writeCSV(filepath.Join(dir, "point_sample.csv"), rows, false)
}

func writeSections(dir string) error {
	rows := [][]string{{"type", "section", "name", "time", "GROUP", "DAY"}}
	for _, s := range sections {
		rows = append(rows, []string{
			s.typ, s.id, s.name,
			strconv.Itoa(int(s.ref / time.Second)),
			strconv.Itoa(s.group),
			strconv.Itoa(s.day),
		})
	}
	return writeCSV(filepath.Join(dir, "section_sample.csv"), rows, false)
}

// writeRace simulates every bib driving the course at one minute intervals.
// Clocks of consecutive timing points share a file when one goal is the
// next start.
func writeRace(dir string, opts Options) error {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x5eed))
	jitter := func(spread time.Duration) time.Duration {
		return time.Duration(rng.Int64N(int64(2*spread))) - spread
	}
	window := func(extra time.Duration) time.Duration {
		return time.Duration(rng.Int64N(int64(extra)))
	}

	type passage struct {
		bib   int
		clock time.Duration
	}
	files := []string{"PC1START", "PC1GOAL_PC2START", "PC2GOAL", "CO1START", "CO1GOAL", "PC3START", "PC3GOAL_CO2START", "CO2GOAL"}
	perFile := make(map[string][]passage)

	for bib := 1; bib <= opts.Competitors; bib++ {
		c := make(map[string]time.Duration)
		c["PC1START"] = 9*time.Hour + time.Duration(bib)*time.Minute
		c["PC1GOAL_PC2START"] = c["PC1START"] + 600*time.Second + jitter(5*time.Second)
		c["PC2GOAL"] = c["PC1GOAL_PC2START"] + 900*time.Second + jitter(5*time.Second)
		c["CO1START"] = c["PC2GOAL"] + 2*time.Minute
		c["CO1GOAL"] = c["CO1START"] + 300*time.Second + window(90*time.Second)
		if bib != retiredBib(opts) {
			// day two
			c["PC3START"] = 8*time.Hour + time.Duration(bib)*time.Minute
			c["PC3GOAL_CO2START"] = c["PC3START"] + 600*time.Second + jitter(5*time.Second)
			c["CO2GOAL"] = c["PC3GOAL_CO2START"] + 240*time.Second + window(90*time.Second)
		}
		for _, name := range files {
			if clock, ok := c[name]; ok {
				perFile[name] = append(perFile[name], passage{bib, clock})
			}
		}
	}

	for _, name := range files {
		rows := [][]string{{"id", "time", "number"}}
		for i, rec := range perFile[name] {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				scoring.FormatClock(rec.clock),
				strconv.Itoa(rec.bib),
			})
		}
		if err := writeCSV(filepath.Join(dir, name+".csv"), rows, false); err != nil {
			return err
		}
	}
	return nil
}

func writeOverlay(path string, opts Options) error {
	o := config.NewOverlay()
	bib := retiredBib(opts)
	for _, seg := range []string{"PC3", "CO2"} {
		if err := o.SetSegmentStatus(bib, seg, scoring.StatusRetired); err != nil {
			return err
		}
	}
	if err := o.SetTotalStatus(bib, scoring.StatusRetired); err != nil {
		return err
	}
	if err := o.SetPenalty(1, 10); err != nil {
		return err
	}
	return o.Save(path)
}

func writeConfig(path string, cfg *config.AppConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := cfg.Write(f); err != nil {
		return err
	}
	return f.Close()
}
