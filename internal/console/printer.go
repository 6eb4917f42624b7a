// Package console renders results and progress on the terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ColorMode is the value of the --color flag.
type ColorMode string

const (
	ColorAuto ColorMode = "auto"
	ColorOn   ColorMode = "on"
	ColorOff  ColorMode = "off"
)

func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ColorAuto, ColorOn, ColorOff:
		return m, nil
	}
	return "", fmt.Errorf("invalid color mode %q (want auto, on or off)", s)
}

// UseColor decides whether output to f is colorized.
func UseColor(mode ColorMode, f *os.File) bool {
	switch mode {
	case ColorOn:
		return true
	case ColorOff:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// palette holds the colors shared by the printer and the tables.
type palette struct {
	info  *color.Color
	ok    *color.Color
	warn  *color.Color
	fail  *color.Color
	token *color.Color
	early *color.Color
	late  *color.Color
	lead  *color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		info:  color.New(color.FgCyan),
		ok:    color.New(color.FgGreen, color.Bold),
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed, color.Bold),
		token: color.New(color.FgRed),
		early: color.New(color.FgCyan),
		late:  color.New(color.FgYellow),
		lead:  color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.info, p.ok, p.warn, p.fail, p.token, p.early, p.late, p.lead} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Printer writes progress lines to out and problems to errOut.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool
	colors *palette
}

func NewPrinter(out, errOut io.Writer, colorOn, quiet bool) *Printer {
	return &Printer{out: out, errOut: errOut, quiet: quiet, colors: newPalette(colorOn)}
}

// Status prints a progress line unless the printer is quiet.
func (p *Printer) Status(format string, args ...any) {
	if p.quiet {
		return
	}
	p.colors.info.Fprintln(p.out, fmt.Sprintf(format, args...))
}

func (p *Printer) Success(format string, args ...any) {
	p.colors.ok.Fprintln(p.out, fmt.Sprintf(format, args...))
}

func (p *Printer) Warn(format string, args ...any) {
	p.colors.warn.Fprintln(p.errOut, "warning: "+fmt.Sprintf(format, args...))
}

func (p *Printer) Error(format string, args ...any) {
	p.colors.fail.Fprintln(p.errOut, "error: "+fmt.Sprintf(format, args...))
}

// Print writes s to out as is.
func (p *Printer) Print(s string) {
	fmt.Fprint(p.out, s)
	if !strings.HasSuffix(s, "\n") {
		fmt.Fprintln(p.out)
	}
}

// Tables returns a table renderer sharing the printer's colors.
func (p *Printer) Tables(nameWidth int) *Tables {
	return &Tables{colors: p.colors, nameWidth: nameWidth}
}
