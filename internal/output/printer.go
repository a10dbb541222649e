// Package output formats CLI status lines and tables.
package output

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// ColorMode selects when status lines are colored.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode parses auto, always, or never.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "auto", "":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: must be auto, always, or never", s)
	}
}

// ResolveColors decides whether to color output. Auto honors NO_COLOR and
// dumb terminals, then defers to whether stdout is a terminal.
func ResolveColors(mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		if os.Getenv("TERM") == "dumb" {
			return false
		}
		return !color.NoColor
	}
}

// Printer writes messages to out and warnings and errors to err.
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

// NewPrinter creates a Printer.
func NewPrinter(out, err io.Writer, useColors bool) *Printer {
	return &Printer{out: out, err: err, useColors: useColors}
}

// Out returns the writer for plain output such as tables.
func (p *Printer) Out() io.Writer { return p.out }

// Info prints an informational message.
func (p *Printer) Info(format string, args ...any) {
	p.print(p.out, color.FgCyan, "", format, args...)
}

// Success prints a success message.
func (p *Printer) Success(format string, args ...any) {
	p.print(p.out, color.FgGreen, "[OK] ", format, args...)
}

// Warning prints a warning to the error stream.
func (p *Printer) Warning(format string, args ...any) {
	p.print(p.err, color.FgYellow, "[WARN] ", format, args...)
}

// Error prints an error to the error stream.
func (p *Printer) Error(format string, args ...any) {
	p.print(p.err, color.FgRed, "[ERROR] ", format, args...)
}

func (p *Printer) print(w io.Writer, attr color.Attribute, prefix, format string, args ...any) {
	if p.useColors {
		c := color.New(attr)
		c.EnableColor()
		c.Fprintf(w, prefix+format+"\n", args...)
		return
	}
	fmt.Fprintf(w, prefix+format+"\n", args...)
}

// Status returns a writer for pipeline status lines. With colors on, lines
// are tinted by their leading word: failures red, warnings and drops
// yellow, completions green.
func (p *Printer) Status() io.Writer {
	if !p.useColors {
		return p.out
	}
	return &statusWriter{w: p.out}
}

type statusWriter struct {
	w io.Writer
}

var statusColors = []struct {
	prefix string
	color  *color.Color
}{
	{"failed:", color.New(color.FgRed)},
	{"interrupted:", color.New(color.FgRed)},
	{"dropped:", color.New(color.FgYellow)},
	{"warning:", color.New(color.FgYellow)},
	{"downloaded:", color.New(color.FgGreen)},
	{"Batch summary:", color.New(color.Bold)},
}

func init() {
	for _, sc := range statusColors {
		sc.color.EnableColor()
	}
}

func (s *statusWriter) Write(b []byte) (int, error) {
	line := bytes.TrimLeft(b, "\n")
	for _, sc := range statusColors {
		if bytes.HasPrefix(line, []byte(sc.prefix)) {
			lead := b[:len(b)-len(line)]
			body := bytes.TrimRight(line, "\n")
			tail := line[len(body):]
			if _, err := fmt.Fprintf(s.w, "%s%s%s", lead, sc.color.Sprint(string(body)), tail); err != nil {
				return 0, err
			}
			return len(b), nil
		}
	}
	return s.w.Write(b)
}
