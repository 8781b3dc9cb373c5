// Package theme renders shell output in a light or dark palette.
package theme

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Name identifies a palette.
type Name string

const (
	Dark  Name = "dark"
	Light Name = "light"
)

// Parse accepts "dark" or "light" in any case.
func Parse(s string) (Name, error) {
	switch Name(strings.ToLower(strings.TrimSpace(s))) {
	case Dark:
		return Dark, nil
	case Light:
		return Light, nil
	default:
		return Dark, fmt.Errorf("invalid theme %q: must be dark or light", s)
	}
}

// Other returns the opposite palette.
func (n Name) Other() Name {
	if n == Light {
		return Dark
	}
	return Light
}

type palette struct {
	title   *color.Color
	prompt  *color.Color
	err     *color.Color
	success *color.Color
	muted   *color.Color
	accent  *color.Color
}

func newPalette(n Name) palette {
	if n == Light {
		return palette{
			title:   color.New(color.FgBlue, color.Bold),
			prompt:  color.New(color.FgMagenta),
			err:     color.New(color.FgRed),
			success: color.New(color.FgGreen),
			muted:   color.New(color.Faint),
			accent:  color.New(color.FgBlack, color.Bold),
		}
	}
	return palette{
		title:   color.New(color.FgHiCyan, color.Bold),
		prompt:  color.New(color.FgHiMagenta),
		err:     color.New(color.FgHiRed),
		success: color.New(color.FgHiGreen),
		muted:   color.New(color.FgHiBlack),
		accent:  color.New(color.FgHiWhite, color.Bold),
	}
}

// ResolveColors reports whether colored output should be used on a
// terminal: NO_COLOR and TERM=dumb turn it off.
func ResolveColors() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// Printer writes themed output. The theme can be toggled at runtime.
type Printer struct {
	out       io.Writer
	useColors bool

	mu   sync.RWMutex
	name Name
	pal  palette
}

func NewPrinter(w io.Writer, name Name, useColors bool) *Printer {
	p := &Printer{out: w, useColors: useColors}
	p.set(name)
	return p
}

func (p *Printer) set(name Name) {
	pal := newPalette(name)
	if p.useColors {
		for _, c := range []*color.Color{pal.title, pal.prompt, pal.err, pal.success, pal.muted, pal.accent} {
			c.EnableColor()
		}
	}
	p.name = name
	p.pal = pal
}

// Name returns the active theme.
func (p *Printer) Name() Name {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// Toggle switches between light and dark and returns the new theme.
func (p *Printer) Toggle() Name {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.set(p.name.Other())
	return p.name
}

func (p *Printer) palette() palette {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pal
}

func (p *Printer) Writer() io.Writer {
	return p.out
}

func (p *Printer) line(c *color.Color, prefix, format string, args ...any) {
	if p.useColors {
		_, _ = c.Fprintf(p.out, prefix+format+"\n", args...)
		return
	}
	_, _ = fmt.Fprintf(p.out, prefix+format+"\n", args...)
}

// Title prints a modal or section heading.
func (p *Printer) Title(format string, args ...any) {
	p.line(p.palette().title, "", format, args...)
}

func (p *Printer) Error(format string, args ...any) {
	if !p.useColors {
		p.line(nil, "[ERROR] ", format, args...)
		return
	}
	p.line(p.palette().err, "✗ ", format, args...)
}

func (p *Printer) Success(format string, args ...any) {
	if !p.useColors {
		p.line(nil, "[OK] ", format, args...)
		return
	}
	p.line(p.palette().success, "✓ ", format, args...)
}

func (p *Printer) Info(format string, args ...any) {
	p.line(p.palette().muted, "", format, args...)
}

func (p *Printer) Print(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

// Prompt returns the colored REPL prompt for label.
func (p *Printer) Prompt(label string) string {
	s := fmt.Sprintf("watcher[%s]> ", label)
	if !p.useColors {
		return s
	}
	return p.palette().prompt.Sprint(s)
}

func (p *Printer) Accent(text string) string {
	if !p.useColors {
		return text
	}
	return p.palette().accent.Sprint(text)
}

// Badge renders a yes/no indicator.
func (p *Printer) Badge(ok bool) string {
	if !p.useColors {
		if ok {
			return "[yes]"
		}
		return "[no]"
	}
	pal := p.palette()
	if ok {
		return pal.success.Sprint("● yes")
	}
	return pal.err.Sprint("○ no")
}
