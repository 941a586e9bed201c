package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Default is the palette used by the CLI.
var Default = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

// NewPalette builds a palette from title, success, error, warning and help foreground colors.
func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func (p *Palette) Title(s string) string { return p.title.Render(s) }
func (p *Palette) OK(s string) string    { return p.ok.Render(s) }
func (p *Palette) Err(s string) string   { return p.err.Render(s) }
func (p *Palette) Warn(s string) string  { return p.warn.Render(s) }
func (p *Palette) Help(s string) string  { return p.help.Render(s) }

// On renders s over a background color.
func (p *Palette) On(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Background(c).Render(s)
}

// As renders s in a foreground color.
func (p *Palette) As(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

// Progress renders one progress line: "[step/total] phase message", with failures in the error style.
func (p *Palette) Progress(phase string, step, total int, message string, err error) string {
	counter := p.Help(fmt.Sprintf("[%d/%d]", step, total))
	if total <= 0 {
		counter = p.Help(fmt.Sprintf("[%d]", step))
	}

	if err != nil {
		return fmt.Sprintf("%s %s %s %s", counter, phase, message, p.Err(err.Error()))
	}
	return fmt.Sprintf("%s %s %s", counter, phase, message)
}

// Summary renders a labelled count, styled by whether it reports good or bad news.
func (p *Palette) Summary(label string, n int, good bool) string {
	value := fmt.Sprintf("%d", n)
	switch {
	case n == 0:
		value = p.Help(value)
	case good:
		value = p.OK(value)
	default:
		value = p.Warn(value)
	}
	return fmt.Sprintf("  %s: %s", label, value)
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
