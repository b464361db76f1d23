package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	Default = NewPalette("#1DB954", "#04B575", "#FF0000", "#FFA500", "#626262")
	Plain   = &Palette{}
)

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
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

func (p *Palette) Title(s string) string { return p.title.Render(s) }
func (p *Palette) Help(s string) string  { return p.help.Render(s) }

// Success prefixes s with a check mark.
func (p *Palette) Success(s string) string { return p.ok.Render("✓ " + s) }

// Failure prefixes s with a cross.
func (p *Palette) Failure(s string) string { return p.err.Render("✗ " + s) }

// Warning prefixes s with an exclamation mark.
func (p *Palette) Warning(s string) string { return p.warn.Render("! " + s) }

// KeyValue renders an aligned "key: value" line with the key in the help style.
func (p *Palette) KeyValue(key string, value any) string {
	return fmt.Sprintf("%s %v", p.help.Render(fmt.Sprintf("%-14s", key+":")), value)
}
