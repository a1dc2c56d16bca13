package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"iganalytics/pkg/config"
)

const (
	wideRule   = 80
	narrowRule = 50
)

var (
	accent  = lipgloss.Color("#00FFFF")
	warning = lipgloss.Color("#FF6700")
	danger  = lipgloss.Color("#FF0000")
	good    = lipgloss.Color("#39FF14")
	muted   = lipgloss.Color("#B0B0B0")
)

// Options control how transcripts are written
type Options struct {
	Color bool
	// CommentPreview is how many comments a dashboard post block lists
	CommentPreview int
	CaptionWidth   int
	CommentWidth   int
}

// DefaultOptions returns plain-text options with the standard widths
func DefaultOptions() Options {
	return Options{
		CommentPreview: 3,
		CaptionWidth:   150,
		CommentWidth:   60,
	}
}

// OptionsFromConfig reads the ui and analysis sections
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Color:          cfg.UI.ColorEnabled,
		CommentPreview: cfg.Analysis.CommentPreview,
		CaptionWidth:   cfg.Analysis.CaptionWidth,
		CommentWidth:   cfg.Analysis.CommentWidth,
	}
}

// Renderer writes human-readable transcripts to one writer
type Renderer struct {
	w    io.Writer
	opts Options
	err  error

	title   lipgloss.Style
	section lipgloss.Style
	rule    lipgloss.Style
	failure lipgloss.Style
	notice  lipgloss.Style
	success lipgloss.Style
}

// New creates a renderer. Styles only emit escape codes when color is
// enabled and w is a terminal.
func New(w io.Writer, opts Options) *Renderer {
	lr := lipgloss.NewRenderer(w)
	if !opts.Color {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		w:       w,
		opts:    opts,
		title:   lr.NewStyle().Foreground(accent).Bold(true),
		section: lr.NewStyle().Bold(true),
		rule:    lr.NewStyle().Foreground(muted),
		failure: lr.NewStyle().Foreground(danger).Bold(true),
		notice:  lr.NewStyle().Foreground(warning),
		success: lr.NewStyle().Foreground(good).Bold(true),
	}
}

// Err returns the first write error, if any
func (r *Renderer) Err() error {
	return r.err
}

func (r *Renderer) printf(format string, args ...interface{}) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *Renderer) println(s string) {
	r.printf("%s\n", s)
}

func (r *Renderer) blank() {
	r.println("")
}

func (r *Renderer) ruleLine(char string, width int) {
	r.println(r.rule.Render(strings.Repeat(char, width)))
}

// truncate cuts s to width runes and marks the cut
func truncate(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width]) + "..."
}

// formatValue prints whole numbers without a fraction
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
