package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/aretw0/tally/internal/settings"
	"github.com/aretw0/tally/pkg/core"
)

// Status dot colours of the tracker.
var statusColors = map[core.Status]lipgloss.Color{
	core.StatusNotStarted: lipgloss.Color("#FFA500"),
	core.StatusInProgress: lipgloss.Color("#7E57C2"),
	core.StatusCompleted:  lipgloss.Color("#2E7D32"),
	core.StatusBlocked:    lipgloss.Color("#D32F2F"),
	core.StatusOnHold:     lipgloss.Color("#1976D2"),
}

var unknownStatusColor = lipgloss.Color("#9E9E9E")

type palette struct {
	fg     lipgloss.Color
	dim    lipgloss.Color
	accent lipgloss.Color
	urgent lipgloss.Color
}

var palettes = map[string]palette{
	settings.ThemeLight: {
		fg:     lipgloss.Color("#1F2933"),
		dim:    lipgloss.Color("#6B7280"),
		accent: lipgloss.Color("#2563EB"),
		urgent: lipgloss.Color("#D32F2F"),
	},
	settings.ThemeDark: {
		fg:     lipgloss.Color("#E5E7EB"),
		dim:    lipgloss.Color("#9CA3AF"),
		accent: lipgloss.Color("#93C5FD"),
		urgent: lipgloss.Color("#F87171"),
	},
}

// printer renders records and events, with colour only on a terminal.
type printer struct {
	w     io.Writer
	color bool
	pal   palette
}

func newPrinter(w io.Writer, theme string) *printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	if os.Getenv("NO_COLOR") != "" {
		color = false
	}
	pal, ok := palettes[theme]
	if !ok {
		pal = palettes[settings.ThemeLight]
	}
	return &printer{w: w, color: color, pal: pal}
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) dot(status core.Status) string {
	c, ok := statusColors[status]
	if !ok {
		c = unknownStatusColor
	}
	return p.style(lipgloss.NewStyle().Foreground(c), "●")
}

func (p *printer) priority(pr core.Priority) string {
	label := fmt.Sprintf("%-6s", pr.Label())
	switch pr {
	case core.PriorityUrgent:
		return p.style(lipgloss.NewStyle().Foreground(p.pal.urgent).Bold(true), label)
	case core.PriorityHigh:
		return p.style(lipgloss.NewStyle().Foreground(p.pal.fg).Bold(true), label)
	case core.PriorityLow:
		return p.style(lipgloss.NewStyle().Foreground(p.pal.dim), label)
	default:
		return p.style(lipgloss.NewStyle().Foreground(p.pal.fg), label)
	}
}

func (p *printer) dim(text string) string {
	return p.style(lipgloss.NewStyle().Foreground(p.pal.dim), text)
}

func (p *printer) list(records []core.Record) {
	if len(records) == 0 {
		fmt.Fprintln(p.w, p.dim("no projects"))
		return
	}
	for _, r := range records {
		fmt.Fprintf(p.w, "%s %-32s %-12s %s %s\n",
			p.dot(r.Status), truncate(r.Name, 32), r.Status.Label(), p.priority(r.Priority), p.dim(r.ID))
	}
}

func (p *printer) show(r core.Record) {
	title := p.style(lipgloss.NewStyle().Foreground(p.pal.accent).Bold(true), r.Name)
	fmt.Fprintf(p.w, "%s %s\n", p.dot(r.Status), title)
	fmt.Fprintf(p.w, "  %-10s %s\n", p.dim("id"), r.ID)
	fmt.Fprintf(p.w, "  %-10s %s\n", p.dim("status"), r.Status.Label())
	fmt.Fprintf(p.w, "  %-10s %s\n", p.dim("priority"), strings.TrimSpace(p.priority(r.Priority)))
	fmt.Fprintf(p.w, "  %-10s %s\n", p.dim("assigned"), dateOrDash(r.Assigned))
	fmt.Fprintf(p.w, "  %-10s %s\n", p.dim("completed"), dateOrDash(r.Completed))
	if r.Goals != "" {
		fmt.Fprintf(p.w, "\n%s\n%s\n", p.dim("goals"), indent(r.Goals))
	}
	if r.Notes != "" {
		fmt.Fprintf(p.w, "\n%s\n%s\n", p.dim("notes"), indent(r.Notes))
	}
}

func (p *printer) event(e core.Event) {
	stamp := p.dim(e.Time.Format("15:04:05"))
	switch e.Type {
	case core.EventExternalChange:
		fmt.Fprintf(p.w, "%s %s\n", stamp, p.style(lipgloss.NewStyle().Foreground(p.pal.urgent), e.String()))
	default:
		fmt.Fprintf(p.w, "%s %s\n", stamp, e.String())
	}
}

func dateOrDash(d *core.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
