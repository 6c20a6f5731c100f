package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"reality-archive/internal/database"
	"reality-archive/internal/services"
	"reality-archive/internal/utils"
)

type palette struct {
	title  lipgloss.Color
	accent lipgloss.Color
	muted  lipgloss.Color
	warn   lipgloss.Color
	ok     lipgloss.Color
}

var (
	lightPalette = palette{
		title:  lipgloss.Color("#1E3A8A"),
		accent: lipgloss.Color("#7C3AED"),
		muted:  lipgloss.Color("#6B7280"),
		warn:   lipgloss.Color("#B45309"),
		ok:     lipgloss.Color("#047857"),
	}
	darkPalette = palette{
		title:  lipgloss.Color("#93C5FD"),
		accent: lipgloss.Color("#C4B5FD"),
		muted:  lipgloss.Color("#9CA3AF"),
		warn:   lipgloss.Color("#FBBF24"),
		ok:     lipgloss.Color("#34D399"),
	}
)

// printer renders command output in the stored theme.
type printer struct {
	out    io.Writer
	title  lipgloss.Style
	accent lipgloss.Style
	muted  lipgloss.Style
	warn   lipgloss.Style
	ok     lipgloss.Style
	box    lipgloss.Style
}

func newPrinter(out io.Writer, dark bool) *printer {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return &printer{
		out:    out,
		title:  lipgloss.NewStyle().Bold(true).Foreground(p.title),
		accent: lipgloss.NewStyle().Foreground(p.accent),
		muted:  lipgloss.NewStyle().Foreground(p.muted),
		warn:   lipgloss.NewStyle().Foreground(p.warn),
		ok:     lipgloss.NewStyle().Foreground(p.ok),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.accent).
			Padding(0, 1),
	}
}

func (p *printer) line(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}

func (p *printer) Title(s string) {
	p.line(p.title.Render(s))
}

func (p *printer) Muted(s string) {
	p.line(p.muted.Render(s))
}

func (p *printer) Warn(s string) {
	p.line(p.warn.Render(s))
}

func (p *printer) OK(s string) {
	p.line(p.ok.Render(s))
}

func (p *printer) Entry(e database.Entry) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s  %s\n", utils.StatusEmoji(e), p.title.Render(e.Symptom), p.muted.Render(e.ID))
	fmt.Fprintf(&sb, "%s %s · %d/10 · %s\n",
		utils.GetBodyPartEmoji(e.BodyPart), utils.GetBodyPartName(e.BodyPart), e.Intensity, utils.FormatForDisplay(e.Timestamp))
	if len(e.CatastrophicWords) > 0 {
		fmt.Fprintf(&sb, "⚠️  %s\n", p.warn.Render(strings.Join(e.CatastrophicWords, ", ")))
	}
	fmt.Fprintf(&sb, "🧪 %s (%s)\n", e.Experiment, utils.FormatForDisplay(e.ExperimentTime))
	fmt.Fprintf(&sb, "🔮 %s", e.Prediction)
	if e.Completed {
		fmt.Fprintf(&sb, "\n📌 %s", p.accent.Render(e.ResultText()))
	}
	p.line(p.box.Render(sb.String()))
}

func (p *printer) Stats(s database.Stats) {
	p.Title("📊 Estadísticas")
	rows := []struct {
		label string
		value string
	}{
		{"Experimentos", fmt.Sprint(s.TotalExperiments)},
		{"Completados", fmt.Sprint(s.CompletedExperiments)},
		{"Predicciones erróneas", fmt.Sprintf("%d%%", s.PredictionAccuracy)},
		{"Interpretaciones catastróficas", fmt.Sprint(s.CatastrophicReductions)},
		{"Racha", fmt.Sprintf("%d días", s.Streak)},
		{"Intensidad media", fmt.Sprintf("%d/10", s.AvgIntensity)},
	}
	for _, r := range rows {
		p.line(fmt.Sprintf("  %-32s %s", r.label, p.accent.Render(r.value)))
	}
}

func (p *printer) Achievements(unlocked func(id string) bool) {
	p.Title("🏆 Logros")
	for _, a := range services.AchievementCatalog {
		if unlocked(a.ID) {
			p.line(fmt.Sprintf("  %s %s · %s", a.Icon, p.ok.Render(a.Title), a.Description))
			continue
		}
		p.line(p.muted.Render(fmt.Sprintf("  🔒 %s · %s", a.Title, a.Description)))
	}
}

// Events prints what a command produced for the user, e.g. unlocks.
func (p *printer) Events(events []services.Event) {
	for _, e := range events {
		p.line(p.box.Render(p.title.Render(e.Title) + "\n" + e.Body))
	}
}
