package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-quality/internal/types"
	"github.com/rxtech-lab/argo-quality/internal/writer"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for secondary text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	fairStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	poorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	cellStyle = lipgloss.NewStyle().PaddingRight(2)
)

// FormatScore renders a score with a colour by band: 80 and above is good,
// below 50 is poor.
func FormatScore(score float64) string {
	text := fmt.Sprintf("%6.2f", score)

	switch {
	case score >= 80:
		return goodStyle.Render(text)
	case score >= 50:
		return fairStyle.Render(text)
	default:
		return poorStyle.Render(text)
	}
}

// RenderSummary renders one block per timeframe with the gap counts and the
// scorecard components.
func RenderSummary(report writer.Report) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Data quality report"))
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(fmt.Sprintf("run %s  source %s", report.RunID, report.Source)))
	b.WriteString("\n")

	for _, tf := range report.Timeframes {
		b.WriteString("\n")

		header := fmt.Sprintf("%s  bars %d  total %s", tf.Timeframe, tf.Bars, FormatScore(tf.Scorecard.Total))
		if tf.Period != nil {
			header += "  period " + tf.Period.Label
			if tf.Period.Fallback {
				header += " (no bars, full series used)"
			}
		}

		b.WriteString(TitleStyle.Render(header))
		b.WriteString("\n")

		b.WriteString(HelpStyle.Render(fmt.Sprintf("gaps: weekend %d  holiday %d  custom %d  anomalous %d",
			tf.Gaps[string(types.ReasonWeekendClosed)], tf.Gaps[string(types.ReasonHoliday)],
			tf.Gaps[string(types.ReasonCustom)], tf.Gaps["anomalous"])))
		b.WriteString("\n")

		for _, c := range tf.Scorecard.Components {
			row := lipgloss.JoinHorizontal(lipgloss.Top,
				cellStyle.Width(14).Render(c.Name),
				cellStyle.Width(8).Render(fmt.Sprintf("%.2f", c.Weight)),
				FormatScore(c.Value),
			)
			b.WriteString("  ")
			b.WriteString(row)
			b.WriteString("\n")
		}

		if tf.Calendar != nil {
			b.WriteString(HelpStyle.Render(fmt.Sprintf("calendar: %d of %d high-impact events matched",
				tf.Calendar.MatchedHighEvents, tf.Calendar.TotalHighEvents)))
			b.WriteString("\n")
		}
	}

	return b.String()
}
