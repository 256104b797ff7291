package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sorokid/internal/drill"
	"sorokid/internal/regression"
	"sorokid/internal/soroban"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	Accent  = lipgloss.Color("#8BC34A")
	Muted   = lipgloss.Color("#6b7280")
	Failure = lipgloss.Color("#e53935")
	Warning = lipgloss.Color("#FFC107")
	Info    = lipgloss.Color("#2196F3")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(Info)
	bodyStyle     = lipgloss.NewStyle().PaddingLeft(3)
	demoStyle     = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(Muted).Italic(true)
	warnStyle     = lipgloss.NewStyle().Foreground(Warning).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	failStyle     = lipgloss.NewStyle().Foreground(Failure).Bold(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Border(lipgloss.RoundedBorder()).BorderForeground(Info).Padding(0, 1)
	techniqueCols = map[drill.Technique]lipgloss.Color{
		drill.Basic:       Muted,
		drill.SmallFriend: Info,
		drill.BigFriend:   Warning,
		drill.CreateNum:   Accent,
	}
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// renderSequence formats a step sequence for the terminal.
func renderSequence(problem string, seq soroban.Sequence) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(problem))
	sb.WriteString("\n")

	if seq.IsFallback() {
		in := seq.Last()
		sb.WriteString("\n")
		sb.WriteString(warnStyle.Render(fmt.Sprintf("%s %s", in.Label, in.Title)))
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("  (%s)", in.Fallback)))
		sb.WriteString("\n")
		sb.WriteString(bodyStyle.Render(in.ActionText))
		sb.WriteString("\n")
		return sb.String()
	}

	for _, in := range seq.Steps() {
		sb.WriteString("\n")
		sb.WriteString(titleStyle.Render(fmt.Sprintf("%s %s", in.Label, in.Title)))
		if in.Checked() {
			sb.WriteString("  ")
			sb.WriteString(demoStyle.Render(fmt.Sprintf("→ %d", in.DemoValue)))
		} else {
			sb.WriteString("  ")
			sb.WriteString(mutedStyle.Render("(read only)"))
		}
		sb.WriteString("\n")
		sb.WriteString(bodyStyle.Render(in.ActionText))
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderExercise formats one drill problem.
func renderExercise(i int, ex drill.Exercise) string {
	color, ok := techniqueCols[ex.Technique]
	if !ok {
		color = Muted
	}
	tag := lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("[%s]", ex.Technique))
	line := fmt.Sprintf("%2d. %-20s %s", i+1, ex.Display, tag)
	if ex.Fallback {
		line += " " + mutedStyle.Render("(fallback)")
	}
	return line
}

// renderReport formats a battery report.
func renderReport(path string, r *regression.Report) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("Battery %s", path)))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("run " + r.RunID))
	sb.WriteString("\n\n")

	for _, res := range r.Results {
		mark := okStyle.Render("PASS")
		if !res.Success {
			mark = failStyle.Render("FAIL")
		}
		line := fmt.Sprintf("%s  %-24s %-16s %2d steps", mark, res.ProblemID, res.Problem, res.Steps)
		if res.Fallback != "" {
			line += mutedStyle.Render(fmt.Sprintf(" (%s fallback)", res.Fallback))
		}
		sb.WriteString(line)
		sb.WriteString("\n")
		if res.Error != "" {
			sb.WriteString(bodyStyle.Render(failStyle.Render(res.Error)))
			sb.WriteString("\n")
		}
	}

	s := r.Summary
	summary := fmt.Sprintf("%d/%d passed, %d failed, %d fallbacks in %dms", s.Passed, s.Total, s.Failed, s.Fallbacks, s.DurationMs)
	sb.WriteString("\n")
	if r.OK() {
		sb.WriteString(okStyle.Render(summary))
	} else {
		sb.WriteString(failStyle.Render(summary))
	}
	sb.WriteString("\n")
	return sb.String()
}
