package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/target/rightname-go/internal/domain/model"
	"github.com/target/rightname-go/internal/progress"
)

const barWidth = 30

type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	filled  lipgloss.Style
	empty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		filled:  lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
		empty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}

// progressLine renders one line of the progress display.
func (s styles) progressLine(snap progress.Snapshot) string {
	pct := min(max(snap.Displayed, 0), 100)
	filled := pct * barWidth / 100
	bar := s.filled.Render(strings.Repeat("█", filled)) + s.empty.Render(strings.Repeat("░", barWidth-filled))

	status := snap.StageLabel()
	eta := progress.FormatETA(snap.ETA)
	switch {
	case snap.Failed:
		status = s.failure.Render("Failed during: " + snap.StageLabel())
		eta = ""
	case snap.Done:
		status = s.success.Render(snap.StageLabel())
		eta = ""
	}

	line := fmt.Sprintf("%s %3d%%  %s", bar, pct, status)
	if eta != "" {
		line += "  " + s.muted.Render(eta)
	}
	return line
}

// stageList renders the pipeline checklist.
func (s styles) stageList(snap progress.Snapshot) string {
	var b strings.Builder
	for _, st := range model.PipelineStages {
		switch {
		case snap.IsCompleted(st):
			b.WriteString(s.success.Render("  ✓ " + st.Label()))
		case st == snap.Stage:
			b.WriteString(s.title.Render("  › " + st.Label()))
		default:
			b.WriteString(s.muted.Render("    " + st.Label()))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// writeReport prints the headline of a report.
func (s styles) writeReport(w io.Writer, r *model.Report) error {
	var b strings.Builder
	b.WriteString(s.title.Render("Report " + r.ID))
	b.WriteByte('\n')
	if r.ExecutiveSummary != "" {
		b.WriteString(r.ExecutiveSummary)
		b.WriteByte('\n')
	}
	for _, score := range r.BrandScores {
		fmt.Fprintf(&b, "  %-24s %5.1f  %s\n", score.BrandName, score.NameScore, s.verdict(score.Verdict))
		if score.Summary != "" {
			b.WriteString(s.muted.Render("    " + score.Summary))
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (s styles) verdict(v string) string {
	switch strings.ToUpper(v) {
	case "GO":
		return s.success.Render(v)
	case "REJECT", "NO-GO":
		return s.failure.Render(v)
	default:
		return s.warning.Render(v)
	}
}
