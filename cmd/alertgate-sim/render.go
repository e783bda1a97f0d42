package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"alertgate-sim/internal/gate"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// renderSummary formats a one-line human-readable result for stderr; the
// machine-readable JSON goes to stdout separately.
func renderSummary(s gate.Summary, timeoutMS float64) string {
	style := okStyle
	if math.IsInf(s.P95LatencyMS, 1) || s.P95LatencyMS > timeoutMS {
		style = warnStyle
	}
	return fmt.Sprintf("%s %s  timeout_rate=%.4f missing_rate=%.4f delivered=%d/%d",
		headerStyle.Render("p95"),
		style.Render(formatP95(s.P95LatencyMS)),
		s.TimeoutRate, s.MissingRate, s.Delivered, s.Total)
}

// renderGrid formats the sweep cells as a fixed-width table in grid order.
func renderGrid(points []gate.Point, timeoutMS float64) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-10s %-12s %-12s %-14s %-14s %s",
		"intensity", "concurrency", "p95_ms", "timeout_rate", "missing_rate", "delivered")))
	for _, pt := range points {
		style := okStyle
		if math.IsInf(pt.P95LatencyMS, 1) || pt.P95LatencyMS > timeoutMS {
			style = warnStyle
		}
		b.WriteByte('\n')
		b.WriteString(fmt.Sprintf("%-10g %-12d %-12s %-14.4f %-14.4f %d/%d",
			pt.Intensity, pt.Concurrency,
			style.Render(formatP95(pt.P95LatencyMS)),
			pt.TimeoutRate, pt.MissingRate, pt.Delivered, pt.Total))
	}
	return b.String()
}

func formatP95(v float64) string {
	if math.IsInf(v, 1) {
		return "+Inf"
	}
	return fmt.Sprintf("%.1fms", v)
}
