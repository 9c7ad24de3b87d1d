package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	dto "github.com/prometheus/client_model/go"

	"github.com/phanxgames/fx"
)

var styles = struct {
	title lipgloss.Style
	node  lipgloss.Style
	muted lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
}{
	title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#20B9B4")),
	node:  lipgloss.NewStyle().Width(12),
	muted: lipgloss.NewStyle().Foreground(lipgloss.Color("#2C4A54")),
	ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("#2CD7C7")),
	err:   lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C")),
}

func printSnapshots(w io.Writer, snaps []fx.Snapshot) {
	for _, s := range snaps {
		fmt.Fprintf(w, "%s %s\n", styles.title.Render(s.Label),
			styles.muted.Render(fmt.Sprintf("frame %d at %v", s.Frame, s.At)))
		for _, name := range sortedKeys(s.Styles) {
			fmt.Fprintf(w, "  %s%s\n", styles.node.Render(name), formatStyles(s.Styles[name]))
		}
	}
}

func printErrors(w io.Writer, errs []error) {
	for _, err := range errs {
		fmt.Fprintf(w, "%s %v\n", styles.err.Render("error"), err)
	}
}

func printMetrics(w io.Writer, families []*dto.MetricFamily) {
	fmt.Fprintln(w, styles.title.Render("metrics"))
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Fprintf(w, "  %s%s %s\n", mf.GetName(), formatLabels(m.GetLabel()), formatValue(mf.GetType(), m))
		}
	}
}

func formatStyles(props map[string]float64) string {
	parts := make([]string, 0, len(props))
	for _, k := range sortedKeys(props) {
		parts = append(parts, k+"="+formatFloat(props[k]))
	}
	return strings.Join(parts, " ")
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func formatValue(typ dto.MetricType, m *dto.Metric) string {
	switch typ {
	case dto.MetricType_COUNTER:
		return formatFloat(m.GetCounter().GetValue())
	case dto.MetricType_GAUGE:
		return formatFloat(m.GetGauge().GetValue())
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		return fmt.Sprintf("count=%d sum=%s", h.GetSampleCount(), formatFloat(h.GetSampleSum()))
	default:
		return "?"
	}
}

// formatFloat rounds to four decimals and drops trailing zeros.
func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
