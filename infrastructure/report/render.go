package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ahrav/go-fairaudit/internal/domain"
	"github.com/ahrav/go-fairaudit/internal/ports"
)

// Output formats accepted by Render.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// Render writes env to w in the given format.
func Render(w io.Writer, format string, env Envelope, opts Options) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return WriteJSON(w, Filter(env, opts))
	case FormatMarkdown, "md":
		_, err := io.WriteString(w, BuildMarkdown(env, opts))
		return err
	case FormatText, "":
		_, err := io.WriteString(w, BuildText(env, opts))
		return err
	default:
		return fmt.Errorf("%w: report format %q", ports.ErrUnsupportedFormat, format)
	}
}

// WriteJSON writes env as indented JSON.
func WriteJSON(w io.Writer, env Envelope) error {
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	_, err = w.Write(raw)
	return err
}

// BuildMarkdown renders env as a Markdown document with one table per
// metric.
func BuildMarkdown(env Envelope, opts Options) string {
	r := env.Report
	var b strings.Builder

	b.WriteString("# Fairness Audit Report\n\n")
	if env.Dataset != "" {
		b.WriteString(fmt.Sprintf("- Dataset: `%s`\n", env.Dataset))
	}
	if env.RunID != "" {
		b.WriteString(fmt.Sprintf("- Run: `%s`\n", env.RunID))
	}
	b.WriteString(fmt.Sprintf("- Status: **%s**\n", status(r.Passed)))
	b.WriteString(fmt.Sprintf("- Tolerance: `%.4f`\n", r.Tolerance))
	b.WriteString(fmt.Sprintf("- Subjects: `%d`\n", r.Subjects))
	b.WriteString(fmt.Sprintf("- Groups: `%d`\n", len(r.Groups)))

	b.WriteString("\n## Metrics\n\n")
	b.WriteString("| Metric | Disparity | Passed |\n")
	b.WriteString("|---|---:|---:|\n")
	visible := opts.visibleMetrics(r)
	for _, m := range visible {
		b.WriteString(fmt.Sprintf("| %s | %.4f | %t |\n", metricTitle(m), m.Disparity, m.Passed))
	}

	for _, m := range visible {
		if !showsRates(m, visible) {
			continue
		}
		b.WriteString(fmt.Sprintf("\n### %s\n\n", m.Metric))
		b.WriteString("| Group | Rate | Members | TP | FP | FN | TN |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
		for _, gr := range m.Rates {
			c := gr.Counts
			b.WriteString(fmt.Sprintf("| %s | %.4f | %d | %d | %d | %d | %d |\n",
				escapeCell(gr.Group), gr.Rate, c.Members, c.TruePositives, c.FalsePositives, c.FalseNegatives, c.TrueNegatives))
		}
	}

	annotations := Filter(env, opts).Report.Annotations
	if len(annotations) > 0 {
		b.WriteString("\n## Annotations\n\n")
		for _, a := range annotations {
			b.WriteString(fmt.Sprintf("- **%s**: %s (%s)\n", a.Kind, a.Message, strings.Join(a.Groups, ", ")))
		}
	}

	return b.String()
}

// BuildText renders env as a compact plain-text summary for terminals.
func BuildText(env Envelope, opts Options) string {
	r := env.Report
	var b strings.Builder

	name := env.Dataset
	if name == "" {
		name = "dataset"
	}
	b.WriteString(fmt.Sprintf("%s: %s (tolerance %.4f, %d subjects, %d groups)\n",
		name, status(r.Passed), r.Tolerance, r.Subjects, len(r.Groups)))

	visible := opts.visibleMetrics(r)
	for _, m := range visible {
		b.WriteString(fmt.Sprintf("  %-20s disparity=%.4f  %s\n", m.Metric, m.Disparity, status(m.Passed)))
		if !showsRates(m, visible) {
			continue
		}
		for _, gr := range m.Rates {
			b.WriteString(fmt.Sprintf("    %-18s %.4f\n", gr.Group, gr.Rate))
		}
	}

	for _, a := range Filter(env, opts).Report.Annotations {
		b.WriteString(fmt.Sprintf("  note: %s: %s\n", a.Kind, a.Message))
	}
	return b.String()
}

// showsRates reports whether m gets its own per-group rate listing. An alias
// shares the rates of its canonical metric and is listed only when that
// metric is not visible.
func showsRates(m domain.MetricReport[string], visible []domain.MetricReport[string]) bool {
	if m.AliasOf == "" {
		return true
	}
	return !slices.ContainsFunc(visible, func(v domain.MetricReport[string]) bool {
		return v.Metric == m.AliasOf
	})
}

func metricTitle(m domain.MetricReport[string]) string {
	if m.AliasOf != "" {
		return fmt.Sprintf("%s (alias of %s)", m.Metric, m.AliasOf)
	}
	return string(m.Metric)
}

func status(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
