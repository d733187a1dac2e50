package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/tagdict/internal/diag"
)

// MarkdownWriter outputs run summaries in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeSources(md, summary)
	w.writeDiagnostics(md, summary)
	w.writeCoverage(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *Summary) {
	md.H1("tagdict Run Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + s.RunID + "`"},
			{"Version", s.Version},
			{"Started", s.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", s.Duration.String()},
			{"Status", s.Status()},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSources(md *markdown.Markdown, s *Summary) {
	md.H2("Sources")
	md.PlainText("")

	if len(s.Sources) == 0 {
		md.PlainText("No sources were parsed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(s.Sources))
	for _, src := range s.Sources {
		rows = append(rows, []string{
			src.Name,
			"`" + src.Entry + "`",
			strconv.Itoa(src.Records),
			orDash(src.Output),
			orDash(shortDigest(src.Digest)),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Source", "Entry", "Records", "Output", "Digest"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeDiagnostics(md *markdown.Markdown, s *Summary) {
	md.H2("Diagnostics")
	md.PlainText("")

	rows := make([][]string, 0, len(diag.Kinds()))
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Diagnostics by Kind"),
		piechart.WithShowData(true),
	)
	for _, kind := range diag.Kinds() {
		n := s.DiagnosticCounts[kind.String()]
		if n == 0 {
			continue
		}
		rows = append(rows, []string{kind.String(), strconv.Itoa(n)})
		chart.LabelAndIntValue(kind.String(), uint64(n))
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(s.TotalDiagnostics) + "**"})
	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if s.TotalDiagnostics > 0 {
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case s.Critical:
		md.Cautionf("Critical diagnostics were recorded. %d diagnostic(s) in total.", s.TotalDiagnostics)
	case s.TotalDiagnostics > 0:
		md.Warningf("%d non-critical diagnostic(s) were recorded.", s.TotalDiagnostics)
	default:
		md.Tip("No diagnostics were recorded.")
	}
	md.PlainText("")

	if len(s.Diagnostics) == 0 {
		return
	}

	items := make([]string, 0, len(s.Diagnostics)+1)
	for _, d := range s.Diagnostics {
		items = append(items, formatDiagnostic(d))
	}
	if rest := s.TotalDiagnostics - len(s.Diagnostics); rest > 0 {
		items = append(items, fmt.Sprintf("... and %d more", rest))
	}
	md.BulletList(items...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeCoverage(md *markdown.Markdown, s *Summary) {
	if s.Coverage == nil {
		return
	}
	c := s.Coverage

	md.H2("Dictionary Coverage")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Dictionary", orDash(s.Dictionary)},
			{"English tags", strconv.Itoa(c.Total)},
			{"Matched", strconv.Itoa(c.Matched)},
			{"Missing", strconv.Itoa(c.Missing)},
			{"Coverage", fmt.Sprintf("%.1f%%", c.Ratio()*100)},
		},
	})
	md.PlainText("")

	if len(c.MissingNames) > 0 {
		md.Details("English tags without a Japanese counterpart", strings.Join(c.MissingNames, ", "))
		md.PlainText("")
	}
	if len(c.UnmatchedForeign) > 0 {
		md.Details("Japanese foreign names not found in the English list", strings.Join(c.UnmatchedForeign, ", "))
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [tagdict](https://github.com/nao1215/tagdict)*")
}

func formatDiagnostic(d DiagnosticLine) string {
	loc := ""
	if d.File != "" {
		loc = fmt.Sprintf(" (%s:%d)", d.File, d.Line)
	}
	return fmt.Sprintf("[%s] %s: %s%s", d.Severity, d.Kind, d.Message, loc)
}

func shortDigest(digest string) string {
	if len(digest) <= 12 {
		return digest
	}
	return digest[:12]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
