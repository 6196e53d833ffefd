package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
)

const matrixPreviewSize = 12

// Markdown renders the report as a Markdown document with Mermaid charts.
func Markdown(r *Report) string {
	var sb strings.Builder
	sb.WriteString("# Toll Analysis Report\n\n")
	sb.WriteString(fmt.Sprintf("- Report: `%s`\n", r.ID))
	sb.WriteString(fmt.Sprintf("- Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("- Reference id: %d\n\n", r.ReferenceID))
	for _, w := range r.Warnings {
		sb.WriteString(fmt.Sprintf("> Warning: %s\n\n", w))
	}

	if r.CarMatrix != nil {
		sb.WriteString("## Car Matrix\n\n")
		sb.WriteString(GenerateMatrixTable(r.CarMatrix, matrixPreviewSize))
		sb.WriteString("\n## Adjusted Car Matrix\n\n")
		sb.WriteString(GenerateMatrixTable(r.AdjustedCarMatrix, matrixPreviewSize))
		sb.WriteString("\n")
	}
	if len(r.TypeCounts) > 0 {
		sb.WriteString("## Car Categories\n\n")
		sb.WriteString(GenerateTypeCountChart(r.TypeCounts))
		sb.WriteString("\n\n")
	}
	if r.BusIndexes != nil {
		sb.WriteString(fmt.Sprintf("## Bus Outliers\n\nRows above twice the mean: %v\n\n", r.BusIndexes))
	}
	if r.Routes != nil {
		sb.WriteString(fmt.Sprintf("## Heavy Truck Routes\n\n%s\n\n", joinOrNone(r.Routes)))
	}
	if len(r.Coverage) > 0 {
		complete := 0
		for _, c := range r.Coverage {
			if c.Complete {
				complete++
			}
		}
		sb.WriteString(fmt.Sprintf("## Time Coverage\n\n%d of %d id pairs cover a full week.\n\n", complete, len(r.Coverage)))
	}
	if r.DistanceMatrix != nil {
		sb.WriteString("## Distance Matrix\n\n")
		sb.WriteString(GenerateMatrixTable(r.DistanceMatrix, matrixPreviewSize))
		sb.WriteString(fmt.Sprintf("\nIds within 10%% of %d: %v\n\n", r.ReferenceID, r.NearbyIDs))
	}
	if len(r.FlatSummary) > 0 {
		sb.WriteString("## Flat Toll Rates\n\n")
		sb.WriteString(GenerateRateChart("Mean Flat Toll by Vehicle", r.FlatSummary))
		sb.WriteString("\n\n")
	}
	if len(r.TimedSummary) > 0 {
		sb.WriteString("## Time-Based Toll Rates\n\n")
		sb.WriteString(GenerateRateChart("Mean Time-Based Toll by Vehicle", r.TimedSummary))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func joinOrNone(values []any) string {
	if len(values) == 0 {
		return "_none_"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}

var htmlPage = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Toll Analysis Report {{.ID}}</title>
<script type="module">
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs";
mermaid.initialize({ startOnLoad: true });
</script>
</head>
<body>
<h1>Toll Analysis Report</h1>
<p>Report {{.ID}}, generated {{.Generated}}</p>
{{range .Charts}}<pre class="mermaid">
{{.}}
</pre>
{{end}}<h2>Data</h2>
<pre>{{.JSON}}</pre>
</body>
</html>
`))

// HTML renders a standalone page with the report's charts and its JSON.
func HTML(r *Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	var charts []string
	for _, c := range []string{
		GenerateTypeCountChart(r.TypeCounts),
		GenerateRateChart("Mean Flat Toll by Vehicle", r.FlatSummary),
		GenerateRateChart("Mean Time-Based Toll by Vehicle", r.TimedSummary),
	} {
		if c != "" {
			charts = append(charts, stripFence(c))
		}
	}

	var buf bytes.Buffer
	err = htmlPage.Execute(&buf, struct {
		ID        string
		Generated string
		Charts    []string
		JSON      string
	}{r.ID, r.GeneratedAt.Format("2006-01-02 15:04:05 MST"), charts, string(data)})
	if err != nil {
		return nil, fmt.Errorf("failed to render report page: %w", err)
	}
	return buf.Bytes(), nil
}

func stripFence(chart string) string {
	chart = strings.TrimPrefix(chart, "```mermaid\n")
	return strings.TrimSuffix(chart, "```")
}

// Paths lists the files written for one report.
type Paths struct {
	JSON     string
	Markdown string
	HTML     string
}

// Write stores the report as JSON, Markdown and HTML files in dir.
func Write(dir string, r *Report) (Paths, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Paths{}, fmt.Errorf("failed to create report directory: %w", err)
	}

	base := filepath.Join(dir, "report-"+r.ID)
	p := Paths{JSON: base + ".json", Markdown: base + ".md", HTML: base + ".html"}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return Paths{}, fmt.Errorf("failed to encode report: %w", err)
	}
	page, err := HTML(r)
	if err != nil {
		return Paths{}, err
	}

	for path, content := range map[string][]byte{
		p.JSON:     data,
		p.Markdown: []byte(Markdown(r)),
		p.HTML:     page,
	} {
		if err := os.WriteFile(path, content, 0644); err != nil {
			return Paths{}, fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	log.Info().Str("dir", dir).Str("report", r.ID).Msg("Report written")
	return p, nil
}

// Open shows the HTML report in the default browser.
func Open(p Paths) error {
	return browser.OpenFile(p.HTML)
}
