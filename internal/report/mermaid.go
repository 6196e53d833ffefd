package report

import (
	"fmt"
	"math"
	"strings"

	"tollcalc/internal/matrix"
	"tollcalc/internal/traffic"
)

// GenerateTypeCountChart creates a Mermaid pie chart of car volume categories.
func GenerateTypeCountChart(counts []traffic.CategoryCount) string {
	if len(counts) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("pie showData\n")
	sb.WriteString("    title \"Car Volume Categories\"\n")
	for _, c := range counts {
		sb.WriteString(fmt.Sprintf("    \"%s\" : %d\n", c.Category, c.Count))
	}
	sb.WriteString("```")
	return sb.String()
}

// GenerateRateChart creates a Mermaid bar chart of the mean toll per vehicle class.
func GenerateRateChart(title string, summary []VehicleSummary) string {
	if len(summary) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxY := 0.0
	for _, s := range summary {
		labels = append(labels, fmt.Sprintf("%q", s.Vehicle))
		values = append(values, fmt.Sprintf("%.1f", s.MeanRate))
		maxY = math.Max(maxY, s.MeanRate)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title %q\n", title))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	// Headroom above the tallest bar
	sb.WriteString(fmt.Sprintf("    y-axis \"Mean Toll\" 0 --> %d\n", int(math.Ceil(maxY*1.1))+1))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateMatrixTable renders a matrix as a Markdown table, truncated to limit rows and
// columns. Absent cells are left blank.
func GenerateMatrixTable(m *matrix.Matrix, limit int) string {
	if m == nil {
		return ""
	}
	rows, cols := m.Shape()
	if rows == 0 || cols == 0 {
		return "_empty matrix_"
	}
	rowKeys, colKeys := m.RowKeys(), m.ColKeys()
	showRows, showCols := min(rows, limit), min(cols, limit)

	var sb strings.Builder
	sb.WriteString("| |")
	for j := 0; j < showCols; j++ {
		sb.WriteString(fmt.Sprintf(" %d |", colKeys[j]))
	}
	sb.WriteString("\n|---|")
	sb.WriteString(strings.Repeat("---|", showCols))
	sb.WriteString("\n")

	for i := 0; i < showRows; i++ {
		sb.WriteString(fmt.Sprintf("| **%d** |", rowKeys[i]))
		for j := 0; j < showCols; j++ {
			if v, ok := m.At(i, j); ok {
				sb.WriteString(fmt.Sprintf(" %.1f |", v))
			} else {
				sb.WriteString("  |")
			}
		}
		sb.WriteString("\n")
	}
	if showRows < rows || showCols < cols {
		sb.WriteString(fmt.Sprintf("\n_showing %d×%d of %d×%d_\n", showRows, showCols, rows, cols))
	}
	return sb.String()
}
