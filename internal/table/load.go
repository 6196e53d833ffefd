package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// Load reads a relation from a .csv or .xlsx file. For workbooks, sheet selects the
// worksheet; an empty sheet means the first one.
func Load(path, sheet string) (*Relation, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var (
		rows [][]string
		err  error
	)
	switch ext {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path, sheet)
	default:
		return nil, fmt.Errorf("unsupported input extension: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	rel, err := FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	log.Debug().Str("path", path).Int("rows", rel.Len()).Strs("columns", rel.Columns()).Msg("Loaded relation")
	return rel, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	return f.GetRows(sheet)
}

// FromRows builds a relation from a header row followed by data rows, inferring cell types.
// A leading unnamed column (a serialized row index) is dropped.
func FromRows(rows [][]string) (*Relation, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no header row")
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	skip := 0
	if len(header) > 0 && header[0] == "" {
		skip = 1
	}

	seen := make(map[string]bool)
	for _, h := range header[skip:] {
		if h == "" {
			return nil, fmt.Errorf("empty column name in header")
		}
		if seen[h] {
			return nil, fmt.Errorf("duplicate column %q in header", h)
		}
		seen[h] = true
	}

	rel := New(header[skip:]...)
	for _, raw := range rows[1:] {
		if isBlank(raw) {
			continue
		}
		cells := make([]any, 0, len(header)-skip)
		for i := skip; i < len(header); i++ {
			if i < len(raw) {
				cells = append(cells, ParseCell(strings.TrimSpace(raw[i])))
			} else {
				cells = append(cells, nil)
			}
		}
		rel.Append(cells...)
	}
	return rel, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
