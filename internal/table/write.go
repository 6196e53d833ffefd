package table

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// MarshalJSON encodes the relation as an array of objects with keys in column order.
func (r *Relation) MarshalJSON() ([]byte, error) {
	buf := []byte{'['}
	for j, row := range r.rows {
		if j > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '{')
		for i, c := range r.columns {
			if i > 0 {
				buf = append(buf, ',')
			}
			key, err := json.Marshal(c)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(row[i])
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", c, j, err)
			}
			buf = append(buf, key...)
			buf = append(buf, ':')
			buf = append(buf, val...)
		}
		buf = append(buf, '}')
	}
	buf = append(buf, ']')
	return buf, nil
}

// WriteCSV writes the relation with a header row. Missing cells are written empty.
func (r *Relation) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.columns); err != nil {
		return err
	}
	record := make([]string, len(r.columns))
	for _, row := range r.rows {
		for i, v := range row {
			record[i] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
