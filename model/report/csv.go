package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// WriteCSV writes t to <dir>/<name>.csv and returns the path.
func WriteCSV(dir string, t Table) (string, error) {
	path := filepath.Join(dir, t.Name+".csv")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(append([]string{"Year"}, t.Columns...)); err != nil {
		return "", fmt.Errorf("writing CSV header: %w", err)
	}
	for i, y := range t.Years {
		row := make([]string, 0, len(t.Rows[i])+1)
		row = append(row, strconv.Itoa(y))
		for _, v := range t.Rows[i] {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("writing CSV row %d: %w", y, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flushing %s: %w", path, err)
	}
	return path, nil
}
