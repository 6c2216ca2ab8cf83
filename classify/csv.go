package classify

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var classifiedColumns = []string{"brand", "category_large", "category_mid", "category_small", "category_path"}

// TitledCSV is a parsed input CSV plus the index of its title column.
type TitledCSV struct {
	Header   []string
	Rows     [][]string
	TitleCol int
}

// ReadTitledCSV loads a crawler result CSV, or any CSV carrying a
// title column. A UTF-8 BOM on the first header cell is stripped and
// the column match is case insensitive.
func ReadTitledCSV(path string) (*TitledCSV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Tolerate ragged rows in hand-edited files.
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read input csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("input csv is empty: %s", path)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "﻿")
	}

	titleCol := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "title") {
			titleCol = i
			break
		}
	}
	if titleCol < 0 {
		return nil, fmt.Errorf("input csv has no title column: %s", path)
	}

	return &TitledCSV{Header: header, Rows: records[1:], TitleCol: titleCol}, nil
}

// Titles returns the title cell of every row, blank for rows too short
// to have one.
func (t *TitledCSV) Titles() []string {
	titles := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if t.TitleCol < len(row) {
			titles[i] = strings.TrimSpace(row[t.TitleCol])
		}
	}
	return titles
}

// WriteClassifiedCSV writes the input rows back out with the five
// classification columns appended. classes must line up with in.Rows
// by position.
func WriteClassifiedCSV(path string, in *TitledCSV, classes []TitleClass) error {
	if len(classes) != len(in.Rows) {
		return fmt.Errorf("classified %d rows but input has %d", len(classes), len(in.Rows))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output csv: %w", err)
	}
	defer f.Close()

	// Excel needs the BOM to detect UTF-8 in Korean CSVs.
	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	w := csv.NewWriter(f)
	header := append(append([]string{}, in.Header...), classifiedColumns...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	width := len(in.Header)
	for i, row := range in.Rows {
		out := make([]string, width, width+len(classifiedColumns))
		copy(out, row)
		c := classes[i]
		out = append(out, c.Brand, c.CategoryLarge, c.CategoryMid, c.CategorySmall, c.Path())
		if err := w.Write(out); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush output csv: %w", err)
	}
	return nil
}
