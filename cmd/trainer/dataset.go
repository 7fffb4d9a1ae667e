package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"loan-approval/classifier"
	"loan-approval/features"
	"loan-approval/logger"
)

const (
	serviceTarget = "loan_status"
	batchTarget   = "Loan_Status"
)

// table is a CSV file with trimmed, NFC-normalized headers and cells.
type table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

func cleanCell(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func readTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty CSV file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	t := &table{header: make([]string, len(header)), index: make(map[string]int, len(header))}
	for i, h := range header {
		name := cleanCell(strings.TrimPrefix(h, "\ufeff"))
		t.header[i] = name
		t.index[name] = i
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make([]string, len(t.header))
		for i := range row {
			if i < len(rec) {
				row[i] = cleanCell(rec[i])
			}
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func (t *table) require(names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := t.index[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing column(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

func (t *table) cell(row []string, name string) string {
	return row[t.index[name]]
}

// dataset is a set of training records with binary labels.
type dataset struct {
	columns []classifier.Column
	rows    []classifier.Record
	y       []int
}

// serviceDataset reads the applicant CSV. Numeric cells must parse; line
// numbers in errors count the header as line 1.
func serviceDataset(t *table) (*dataset, error) {
	names := append(append([]string{}, features.NumericFeatures...), features.CategoricalFeatures...)
	if err := t.require(append(names, serviceTarget)...); err != nil {
		return nil, err
	}

	ds := &dataset{columns: features.ServiceColumns()}
	for i, row := range t.rows {
		cells := make(map[string]classifier.Value, len(names))
		for _, n := range features.NumericFeatures {
			f, err := strconv.ParseFloat(t.cell(row, n), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: %w", i+2, n, err)
			}
			cells[n] = classifier.Num(f)
		}
		for _, n := range features.CategoricalFeatures {
			cells[n] = classifier.Cat(t.cell(row, n))
		}
		rec, err := classifier.NewRecord(names, cells)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		ds.rows = append(ds.rows, rec)
		ds.y = append(ds.y, label(strings.EqualFold(t.cell(row, serviceTarget), "approved")))
	}
	return ds, nil
}

// batchDataset reads the classic loan-prediction CSV through the same
// preparation the scorer applies. Rows the scorer would reject are skipped.
func batchDataset(t *table, log logger.Logger) (*dataset, error) {
	if err := t.require(append(append([]string{}, features.BatchInputKeys...), batchTarget)...); err != nil {
		return nil, err
	}

	ds := &dataset{columns: features.BatchColumns()}
	skipped := 0
	for i, row := range t.rows {
		input := make(map[string]interface{}, len(features.BatchInputKeys))
		for _, k := range features.BatchInputKeys {
			input[k] = t.cell(row, k)
		}
		rec, err := features.PrepareBatch(input)
		if err != nil {
			skipped++
			log.Debug("Skipping row", map[string]interface{}{"line": i + 2, "error": err.Error()})
			continue
		}
		ds.rows = append(ds.rows, rec)
		ds.y = append(ds.y, label(t.cell(row, batchTarget) == "Y"))
	}
	if skipped > 0 {
		log.Warn("Skipped malformed rows", map[string]interface{}{"count": skipped})
	}
	return ds, nil
}

func label(positive bool) int {
	if positive {
		return 1
	}
	return 0
}
