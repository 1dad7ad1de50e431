package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pivolan/hrv_tda_stats/domain/models"
)

var correlationHeader = []string{"TDA_Feature", "HRV_Metric", "r", "p"}

var groupTestHeader = []string{"Metric", "H", "p", "df", "N"}

// ErrBadHeader is returned when a CSV does not start with the expected header.
var ErrBadHeader = errors.New("unexpected CSV header")

// formatFloat writes the shortest representation that parses back to v. NaN is an empty cell.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// WriteCorrelationCSV writes records in order under the TDA_Feature,HRV_Metric,r,p header.
func WriteCorrelationCSV(w io.Writer, records []models.CorrelationRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(correlationHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write([]string{rec.Feature, rec.Metric, formatFloat(rec.R), formatFloat(rec.P)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCorrelationCSV parses a file written by WriteCorrelationCSV. N is not stored and stays 0.
func ReadCorrelationCSV(r io.Reader) ([]models.CorrelationRecord, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || !sameHeader(rows[0], correlationHeader) {
		return nil, ErrBadHeader
	}
	records := make([]models.CorrelationRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(correlationHeader) {
			return nil, fmt.Errorf("row %d: want %d fields, got %d", i+2, len(correlationHeader), len(row))
		}
		rv, err := parseFloat(row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: r: %w", i+2, err)
		}
		pv, err := parseFloat(row[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: p: %w", i+2, err)
		}
		records = append(records, models.CorrelationRecord{Feature: row[0], Metric: row[1], R: rv, P: pv})
	}
	return records, nil
}

// WriteGroupTestsCSV writes one Metric,H,p,df,N row per result.
func WriteGroupTestsCSV(w io.Writer, results []*models.GroupTestResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(groupTestHeader); err != nil {
		return err
	}
	for _, res := range results {
		row := []string{res.Metric, formatFloat(res.H), formatFloat(res.P), strconv.Itoa(res.DF), strconv.Itoa(res.N)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCorrelationCSV creates or overwrites path.
func SaveCorrelationCSV(path string, records []models.CorrelationRecord) error {
	return saveFile(path, func(w io.Writer) error { return WriteCorrelationCSV(w, records) })
}

// SaveGroupTestsCSV creates or overwrites path.
func SaveGroupTestsCSV(path string, results []*models.GroupTestResult) error {
	return saveFile(path, func(w io.Writer) error { return WriteGroupTestsCSV(w, results) })
}

func saveFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

func sameHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
