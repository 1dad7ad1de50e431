package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const SEPARATOR = ','

// Load reads a CSV (plain, .gz, .lz4 or .zip) or an .xlsx workbook and validates it against schema.
func Load(filePath string, schema Schema) (*Table, error) {
	var (
		records [][]string
		err     error
	)
	if strings.EqualFold(filepath.Ext(filePath), ".xlsx") {
		records, err = readXLSX(filePath)
	} else {
		records, err = readCSVFile(filePath)
	}
	if err != nil {
		return nil, err
	}
	t, err := fromRawRecords(records, schema)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filePath, err)
	}
	logrus.WithFields(logrus.Fields{
		"file":    filePath,
		"rows":    t.Len(),
		"columns": len(t.Columns()),
	}).Debug("table loaded")
	return t, nil
}

// ReadCSV parses CSV text from r and validates it against schema.
func ReadCSV(r io.Reader, schema Schema) (*Table, error) {
	records, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return fromRawRecords(records, schema)
}

func readCSVFile(filePath string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(innerName(filePath)), ".xlsx") {
		return nil, fmt.Errorf("%s: compressed workbooks are not supported", filePath)
	}
	src, err := openSource(filePath)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	records, err := readCSV(src)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	return records, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = SEPARATOR
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func fromRawRecords(records [][]string, schema Schema) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	analysis := AnalyzeHeaders(records[0])
	if analysis == nil {
		return nil, ErrEmptyFile
	}
	rows := records[1:]
	if analysis.FirstRowIsData {
		rows = records
		logrus.WithField("headers", analysis.Headers).Warn("first row looks like data, generated column names")
	}
	t, err := FromRecords(analysis.Headers, rows, schema)
	if err != nil {
		return nil, err
	}
	if err := t.Validate(schema); err != nil {
		return nil, err
	}
	return t, nil
}

func readXLSX(filePath string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", filePath, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w", filePath, ErrEmptyFile)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", filePath, ErrEmptyFile)
	}
	// excelize trims trailing empty cells, pad back to the header width
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			rows[i] = append(row, make([]string, width-len(row))...)
		}
	}
	return rows, nil
}

// IsSchemaError reports whether err carries a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
