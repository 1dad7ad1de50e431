// Package store persists analysis results to ClickHouse over its MySQL wire protocol.
package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pivolan/hrv_tda_stats/domain/models"
)

const (
	GroupTestsTable   = "hrv_group_tests"
	DunnPairsTable    = "hrv_dunn_pairs"
	CorrelationsTable = "tda_hrv_correlations"

	batchSize = 5000
)

type ColumnInfo struct {
	Name string
	Type string // String Float64 UInt32 UUID DateTime64
}

var tables = map[string][]ColumnInfo{
	GroupTestsTable: {
		{"run_id", "UUID"}, {"created_at", "DateTime64(3)"},
		{"metric", "String"}, {"group_column", "String"},
		{"h", "Float64"}, {"p", "Float64"}, {"df", "UInt32"}, {"n", "UInt32"},
	},
	DunnPairsTable: {
		{"run_id", "UUID"}, {"created_at", "DateTime64(3)"},
		{"metric", "String"}, {"group_a", "String"}, {"group_b", "String"}, {"p_adj", "Float64"},
	},
	CorrelationsTable: {
		{"run_id", "UUID"}, {"created_at", "DateTime64(3)"},
		{"feature", "String"}, {"metric", "String"},
		{"r", "Float64"}, {"p", "Float64"}, {"n", "UInt32"},
	},
}

// execer runs one statement. *gorm.DB is adapted to it so tests can record SQL.
type execer interface {
	Exec(ctx context.Context, sql string) error
}

type gormExecer struct {
	db *gorm.DB
}

func (g gormExecer) Exec(ctx context.Context, sql string) error {
	return g.db.WithContext(ctx).Exec(sql).Error
}

type Store struct {
	db  *gorm.DB
	exe execer
	now func() time.Time
}

// Open connects to ClickHouse. dsn uses the go-sql-driver format, e.g. default:@tcp(127.0.0.1:9004)/default.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to clickhouse: %w", err)
	}
	return &Store{db: db, exe: gormExecer{db: db}, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewRunID derives a stable identifier for one analysis of one input file.
func NewRunID(input string, at time.Time) uuid.UUID {
	return uuid.NewV5(uuid.NamespaceOID, input+"|"+at.UTC().Format(time.RFC3339Nano))
}

// SaveRun creates the result tables when missing and appends every result under one run id.
func (s *Store) SaveRun(ctx context.Context, input string, groupTests []*models.GroupTestResult, correlations *models.CorrelationTable) (uuid.UUID, error) {
	at := s.now()
	runID := NewRunID(input, at)
	for _, name := range []string{GroupTestsTable, DunnPairsTable, CorrelationsTable} {
		if err := s.exe.Exec(ctx, createTableSQL(name, tables[name])); err != nil {
			return runID, fmt.Errorf("create %s: %w", name, err)
		}
	}

	stamp := at.UTC().Format("2006-01-02 15:04:05.000")
	batches := map[string][][]string{
		GroupTestsTable: groupTestRows(runID, stamp, groupTests),
		DunnPairsTable:  dunnRows(runID, stamp, groupTests),
	}
	if correlations != nil {
		batches[CorrelationsTable] = correlationRows(runID, stamp, correlations.Records)
	}
	for _, name := range []string{GroupTestsTable, DunnPairsTable, CorrelationsTable} {
		rows := batches[name]
		for start := 0; start < len(rows); start += batchSize {
			end := start + batchSize
			if end > len(rows) {
				end = len(rows)
			}
			sql, err := insertSQL(name, rows[start:end])
			if err != nil {
				return runID, err
			}
			if err := s.exe.Exec(ctx, sql); err != nil {
				return runID, fmt.Errorf("insert into %s: %w", name, err)
			}
		}
		logrus.WithFields(logrus.Fields{"table": name, "rows": len(rows), "run_id": runID.String()}).Debug("results saved")
	}
	return runID, nil
}

func createTableSQL(name string, columns []ColumnInfo) string {
	fields := make([]string, 0, len(columns))
	for _, c := range columns {
		fields = append(fields, fmt.Sprintf("%s %s", c.Name, c.Type))
	}
	return "CREATE TABLE IF NOT EXISTS " + name + " (" + strings.Join(fields, ",\n") +
		") ENGINE = MergeTree ORDER BY (run_id, created_at) SETTINGS index_granularity = 8192"
}

func insertSQL(name string, rows [][]string) (string, error) {
	b := bytes.NewBufferString("")
	csvWriter := csv.NewWriter(b)
	if err := csvWriter.WriteAll(rows); err != nil {
		return "", err
	}
	return fmt.Sprintf("INSERT INTO "+name+" FORMAT CSV \n%s", b.String()), nil
}

// formatFloat writes NaN as ClickHouse's nan literal.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func groupTestRows(runID uuid.UUID, stamp string, results []*models.GroupTestResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			runID.String(), stamp, r.Metric, r.GroupColumn,
			formatFloat(r.H), formatFloat(r.P), strconv.Itoa(r.DF), strconv.Itoa(r.N),
		})
	}
	return rows
}

// dunnRows stores the upper triangle of each matrix.
func dunnRows(runID uuid.UUID, stamp string, results []*models.GroupTestResult) [][]string {
	rows := make([][]string, 0)
	for _, r := range results {
		groups := r.Dunn.Groups
		for i := range groups {
			for j := i + 1; j < len(groups); j++ {
				rows = append(rows, []string{
					runID.String(), stamp, r.Metric, groups[i], groups[j], formatFloat(r.Dunn.P[i][j]),
				})
			}
		}
	}
	return rows
}

func correlationRows(runID uuid.UUID, stamp string, records []models.CorrelationRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			runID.String(), stamp, rec.Feature, rec.Metric,
			formatFloat(rec.R), formatFloat(rec.P), strconv.Itoa(rec.N),
		})
	}
	return rows
}
