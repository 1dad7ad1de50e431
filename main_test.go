package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/hrv_tda_stats/analysis"
	"github.com/pivolan/hrv_tda_stats/config"
	"github.com/pivolan/hrv_tda_stats/dataset"
	"github.com/pivolan/hrv_tda_stats/report"
)

func TestMain(m *testing.M) {
	analysis.Console = io.Discard
	os.Exit(m.Run())
}

func writeMerged(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Age_Group,mean_RR,SDNN_RR,RMSSD_RR,PNN50_RR,N1,TP1,MP1,mu1,PE1\n")
	groups := []string{"18-30", "31-50", "51+"}
	for i := 0; i < 12; i++ {
		g := i % 3
		fmt.Fprintf(&b, "%s,%d,%d,%d,%.1f,%d,%.2f,%.3f,%.2f,%.3f\n",
			groups[g],
			700+10*i+40*g,
			60-3*g+i%4,
			35+i%5-5*g,
			12.5+float64(i%3)-float64(g),
			3+i%4,
			1.5+0.1*float64(i)+0.3*float64(g),
			0.2+0.01*float64(i*i%7),
			0.8+0.05*float64((i*5)%11),
			0.6+0.02*float64((i*3)%8),
		)
	}
	path := filepath.Join(dir, "HRV_TDA_merged.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func testConfig() *config.Config {
	return config.FromEnv(func(string) string { return "" })
}

func TestRunAllStages(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cmd := newRootCommand(cfg, io.Discard)
	cmd.SetArgs([]string{
		"--input", writeMerged(t, dir),
		"--output", filepath.Join(dir, "summary_tables", "TDA_HRV_correlations.csv"),
		"--group-tests", filepath.Join(dir, "summary_tables", "group_tests.csv"),
		"--figures", filepath.Join(dir, "figures"),
		"--report", filepath.Join(dir, "report.html"),
	})
	require.NoError(t, cmd.Execute())

	f, err := os.Open(cfg.CorrelationsOut)
	require.NoError(t, err)
	defer f.Close()
	records, err := report.ReadCorrelationCSV(f)
	require.NoError(t, err)
	assert.Len(t, records, len(config.DefaultTDAFeatures)*len(config.DefaultHRVMetrics))
	assert.Equal(t, "N1", records[0].Feature)
	assert.Equal(t, "mean_RR", records[0].Metric)

	groupCSV, err := os.ReadFile(cfg.GroupTestsOut)
	require.NoError(t, err)
	assert.Equal(t, len(config.DefaultHRVMetrics)+1, strings.Count(string(groupCSV), "\n"))

	for _, name := range []string{"group_boxplots.png", "correlation_heatmap.png"} {
		_, err := os.Stat(filepath.Join(dir, "figures", name))
		assert.NoError(t, err, name)
	}
	html, err := os.ReadFile(cfg.ReportHTML)
	require.NoError(t, err)
	assert.Contains(t, string(html), "heatmap")
}

func TestGroupsCommandPrintsTables(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.CorrelationsOut = filepath.Join(dir, "untouched.csv")
	var out bytes.Buffer
	cmd := newRootCommand(cfg, &out)
	cmd.SetArgs([]string{"groups", "--tables", "--metrics", "mean_RR", "--input", writeMerged(t, dir)})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, strings.ToLower(out.String()), "kruskal")
	_, err := os.Stat(cfg.CorrelationsOut)
	assert.True(t, os.IsNotExist(err), "groups must not write correlations")
}

func TestMissingColumnFails(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cmd := newRootCommand(cfg, io.Discard)
	cmd.SetArgs([]string{"correlate", "--features", "N1,H0", "--input", writeMerged(t, dir), "--output", filepath.Join(dir, "c.csv")})
	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrColumnNotFound)
}

func TestInvalidLogLevel(t *testing.T) {
	cfg := testConfig()
	cfg.LogLevel = "loud"
	cmd := newRootCommand(cfg, io.Discard)
	cmd.SetArgs([]string{"groups"})
	assert.Error(t, cmd.Execute())
}
