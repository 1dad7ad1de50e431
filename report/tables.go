package report

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pivolan/hrv_tda_stats/domain/models"
)

func formatCell(v float64, verb string) string {
	return fmt.Sprintf(verb, v)
}

// GroupTestsTable summarises Kruskal–Wallis results, one row per metric.
func GroupTestsTable(results []*models.GroupTestResult) string {
	t := table.NewWriter()
	t.SetTitle("Kruskal–Wallis")
	t.AppendHeader(table.Row{"Metric", "H", "p", "df", "N", "Groups"})
	for _, res := range results {
		t.AppendRow(table.Row{
			res.Metric,
			formatCell(res.H, "%.3f"),
			formatCell(res.P, "%.5f"),
			res.DF,
			res.N,
			len(res.Groups),
		})
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

// GroupSummaryTable lists size, median and mean rank per group.
func GroupSummaryTable(res *models.GroupTestResult) string {
	t := table.NewWriter()
	t.SetTitle("%s by %s", res.Metric, res.GroupColumn)
	t.AppendHeader(table.Row{"Group", "N", "Median", "Mean rank"})
	for _, g := range res.Groups {
		t.AppendRow(table.Row{g.Label, g.N, formatCell(g.Median, "%.3f"), formatCell(g.MeanRank, "%.2f")})
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

// DunnTable renders the adjusted p-value matrix.
func DunnTable(res *models.GroupTestResult) string {
	t := table.NewWriter()
	t.SetTitle("Dunn (Bonferroni): %s", res.Metric)
	header := table.Row{""}
	for _, g := range res.Dunn.Groups {
		header = append(header, g)
	}
	t.AppendHeader(header)
	for i, g := range res.Dunn.Groups {
		row := table.Row{g}
		for _, p := range res.Dunn.P[i] {
			row = append(row, formatCell(p, "%.4f"))
		}
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

// CorrelationTable renders records in input order followed by a count of skipped pairs.
func CorrelationTable(tbl *models.CorrelationTable) string {
	t := table.NewWriter()
	t.SetTitle("Pearson correlations")
	t.AppendHeader(table.Row{"TDA feature", "HRV metric", "r", "p", "n"})
	for _, rec := range tbl.Records {
		t.AppendRow(table.Row{rec.Feature, rec.Metric, formatCell(rec.R, "%.3f"), formatCell(rec.P, "%.5f"), rec.N})
	}
	if len(tbl.Skipped) > 0 {
		t.AppendFooter(table.Row{"skipped", len(tbl.Skipped), "", "", ""})
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}
