package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/pivolan/hrv_tda_stats/analysis"
	"github.com/pivolan/hrv_tda_stats/config"
	"github.com/pivolan/hrv_tda_stats/dataset"
	"github.com/pivolan/hrv_tda_stats/domain/models"
	"github.com/pivolan/hrv_tda_stats/notify"
	"github.com/pivolan/hrv_tda_stats/plot"
	"github.com/pivolan/hrv_tda_stats/report"
	"github.com/pivolan/hrv_tda_stats/store"
)

// pipeline runs the analysis stages against one configuration.
type pipeline struct {
	cfg    *config.Config
	out    io.Writer
	tables bool // print go-pretty tables to out
}

func (p *pipeline) schema() dataset.Schema {
	numeric := make([]string, 0, len(p.cfg.HRVMetrics)+len(p.cfg.TDAFeatures))
	numeric = append(numeric, p.cfg.HRVMetrics...)
	numeric = append(numeric, p.cfg.TDAFeatures...)
	return dataset.NewSchema(p.cfg.GroupColumn, numeric...)
}

func (p *pipeline) load() (*dataset.Table, error) {
	return dataset.Load(p.cfg.Input, p.schema())
}

// groups compares every HRV metric across the groups and writes the optional summary CSV.
func (p *pipeline) groups(t *dataset.Table) ([]*models.GroupTestResult, error) {
	results := make([]*models.GroupTestResult, 0, len(p.cfg.HRVMetrics))
	for _, metric := range p.cfg.HRVMetrics {
		res, err := analysis.CompareGroups(t, metric, p.cfg.GroupColumn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", metric, err)
		}
		if p.tables {
			fmt.Fprintln(p.out, report.GroupSummaryTable(res))
			fmt.Fprintln(p.out, report.DunnTable(res))
		}
		results = append(results, res)
	}
	if p.tables {
		fmt.Fprintln(p.out, report.GroupTestsTable(results))
	}
	if p.cfg.GroupTestsOut != "" {
		if err := report.SaveGroupTestsCSV(p.cfg.GroupTestsOut, results); err != nil {
			return nil, err
		}
		logrus.WithField("file", p.cfg.GroupTestsOut).Info("group tests saved")
	}
	return results, nil
}

// correlate computes the feature × metric table and overwrites the correlations CSV.
func (p *pipeline) correlate(t *dataset.Table) (*models.CorrelationTable, error) {
	corr, err := analysis.ComputeCorrelations(t, p.cfg.TDAFeatures, p.cfg.HRVMetrics)
	if err != nil {
		return nil, err
	}
	for _, s := range corr.Skipped {
		logrus.WithFields(logrus.Fields{"feature": s.Feature, "metric": s.Metric, "n": s.N}).
			Warn("pair skipped, too few paired observations")
	}
	if p.tables {
		fmt.Fprintln(p.out, report.CorrelationTable(corr))
	}
	if p.cfg.CorrelationsOut != "" {
		if err := report.SaveCorrelationCSV(p.cfg.CorrelationsOut, corr.Records); err != nil {
			return nil, err
		}
		logrus.WithField("file", p.cfg.CorrelationsOut).Info("correlations saved")
	}
	return corr, nil
}

// figures renders both PNG figures into FiguresDir.
func (p *pipeline) figures(t *dataset.Table, corr *models.CorrelationTable) ([]*plot.Figure, error) {
	if p.cfg.FiguresDir == "" {
		return nil, nil
	}
	boxes, err := plot.RenderGroupBoxplots(t, p.cfg.HRVMetrics, p.cfg.GroupColumn)
	if err != nil {
		return nil, err
	}
	figures := []*plot.Figure{boxes}
	if len(corr.Records) > 0 {
		heat, err := plot.RenderCorrelationHeatmap(corr)
		if err != nil {
			return nil, err
		}
		figures = append(figures, heat)
	}
	for _, f := range figures {
		path := filepath.Join(p.cfg.FiguresDir, f.FileName())
		if err := f.Save(path); err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{"file": path, "width": f.Width, "height": f.Height}).Info("figure saved")
	}
	return figures, nil
}

func (p *pipeline) htmlReport(t *dataset.Table, tests []*models.GroupTestResult, corr *models.CorrelationTable) error {
	if p.cfg.ReportHTML == "" {
		return nil
	}
	rep := report.Report{
		Table:       t,
		GroupColumn: p.cfg.GroupColumn,
		Metrics:     p.cfg.HRVMetrics,
		GroupTests:  tests,
		Correlation: corr,
	}
	var buf bytes.Buffer
	if err := rep.WriteHTML(&buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.cfg.ReportHTML), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(p.cfg.ReportHTML, buf.Bytes(), 0o644); err != nil {
		return err
	}
	logrus.WithField("file", p.cfg.ReportHTML).Info("html report saved")
	return nil
}

func (p *pipeline) persist(ctx context.Context, tests []*models.GroupTestResult, corr *models.CorrelationTable) error {
	if p.cfg.DbDsn == "" {
		return nil
	}
	st, err := store.Open(p.cfg.DbDsn)
	if err != nil {
		return err
	}
	defer st.Close()
	runID, err := st.SaveRun(ctx, p.cfg.Input, tests, corr)
	if err != nil {
		return err
	}
	logrus.WithField("run_id", runID.String()).Info("results stored in clickhouse")
	return nil
}

func (p *pipeline) notify(ctx context.Context, figures []*plot.Figure, corr *models.CorrelationTable) error {
	if !p.cfg.TelegramEnabled() {
		return nil
	}
	n, err := notify.New(p.cfg.TgToken, p.cfg.TgChatID)
	if err != nil {
		return err
	}
	for _, f := range figures {
		if err := n.SendFigure(ctx, f.Name, f.PNG); err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	if err := report.WriteCorrelationCSV(&buf, corr.Records); err != nil {
		return err
	}
	name := filepath.Base(config.DefaultCorrelationsOut)
	if p.cfg.CorrelationsOut != "" {
		name = filepath.Base(p.cfg.CorrelationsOut)
	}
	if err := n.SendDocument(ctx, name, buf.Bytes(), "TDA × HRV correlations"); err != nil {
		return err
	}
	return n.SendTable(ctx, report.CorrelationTable(corr))
}

// run is the full analysis: group tests, correlations, then every configured sink.
func (p *pipeline) run(ctx context.Context) error {
	t, err := p.load()
	if err != nil {
		return err
	}
	tests, err := p.groups(t)
	if err != nil {
		return err
	}
	corr, err := p.correlate(t)
	if err != nil {
		return err
	}
	figures, err := p.figures(t, corr)
	if err != nil {
		return err
	}
	if err := p.htmlReport(t, tests, corr); err != nil {
		return err
	}
	if err := p.persist(ctx, tests, corr); err != nil {
		return err
	}
	return p.notify(ctx, figures, corr)
}
