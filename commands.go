package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pivolan/hrv_tda_stats/config"
)

const defaultFiguresDir = "results/figures"

// newRootCommand wires the CLI to cfg; flags overwrite cfg fields in place.
// Result tables go to out.
func newRootCommand(cfg *config.Config, out io.Writer) *cobra.Command {
	p := &pipeline{cfg: cfg, out: out}

	root := &cobra.Command{
		Use:           "hrvtda",
		Short:         "Group tests and TDA × HRV correlations for a merged HRV table",
		Long:          `hrvtda compares HRV metrics across age groups (Kruskal–Wallis with Dunn post-hoc tests) and correlates TDA descriptors with HRV metrics (Pearson).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("LOG_LEVEL: %w", err)
			}
			logrus.SetLevel(level)
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return p.run(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&cfg.Input, "input", "i", cfg.Input, "merged HRV/TDA table (csv, gz, lz4, zip, xlsx)")
	flags.StringVarP(&cfg.CorrelationsOut, "output", "o", cfg.CorrelationsOut, "correlations CSV to overwrite")
	flags.StringVar(&cfg.GroupTestsOut, "group-tests", cfg.GroupTestsOut, "optional Kruskal–Wallis summary CSV")
	flags.StringVar(&cfg.FiguresDir, "figures", cfg.FiguresDir, "directory for PNG figures (empty: none)")
	flags.StringVar(&cfg.ReportHTML, "report", cfg.ReportHTML, "optional interactive HTML report")
	flags.StringVar(&cfg.GroupColumn, "group-column", cfg.GroupColumn, "column holding the group labels")
	flags.StringSliceVar(&cfg.HRVMetrics, "metrics", cfg.HRVMetrics, "HRV metric columns")
	flags.StringSliceVar(&cfg.TDAFeatures, "features", cfg.TDAFeatures, "TDA feature columns")
	flags.BoolVar(&p.tables, "tables", false, "print result tables")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run every stage (default)",
		RunE:  root.RunE,
	}

	groupsCmd := &cobra.Command{
		Use:   "groups",
		Short: "Kruskal–Wallis and Dunn tests of each HRV metric across groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := p.load()
			if err != nil {
				return err
			}
			_, err = p.groups(t)
			return err
		},
	}

	correlateCmd := &cobra.Command{
		Use:   "correlate",
		Short: "Pearson correlations between TDA features and HRV metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := p.load()
			if err != nil {
				return err
			}
			_, err = p.correlate(t)
			return err
		},
	}

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "Render the group box plots and the correlation heatmap",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.FiguresDir == "" {
				cfg.FiguresDir = defaultFiguresDir
			}
			// figures only, the correlations CSV is left alone
			cfg.CorrelationsOut = ""
			t, err := p.load()
			if err != nil {
				return err
			}
			corr, err := p.correlate(t)
			if err != nil {
				return err
			}
			_, err = p.figures(t, corr)
			return err
		},
	}

	root.AddCommand(runCmd, groupsCmd, correlateCmd, plotCmd)
	return root
}
