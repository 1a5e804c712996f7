package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pivolan/grades_analyzer/analyzer"
	"github.com/pivolan/grades_analyzer/config"
	"github.com/pivolan/grades_analyzer/domain/models"
	"github.com/pivolan/grades_analyzer/loader"
	"github.com/pivolan/grades_analyzer/logging"
	"github.com/pivolan/grades_analyzer/report"
)

type reportOptions struct {
	file       string
	url        string
	format     string
	semester   string
	school     string
	gender     string
	gradeLabel string
	subject    string
}

var reportOpts reportOptions

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the aggregates and school rankings of a results file",
	Example: `  grades_analyzer report -f results.xlsx
  grades_analyzer report -f results.csv.gz --semester "إشعار بدرجات الفصل الدراسي الأول" --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd.Context(), cmd.OutOrStdout(), reportOpts)
	},
}

func init() {
	f := reportCmd.Flags()
	f.StringVarP(&reportOpts.file, "file", "f", "", "xlsx, csv or archive to analyze")
	f.StringVar(&reportOpts.url, "url", "", "remote sheet to analyze (defaults to SHEET_URL)")
	f.StringVar(&reportOpts.format, "format", "text", "output format: text, markdown or json")
	f.StringVar(&reportOpts.semester, "semester", "", "only this semester")
	f.StringVar(&reportOpts.school, "school", "", "only this school")
	f.StringVar(&reportOpts.gender, "gender", "", "only this gender")
	f.StringVar(&reportOpts.gradeLabel, "grade-label", "", "only this class")
	f.StringVar(&reportOpts.subject, "subject", "", "only students with a score in this subject")
}

func (o reportOptions) criteria() analyzer.Criteria {
	return analyzer.Criteria{
		Semester:   analyzer.OptionOf(o.semester),
		School:     analyzer.OptionOf(o.school),
		Gender:     analyzer.OptionOf(o.gender),
		GradeLabel: analyzer.OptionOf(o.gradeLabel),
		Subject:    analyzer.OptionOf(o.subject),
	}
}

func runReport(ctx context.Context, out io.Writer, o reportOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.GetConfig()
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	raw, err := readSource(ctx, cfg, o)
	if err != nil {
		return err
	}

	app, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}
	r, err := app.pipeline.Run(raw, o.criteria())
	if err != nil {
		return err
	}
	logger.Debug("report ready", zap.String("source", r.Source), zap.Bool("empty", r.Empty))
	return writeReport(out, r, o.format)
}

func readSource(ctx context.Context, cfg *config.Config, o reportOptions) (*models.RawTable, error) {
	if o.file != "" {
		return handleFile(o.file)
	}
	url := o.url
	if url == "" {
		url = cfg.SheetURL
	}
	if url == "" {
		return nil, errors.New("either --file or --url is required")
	}
	return loader.NewFetcher(0).Fetch(ctx, url)
}

func writeReport(out io.Writer, r *models.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "markdown", "md":
		_, err := fmt.Fprintln(out, report.Render(r, report.Markdown))
		return err
	case "text", "":
		_, err := fmt.Fprintln(out, report.Render(r, report.Text))
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}
