package analyzer

import (
	"errors"

	"go.uber.org/zap"

	"github.com/pivolan/grades_analyzer/domain/models"
)

// Pipeline runs normalize → filter → aggregate → rank with a fixed column
// mapping and settings. It holds no state between runs.
type Pipeline struct {
	columns  Columns
	settings Settings
	logger   *zap.Logger
}

func New(cols Columns, s Settings, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{columns: cols, settings: s.withDefaults(), logger: logger}
}

func (p *Pipeline) Settings() Settings {
	return p.settings
}

// Prepare normalizes a raw table once so several criteria can run over it.
func (p *Pipeline) Prepare(raw *models.RawTable) (*models.Table, error) {
	t, err := Normalize(raw, p.columns)
	if err != nil {
		p.logger.Warn("schema rejected", zap.String("source", raw.Source), zap.Error(err))
		return nil, err
	}
	p.logger.Debug("table normalized",
		zap.String("source", raw.Source),
		zap.Int("rows", len(raw.Rows)),
		zap.Int("records", t.Len()),
		zap.Strings("subjects", t.Subjects))
	return t, nil
}

// Run executes the whole pipeline over a raw table.
func (p *Pipeline) Run(raw *models.RawTable, c Criteria) (*models.Report, error) {
	t, err := p.Prepare(raw)
	if err != nil {
		return nil, err
	}
	return p.RunTable(t, c)
}

// RunTable filters, aggregates and ranks an already normalized table.
// A filter that leaves no records gives a report with Empty set.
func (p *Pipeline) RunTable(t *models.Table, c Criteria) (*models.Report, error) {
	for _, d := range Inert(t, c) {
		v, _ := c.Get(d).Value()
		p.logger.Warn("filter ignored, dimension not in table",
			zap.String("dimension", string(d)), zap.String("value", v))
	}

	report := &models.Report{
		Source:  t.Source,
		Filters: c.Map(),
		Options: Options(t),
	}

	view := Filter(t, c)
	set, err := Aggregate(view, c, p.settings)
	if errors.Is(err, ErrEmptyResult) {
		report.Empty = true
		return report, nil
	}
	if err != nil {
		return nil, err
	}

	rankings := Rank(set.Schools, p.settings.TopN)
	report.Aggregates = set
	report.Rankings = &rankings
	p.logger.Debug("pipeline done",
		zap.Int("records", view.Len()),
		zap.Int("students", set.StudentCount),
		zap.Int("ranked_schools", len(set.Schools)))
	return report, nil
}

// Run is a convenience wrapper with a no-op logger.
func Run(raw *models.RawTable, cols Columns, c Criteria, s Settings) (*models.Report, error) {
	return New(cols, s, nil).Run(raw, c)
}
