package analyzer

import (
	"github.com/montanaflynn/stats"

	"github.com/pivolan/grades_analyzer/domain/models"
)

// Derive sets every record's computed average to the mean of its present
// subject scores. A record with no present score gets a missing average.
func Derive(t *models.Table) {
	for _, rec := range t.Records {
		rec.ComputedAverage = computedAverage(rec.Subjects)
	}
}

func computedAverage(scores []models.Score) models.Score {
	values := make([]float64, 0, len(scores))
	for _, s := range scores {
		if s.Valid {
			values = append(values, s.Value)
		}
	}
	if m, ok := mean(values); ok {
		return models.Some(m)
	}
	return models.Score{}
}

func mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	m, err := stats.Mean(values)
	if err != nil {
		return 0, false
	}
	return m, true
}
