package analyzer

import (
	"sort"

	"github.com/pivolan/grades_analyzer/domain/models"
)

// Rank orders qualifying schools into a top-n list (mean descending) and a
// bottom-n list (mean ascending). Ties keep input order in the top list;
// the bottom list is the reversed tail of the same ordering, so its ties
// come in reverse input order and the two lists never share a school when
// there are at least 2n schools.
// Fewer than n schools gives shorter lists.
func Rank(schools []models.SchoolAggregate, n int) models.Rankings {
	if n <= 0 {
		n = TopN
	}

	desc := make([]models.SchoolAggregate, len(schools))
	copy(desc, schools)
	sort.SliceStable(desc, func(i, j int) bool {
		return desc[i].Mean > desc[j].Mean
	})

	asc := make([]models.SchoolAggregate, len(desc))
	for i, s := range desc {
		asc[len(desc)-1-i] = s
	}

	r := models.Rankings{
		Top:     ranked(desc, n),
		Bottom:  ranked(asc, n),
		Summary: summarize(desc),
	}
	return r
}

func ranked(sorted []models.SchoolAggregate, n int) []models.RankedSchool {
	if len(sorted) < n {
		n = len(sorted)
	}
	out := make([]models.RankedSchool, n)
	for i := 0; i < n; i++ {
		out[i] = models.RankedSchool{
			Rank:   i + 1,
			School: sorted[i].School,
			Mean:   sorted[i].Mean,
			Count:  sorted[i].Count,
		}
	}
	return out
}

func summarize(desc []models.SchoolAggregate) models.RankingSummary {
	sum := models.RankingSummary{SchoolCount: len(desc)}
	if len(desc) == 0 {
		return sum
	}
	means := make([]float64, len(desc))
	for i, s := range desc {
		means[i] = s.Mean
	}
	overall, ok := mean(means)
	if !ok {
		return sum
	}
	best, worst := desc[0].Mean, desc[len(desc)-1].Mean
	sum.Best = models.Some(best)
	sum.Worst = models.Some(worst)
	sum.Overall = models.Some(overall)
	sum.BestDelta = models.Some(best - overall)
	sum.WorstDelta = models.Some(worst - overall)
	return sum
}
