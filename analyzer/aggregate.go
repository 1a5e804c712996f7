package analyzer

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/pivolan/grades_analyzer/domain/models"
)

// Aggregate computes every grouped view over a filtered table.
// An empty table yields ErrEmptyResult and no aggregates.
func Aggregate(t *models.Table, c Criteria, s Settings) (*models.AggregateSet, error) {
	if t.Len() == 0 {
		return nil, ErrEmptyResult
	}
	s = s.withDefaults()

	split := c.Semester.IsAny() && t.HasDimension(models.DimSemester)
	set := &models.AggregateSet{
		StudentCount:    countStudents(t),
		SplitBySemester: split,
		SubjectMeans:    subjectMeans(t, split),
		Distributions:   gradeDistributions(t),
		SemesterMetrics: semesterMetrics(t, s.Semesters),
	}
	set.Comparison = semesterComparison(set.Distributions)

	if subject, ok := c.Subject.Value(); ok {
		set.SubjectHistogram = subjectHistogram(t, subject, s.HistogramBins)
	}
	set.Schools, set.SchoolsBelowLimit = schoolAggregates(t, s.MinSchoolCount)
	return set, nil
}

func countStudents(t *models.Table) int {
	seen := make(map[string]struct{}, t.Len())
	for _, r := range t.Records {
		seen[r.StudentName] = struct{}{}
	}
	return len(seen)
}

// semesterOrder returns the distinct non-empty semesters in first-appearance order.
func semesterOrder(t *models.Table) []string {
	var order []string
	seen := map[string]bool{}
	for _, r := range t.Records {
		if r.Semester == "" || seen[r.Semester] {
			continue
		}
		seen[r.Semester] = true
		order = append(order, r.Semester)
	}
	return order
}

func subjectMeans(t *models.Table, split bool) []models.SubjectMean {
	means := []models.SubjectMean{}
	collect := func(semester string, records []*models.Record) {
		for j, subject := range t.Subjects {
			values := make([]float64, 0, len(records))
			for _, r := range records {
				if r.Subjects[j].Valid {
					values = append(values, r.Subjects[j].Value)
				}
			}
			if m, ok := mean(values); ok {
				means = append(means, models.SubjectMean{Semester: semester, Subject: subject, Mean: m, Count: len(values)})
			}
		}
	}

	if !split {
		collect("", t.Records)
		return means
	}

	bySemester := map[string][]*models.Record{}
	for _, r := range t.Records {
		if r.Semester != "" {
			bySemester[r.Semester] = append(bySemester[r.Semester], r)
		}
	}
	semesters := make([]string, 0, len(bySemester))
	for sem := range bySemester {
		semesters = append(semesters, sem)
	}
	sort.Strings(semesters)
	for _, sem := range semesters {
		collect(sem, bySemester[sem])
	}
	return means
}

// gradeDistributions counts overall grades per semester. Without a semester
// column the whole table forms one distribution with an empty label.
func gradeDistributions(t *models.Table) []models.SemesterDistribution {
	if !t.HasDimension(models.DimSemester) {
		var counts models.GradeCounts
		for _, r := range t.Records {
			if r.HasGrade {
				counts[r.OverallGrade]++
			}
		}
		return []models.SemesterDistribution{{Counts: counts}}
	}

	order := semesterOrder(t)
	counts := make(map[string]*models.GradeCounts, len(order))
	for _, sem := range order {
		counts[sem] = &models.GradeCounts{}
	}
	for _, r := range t.Records {
		if r.Semester == "" || !r.HasGrade {
			continue
		}
		counts[r.Semester][r.OverallGrade]++
	}

	out := make([]models.SemesterDistribution, 0, len(order))
	for _, sem := range order {
		out = append(out, models.SemesterDistribution{Semester: sem, Counts: *counts[sem]})
	}
	return out
}

// semesterComparison is the semester × grade matrix, rows sorted by semester.
func semesterComparison(dists []models.SemesterDistribution) []models.SemesterDistribution {
	out := make([]models.SemesterDistribution, len(dists))
	copy(out, dists)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Semester < out[j].Semester
	})
	return out
}

// semesterMetrics looks up each fixed semester's mean computed average on its own.
func semesterMetrics(t *models.Table, semesters []SemesterInfo) []models.SemesterMetric {
	values := map[string][]float64{}
	for _, r := range t.Records {
		if r.ComputedAverage.Valid {
			values[r.Semester] = append(values[r.Semester], r.ComputedAverage.Value)
		}
	}

	metrics := make([]models.SemesterMetric, 0, len(semesters))
	for _, info := range semesters {
		metric := models.SemesterMetric{Key: info.Key, Label: info.Label, Title: info.Title}
		if m, ok := mean(values[info.Label]); ok {
			metric.Mean = models.Some(m)
		}
		metrics = append(metrics, metric)
	}
	return metrics
}

// subjectHistogram bins the present scores of one subject over records that
// also carry an overall grade.
func subjectHistogram(t *models.Table, subject string, bins int) *models.Histogram {
	idx := t.SubjectIndex(subject)
	if idx < 0 {
		return nil
	}
	var values []float64
	for _, r := range t.Records {
		if r.Subjects[idx].Valid && r.OverallGradeRaw != "" {
			values = append(values, r.Subjects[idx].Value)
		}
	}
	if len(values) == 0 {
		return nil
	}

	lo, _ := stats.Min(values)
	hi, _ := stats.Max(values)
	avg, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	h := &models.Histogram{
		Subject: subject,
		Count:   len(values),
		Mean:    avg,
		Median:  median,
		Min:     lo,
		Max:     hi,
	}

	if hi == lo {
		h.Bins = []models.HistogramBin{{Start: lo, End: hi, Count: len(values)}}
		return h
	}
	width := (hi - lo) / float64(bins)
	h.Bins = make([]models.HistogramBin, bins)
	for i := range h.Bins {
		h.Bins[i].Start = lo + float64(i)*width
		h.Bins[i].End = lo + float64(i+1)*width
	}
	h.Bins[bins-1].End = hi
	for _, v := range values {
		i := int(math.Floor((v - lo) / width))
		if i >= bins {
			i = bins - 1
		}
		h.Bins[i].Count++
	}
	return h
}

// schoolAggregates groups by school name (sorted) and keeps schools with at
// least minCount records contributing a computed average.
func schoolAggregates(t *models.Table, minCount int) ([]models.SchoolAggregate, int) {
	if !t.HasDimension(models.DimSchool) {
		return []models.SchoolAggregate{}, 0
	}
	values := map[string][]float64{}
	for _, r := range t.Records {
		if r.School == "" {
			continue
		}
		if _, ok := values[r.School]; !ok {
			values[r.School] = nil
		}
		if r.ComputedAverage.Valid {
			values[r.School] = append(values[r.School], r.ComputedAverage.Value)
		}
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	out := []models.SchoolAggregate{}
	dropped := 0
	for _, name := range names {
		v := values[name]
		m, ok := mean(v)
		if !ok || len(v) < minCount {
			dropped++
			continue
		}
		out = append(out, models.SchoolAggregate{School: name, Mean: m, Count: len(v)})
	}
	return out, dropped
}
