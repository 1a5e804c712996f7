package analyzer

import (
	"sort"

	"github.com/pivolan/grades_analyzer/domain/models"
)

// Option is a filter value that is either "no restriction" or one exact value.
// The zero value is no restriction.
type Option struct {
	value string
	set   bool
}

func Any() Option {
	return Option{}
}

func Only(v string) Option {
	return Option{value: v, set: true}
}

// OptionOf returns Any for an empty string and Only(v) otherwise.
// Normalized tables never hold empty dimension values, so nothing is lost.
func OptionOf(v string) Option {
	if v == "" {
		return Any()
	}
	return Only(v)
}

func (o Option) Value() (string, bool) {
	return o.value, o.set
}

func (o Option) IsAny() bool {
	return !o.set
}

// Criteria holds one independent equality or presence constraint per dimension.
type Criteria struct {
	Semester   Option
	School     Option
	Gender     Option
	GradeLabel Option
	Subject    Option
}

func (c Criteria) Get(d models.Dimension) Option {
	switch d {
	case models.DimSemester:
		return c.Semester
	case models.DimSchool:
		return c.School
	case models.DimGender:
		return c.Gender
	case models.DimGradeLabel:
		return c.GradeLabel
	case models.DimSubject:
		return c.Subject
	}
	return Any()
}

func (c Criteria) With(d models.Dimension, o Option) Criteria {
	switch d {
	case models.DimSemester:
		c.Semester = o
	case models.DimSchool:
		c.School = o
	case models.DimGender:
		c.Gender = o
	case models.DimGradeLabel:
		c.GradeLabel = o
	case models.DimSubject:
		c.Subject = o
	}
	return c
}

// Map returns the active constraints keyed by dimension.
func (c Criteria) Map() map[models.Dimension]string {
	m := make(map[models.Dimension]string)
	for _, d := range models.Dimensions {
		if v, ok := c.Get(d).Value(); ok {
			m[d] = v
		}
	}
	return m
}

type predicate func(*models.Record) bool

func fieldOf(d models.Dimension) func(*models.Record) string {
	switch d {
	case models.DimSemester:
		return func(r *models.Record) string { return r.Semester }
	case models.DimSchool:
		return func(r *models.Record) string { return r.School }
	case models.DimGender:
		return func(r *models.Record) string { return r.Gender }
	case models.DimGradeLabel:
		return func(r *models.Record) string { return r.GradeLabel }
	}
	return nil
}

// predicateFor builds the predicate for a single dimension, or nil when the
// constraint is inert: unset, absent from the table, or an unknown subject.
func predicateFor(t *models.Table, d models.Dimension, o Option) predicate {
	v, ok := o.Value()
	if !ok || !t.HasDimension(d) {
		return nil
	}
	if d == models.DimSubject {
		idx := t.SubjectIndex(v)
		if idx < 0 {
			return nil
		}
		return func(r *models.Record) bool { return r.Subjects[idx].Valid }
	}
	field := fieldOf(d)
	return func(r *models.Record) bool { return field(r) == v }
}

// Filter returns a view of t holding the records that satisfy every active
// criterion. Records are shared, never copied or mutated.
func Filter(t *models.Table, c Criteria) *models.Table {
	var preds []predicate
	for _, d := range models.Dimensions {
		if p := predicateFor(t, d, c.Get(d)); p != nil {
			preds = append(preds, p)
		}
	}

	out := make([]*models.Record, 0, len(t.Records))
	for _, rec := range t.Records {
		keep := true
		for _, p := range preds {
			if !p(rec) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, rec)
		}
	}
	return t.View(out)
}

// Inert lists the dimensions whose constraint is set but ignored because
// the table has no such column or subject.
func Inert(t *models.Table, c Criteria) []models.Dimension {
	var dims []models.Dimension
	for _, d := range models.Dimensions {
		o := c.Get(d)
		if !o.IsAny() && predicateFor(t, d, o) == nil {
			dims = append(dims, d)
		}
	}
	return dims
}

// Options lists the distinct values of every present dimension, sorted.
func Options(t *models.Table) models.FilterOptions {
	distinct := func(d models.Dimension) []string {
		if !t.HasDimension(d) {
			return []string{}
		}
		field := fieldOf(d)
		seen := map[string]bool{}
		values := []string{}
		for _, r := range t.Records {
			v := field(r)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			values = append(values, v)
		}
		sort.Strings(values)
		return values
	}
	subjects := make([]string, len(t.Subjects))
	copy(subjects, t.Subjects)
	return models.FilterOptions{
		Semesters:   distinct(models.DimSemester),
		Schools:     distinct(models.DimSchool),
		Genders:     distinct(models.DimGender),
		GradeLabels: distinct(models.DimGradeLabel),
		Subjects:    subjects,
	}
}
