package models

// Score is an optional numeric cell. A missing score is never read as zero.
type Score struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

func Some(v float64) Score {
	return Score{Value: v, Valid: true}
}

// Dimension is one of the filterable axes of a results table.
type Dimension string

const (
	DimSemester   Dimension = "semester"
	DimSchool     Dimension = "school"
	DimGender     Dimension = "gender"
	DimGradeLabel Dimension = "grade_label"
	DimSubject    Dimension = "subject"
)

var Dimensions = []Dimension{DimSemester, DimSchool, DimGender, DimGradeLabel, DimSubject}

// RawTable is what a loader hands to the normalizer: headers verbatim, cells as text.
type RawTable struct {
	Source  string
	Columns []string
	Rows    [][]string
}

// Record is one student row after normalization.
type Record struct {
	StudentName string
	GradeLabel  string // class, e.g. "الصف الأول المتوسط"
	School      string
	Semester    string
	Gender      string

	// Subjects is aligned with Table.Subjects.
	Subjects []Score

	Behavior   string
	Attendance string

	StatedAverage   Score
	ComputedAverage Score

	OverallGradeRaw string
	OverallGrade    Grade
	HasGrade        bool
}

// Table is immutable once built; filtered views share record pointers.
type Table struct {
	Source     string
	Subjects   []string
	Dimensions map[Dimension]bool
	Records    []*Record
}

// SubjectIndex returns the position of subject in t.Subjects or -1.
func (t *Table) SubjectIndex(subject string) int {
	for i, s := range t.Subjects {
		if s == subject {
			return i
		}
	}
	return -1
}

func (t *Table) HasDimension(d Dimension) bool {
	return t.Dimensions[d]
}

// View returns a table with the same schema over the given records.
func (t *Table) View(records []*Record) *Table {
	return &Table{
		Source:     t.Source,
		Subjects:   t.Subjects,
		Dimensions: t.Dimensions,
		Records:    records,
	}
}

func (t *Table) Len() int {
	return len(t.Records)
}

// SubjectMean is the mean score of one subject, optionally within one semester.
type SubjectMean struct {
	Semester string  `json:"semester,omitempty"`
	Subject  string  `json:"subject"`
	Mean     float64 `json:"mean"`
	Count    int     `json:"count"`
}

// SemesterDistribution counts overall grades for one semester.
type SemesterDistribution struct {
	Semester string      `json:"semester"`
	Counts   GradeCounts `json:"counts"`
}

// SemesterMetric is the mean computed average of one of the fixed semesters.
type SemesterMetric struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Title string `json:"title"`
	Mean  Score  `json:"mean"`
}

type HistogramBin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// Histogram is the score distribution of a single selected subject.
type Histogram struct {
	Subject string         `json:"subject"`
	Bins    []HistogramBin `json:"bins"`
	Count   int            `json:"count"`
	Mean    float64        `json:"mean"`
	Median  float64        `json:"median"`
	Min     float64        `json:"min"`
	Max     float64        `json:"max"`
}

type SchoolAggregate struct {
	School string  `json:"school"`
	Mean   float64 `json:"mean"`
	Count  int     `json:"count"`
}

// AggregateSet holds every grouped view computed over one filtered table.
type AggregateSet struct {
	StudentCount      int                    `json:"student_count"`
	SplitBySemester   bool                   `json:"split_by_semester"`
	SubjectMeans      []SubjectMean          `json:"subject_means"`
	Distributions     []SemesterDistribution `json:"distributions"`
	Comparison        []SemesterDistribution `json:"comparison"`
	SemesterMetrics   []SemesterMetric       `json:"semester_metrics"`
	SubjectHistogram  *Histogram             `json:"subject_histogram,omitempty"`
	Schools           []SchoolAggregate      `json:"schools"`
	SchoolsBelowLimit int                    `json:"schools_below_limit"`
}

type RankedSchool struct {
	Rank   int     `json:"rank"`
	School string  `json:"school"`
	Mean   float64 `json:"mean"`
	Count  int     `json:"count"`
}

// RankingSummary compares the best and worst school with the mean of all qualifying schools.
type RankingSummary struct {
	Best        Score `json:"best"`
	Worst       Score `json:"worst"`
	Overall     Score `json:"overall"`
	BestDelta   Score `json:"best_delta"`
	WorstDelta  Score `json:"worst_delta"`
	SchoolCount int   `json:"school_count"`
}

type Rankings struct {
	Top     []RankedSchool `json:"top"`
	Bottom  []RankedSchool `json:"bottom"`
	Summary RankingSummary `json:"summary"`
}

// FilterOptions lists the selectable values per dimension.
type FilterOptions struct {
	Semesters   []string `json:"semesters"`
	Schools     []string `json:"schools"`
	Genders     []string `json:"genders"`
	GradeLabels []string `json:"grade_labels"`
	Subjects    []string `json:"subjects"`
}

// Report is the complete output of one pipeline pass.
type Report struct {
	Source     string               `json:"source"`
	Filters    map[Dimension]string `json:"filters"`
	Options    FilterOptions        `json:"options"`
	Empty      bool                 `json:"empty"`
	Aggregates *AggregateSet        `json:"aggregates,omitempty"`
	Rankings   *Rankings            `json:"rankings,omitempty"`
}
