package analyzer

const (
	MinSchoolCount = 5
	TopN           = 20
	HistogramBins  = 20
)

// SemesterInfo describes one of the fixed academic periods. Label is the
// value found in the semester column.
type SemesterInfo struct {
	Key   string
	Label string
	Title string
}

var FixedSemesters = []SemesterInfo{
	{Key: "الفصل الأول", Label: "إشعار بدرجات الفصل الدراسي الأول", Title: "متوسط الفصل الأول"},
	{Key: "الفصل الثاني", Label: "إشعار بدرجات الفصل الدراسي الثاني", Title: "متوسط الفصل الثاني"},
	{Key: "الفصل الثالث", Label: "إشعار بدرجات الفصل الدراسي الثالث", Title: "متوسط الفصل الثالث"},
}

type Settings struct {
	// MinSchoolCount is the number of contributing records a school needs to be ranked.
	MinSchoolCount int
	TopN           int
	HistogramBins  int
	Semesters      []SemesterInfo
}

func DefaultSettings() Settings {
	return Settings{
		MinSchoolCount: MinSchoolCount,
		TopN:           TopN,
		HistogramBins:  HistogramBins,
		Semesters:      FixedSemesters,
	}
}

func (s Settings) withDefaults() Settings {
	if s.MinSchoolCount <= 0 {
		s.MinSchoolCount = MinSchoolCount
	}
	if s.TopN <= 0 {
		s.TopN = TopN
	}
	if s.HistogramBins <= 0 {
		s.HistogramBins = HistogramBins
	}
	if s.Semesters == nil {
		s.Semesters = FixedSemesters
	}
	return s
}
