package model

// Source is a table source: local path or http(s) URL, csv or xlsx
type Source struct {
	Type  string `json:"type,omitempty" yaml:"type,omitempty"` // csv, xlsx; inferred from extension when empty
	URL   string `json:"url" yaml:"url"`
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty"` // xlsx only, defaults to the first sheet
}

// Filter restricts rows before aggregation.
// A nil field means "all values present in the table"; an empty, non-nil list rejects every row.
type Filter struct {
	Years      []int    `json:"years,omitempty" yaml:"years,omitempty"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Regions    []string `json:"regions,omitempty" yaml:"regions,omitempty"`
}

// IsZero reports whether no dimension is restricted.
func (f *Filter) IsZero() bool {
	return f == nil || (f.Years == nil && f.Categories == nil && f.Regions == nil)
}

// Export defines export targets
type Export struct {
	DB   string `json:"db,omitempty" yaml:"db,omitempty"`     // sqlite file path
	File string `json:"file,omitempty" yaml:"file,omitempty"` // .csv, .json or .xlsx
	Dir  string `json:"dir,omitempty" yaml:"dir,omitempty"`   // base dir for per-run output
}

// ReportSpec defines an entire report run
type ReportSpec struct {
	Source          Source  `json:"source" yaml:"source"`
	SkipInvalidRows bool    `json:"skipInvalidRows,omitempty" yaml:"skipInvalidRows,omitempty"`
	KeepDuplicates  bool    `json:"keepDuplicates,omitempty" yaml:"keepDuplicates,omitempty"`
	Filter          *Filter `json:"filter,omitempty" yaml:"filter,omitempty"`
	Queries         []Query `json:"queries" yaml:"queries"`
	Export          *Export `json:"export,omitempty" yaml:"export,omitempty"`
	Workers         int     `json:"workers,omitempty" yaml:"workers,omitempty"` // concurrent queries, defaults to 4
}
