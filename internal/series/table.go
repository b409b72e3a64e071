package series

import (
	"cmp"
	"slices"
)

// Row is one observation of an indicator.
type Row struct {
	Indicator string  `json:"indicator"`
	Year      int     `json:"year"`
	Value     float64 `json:"value"`
}

// Point is a (year, value) pair.
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Table is a tidy, immutable series sorted by (Indicator, Year).
// The zero value is an empty table.
type Table struct {
	rows []Row
}

// NewTable copies rows and sorts them by indicator then year.
// Rows sharing the same key keep their input order.
func NewTable(rows []Row) Table {
	if len(rows) == 0 {
		return Table{}
	}
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, compareRows)
	return Table{rows: sorted}
}

// Concat merges tables into one tidy table.
func Concat(tables ...Table) Table {
	var all []Row
	for _, t := range tables {
		all = append(all, t.rows...)
	}
	return NewTable(all)
}

func compareRows(a, b Row) int {
	if c := cmp.Compare(a.Indicator, b.Indicator); c != 0 {
		return c
	}
	return cmp.Compare(a.Year, b.Year)
}

func (t Table) Len() int { return len(t.rows) }

func (t Table) Empty() bool { return len(t.rows) == 0 }

// Rows returns a copy of the table rows.
func (t Table) Rows() []Row {
	return slices.Clone(t.rows)
}

// Points returns the (year, value) pairs in table order.
func (t Table) Points() []Point {
	if len(t.rows) == 0 {
		return nil
	}
	out := make([]Point, len(t.rows))
	for i, r := range t.rows {
		out[i] = Point{Year: r.Year, Value: r.Value}
	}
	return out
}

// YearRange reports the smallest and largest year in the table.
func (t Table) YearRange() (minYear, maxYear int, ok bool) {
	if len(t.rows) == 0 {
		return 0, 0, false
	}
	minYear, maxYear = t.rows[0].Year, t.rows[0].Year
	for _, r := range t.rows[1:] {
		minYear = min(minYear, r.Year)
		maxYear = max(maxYear, r.Year)
	}
	return minYear, maxYear, true
}

// Filter keeps rows whose year falls in [from, to].
func (t Table) Filter(from, to int) Table {
	return t.keep(func(r Row) bool { return r.Year >= from && r.Year <= to })
}

// Where keeps rows of a single indicator.
func (t Table) Where(indicator string) Table {
	return t.keep(func(r Row) bool { return r.Indicator == indicator })
}

// keep preserves order, so the result needs no re-sort.
func (t Table) keep(pred func(Row) bool) Table {
	var out []Row
	for _, r := range t.rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return Table{rows: out}
}
