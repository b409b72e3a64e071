package series

// defaultSpan is how many years back the default chart range reaches from the latest year.
const defaultSpan = 10

// Mean is the arithmetic mean of all values.
func (t Table) Mean() (float64, bool) {
	if len(t.rows) == 0 {
		return 0, false
	}
	var sum float64
	for _, r := range t.rows {
		sum += r.Value
	}
	return sum / float64(len(t.rows)), true
}

// Rolling computes a trailing mean over the last window rows. Leading rows
// average over however many rows are available, so the output has one point
// per row. A non-positive window yields nil.
func (t Table) Rolling(window int) []Point {
	if window <= 0 || len(t.rows) == 0 {
		return nil
	}
	out := make([]Point, len(t.rows))
	var sum float64
	for i, r := range t.rows {
		sum += r.Value
		if i >= window {
			sum -= t.rows[i-window].Value
		}
		n := min(i+1, window)
		out[i] = Point{Year: r.Year, Value: sum / float64(n)}
	}
	return out
}

// Latest returns the most recent row of each indicator, ordered by indicator.
func (t Table) Latest() []Row {
	var out []Row
	for i, r := range t.rows {
		if i+1 == len(t.rows) || t.rows[i+1].Indicator != r.Indicator {
			out = append(out, r)
		}
	}
	return out
}

// DefaultRange is the last ten years of data, clamped to the first available year.
func (t Table) DefaultRange() (from, to int, ok bool) {
	minYear, maxYear, ok := t.YearRange()
	if !ok {
		return 0, 0, false
	}
	return max(minYear, maxYear-defaultSpan), maxYear, true
}
