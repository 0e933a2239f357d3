package payload

import "strconv"

// Binner discretizes a numeric value against an ascending sequence of upper
// bounds. With an open tail, values at or above the last bound are labeled
// "at least <last>"; with a closed tail they are clamped into the final bin
// and labeled with the bound itself.
type Binner struct {
	Bounds   []float64
	OpenTail bool
	// Format renders a bound inside a label; defaults to the shortest
	// decimal representation.
	Format func(float64) string
}

// Bin returns the bin index and its label. The index is the count of bounds
// at or below value (bisect right): a value exactly equal to a bound belongs
// to the following bin.
func (b Binner) Bin(value float64) (int, string) {
	format := b.Format
	if format == nil {
		format = func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
	}

	idx := bisectRight(b.Bounds, value)
	if idx < len(b.Bounds) {
		return idx, "less than " + format(b.Bounds[idx])
	}

	last := format(b.Bounds[len(b.Bounds)-1])
	if b.OpenTail {
		return idx, "at least " + last
	}
	return len(b.Bounds) - 1, last
}

func bisectRight(bounds []float64, value float64) int {
	idx := 0
	for idx < len(bounds) && bounds[idx] <= value {
		idx++
	}
	return idx
}
