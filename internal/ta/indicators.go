package ta

import "fmt"

// EMASeries is the recursive exponential moving average seeded with the
// first value: out[0] = values[0], alpha = 2/(period+1).
func EMASeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	if period <= 1 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// Reducer folds the values of one date bucket into a single number. The
// bool is false for an empty bucket.
type Reducer func(values []float64) (float64, bool)

func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

func Max(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	out := values[0]
	for _, v := range values[1:] {
		if v > out {
			out = v
		}
	}
	return out, true
}

func Min(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	out := values[0]
	for _, v := range values[1:] {
		if v < out {
			out = v
		}
	}
	return out, true
}

func Last(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return values[len(values)-1], true
}

// ReducerByName resolves the names used in dashboard layout files.
func ReducerByName(name string) (Reducer, error) {
	switch name {
	case "mean":
		return Mean, nil
	case "max":
		return Max, nil
	case "min":
		return Min, nil
	case "last":
		return Last, nil
	default:
		return nil, fmt.Errorf("unknown reducer %q", name)
	}
}

// Bounds returns the smallest and largest value.
func Bounds(values []float64) (lo, hi float64, ok bool) {
	lo, ok = Min(values)
	if !ok {
		return 0, 0, false
	}
	hi, _ = Max(values)
	return lo, hi, true
}
