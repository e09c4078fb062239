package batch

import "math"

// maskColumns keeps only the rows whose mask entry is true, copying so the
// caller's arrays stay untouched. A nil mask returns the columns as-is.
func maskColumns(cols [][]float64, mask []bool) [][]float64 {
	if mask == nil {
		return cols
	}
	kept := 0
	for _, m := range mask {
		if m {
			kept++
		}
	}
	out := make([][]float64, len(cols))
	for c, col := range cols {
		dst := make([]float64, 0, kept)
		for i, m := range mask {
			if m {
				dst = append(dst, col[i])
			}
		}
		out[c] = dst
	}
	return out
}

// alignLagged truncates x, y and the optional condition z to their common
// overlap for the pairing (x_t, y_{t+lag}, z_{t+condLag}). The returned
// slices are views over the masked columns; the overlap length is 0 when the
// lags leave nothing.
func alignLagged(x, y, z [][]float64, lag, condLag int, hasCond bool) (xs, ys, zs [][]float64, n int) {
	total := 0
	if len(x) > 0 {
		total = len(x[0])
	}

	t0 := 0
	t1 := total
	bound := func(l int) {
		if -l > t0 {
			t0 = -l
		}
		if total-l < t1 {
			t1 = total - l
		}
	}
	bound(lag)
	if hasCond {
		bound(condLag)
	}
	if t1 <= t0 {
		return nil, nil, nil, 0
	}

	slice := func(cols [][]float64, offset int) [][]float64 {
		out := make([][]float64, len(cols))
		for c, col := range cols {
			out[c] = col[t0+offset : t1+offset]
		}
		return out
	}

	xs = slice(x, 0)
	ys = slice(y, lag)
	if hasCond {
		zs = slice(z, condLag)
	}
	return xs, ys, zs, t1 - t0
}

// allFinite reports whether every value in every column is a finite number
func allFinite(colGroups ...[][]float64) bool {
	for _, cols := range colGroups {
		for _, col := range cols {
			for _, v := range col {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return false
				}
			}
		}
	}
	return true
}
