package sliceutil

// Map applies f to every element. A nil input gives a nil output.
func Map[From any, To any](v []From, f func(From) To) []To {
	if v == nil {
		return nil
	}

	out := make([]To, len(v))
	for idx, elem := range v {
		out[idx] = f(elem)
	}
	return out
}

// Filter returns the elements that keep reports true for, in order.
// It returns nil when there are none.
func Filter[T any](v []T, keep func(T) bool) []T {
	var out []T
	for _, elem := range v {
		if keep(elem) {
			out = append(out, elem)
		}
	}
	return out
}
