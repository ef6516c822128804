package slices

// FilterMap applies f to each element and keeps only the results for which f reports true.
func FilterMap[I, O any](s []I, f func(I) (O, bool)) []O {
	m := make([]O, 0, len(s))
	for _, v := range s {
		if o, ok := f(v); ok {
			m = append(m, o)
		}
	}
	return m
}
