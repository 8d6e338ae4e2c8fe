package collections

// Apply applies the applicator function to each item in the input slice.
func Apply[T, V any](items []T, applicator func(T) V) []V {
	result := make([]V, len(items))
	for i, item := range items {
		result[i] = applicator(item)
	}
	return result
}

func ApplyVariadic[T, V any](applicator func(T) V, items ...T) []V {
	return Apply(items, applicator)
}

// Filter returns the items for which keep returns true, preserving order.
func Filter[T any](items []T, keep func(T) bool) []T {
	result := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			result = append(result, item)
		}
	}
	return result
}

// IndexFunc returns the index of the first item matching pred, or -1.
func IndexFunc[T any](items []T, pred func(T) bool) int {
	for i, item := range items {
		if pred(item) {
			return i
		}
	}
	return -1
}
