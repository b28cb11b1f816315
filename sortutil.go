package vantage

import "sort"

// SortByKey sorts data ascending by a key extracted from each element.
// Adapted from the teacher's generic sort helpers for reuse across
// analytics reporting and the C7 binary format's deterministic ordering
// requirements.
func SortByKey[T any, K int | int64 | uint32 | float64 | string](data []T, key func(T) K) {
	sort.Slice(data, func(i, j int) bool {
		return key(data[i]) < key(data[j])
	})
}

// SortByKeyDescending sorts data descending by a key extracted from each
// element.
func SortByKeyDescending[T any, K int | int64 | uint32 | float64 | string](data []T, key func(T) K) {
	sort.Slice(data, func(i, j int) bool {
		return key(data[i]) > key(data[j])
	})
}
