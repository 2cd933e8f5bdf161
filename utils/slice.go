package utils

func Filter[T any](src []T, predicate func(T) bool) []T {
	dst := make([]T, 0, len(src))
	for _, item := range src {
		if predicate(item) {
			dst = append(dst, item)
		}
	}
	return dst
}

func Map[T any, U any](src []T, mapper func(T) U) []U {
	dst := make([]U, 0, len(src))
	for _, item := range src {
		dst = append(dst, mapper(item))
	}
	return dst
}

func GroupBy[T any, K comparable](items []T, keyFunc func(T) K) map[K][]T {
	result := make(map[K][]T)
	for _, item := range items {
		key := keyFunc(item)
		result[key] = append(result[key], item)
	}
	return result
}

// UniqueBy keeps the first item for every key, preserving order.
func UniqueBy[T any, K comparable](items []T, keyFunc func(T) K) []T {
	seen := make(map[K]struct{}, len(items))
	dst := make([]T, 0, len(items))
	for _, item := range items {
		key := keyFunc(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		dst = append(dst, item)
	}
	return dst
}

// Set builds a membership set from the keys of items.
func Set[T any, K comparable](items []T, keyFunc func(T) K) map[K]struct{} {
	set := make(map[K]struct{}, len(items))
	for _, item := range items {
		set[keyFunc(item)] = struct{}{}
	}
	return set
}
