// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunks splits slices into fixed-size contiguous pieces.
package chunks

import "fmt"

// Split partitions items into successive sub-slices of at most size
// elements, preserving order. The sub-slices share items's backing
// array. A nil or empty input yields no chunks.
func Split[T any](items []T, size int) ([][]T, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be a positive integer, got %d", size)
	}

	var out [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out, nil
}

// Count returns ceil(n/size), the number of chunks Split produces for a
// slice of length n.
func Count(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
