// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package partition splits an ordered input list into contiguous groups, one per worker.
package partition

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidGroupSize is returned when the group size is less than one.
var ErrInvalidGroupSize = errors.New("group size must be at least 1")

// Count returns the number of groups Split produces for n items, i.e. ceil(n/size).
func Count(n, size int) int {
	if n <= 0 || size < 1 {
		return 0
	}

	return (n + size - 1) / size
}

// Split returns the items in contiguous groups of at most size elements.
// The groups concatenate back to items in order. Each group is a copy,
// so appending to one group never writes into its neighbour.
func Split[T any](items []T, size int) ([][]T, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidGroupSize, size)
	}

	groups := make([][]T, 0, Count(len(items), size))

	for chunk := range slices.Chunk(items, size) {
		groups = append(groups, slices.Clone(chunk))
	}

	return groups, nil
}
