// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"slices"
	"strings"
)

const (
	fullLabelInitialSliceSize = 10 // Initial size for the labels slice in CommandPath
)

// FullLabel returns the full label of a Runnable, including its parent labels.
func FullLabel(r Runnable) string {
	if r == nil {
		return "Unknown"
	}

	return strings.Join(CommandPath(r), " > ")
}

// CommandPath returns the labels from the root batch down to r.
func CommandPath(r Runnable) []string {
	if r == nil {
		return nil
	}

	labels := make([]string, 0, fullLabelInitialSliceSize)
	for cur := r; cur != nil; cur = cur.GetParent() {
		labels = append(labels, cur.GetLabel())
	}

	slices.Reverse(labels)

	return labels
}
