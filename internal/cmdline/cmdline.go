// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdline separates the shared command arguments from the per-group inputs.
package cmdline

import (
	"bufio"
	"errors"
	"io"
	"slices"
	"strings"
)

// Separator divides the shared arguments from the inputs on the command line.
const Separator = "--"

const maxInputLineSize = 1024 * 1024

// ErrReadInputs is returned when an inputs file cannot be read.
var ErrReadInputs = errors.New("failed to read inputs")

// SplitAtSeparator returns the arguments before the first separator as common
// and everything after it as params. Later separators are kept as params.
// Without a separator every argument is common.
func SplitAtSeparator(args []string) (common, params []string) {
	i := slices.Index(args, Separator)
	if i < 0 {
		return slices.Clone(args), nil
	}

	return slices.Clone(args[:i]), slices.Clone(args[i+1:])
}

// ReadInputs reads one input per line.
// Surrounding whitespace is trimmed; blank lines and lines starting with '#' are skipped.
func ReadInputs(r io.Reader) ([]string, error) {
	var out []string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxInputLineSize)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		out = append(out, line)
	}

	if err := sc.Err(); err != nil {
		return nil, errors.Join(ErrReadInputs, err)
	}

	return out, nil
}
