// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"io"
	"os"
	"slices"
)

// ErrResultChildrenHasError is the error of a batch whose children failed.
var ErrResultChildrenHasError = errors.New("result has children with errors")

// ResultStatus is the outcome of a Runnable.
type ResultStatus int

const (
	// ResultStatusUnknown is the zero value, the command did not report an outcome.
	ResultStatusUnknown ResultStatus = iota
	// ResultStatusSuccess means the command succeeded.
	ResultStatusSuccess
	// ResultStatusError means the command failed.
	ResultStatusError
	// ResultStatusSkipped means the command was not run.
	ResultStatusSkipped
)

// String implements fmt.Stringer.
func (s ResultStatus) String() string {
	switch s {
	case ResultStatusSuccess:
		return "success"
	case ResultStatusError:
		return "error"
	case ResultStatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result represents the outcome of running a command or batch.
type Result struct {
	Label    string       // Label of the command or batch
	ExitCode int          // Exit code of the command or batch
	Error    error        // Error, if any
	StdOut   []byte       // Output from the command(s)
	StdErr   []byte       // Error output from the command(s)
	Status   ResultStatus // Outcome of the command
	Attempts int          // Number of attempts made, set by RetryCommand
	Args     []string     // Full command line, executable first
	Children Results      // Nested results for tree output
}

// Failed reports whether this result, ignoring its children, is a failure.
func (r *Result) Failed() bool {
	return r.Error != nil || r.ExitCode != 0 || r.Status == ResultStatusError
}

// Results is a slice of Result pointers, used to represent multiple results.
type Results []*Result

// HasError reports whether any result in the tree failed.
func (r Results) HasError() bool {
	for v := range slices.Values(r) {
		if v.Failed() {
			return true
		}

		if v.Children.HasError() {
			return true
		}
	}

	return false
}

// Print outputs the results to stdout with default options.
func (r Results) Print() error {
	return r.WriteTextWithOptions(os.Stdout, nil)
}

// WriteTextWithOptions outputs the results to the specified writer with the specified options.
func (r Results) WriteTextWithOptions(w io.Writer, options *OutputOptions) error {
	return writeTextResults(w, r, options)
}

// WriteBinary encodes the results with encoding/gob.
func (r Results) WriteBinary(w io.Writer) error {
	return writeResultGob(w, r)
}
