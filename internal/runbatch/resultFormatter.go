// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matt-FFFFFF/mpcli/internal/color"
)

// OutputOptions controls what is included in the output.
type OutputOptions struct {
	IncludeStdOut      bool // Whether to include stdout in the output
	IncludeStdErr      bool // Whether to include stderr in the output
	ShowSuccessDetails bool // Whether to show details for successful commands
	ShowArgs           bool // Whether to show the command line of each worker
}

// DefaultOutputOptions returns a default set of output options.
func DefaultOutputOptions() *OutputOptions {
	return &OutputOptions{
		IncludeStdOut:      false,
		IncludeStdErr:      true,
		ShowSuccessDetails: false,
		ShowArgs:           false,
	}
}

// writeTextResults writes formatted results to the provided writer.
func writeTextResults(w io.Writer, results Results, options *OutputOptions) error {
	if options == nil {
		options = DefaultOutputOptions()
	}

	for _, r := range results {
		if err := writeResultWithIndent(w, r, "", options); err != nil {
			return err
		}
	}

	return nil
}

func writeResultWithIndent(w io.Writer, r *Result, indent string, options *OutputOptions) error {
	var statusStr, labelPrefix string

	switch r.Status {
	case ResultStatusSkipped:
		statusStr = color.Colorize("~", color.FgYellow)
		labelPrefix = color.ControlString(color.Bold, color.FgYellow)
	case ResultStatusError:
		statusStr = color.Colorize("✗", color.FgRed)
		labelPrefix = color.ControlString(color.Bold, color.FgRed)
	case ResultStatusSuccess:
		statusStr = color.Colorize("✓", color.FgGreen)
		labelPrefix = color.ControlString(color.Bold, color.FgGreen)
	default:
		statusStr = color.Colorize("?", color.FgWhite)
	}

	label := r.Label
	if label == "" {
		label = "[unnamed]"
	}

	if _, err := fmt.Fprintf(
		w,
		"%s%s %s%s%s",
		indent,
		statusStr,
		labelPrefix,
		label,
		color.ControlString(color.Reset),
	); err != nil {
		return err //nolint:wrapcheck
	}

	if r.ExitCode != 0 {
		fmt.Fprintf(w, " (exit code: %d)", r.ExitCode) // nolint:errcheck
	}

	if r.Attempts > 1 {
		fmt.Fprintf(w, " (attempts: %d)", r.Attempts) // nolint:errcheck
	}

	fmt.Fprintln(w) // nolint:errcheck

	if r.Error != nil && !errors.Is(r.Error, ErrResultChildrenHasError) {
		errColor := color.FgWhite

		switch r.Status {
		case ResultStatusSkipped:
			errColor = color.FgYellow
		case ResultStatusError:
			errColor = color.FgRed
		}

		fmt.Fprintf( // nolint:errcheck
			w,
			"%s  %s %s%s\n",
			indent,
			color.ColorizeNoReset("➜ Error:", errColor),
			r.Error.Error(),
			color.ControlString(color.Reset),
		)
	}

	// Details are for leaf results only, and only for failures unless asked.
	shouldShowDetails := (r.Failed() || options.ShowSuccessDetails) && len(r.Children) == 0

	if shouldShowDetails && options.ShowArgs && len(r.Args) > 0 {
		fmt.Fprintf(w, "%s  ➜ Command: %s\n", indent, strings.Join(r.Args, " ")) // nolint:errcheck
	}

	if shouldShowDetails && options.IncludeStdOut && len(r.StdOut) > 0 {
		fmt.Fprintf(w, "%s  ➜ Output:\n", indent)                    // nolint:errcheck
		fmt.Fprintf(w, "%s", formatOutput(r.StdOut, indent+"     ")) // nolint:errcheck
	}

	if shouldShowDetails && options.IncludeStdErr && len(r.StdErr) > 0 {
		fmt.Fprintf(w, "%s  %s\n", indent, color.Colorize("➜ Error Output:", color.FgHiRed)) // nolint:errcheck
		fmt.Fprintf(w, "%s", formatOutput(r.StdErr, indent+"     "))                         // nolint:errcheck
	}

	childIndent := indent + "  "
	for _, child := range r.Children {
		if err := writeResultWithIndent(w, child, childIndent, options); err != nil {
			return err
		}
	}

	return nil
}

// formatOutput indents multi-line output.
func formatOutput(output []byte, indent string) string {
	sb := strings.Builder{}
	lines := strings.Split(strings.TrimSuffix(string(output), "\n"), "\n")
	sb.Grow(len(output) + len(lines)*(len(indent)+1))

	for _, line := range lines {
		if line == "" {
			sb.WriteString("\n")
			continue
		}

		sb.WriteString(indent)
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}
