// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/term"
)

const (
	sbPadding = 16 // padding for the strings.Builder
)

// Code represents an ANSI control code for text formatting.
type Code int

const (
	// NoColor is the environment variable that disables color output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces color output.
	ForceColor = "FORCE_COLOR"
	reset      = "\033[0m"
	prefix     = "\033["
	suffix     = "m"
)

// Control codes for text formatting.
const (
	Reset Code = iota
	Bold
	Faint
	Italic
	Underline
)

// Foreground text colors.
const (
	FgBlack Code = iota + 30
	FgRed
	FgGreen
	FgYellow
	FgBlue
	FgMagenta
	FgCyan
	FgWhite
)

// Foreground Hi-Intensity text colors.
const (
	FgHiBlack Code = iota + 90
	FgHiRed
	FgHiGreen
	FgHiYellow
	FgHiBlue
	FgHiMagenta
	FgHiCyan
	FgHiWhite
)

var enabled atomic.Bool

func init() {
	enabled.Store(isColorCapable())
}

// ControlString returns the ANSI escape sequence for the given codes.
// It returns an empty string when color output is disabled.
func ControlString(c ...Code) string {
	if !enabled.Load() {
		return ""
	}

	return sequence(c)
}

// Colorize returns a string with ANSI color codes applied.
// It appends the reset code at the end of the string to reset the color.
func Colorize(str string, colorCodes ...Code) string {
	if !enabled.Load() {
		return str
	}

	sb := strings.Builder{}
	sb.Grow(len(str) + len(prefix) + len(suffix) + len(reset) + sbPadding)
	sb.WriteString(sequence(colorCodes))
	sb.WriteString(str)
	sb.WriteString(reset)

	return sb.String()
}

// ColorizeNoReset returns a string with ANSI color codes applied.
// It does not append the reset code at the end of the string.
func ColorizeNoReset(str string, colorCodes ...Code) string {
	if !enabled.Load() {
		return str
	}

	return sequence(colorCodes) + str
}

// Enabled reports whether color output is enabled.
//
// It is true when NO_COLOR is unset and either FORCE_COLOR is set or stdout is a terminal.
// Terminal detection is done using the golang.org/x/term package.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled overrides terminal detection, e.g. when output is redirected to a file.
func SetEnabled(v bool) {
	enabled.Store(v)
}

func sequence(codes []Code) string {
	sb := strings.Builder{}
	sb.Grow(len(prefix) + len(suffix) + sbPadding)
	sb.WriteString(prefix)

	for i, code := range codes {
		if i > 0 {
			sb.WriteString(";")
		}

		sb.WriteString(strconv.Itoa(int(code)))
	}

	sb.WriteString(suffix)

	return sb.String()
}

func isColorCapable() bool {
	if nc := os.Getenv(NoColor); nc != "" {
		return false
	}

	if fc := os.Getenv(ForceColor); fc != "" {
		return true
	}

	return term.IsTerminal(int(os.Stdout.Fd()))
}
