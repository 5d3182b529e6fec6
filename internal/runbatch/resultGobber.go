// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"encoding/gob"
	"errors"
	"io"
)

var (
	// ErrWriteGob is returned when writing the results to a binary format fails.
	ErrWriteGob = errors.New("failed to write binary results")
	// ErrReadGob is returned when reading results from a binary format fails.
	ErrReadGob = errors.New("failed to read binary results")
)

// gobResult is the wire form of a Result.
// Errors are flattened to their message since arbitrary error types cannot be registered with gob.
type gobResult struct {
	Label    string
	ExitCode int
	Error    string
	StdOut   []byte
	StdErr   []byte
	Status   ResultStatus
	Attempts int
	Args     []string
	Children Results
}

// GobEncode implements gob.GobEncoder.
func (r *Result) GobEncode() ([]byte, error) {
	dto := gobResult{
		Label:    r.Label,
		ExitCode: r.ExitCode,
		StdOut:   r.StdOut,
		StdErr:   r.StdErr,
		Status:   r.Status,
		Attempts: r.Attempts,
		Args:     r.Args,
		Children: r.Children,
	}

	if r.Error != nil {
		dto.Error = r.Error.Error()
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(dto); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (r *Result) GobDecode(data []byte) error {
	var dto gobResult
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&dto); err != nil {
		return err //nolint:wrapcheck
	}

	*r = Result{
		Label:    dto.Label,
		ExitCode: dto.ExitCode,
		StdOut:   dto.StdOut,
		StdErr:   dto.StdErr,
		Status:   dto.Status,
		Attempts: dto.Attempts,
		Args:     dto.Args,
		Children: dto.Children,
	}

	if dto.Error != "" {
		r.Error = errors.New(dto.Error) //nolint:err113
	}

	return nil
}

func writeResultGob(w io.Writer, results Results) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(results); err != nil {
		return errors.Join(ErrWriteGob, err)
	}

	return nil
}

// ReadBinary decodes results written by Results.WriteBinary.
func ReadBinary(r io.Reader) (Results, error) {
	var results Results

	dec := gob.NewDecoder(r)
	if err := dec.Decode(&results); err != nil {
		return nil, errors.Join(ErrReadGob, err)
	}

	return results, nil
}
