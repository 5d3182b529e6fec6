// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/matt-FFFFFF/mpcli/internal/session"
	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrDecodeProfile is returned when a profile cannot be decoded.
	ErrDecodeProfile = errors.New("failed to decode profile")
	// ErrUnsupportedFormat is returned for a profile with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported profile format, use .yaml, .yml or .hcl")
	// ErrInvalidProfile is returned when a profile value is out of range.
	ErrInvalidProfile = errors.New("invalid profile")
)

// Profile holds optional defaults for the dispatch flags.
// Zero values are unset.
type Profile struct {
	Server     string `yaml:"server" hcl:"server,optional"`
	Port       int    `yaml:"port" hcl:"port,optional"`
	User       string `yaml:"user" hcl:"user,optional"`
	Group      string `yaml:"group" hcl:"group,optional"`
	Client     string `yaml:"client" hcl:"client,optional"`
	Tries      int    `yaml:"tries" hcl:"tries,optional"`
	RetryDelay string `yaml:"retry_delay" hcl:"retry_delay,optional"`
	GroupSize  int    `yaml:"groupsize" hcl:"groupsize,optional"`
	Threads    int    `yaml:"threads" hcl:"threads,optional"`
	Login      *bool  `yaml:"login" hcl:"login,optional"`
}

// Settings are the resolved values used by a dispatch.
type Settings struct {
	Server     string
	Port       int
	User       string
	Group      string
	Client     string
	Tries      int
	RetryDelay time.Duration
	GroupSize  int
	Threads    int
	Login      bool
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Server:     session.DefaultServer,
		Port:       session.DefaultPort,
		Client:     session.DefaultClientPath,
		Tries:      1,
		RetryDelay: time.Second,
		GroupSize:  1,
		Threads:    runtime.NumCPU(),
	}
}

// Parse decodes a profile, choosing the format from the file name.
func Parse(filename string, data []byte) (*Profile, error) {
	var (
		p   *Profile
		err error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		p, err = parseYAML(data)
	case ".hcl":
		p, err = parseHCL(filename, data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}

	if err != nil {
		return nil, err
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	return p, nil
}

func parseYAML(data []byte) (*Profile, error) {
	p := &Profile{}
	if len(bytes.TrimSpace(data)) == 0 {
		return p, nil
	}

	if err := yaml.UnmarshalWithOptions(data, p, yaml.Strict()); err != nil {
		return nil, errors.Join(ErrDecodeProfile, err)
	}

	return p, nil
}

func parseHCL(filename string, data []byte) (*Profile, error) {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Join(ErrDecodeProfile, diags)
	}

	p := &Profile{}
	if diags := gohcl.DecodeBody(file.Body, evalContext(), p); diags.HasErrors() {
		return nil, errors.Join(ErrDecodeProfile, diags)
	}

	return p, nil
}

// evalContext exposes the process environment to HCL expressions as env.NAME.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}

		vars[k] = cty.StringVal(v)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

func (p *Profile) validate() error {
	var merr *multierror.Error

	if p.Port < 0 || p.Port > 65535 {
		merr = multierror.Append(merr, fmt.Errorf("port %d out of range", p.Port)) //nolint:err113
	}

	for name, v := range map[string]int{"tries": p.Tries, "groupsize": p.GroupSize, "threads": p.Threads} {
		if v < 0 {
			merr = multierror.Append(merr, fmt.Errorf("%s must not be negative, got %d", name, v)) //nolint:err113
		}
	}

	if p.RetryDelay != "" {
		if d, err := time.ParseDuration(p.RetryDelay); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("retry_delay: %w", err))
		} else if d < 0 {
			merr = multierror.Append(merr, fmt.Errorf("retry_delay must not be negative, got %s", d)) //nolint:err113
		}
	}

	if err := merr.ErrorOrNil(); err != nil {
		return errors.Join(ErrInvalidProfile, err)
	}

	return nil
}

// Apply returns s with every value set in the profile overriding it.
// A nil profile leaves s unchanged.
func (p *Profile) Apply(s Settings) Settings {
	if p == nil {
		return s
	}

	if p.Server != "" {
		s.Server = p.Server
	}

	if p.Port != 0 {
		s.Port = p.Port
	}

	if p.User != "" {
		s.User = p.User
	}

	if p.Group != "" {
		s.Group = p.Group
	}

	if p.Client != "" {
		s.Client = p.Client
	}

	if p.Tries != 0 {
		s.Tries = p.Tries
	}

	if p.RetryDelay != "" {
		// validated by Parse
		if d, err := time.ParseDuration(p.RetryDelay); err == nil {
			s.RetryDelay = d
		}
	}

	if p.GroupSize != 0 {
		s.GroupSize = p.GroupSize
	}

	if p.Threads != 0 {
		s.Threads = p.Threads
	}

	if p.Login != nil {
		s.Login = *p.Login
	}

	return s
}
