// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_LocalFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/profiles/team.yaml", []byte("server: srv\nthreads: 2\n"), 0o644))

	stubs := gostub.Stub(&FsFactory, func() afero.Fs { return fs })
	defer stubs.Reset()

	p, err := Load(context.Background(), "/profiles/team.yaml")
	require.NoError(t, err)
	assert.Equal(t, &Profile{Server: "srv", Threads: 2}, p)
}

func TestLoad_Getter(t *testing.T) {
	stubs := gostub.Stub(&FsFactory, func() afero.Fs { return afero.NewMemMapFs() })
	defer stubs.Reset()

	dir := t.TempDir()
	path := filepath.Join(dir, "team.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`groupsize = 7`), 0o600))

	p, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 7, p.GroupSize)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "empty url", url: ""},
		{name: "getter fails", url: "git::http://notexist//file.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Load(context.Background(), tt.url)
			require.ErrorIs(t, err, ErrGetProfile)
			assert.Nil(t, p)
		})
	}
}

func TestSplitFileNameFromGetterURL(t *testing.T) {
	tests := []struct {
		url      string
		wantURL  string
		wantFile string
	}{
		{
			url:      "git::https://github.com/org/repo//profiles/team.yaml?ref=v1",
			wantURL:  "git::https://github.com/org/repo//profiles?ref=v1",
			wantFile: "team.yaml",
		},
		{
			url:      "git::https://github.com/org/repo//team.hcl",
			wantURL:  "git::https://github.com/org/repo",
			wantFile: "team.hcl",
		},
		{
			url: "https://example.com/team.yaml",
		},
		{
			url: "git::https://github.com/org/repo//profiles/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			gotURL, gotFile := splitFileNameFromGetterURL(tt.url)
			assert.Equal(t, tt.wantURL, gotURL)
			assert.Equal(t, tt.wantFile, gotFile)
		})
	}
}
