// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/mpcli/internal/ctxlog"
	"github.com/spf13/afero"
)

// ErrGetProfile is returned when the profile cannot be fetched.
var ErrGetProfile = errors.New("failed to get profile")

// FsFactory is a function that returns an afero filesystem.
// Local profiles are read through it.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Load fetches and decodes the profile at url.
// A path that exists on the local filesystem is read directly, anything else is fetched with go-getter.
func Load(ctx context.Context, url string) (*Profile, error) {
	if url == "" {
		return nil, ErrGetProfile
	}

	fs := FsFactory()

	if ok, _ := afero.Exists(fs, url); ok {
		ctxlog.Debug(ctx, "reading local profile", "path", url)

		data, err := afero.ReadFile(fs, url)
		if err != nil {
			return nil, errors.Join(ErrGetProfile, err)
		}

		return Parse(url, data)
	}

	ctxlog.Debug(ctx, "fetching profile", "url", url)

	data, fileName, err := getURL(ctx, url)
	if err != nil {
		return nil, err
	}

	return Parse(fileName, data)
}

// getURL retrieves a file using Hashicorp's go-getter.
// It returns the content and the file name, and removes the temporary download.
func getURL(ctx context.Context, url string) ([]byte, string, error) {
	tmpDir, err := os.MkdirTemp("", "mpcli-getter-*")
	if err != nil {
		return nil, "", errors.Join(ErrGetProfile, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, "", errors.Join(ErrGetProfile, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     url,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	var fileName string
	// Remote sources are fetched as a directory and the file is read from there.
	// https://github.com/hashicorp/go-getter/issues/98
	if ok, err := getter.Detect(req, &getter.FileGetter{}); !ok || err != nil {
		if err != nil {
			return nil, "", errors.Join(ErrGetProfile, err)
		}

		var newURL string

		newURL, fileName = splitFileNameFromGetterURL(url)
		if newURL == "" || fileName == "" {
			return nil, "", fmt.Errorf("%w: invalid URL format: %s", ErrGetProfile, url)
		}

		req.Src = newURL
	}

	if fileName == "" {
		req.Src = filepath.Dir(url)
		fileName = filepath.Base(url)
	}

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, "", errors.Join(ErrGetProfile, err)
	}

	// go-getter always writes to the operating system filesystem.
	data, err := afero.ReadFile(afero.NewOsFs(), filepath.Join(res.Dst, fileName))
	if err != nil {
		return nil, "", errors.Join(ErrGetProfile, err)
	}

	return data, fileName, nil
}

const (
	goGetterPathSeparator = "//"
	goGetterRefSeparator  = "?"
	minimumGetterParts    = 3 // Minimum parts in a go-getter URL: scheme, host, and path
)

// splitFileNameFromGetterURL splits the URL into the directory and file name.
// It returns the new getter URL without the file name and the file name itself.
// Any query string is kept on the new URL.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]
	if before, after, ok := strings.Cut(last, goGetterRefSeparator); ok {
		ref = after
		last = before
	}

	if filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName := filepath.Base(last)

	if dir := filepath.Dir(last); dir == "." {
		parts = parts[:len(parts)-1]
	} else {
		parts[len(parts)-1] = dir
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}
