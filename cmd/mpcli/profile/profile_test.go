// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package profile

import (
	"bytes"
	"context"
	"testing"

	"github.com/matt-FFFFFF/mpcli/internal/color"
	"github.com/matt-FFFFFF/mpcli/internal/config"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	prev := color.Enabled()
	color.SetEnabled(false)
	t.Cleanup(func() { color.SetEnabled(prev) })

	out := new(bytes.Buffer)
	root := &cli.Command{
		Name:           "mpcli",
		Commands:       []*cli.Command{newProfileCmd()},
		Writer:         out,
		ErrWriter:      new(bytes.Buffer),
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}

	err := root.Run(context.Background(), append([]string{"mpcli", "profile"}, args...))

	return out.String(), err
}

func TestExample_ParsesBack(t *testing.T) {
	t.Setenv("MPCLI_USER", "alice")

	testCases := []struct {
		format   string
		filename string
	}{
		{format: "yaml", filename: "profile.yaml"},
		{format: "hcl", filename: "profile.hcl"},
	}

	for _, tc := range testCases {
		t.Run(tc.format, func(t *testing.T) {
			out, err := run(t, "example", "--format", tc.format)
			require.NoError(t, err)

			p, err := config.Parse(tc.filename, []byte(out))
			require.NoError(t, err)

			assert.Equal(t, "omero.example.org", p.Server)
			assert.Equal(t, "alice", p.User)
			assert.Equal(t, 50, p.GroupSize)
			assert.Equal(t, "5s", p.RetryDelay)
			require.NotNil(t, p.Login)
			assert.True(t, *p.Login)
		})
	}
}

func TestExample_UnknownFormat(t *testing.T) {
	_, err := run(t, "example", "--format", "toml")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestShow(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/profile.yaml", []byte("server: omero.example.org\ntries: 4\n"), 0o644))

	stubs := gostub.StubFunc(&config.FsFactory, fs)
	defer stubs.Reset()

	out, err := run(t, "show", "/profile.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, `"omero.example.org"`)
	assert.Contains(t, out, "retry_delay")
	assert.Contains(t, out, `"1s"`)
	assert.Contains(t, out, "4064")
	assert.Contains(t, out, `"tries": 4,`)
}

func TestShow_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/profile.toml", []byte("x = 1\n"), 0o644))

	stubs := gostub.StubFunc(&config.FsFactory, fs)
	defer stubs.Reset()

	_, err := run(t, "show")
	require.ErrorIs(t, err, ErrNoURL)

	_, err = run(t, "show", "/profile.toml")
	require.ErrorIs(t, err, config.ErrUnsupportedFormat)
}
